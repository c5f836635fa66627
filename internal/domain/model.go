package domain

import "time"

// Membership roles stored on userEvents records.
const (
	RoleOrganizer   = "organisateur"
	RoleParticipant = "participant"
)

// Location is where an event takes place
type Location struct {
	Address string  `json:"address" firestore:"address"`
	Lat     float64 `json:"lat" firestore:"lat"`
	Lng     float64 `json:"lng" firestore:"lng"`
}

// Event is a sporting event organized by a user
type Event struct {
	ID              string    `json:"id" firestore:"-"`
	OrganizerID     string    `json:"organizerId" firestore:"organizerId"`
	Name            string    `json:"name" firestore:"name"`
	Type            string    `json:"type" firestore:"type"`
	Description     string    `json:"description,omitempty" firestore:"description"`
	Date            string    `json:"date" firestore:"date"` // YYYY-MM-DD
	Time            string    `json:"time" firestore:"time"` // HH:MM
	Location        Location  `json:"location" firestore:"location"`
	Participants    int       `json:"participants" firestore:"participants"`
	MaxParticipants int       `json:"maxParticipants" firestore:"maxParticipants"` // 0 means unlimited
	CreatedAt       time.Time `json:"createdAt" firestore:"createdAt"`
}

// IsFull reports whether the event enforces a capacity and has reached it.
func (e *Event) IsFull() bool {
	return e.MaxParticipants > 0 && e.Participants >= e.MaxParticipants
}

// Membership links one user to one event (a userEvents record)
type Membership struct {
	UserID   string    `json:"userId" firestore:"userId"`
	EventID  string    `json:"eventId" firestore:"eventId"`
	Role     string    `json:"role" firestore:"role"`
	JoinedAt time.Time `json:"joinedAt" firestore:"joinedAt"`
}

// MembershipID is the unique key of the (user, event) pair.
func MembershipID(userID, eventID string) string {
	return userID + "_" + eventID
}

// UserProfile holds the counters and push registration of a user
type UserProfile struct {
	UID                    string    `json:"uid" firestore:"-"`
	DisplayName            string    `json:"displayName,omitempty" firestore:"displayName,omitempty"`
	NumberEventJoined      int       `json:"number_event_joined" firestore:"number_event_joined"`
	NotificationToken      string    `json:"-" firestore:"fcmToken,omitempty"`
	NotificationTokenSetAt time.Time `json:"fcmTokenUpdatedAt" firestore:"fcmTokenUpdatedAt,omitempty"`
}
