package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"firebase.google.com/go/v4/messaging"

	"github.com/teamup-app/teamup-backend/internal/domain"
)

const (
	defaultTitle = "TeamUp"
	defaultTag   = "teamup"
)

var ErrDispatcherNotConfigured = errors.New("push dispatcher is not configured")

// Sender is the part of the FCM messaging client used here.
type Sender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// ConnectFunc creates the push client.
type ConnectFunc func(ctx context.Context) (Sender, error)

// ProfileReader loads user profiles to find their push token.
type ProfileReader interface {
	GetUser(ctx context.Context, uid string) (*domain.UserProfile, error)
}

// Push is one notification payload. Empty Title and Tag fall back to
// defaults.
type Push struct {
	Title string
	Body  string
	Tag   string
	Data  map[string]string
}

// Dispatcher sends push notifications through FCM.
//
// The connector handed to NewDispatcher is the only configuration. The push
// client is created from it lazily on first use, exactly once; switching
// configuration needs a process restart. An initialization failure is kept
// as well.
type Dispatcher struct {
	mu          sync.Mutex
	connect     ConnectFunc
	initialized bool
	sender      Sender
	initErr     error

	users   ProfileReader
	rootURL string
}

// NewDispatcher creates a Dispatcher. publicURL is the HTTPS origin of the
// web app; clicking a notification focuses or opens its root path.
func NewDispatcher(connect ConnectFunc, users ProfileReader, publicURL string) *Dispatcher {
	d := &Dispatcher{
		connect: connect,
		users:   users,
	}
	if publicURL != "" {
		d.rootURL = publicURL + "/"
	}
	return d
}

func (d *Dispatcher) client(ctx context.Context) (Sender, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.initialized {
		d.initialized = true
		if d.connect == nil {
			d.initErr = ErrDispatcherNotConfigured
		} else {
			d.sender, d.initErr = d.connect(ctx)
		}
	}
	return d.sender, d.initErr
}

// Message builds the FCM message for one push. The Webpush tag makes the
// browser replace a visible notification with the same tag instead of
// stacking a new one.
func (d *Dispatcher) Message(token string, p Push) *messaging.Message {
	title := p.Title
	if title == "" {
		title = defaultTitle
	}
	tag := p.Tag
	if tag == "" {
		tag = defaultTag
	}

	msg := &messaging.Message{
		Token: token,
		Data:  p.Data,
		Notification: &messaging.Notification{
			Title: title,
			Body:  p.Body,
		},
		Webpush: &messaging.WebpushConfig{
			Notification: &messaging.WebpushNotification{
				Title:    title,
				Body:     p.Body,
				Tag:      tag,
				Renotify: true,
			},
		},
	}
	if d.rootURL != "" {
		msg.Webpush.FCMOptions = &messaging.WebpushFCMOptions{Link: d.rootURL}
	}
	return msg
}

// Send delivers p to a single device token.
func (d *Dispatcher) Send(ctx context.Context, token string, p Push) error {
	if token == "" {
		return fmt.Errorf("empty device token")
	}
	sender, err := d.client(ctx)
	if err != nil {
		return fmt.Errorf("push client: %w", err)
	}
	if _, err := sender.Send(ctx, d.Message(token, p)); err != nil {
		return fmt.Errorf("failed to send push: %w", err)
	}
	return nil
}

// ParticipantJoined pushes a notification to the event organizer. Organizers
// without a registered token are skipped silently.
func (d *Dispatcher) ParticipantJoined(ctx context.Context, event *domain.Event, participantID string) error {
	if d.users == nil {
		return nil
	}
	organizer, err := d.users.GetUser(ctx, event.OrganizerID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load organizer: %w", err)
	}
	if organizer.NotificationToken == "" {
		return nil
	}

	return d.Send(ctx, organizer.NotificationToken, Push{
		Title: "New participant",
		Body:  fmt.Sprintf("Someone joined %q (%d participants)", event.Name, event.Participants),
		Tag:   "event-" + event.ID,
		Data: map[string]string{
			"type":          "participant_joined",
			"eventId":       event.ID,
			"participantId": participantID,
		},
	})
}
