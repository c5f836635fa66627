package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvent_IsFull(t *testing.T) {
	assert.False(t, (&Event{Participants: 100}).IsFull(), "zero max means unlimited")
	assert.False(t, (&Event{Participants: 3, MaxParticipants: 4}).IsFull())
	assert.True(t, (&Event{Participants: 4, MaxParticipants: 4}).IsFull())
	assert.True(t, (&Event{Participants: 5, MaxParticipants: 4}).IsFull())
}

func TestMembershipID(t *testing.T) {
	assert.Equal(t, "u1_E1", MembershipID("u1", "E1"))
}
