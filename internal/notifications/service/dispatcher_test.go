package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"firebase.google.com/go/v4/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamup-app/teamup-backend/internal/domain"
	"github.com/teamup-app/teamup-backend/internal/store/storetest"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []*messaging.Message
	err  error
}

func (f *fakeSender) Send(_ context.Context, m *messaging.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, m)
	return "projects/teamup/messages/1", nil
}

func countingConnect(sender Sender, calls *int) ConnectFunc {
	var mu sync.Mutex
	return func(context.Context) (Sender, error) {
		mu.Lock()
		defer mu.Unlock()
		*calls++
		return sender, nil
	}
}

func TestDispatcher_InitializesOnce(t *testing.T) {
	sender := &fakeSender{}
	calls := 0
	d := NewDispatcher(countingConnect(sender, &calls), nil, "https://teamup.app")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, d.Send(context.Background(), "tok", Push{Title: "hi"}))
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, calls)
	assert.Len(t, sender.sent, 10)
}

func TestDispatcher_NotConfigured(t *testing.T) {
	d := NewDispatcher(nil, nil, "")

	err := d.Send(context.Background(), "tok", Push{})
	assert.ErrorIs(t, err, ErrDispatcherNotConfigured)
}

func TestDispatcher_InitFailureIsKept(t *testing.T) {
	calls := 0
	d := NewDispatcher(func(context.Context) (Sender, error) {
		calls++
		return nil, errors.New("bad credentials")
	}, nil, "")

	assert.Error(t, d.Send(context.Background(), "tok", Push{}))
	assert.Error(t, d.Send(context.Background(), "tok", Push{}))
	assert.Equal(t, 1, calls)
}

func TestDispatcher_Message(t *testing.T) {
	d := NewDispatcher(nil, nil, "https://teamup.app")

	msg := d.Message("tok", Push{Body: "hello", Tag: "event-E1", Data: map[string]string{"k": "v"}})

	assert.Equal(t, "tok", msg.Token)
	require.NotNil(t, msg.Webpush)
	require.NotNil(t, msg.Webpush.Notification)
	assert.Equal(t, "TeamUp", msg.Webpush.Notification.Title)
	assert.Equal(t, "hello", msg.Webpush.Notification.Body)
	assert.Equal(t, "event-E1", msg.Webpush.Notification.Tag)
	assert.True(t, msg.Webpush.Notification.Renotify)
	require.NotNil(t, msg.Webpush.FCMOptions)
	assert.Equal(t, "https://teamup.app/", msg.Webpush.FCMOptions.Link)
	assert.Equal(t, "v", msg.Data["k"])

	plain := NewDispatcher(nil, nil, "").Message("tok", Push{Title: "Hey"})
	assert.Equal(t, "teamup", plain.Webpush.Notification.Tag)
	assert.Equal(t, "Hey", plain.Notification.Title)
	assert.Nil(t, plain.Webpush.FCMOptions)
}

func TestDispatcher_SendEmptyToken(t *testing.T) {
	calls := 0
	d := NewDispatcher(countingConnect(&fakeSender{}, &calls), nil, "")

	assert.Error(t, d.Send(context.Background(), "", Push{}))
	assert.Equal(t, 0, calls)
}

func TestDispatcher_ParticipantJoined(t *testing.T) {
	gw := storetest.New()
	gw.PutUser(domain.UserProfile{UID: "org", NotificationToken: "org-token"})
	sender := &fakeSender{}
	calls := 0
	d := NewDispatcher(countingConnect(sender, &calls), gw, "https://teamup.app")

	event := &domain.Event{ID: "E1", OrganizerID: "org", Name: "Foot", Participants: 3}
	require.NoError(t, d.ParticipantJoined(context.Background(), event, "u1"))

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, "org-token", msg.Token)
	assert.Equal(t, "event-E1", msg.Webpush.Notification.Tag)
	assert.Equal(t, "u1", msg.Data["participantId"])
	assert.Contains(t, msg.Webpush.Notification.Body, "Foot")
}

func TestDispatcher_ParticipantJoinedSkipsWithoutToken(t *testing.T) {
	gw := storetest.New()
	gw.PutUser(domain.UserProfile{UID: "org"})
	calls := 0
	d := NewDispatcher(countingConnect(&fakeSender{}, &calls), gw, "")

	event := &domain.Event{ID: "E1", OrganizerID: "org"}
	assert.NoError(t, d.ParticipantJoined(context.Background(), event, "u1"))

	event.OrganizerID = "unknown"
	assert.NoError(t, d.ParticipantJoined(context.Background(), event, "u1"))
	assert.Equal(t, 0, calls)
}

func TestDispatcher_ParticipantJoinedSendFailure(t *testing.T) {
	gw := storetest.New()
	gw.PutUser(domain.UserProfile{UID: "org", NotificationToken: "org-token"})
	calls := 0
	d := NewDispatcher(countingConnect(&fakeSender{err: errors.New("unregistered")}, &calls), gw, "")

	err := d.ParticipantJoined(context.Background(), &domain.Event{ID: "E1", OrganizerID: "org"}, "u1")
	assert.Error(t, err)
}
