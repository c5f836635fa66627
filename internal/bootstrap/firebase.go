package bootstrap

import (
	"context"

	firebase "firebase.google.com/go/v4"

	"github.com/teamup-app/teamup-backend/internal/auth"
	"github.com/teamup-app/teamup-backend/internal/notifications/service"
)

// NewVerifier returns a verifier backed by the app's identity client. With
// no app, or when the client cannot be built, every credential is rejected.
func NewVerifier(ctx context.Context, app *firebase.App) (*auth.Verifier, error) {
	if app == nil {
		return auth.NewVerifier(nil), nil
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return auth.NewVerifier(nil), err
	}
	return auth.NewVerifier(client), nil
}

// MessagingConnector creates the push client on first use
func MessagingConnector(app *firebase.App) service.ConnectFunc {
	if app == nil {
		return nil
	}
	return func(ctx context.Context) (service.Sender, error) {
		client, err := app.Messaging(ctx)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}
