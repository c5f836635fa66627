package http

import (
	"github.com/teamup-app/teamup-backend/config"
	"github.com/teamup-app/teamup-backend/internal/notifications/service"
)

// Handler serves push registration endpoints
type Handler struct {
	tokens    *service.TokenService
	webConfig WebConfig
	vapidKey  string
}

// WebConfig is the public Firebase configuration posted by the main thread
// to the push worker as {type: "FIREBASE_CONFIG", config}.
type WebConfig struct {
	APIKey            string `json:"apiKey"`
	AuthDomain        string `json:"authDomain"`
	ProjectID         string `json:"projectId"`
	MessagingSenderID string `json:"messagingSenderId"`
	AppID             string `json:"appId"`
}

func New(tokens *service.TokenService, fb config.FirebaseConfig) *Handler {
	return &Handler{
		tokens: tokens,
		webConfig: WebConfig{
			APIKey:            fb.WebAPIKey,
			AuthDomain:        fb.AuthDomain,
			ProjectID:         fb.ProjectID,
			MessagingSenderID: fb.MessagingSenderID,
			AppID:             fb.AppID,
		},
		vapidKey: fb.VAPIDKey,
	}
}
