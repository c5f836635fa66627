package bootstrap

import (
	"context"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/teamup-app/teamup-backend/config"
	httpapi "github.com/teamup-app/teamup-backend/internal/api/http"
	"github.com/teamup-app/teamup-backend/internal/api/http/middleware"
	"github.com/teamup-app/teamup-backend/internal/auth"
	authhttp "github.com/teamup-app/teamup-backend/internal/auth/http"
	authmw "github.com/teamup-app/teamup-backend/internal/auth/middleware"
	eventshttp "github.com/teamup-app/teamup-backend/internal/events/http"
	eventsservice "github.com/teamup-app/teamup-backend/internal/events/service"
	"github.com/teamup-app/teamup-backend/internal/monitoring"
	monitoringhttp "github.com/teamup-app/teamup-backend/internal/monitoring/http"
	notifhttp "github.com/teamup-app/teamup-backend/internal/notifications/http"
	notifservice "github.com/teamup-app/teamup-backend/internal/notifications/service"
	"github.com/teamup-app/teamup-backend/internal/places"
	placeshttp "github.com/teamup-app/teamup-backend/internal/places/http"
	"github.com/teamup-app/teamup-backend/internal/store"
)

type RouterDeps struct {
	ServiceName string
	Config      *config.Config
	Logger      *logrus.Logger
	Store       store.Gateway
	Verifier    *auth.Verifier
	Dispatcher  *notifservice.Dispatcher
	Sink        *monitoring.FileSink
	Transport   http.RoundTripper
	Redis       *redis.Client
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	cfg := dep.Config

	r := gin.New()
	r.Use(middleware.RequestIDMiddleware(dep.Logger))
	r.Use(monitoring.Recovery(dep.Sink))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders:    []string{middleware.HeaderRequestID},
		AllowCredentials: true,
	}))

	checks := map[string]httpapi.CheckFunc{
		"store": dep.Store.Ping,
		"cache": nil,
	}
	if dep.Redis != nil {
		checks["cache"] = func(ctx context.Context) error { return dep.Redis.Ping(ctx).Err() }
	}
	httpapi.NewHealthHandler(dep.ServiceName, cfg.App.Version, checks).RegisterRoutes(r)

	api := r.Group("/api")
	api.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	protected := api.Group("")
	protected.Use(authmw.FirebaseAuthMiddleware(dep.Verifier))

	// events
	var notifier eventsservice.Notifier
	if dep.Dispatcher != nil {
		notifier = dep.Dispatcher
	}
	events := eventshttp.New(
		eventsservice.NewEventService(dep.Store),
		eventsservice.NewMembershipService(dep.Store, notifier),
	)
	events.RegisterPublic(api.Group("/events"))
	events.Register(protected.Group("/events"))

	// notifications
	notifications := notifhttp.New(notifservice.NewTokenService(dep.Store), cfg.Firebase)
	notifications.RegisterPublic(api.Group("/notifications"))
	notifications.Register(protected.Group("/notifications"))

	// users
	authhttp.New(dep.Store).Register(protected.Group("/users"))

	// places
	placeshttp.New(places.NewClient(cfg.Offline.GeocoderURL, dep.Transport)).Register(protected.Group("/places"))

	// monitoring
	limiter := rate.NewLimiter(rate.Limit(cfg.Monitoring.RateLimit), cfg.Monitoring.RateBurst)
	monitoringhttp.New(dep.Sink, limiter).Register(api.Group("/monitoring"))

	return r
}
