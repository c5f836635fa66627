package bootstrap

import (
	"context"
	"fmt"
	"time"

	firebase "firebase.google.com/go/v4"

	"github.com/teamup-app/teamup-backend/config"
	"github.com/teamup-app/teamup-backend/internal/store"
	"github.com/teamup-app/teamup-backend/internal/store/firestoredb"
	"github.com/teamup-app/teamup-backend/internal/store/postgres"
)

type StoreOptions struct {
	Config   config.StoreConfig
	Firebase *firebase.App
	SchemaTO time.Duration
}

// OpenStore builds the gateway selected by STORE_BACKEND
func OpenStore(ctx context.Context, opt StoreOptions) (store.Gateway, error) {
	if opt.SchemaTO == 0 {
		opt.SchemaTO = 10 * time.Second
	}

	switch opt.Config.Backend {
	case config.StoreBackendPostgres:
		db, err := postgres.NewConnection(ctx, opt.Config.PostgresDSN)
		if err != nil {
			return nil, err
		}
		s := postgres.New(db)

		sctx, cancel := context.WithTimeout(ctx, opt.SchemaTO)
		defer cancel()
		if err := s.EnsureSchema(sctx); err != nil {
			db.Close()
			return nil, err
		}
		return s, nil

	case config.StoreBackendFirestore:
		if opt.Firebase == nil {
			return nil, fmt.Errorf("firestore backend requires Firebase credentials")
		}
		client, err := opt.Firebase.Firestore(ctx)
		if err != nil {
			return nil, fmt.Errorf("firestore client: %w", err)
		}
		return firestoredb.New(client), nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", opt.Config.Backend)
	}
}
