package database

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/iliyamo/fitness-tracker/internal/config"
	"github.com/iliyamo/fitness-tracker/internal/docstore"
	"github.com/iliyamo/fitness-tracker/internal/repository"
)

// Store is the document store selected by configuration plus whatever
// connection has to be released on shutdown.
type Store struct {
	docstore.Store
	close func(context.Context) error
}

// Close releases the underlying connection pool.
func (s *Store) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

// Open builds the document store for cfg.StoreDriver.
func Open(ctx context.Context, cfg config.Config) (*Store, error) {
	switch cfg.StoreDriver {
	case config.DriverMySQL:
		db, err := OpenMySQL(ctx, cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			return nil, fmt.Errorf("open mysql: %w", err)
		}
		log.Info("document store ready", "driver", cfg.StoreDriver, "host", cfg.DBHost, "db", cfg.DBName)
		return &Store{
			Store: docstore.NewMySQLStore(db),
			close: func(context.Context) error { return db.Close() },
		}, nil
	case config.DriverMongo:
		client, err := OpenMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, fmt.Errorf("open mongo: %w", err)
		}
		log.Info("document store ready", "driver", cfg.StoreDriver, "db", cfg.MongoDB)
		return &Store{
			Store: docstore.NewMongoStore(client.Database(cfg.MongoDB)),
			close: client.Disconnect,
		}, nil
	default:
		log.Warn("using in-memory document store; data is lost on exit")
		return &Store{Store: docstore.NewMemoryStore()}, nil
	}
}

// Migrate prepares the backing store: the documents table for MySQL, and
// lookup indexes for MongoDB. The in-memory store needs nothing.
func Migrate(ctx context.Context, s *Store) error {
	switch st := s.Store.(type) {
	case *docstore.MySQLStore:
		return st.Migrate(ctx)
	case *docstore.MongoStore:
		for _, ix := range []struct {
			coll, field string
			unique      bool
		}{
			{repository.CollUsers, "email", true},
			{repository.CollTeams, "member_ids", false},
			{repository.CollActivities, "user_id", false},
			{repository.CollLeaderboard, "user_id", false},
		} {
			if err := st.EnsureIndex(ctx, ix.coll, ix.field, ix.unique); err != nil {
				return err
			}
		}
	}
	return nil
}
