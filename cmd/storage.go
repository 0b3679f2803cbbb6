package cmd

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vibast-solutions/ms-go-mood-journal/app/repository"
	"github.com/vibast-solutions/ms-go-mood-journal/config"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// backend bundles the stores of the configured driver together with a
// reachability check and the cleanup of the underlying connections.
type backend struct {
	users    repository.UserStore
	moods    repository.MoodStore
	sessions repository.SessionStore
	db       *sql.DB
	ping     func(ctx context.Context) error
	closers  []func()
}

func (b *backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func openBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	b := &backend{}

	switch cfg.Storage.Driver {
	case config.StorageMySQL:
		db, err := openMySQL(ctx, cfg)
		if err != nil {
			return nil, err
		}
		b.db = db
		b.closers = append(b.closers, func() { _ = db.Close() })
		b.users = repository.NewUserRepository(db)
		b.moods = repository.NewMoodRepository(db)
		b.sessions = repository.NewSessionRepository(db)
		b.ping = db.PingContext

	case config.StorageMongo:
		client, err := mongo.Connect(options.Client().ApplyURI(cfg.Storage.MongoURI))
		if err != nil {
			return nil, fmt.Errorf("connect to mongodb: %w", err)
		}
		b.closers = append(b.closers, func() { _ = client.Disconnect(context.Background()) })
		if err = client.Ping(ctx, nil); err != nil {
			b.Close()
			return nil, fmt.Errorf("ping mongodb: %w", err)
		}

		store := repository.NewMongoStore(client.Database(cfg.Storage.MongoDatabase))
		if err = store.EnsureIndexes(ctx); err != nil {
			b.Close()
			return nil, fmt.Errorf("create mongodb indexes: %w", err)
		}
		b.users = store
		b.moods = store
		b.sessions = store.Sessions()
		b.ping = func(ctx context.Context) error { return client.Ping(ctx, nil) }

	case config.StorageFile:
		store, err := repository.OpenFileStore(cfg.Storage.DataFile)
		if err != nil {
			return nil, err
		}
		b.users = store
		b.moods = store
		b.sessions = repository.NewMemorySessionStore()

	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}

	if cfg.Session.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Session.RedisAddr,
			Password: cfg.Session.RedisPass,
			DB:       cfg.Session.RedisDB,
		})
		b.closers = append(b.closers, func() { _ = client.Close() })
		if err := client.Ping(ctx).Err(); err != nil {
			b.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		b.sessions = repository.NewRedisSessionStore(client)
		logrus.WithField("addr", cfg.Session.RedisAddr).Info("Using Redis session store")
	}

	logrus.WithField("driver", cfg.Storage.Driver).Info("Storage ready")
	return b, nil
}

func openMySQL(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}
