package mgo

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	mu sync.RWMutex
	db *mongo.Database
)

type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Init connects and pings; the handle is shared process-wide.
func Init(ctx context.Context, cfg Config) error {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	cctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	cli, err := mongo.Connect(cctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return errors.Wrap(err, "mongo connect")
	}
	if err := cli.Ping(cctx, nil); err != nil {
		return errors.Wrap(err, "mongo ping")
	}

	mu.Lock()
	db = cli.Database(cfg.Database)
	mu.Unlock()
	return nil
}

// GetDB panics when called before Init; boot order is a programming error,
// not a runtime condition.
func GetDB() *mongo.Database {
	mu.RLock()
	defer mu.RUnlock()
	if db == nil {
		panic("mongo not initialized, call mgo.Init first")
	}
	return db
}

func TryGetDB() (*mongo.Database, bool) {
	mu.RLock()
	defer mu.RUnlock()
	return db, db != nil
}

func Close(ctx context.Context) error {
	mu.Lock()
	defer mu.Unlock()
	if db == nil {
		return nil
	}
	err := db.Client().Disconnect(ctx)
	db = nil
	return err
}
