package config

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	DB    *sql.DB
	Mongo *mongo.Client
	dbMu  sync.Mutex
)

// ConnectDB opens the shared MySQL connection (idempotent).
func ConnectDB(ctx context.Context, dsn string) (*sql.DB, error) {
	dbMu.Lock()
	defer dbMu.Unlock()

	if DB != nil {
		return DB, nil
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(10 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}

	DB = db
	return DB, nil
}

// ConnectMongo opens the shared MongoDB client (idempotent).
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	dbMu.Lock()
	defer dbMu.Unlock()

	if Mongo != nil {
		return Mongo, nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	Mongo = client
	return Mongo, nil
}

// Ping checks whichever store connection is open. The in-memory store
// has nothing to check.
func Ping(ctx context.Context) error {
	dbMu.Lock()
	db, client := DB, Mongo
	dbMu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	switch {
	case db != nil:
		return db.PingContext(ctx)
	case client != nil:
		return client.Ping(ctx, nil)
	default:
		return nil
	}
}

// CloseDB closes every open store connection.
func CloseDB(ctx context.Context) {
	dbMu.Lock()
	defer dbMu.Unlock()

	if DB != nil {
		_ = DB.Close()
		DB = nil
	}
	if Mongo != nil {
		_ = Mongo.Disconnect(ctx)
		Mongo = nil
	}
}
