package main

import (
	"context"
	"fmt"

	"taskboard/backend/internal/config"
	"taskboard/backend/internal/database"
	"taskboard/backend/internal/repositories"
	"taskboard/backend/internal/repositories/memrepo"
	"taskboard/backend/internal/repositories/mongorepo"
	"taskboard/backend/internal/repositories/mysqlrepo"
	"taskboard/backend/internal/repositories/surrealrepo"
)

// openStore は STORE_DRIVER に応じてストアを開きます。
func openStore(ctx context.Context, cfg config.Config) (repositories.Store, error) {
	switch cfg.Store.Driver {
	case config.DriverMySQL:
		db, err := database.InitDB(ctx, cfg.MySQL)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(db); err != nil {
			db.Close()
			return nil, err
		}
		return mysqlrepo.NewStore(db), nil
	case config.DriverMongo:
		return mongorepo.Open(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	case config.DriverSurreal:
		return surrealrepo.Open(ctx, surrealrepo.Config{
			URL:       cfg.Surreal.URL,
			Namespace: cfg.Surreal.Namespace,
			Database:  cfg.Surreal.Database,
			User:      cfg.Surreal.User,
			Password:  cfg.Surreal.Password,
		})
	case config.DriverMemory:
		return memrepo.New(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
