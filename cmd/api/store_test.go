package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/backend/internal/config"
	"taskboard/backend/internal/repositories/memrepo"
)

func TestOpenStore_Memory(t *testing.T) {
	var cfg config.Config
	cfg.Store.Driver = config.DriverMemory

	store, err := openStore(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &memrepo.Store{}, store)
	assert.NoError(t, store.Ping(context.Background()))
	assert.NoError(t, store.Close(context.Background()))
}

func TestOpenStore_UnknownDriver(t *testing.T) {
	var cfg config.Config
	cfg.Store.Driver = "sqlite"

	_, err := openStore(context.Background(), cfg)
	assert.ErrorContains(t, err, "unknown store driver")
}
