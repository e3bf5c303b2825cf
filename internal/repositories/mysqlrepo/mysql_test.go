package mysqlrepo_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"taskboard/backend/internal/config"
	"taskboard/backend/internal/database"
	"taskboard/backend/internal/repositories"
	"taskboard/backend/internal/repositories/mysqlrepo"
	"taskboard/backend/internal/repositories/repotest"
)

// TEST_DB_* が設定されている場合だけ実際のMySQLに対して実行します。
func setupTestDB(t *testing.T) repositories.Store {
	t.Helper()
	host := os.Getenv("TEST_DB_HOST")
	if host == "" {
		t.Skip("TEST_DB_HOST not set")
	}
	cfg := config.MySQLConfig{
		User:     os.Getenv("TEST_DB_USER"),
		Password: os.Getenv("TEST_DB_PASS"),
		Host:     host,
		Port:     os.Getenv("TEST_DB_PORT"),
		Name:     os.Getenv("TEST_DB_NAME"),
	}
	if cfg.Port == "" {
		cfg.Port = "3306"
	}

	db, err := database.InitDB(context.Background(), cfg)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	// テストのたびにクリーンな状態にする (外部キーのため tasks -> projects -> users の順)
	for _, table := range []string{"tasks", "projects", "users"} {
		_, err := db.Exec("DELETE FROM " + table)
		require.NoError(t, err)
	}

	s := mysqlrepo.NewStore(db)
	t.Cleanup(func() { s.Close(context.Background()) })
	return s
}

func TestStoreContract(t *testing.T) {
	repotest.Run(t, setupTestDB)
}
