package mongorepo_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"taskboard/backend/internal/repositories"
	"taskboard/backend/internal/repositories/mongorepo"
	"taskboard/backend/internal/repositories/repotest"
)

// TEST_MONGO_URI はレプリカセット構成の MongoDB を指す必要があります (トランザクションのため)。
func setupTestStore(t *testing.T) repositories.Store {
	t.Helper()
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}
	s, err := mongorepo.Open(context.Background(), uri, "taskboard_test_"+uuid.NewString()[:8])
	require.NoError(t, err)
	t.Cleanup(func() { s.Close(context.Background()) })
	return s
}

func TestStoreContract(t *testing.T) {
	repotest.Run(t, setupTestStore)
}
