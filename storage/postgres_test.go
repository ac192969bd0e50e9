package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"slibuy-scraper/models"
	"slibuy-scraper/utils"
)

// setupPostgres starts a throwaway PostgreSQL container. The test is
// skipped in -short mode or when no container runtime is available.
func setupPostgres(t *testing.T) *PostgresStore {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres integration test skipped in -short mode")
	}

	// suppress logging
	testcontainers.Logger = log.New(io.Discard, "", 0)
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	pg, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		Started: true,
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "scraper",
				"POSTGRES_PASSWORD": "scraper123",
				"POSTGRES_DB":       "slibuy",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
	})
	if err != nil {
		t.Skipf("postgres container did not start: %v", err)
	}
	t.Cleanup(func() {
		if err := pg.Terminate(context.Background()); err != nil {
			t.Fatal(err)
		}
	})

	host, err := pg.Host(ctx)
	require.NoError(t, err)
	port, err := pg.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=scraper password=scraper123 dbname=slibuy sslmode=disable", host, port.Port())
	store, err := OpenPostgres(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestPostgresStateRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := setupPostgres(t)
	st := NewState(kv, utils.Discard())

	_, ok, err := kv.Get(ctx, CacheKey)
	require.NoError(t, err)
	require.False(t, ok)

	_, err = st.MergeAndSave(ctx, []*models.Listing{{ID: "123", Title: "Foo", Price: "$10", ScrapedAt: 1}})
	require.NoError(t, err)
	cache, err := st.LoadCache(ctx)
	require.NoError(t, err)
	require.Equal(t, "$10", cache["123"].Price)

	on, err := st.ToggleWatch(ctx, "123")
	require.NoError(t, err)
	require.True(t, on)

	require.NoError(t, st.ClearCache(ctx))
	cache, err = st.LoadCache(ctx)
	require.NoError(t, err)
	require.Empty(t, cache)
}
