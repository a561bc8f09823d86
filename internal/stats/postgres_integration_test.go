package stats

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/taqdeer/taqdeer-api/internal/database"
)

// Runs against a real Postgres when TAQDEER_INTEGRATION=1 and Docker is available.
func TestIncrementAgainstPostgres(t *testing.T) {
	if os.Getenv("TAQDEER_INTEGRATION") != "1" {
		t.Skip("set TAQDEER_INTEGRATION=1 to run")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("taqdeer"),
		postgres.WithUsername("taqdeer"),
		postgres.WithPassword("taqdeer"),
		postgres.BasicWaitStrategies(),
	)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(ctr) })
	require.NoError(t, err)

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	store, err := database.New(dsn, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, database.AutoMigrate(store, &UsageStats{}))
	assert.Equal(t, "up", store.Health()["status"])

	repo := NewRepository(store, nil)
	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Increment(ctx, Generated)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	st, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, workers, st.DuasGenerated)
}
