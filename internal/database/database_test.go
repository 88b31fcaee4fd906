package database

import (
	"context"
	"testing"
	"testing/fstest"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestMigrationVersions(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/002_more.sql": {Data: []byte("SELECT 1;")},
		"migrations/001_init.sql": {Data: []byte("SELECT 1;")},
		"migrations/README.md":    {Data: []byte("notes")},
	}

	versions, err := migrationVersions(fsys)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_init.sql", "002_more.sql"}, versions)
}

func TestEmbeddedMigrations(t *testing.T) {
	versions, err := Migrations()
	require.NoError(t, err)
	require.NotEmpty(t, versions)
	assert.Equal(t, "001_init.sql", versions[0])
}

func TestBatchLen(t *testing.T) {
	b := &Batch{
		Products: []Product{{Code: "MEHL550"}},
		BOM:      []BOMLine{{ItemCode: "BR01"}, {ItemCode: "BR02"}},
	}
	assert.Equal(t, 3, b.Len())
}

// setupTestDB starts a Postgres container, applies the migrations and returns a pool
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping database test in short mode (requires Docker)")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err, "Failed to start postgres container")
	t.Cleanup(func() { testcontainers.TerminateContainer(container) })

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "Failed to get connection string")

	applied, err := Migrate(ctx, connStr)
	require.NoError(t, err, "Failed to run migrations")
	assert.Equal(t, []string{"001_init.sql"}, applied)

	// second run is a no-op
	applied, err = Migrate(ctx, connStr)
	require.NoError(t, err)
	assert.Empty(t, applied)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err, "Failed to create connection pool")
	t.Cleanup(pool.Close)

	return pool
}

func TestApplyBatchIntegration(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()

	unit := "kg"
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	batch := &Batch{
		Products: []Product{{
			Code:     "MEHL550",
			Name:     "Weizenmehl Type 550",
			Unit:     &unit,
			UnitCost: decimal.NewNullDecimal(decimal.RequireFromString("0.89")),
		}},
		Items: []Item{{Code: "BR01", Name: "Bauernbrot"}},
		BOM: []BOMLine{{
			ItemCode: "BR01", ProductCode: "MEHL550", Qty: decimal.RequireFromString("0.75"), Unit: &unit,
		}},
		Production: []ProductionEntry{{Date: day, ItemCode: "BR01", TotalQty: decimal.NewFromInt(120)}},
		Allocations: []Allocation{
			{Date: day, ItemCode: "BR01", ShopCode: "F01", Qty: decimal.NewFromInt(40)},
			{Date: day, ItemCode: "BR01", ShopCode: "F02", Qty: decimal.NewFromInt(80)},
		},
	}

	tx, err := pool.Begin(ctx)
	require.NoError(t, err)
	stats, err := ApplyBatch(ctx, tx, batch)
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))

	assert.Equal(t, 1, stats.Products)
	assert.Equal(t, 2, stats.Allocations)
	assert.ElementsMatch(t, []string{"F01", "F02"}, stats.RegisteredShops)

	// re-applying updates in place and registers nothing new
	batch.Products[0].UnitCost = decimal.NewNullDecimal(decimal.RequireFromString("0.95"))
	stats, err = ApplyBatch(ctx, pool, batch)
	require.NoError(t, err)
	assert.Empty(t, stats.RegisteredShops)

	var cost string
	require.NoError(t, pool.QueryRow(ctx, `SELECT unit_cost::text FROM products WHERE code = 'MEHL550'`).Scan(&cost))
	assert.Equal(t, "0.9500", cost)

	var allocations int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM allocations`).Scan(&allocations))
	assert.Equal(t, 2, allocations)

	shops, err := ListShops(ctx, pool)
	require.NoError(t, err)
	require.Len(t, shops, 2)
	assert.Equal(t, "pending", shops[0].Status)
	assert.Equal(t, "Filiale F01", shops[0].Name)
}

func TestImportRunsIntegration(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()

	id, err := CreateRun(ctx, pool, "rohwaren.xlsx", "abc123", "uploads/ab/abc123.xlsx", "xlsx")
	require.NoError(t, err)

	run, err := GetRun(ctx, pool, id)
	require.NoError(t, err)
	assert.Equal(t, RunStatusRunning, run.Status)
	assert.Nil(t, run.CompletedAt)

	err = FinishRun(ctx, pool, id, RunOutcome{
		Status:  RunStatusCompleted,
		Applied: true,
		Counts:  map[string]int{"products": 3},
		Errors:  []string{`sheet "Notizen": no recognizable table`},
	})
	require.NoError(t, err)

	run, err = GetRun(ctx, pool, id)
	require.NoError(t, err)
	assert.Equal(t, RunStatusCompleted, run.Status)
	assert.True(t, run.Applied)
	assert.Equal(t, 3, run.Counts["products"])
	assert.Equal(t, []string{`sheet "Notizen": no recognizable table`}, run.Errors)
	assert.NotNil(t, run.CompletedAt)

	prev, err := FindRunByChecksum(ctx, pool, "abc123")
	require.NoError(t, err)
	require.NotNil(t, prev)
	assert.Equal(t, id, prev.ID)

	runs, total, err := ListRuns(ctx, pool, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, runs, 1)

	_, err = GetRun(ctx, pool, "not-a-uuid")
	assert.ErrorIs(t, err, ErrRunNotFound)

	err = FinishRun(ctx, pool, "00000000-0000-0000-0000-000000000000", RunOutcome{Status: RunStatusFailed})
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestRunMaintenanceIntegration(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	now := time.Now()

	backdate := func(id string, age time.Duration) {
		_, err := pool.Exec(ctx, `UPDATE import_runs SET started_at = $2 WHERE id = $1`, id, now.Add(-age))
		require.NoError(t, err)
	}
	finish := func(id string) {
		require.NoError(t, FinishRun(ctx, pool, id, RunOutcome{Status: RunStatusCompleted}))
	}

	stale, err := CreateRun(ctx, pool, "haengt.xlsx", "s1", "uploads/s1/s1.xlsx", "xlsx")
	require.NoError(t, err)
	backdate(stale, 2*time.Hour)

	fresh, err := CreateRun(ctx, pool, "laeuft.xlsx", "f1", "", "xlsx")
	require.NoError(t, err)

	// two old runs of the same upload share one archive, a newer one keeps it alive
	oldA, err := CreateRun(ctx, pool, "plan.xlsx", "p1", "uploads/p1/p1.xlsx", "xlsx")
	require.NoError(t, err)
	finish(oldA)
	backdate(oldA, 100*24*time.Hour)

	oldB, err := CreateRun(ctx, pool, "alt.csv", "a1", "uploads/a1/a1.csv", "csv")
	require.NoError(t, err)
	finish(oldB)
	backdate(oldB, 120*24*time.Hour)

	recent, err := CreateRun(ctx, pool, "plan.xlsx", "p1", "uploads/p1/p1.xlsx", "xlsx")
	require.NoError(t, err)
	finish(recent)

	failed, err := FailStaleRuns(ctx, pool, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, failed)

	run, err := GetRun(ctx, pool, stale)
	require.NoError(t, err)
	assert.Equal(t, RunStatusFailed, run.Status)
	require.NotNil(t, run.ErrorMessage)

	run, err = GetRun(ctx, pool, fresh)
	require.NoError(t, err)
	assert.Equal(t, RunStatusRunning, run.Status)

	// the stale run is failed now but still inside the retention window
	deleted, keys, err := PruneRuns(ctx, pool, now.Add(-90*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)
	assert.Equal(t, []string{"uploads/a1/a1.csv"}, keys)

	_, err = GetRun(ctx, pool, oldA)
	assert.ErrorIs(t, err, ErrRunNotFound)
	_, err = GetRun(ctx, pool, recent)
	assert.NoError(t, err)

	deleted, keys, err = PruneRuns(ctx, pool, now.Add(-90*24*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, deleted)
	assert.Empty(t, keys)
}
