package repos

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/brightpath/assessment-engine/internal/domain"
	"github.com/brightpath/assessment-engine/internal/pkg/dbctx"
	"github.com/brightpath/assessment-engine/internal/platform/logger"
)

// openTestDB connects to the database named by TEST_POSTGRES_DSN and runs the
// migrations. Tests are skipped when the variable is unset so the suite stays
// runnable without infrastructure.
func openTestDB(tb testing.TB) *gorm.DB {
	tb.Helper()

	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		tb.Skip("TEST_POSTGRES_DSN not set")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		tb.Fatalf("open postgres: %v", err)
	}
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		tb.Fatalf("enable uuid-ossp: %v", err)
	}
	if err := db.AutoMigrate(
		&domain.ItemPool{},
		&domain.PoolItem{},
		&domain.TestSession{},
		&domain.SessionResponse{},
		&domain.CalibrationProposal{},
	); err != nil {
		tb.Fatalf("migrate: %v", err)
	}
	return db
}

// testTx yields a dbctx bound to a transaction that is rolled back when the
// test finishes, so tests never leak rows into the shared database.
func testTx(tb testing.TB, db *gorm.DB) dbctx.Context {
	tb.Helper()

	tx := db.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin: %v", tx.Error)
	}
	tb.Cleanup(func() { tx.Rollback() })
	return dbctx.Context{Ctx: context.Background(), Tx: tx}
}

func newTestLogger(tb testing.TB) *logger.Logger {
	tb.Helper()
	log, err := logger.New("development")
	if err != nil {
		tb.Fatalf("new logger: %v", err)
	}
	tb.Cleanup(log.Sync)
	return log
}

func seedPool(tb testing.TB, dbc dbctx.Context, pools PoolRepo, items ItemRepo, n int) (*domain.ItemPool, []*domain.PoolItem) {
	tb.Helper()

	pool := &domain.ItemPool{
		ID:       uuid.New(),
		TenantID: uuid.New(),
		Name:     "seed pool",
		Subject:  "math",
	}
	if err := pools.Create(dbc, pool); err != nil {
		tb.Fatalf("create pool: %v", err)
	}

	seeded := make([]*domain.PoolItem, 0, n)
	for i := 0; i < n; i++ {
		seeded = append(seeded, &domain.PoolItem{
			ID:             uuid.New(),
			PoolID:         pool.ID,
			ItemType:       domain.ItemTypeMultipleChoice,
			PromptMD:       "prompt",
			CorrectAnswer:  []byte(`{"choice_id":"a"}`),
			Topic:          "algebra",
			Difficulty:     -1 + 2*float64(i)/float64(n),
			Discrimination: 1.0,
			Guessing:       0.2,
			IsActive:       true,
			ReviewStatus:   domain.ReviewStatusApproved,
		})
	}
	if err := items.CreateBatch(dbc, seeded); err != nil {
		tb.Fatalf("create items: %v", err)
	}
	return pool, seeded
}
