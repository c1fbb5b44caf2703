package repository

import (
	"testing"

	"github.com/kisanpay/kisanpay/pkg/pg"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// AllEntities lists every table the ledger owns, in dependency order.
func AllEntities() []any {
	return []any{
		&CustomerEntity{},
		&AccountEntity{},
		&TransactionEntity{},
		&ProductEntity{},
		&InventoryEntity{},
		&OrderEntity{},
		&OrderDetailEntity{},
		&ManagerEntity{},
		&LoanEntity{},
		&BillEntity{},
	}
}

type testDB struct {
	*pg.DB
}

func setupTestDB(t *testing.T) *testDB {
	t.Helper()
	return &testDB{DB: NewTestDB(t)}
}

// NewTestDB opens a private in-memory SQLite database with the full schema.
// A single connection serialises transactions the way row locks do on Postgres.
func NewTestDB(t testing.TB) *pg.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(AllEntities()...))

	return pg.New(db, db)
}
