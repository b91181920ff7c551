package core

import (
	"fmt"
	"os"

	"obracore/internal/infra/persistence/memory"
	"obracore/internal/infra/persistence/postgres"
	"obracore/internal/infra/persistence/sqlite"
	"obracore/pkg/domain"
)

// StorageDriver identifies a concrete persistent storage implementation.
type StorageDriver string

// Supported storage drivers.
const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (default)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite snapshot mirror
	StoragePostgres StorageDriver = "postgres" // PostgreSQL snapshot mirror
)

type (
	// Transaction is an alias of domain.Transaction.
	Transaction = domain.Transaction
	// TransactionView is an alias of domain.TransactionView.
	TransactionView = domain.TransactionView
	// PersistentStore is an alias of domain.PersistentStore.
	PersistentStore = domain.PersistentStore
	// RulesEngine is an alias of domain.RulesEngine.
	RulesEngine = domain.RulesEngine
	// Result is an alias of domain.Result.
	Result = domain.Result
)

// NewRulesEngine constructs an empty rules engine.
func NewRulesEngine() *RulesEngine { return domain.NewRulesEngine() }

// OpenPersistentStore selects a backend using environment variables. The
// in-memory store is the default; the sql drivers mirror its state and add no
// semantics of their own.
//
//	OBRACORE_STORAGE_DRIVER: memory|sqlite|postgres (default memory)
//	OBRACORE_SQLITE_PATH: path to sqlite file (default ./obracore.db)
//	OBRACORE_POSTGRES_DSN: postgres DSN when driver=postgres
func OpenPersistentStore(engine *RulesEngine) (PersistentStore, error) {
	driver := os.Getenv("OBRACORE_STORAGE_DRIVER")
	if driver == "" {
		driver = string(StorageMemory)
	}
	switch StorageDriver(driver) {
	case StorageMemory:
		return memory.NewStore(engine), nil
	case StorageSQLite:
		return sqlite.NewStore(os.Getenv("OBRACORE_SQLITE_PATH"), engine)
	case StoragePostgres:
		return postgres.NewStore(os.Getenv("OBRACORE_POSTGRES_DSN"), engine)
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}
