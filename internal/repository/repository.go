// Package repository provides data access interfaces and implementations
// for the paper search service.
//
// # Overview
//
// This package defines repository interfaces and their PostgreSQL
// implementations following the repository pattern to abstract data
// persistence from business logic. The service persists papers discovered
// during searches so later analysis can work from a local corpus instead of
// re-querying the upstream APIs.
//
// # Thread Safety
//
// All repository implementations are safe for concurrent use by multiple
// goroutines. The underlying pgxpool handles connection pooling and
// synchronization.
//
// # Error Handling
//
// Methods return domain-specific errors from the domain package, wrapping
// database errors with fmt.Errorf and the %w verb. Common errors include:
//
//   - domain.ErrNotFound: Resource does not exist
//   - domain.ErrInvalidInput: Invalid parameters provided
//
// # Usage Pattern
//
// Repositories are typically created at application startup and passed to
// services:
//
//	db, _ := database.New(ctx, cfg, logger)
//	paperRepo := repository.NewPgPaperRepository(db)
package repository

import (
	"github.com/openscholar/paper-search-service/internal/database"
)

// DBTX is the database interface supporting both pool and transaction
// contexts. Repository constructors accept DBTX so the same implementation
// works against the connection pool, a pgx.Tx, or a mock in tests.
type DBTX = database.DBTX
