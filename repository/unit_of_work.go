package repository

import (
	"context"
	"fmt"

	"encore/database"
	"encore/service"

	"github.com/jackc/pgx/v5"
)

// unitOfWork implements the UnitOfWork interface
type unitOfWork struct {
	db            *database.DB
	tx            pgx.Tx
	ctx           context.Context
	artistRepo    service.ArtistRepository
	streamRunRepo service.StreamRunRepository
}

type unitOfWorkFactory struct {
	db *database.DB
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB) service.UnitOfWorkFactory {
	return &unitOfWorkFactory{db: db}
}

func (f *unitOfWorkFactory) Create() service.UnitOfWork {
	return &unitOfWork{db: f.db}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	// Create repositories with the transaction
	u.artistRepo = newArtistRepositoryWithTx(tx)
	u.streamRunRepo = newStreamRunRepositoryWithTx(tx)

	return nil
}

// Commit commits the transaction
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	if err := u.tx.Commit(u.ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil
	return nil
}

// Rollback rolls back the transaction. Safe to call after Commit; it
// becomes a no-op, which makes `defer uow.Rollback()` the standard usage.
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil
	}

	err := u.tx.Rollback(u.ctx)
	u.tx = nil
	if err != nil && err != pgx.ErrTxClosed {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	return nil
}

// ArtistRepository returns the transaction-scoped artist repository
func (u *unitOfWork) ArtistRepository() service.ArtistRepository {
	if u.artistRepo == nil {
		panic("unit of work not started")
	}
	return u.artistRepo
}

// StreamRunRepository returns the transaction-scoped stream run repository
func (u *unitOfWork) StreamRunRepository() service.StreamRunRepository {
	if u.streamRunRepo == nil {
		panic("unit of work not started")
	}
	return u.streamRunRepo
}
