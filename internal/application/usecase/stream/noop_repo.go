package stream

import (
	"context"

	"pricetracker/internal/application/port"
)

type noopRepo struct{}

// NewNoopRepo returns a repository that keeps nothing; the default
// when no storage backend is configured.
func NewNoopRepo() port.Repository { return &noopRepo{} }

func (n *noopRepo) UpsertLatestPrice(ctx context.Context, symbol string, price float64, ts int64) error {
	return nil
}

func (n *noopRepo) Close() error { return nil }
