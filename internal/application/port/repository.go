package port

import "context"

type Repository interface {
	// UpsertLatestPrice stores the newest observed price for a symbol,
	// replacing any prior value.
	UpsertLatestPrice(ctx context.Context, symbol string, price float64, ts int64) error

	// Connection management
	Close() error
}
