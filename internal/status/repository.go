package status

import "context"

// Repository persists the latest status record, one row per product.
type Repository interface {
	// Get retrieves the record for a product. Returns ErrRecordNotFound
	// when no poll has ever stored one.
	Get(ctx context.Context, product string) (*Record, error)

	// Put replaces the record for record.Product. Idempotent upsert.
	Put(ctx context.Context, record *Record) error

	// TouchLastUpdate sets only the last_update field of an existing
	// record, leaving every other field untouched.
	TouchLastUpdate(ctx context.Context, product, lastUpdate string) error
}
