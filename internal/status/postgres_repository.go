package status

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL status repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Get retrieves the record for a product.
func (r *PostgresRepository) Get(ctx context.Context, product string) (*Record, error) {
	query := `
		SELECT
			product, system_id, system_service,
			service_status, maintenance, affected_env,
			maintenance_start, maintenance_stop, maintenance_message,
			maintenance_date, last_update, raw_api_response
		FROM status_records
		WHERE product = $1
	`

	var (
		record      Record
		maintenance string
	)
	err := r.pool.QueryRow(ctx, query, product).Scan(
		&record.Product,
		&record.SystemID,
		&record.SystemService,
		&record.ServiceStatus,
		&maintenance,
		&record.AffectedEnv,
		&record.MaintenanceStart,
		&record.MaintenanceStop,
		&record.MaintenanceMessage,
		&record.MaintenanceDate,
		&record.LastUpdate,
		&record.RawAPIResponse,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	record.Maintenance = ParseMaintenanceFlag(maintenance)
	return &record, nil
}

// Put replaces the record for record.Product.
func (r *PostgresRepository) Put(ctx context.Context, record *Record) error {
	query := `
		INSERT INTO status_records (
			product, system_id, system_service,
			service_status, maintenance, affected_env,
			maintenance_start, maintenance_stop, maintenance_message,
			maintenance_date, last_update, raw_api_response
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (product) DO UPDATE SET
			system_id = EXCLUDED.system_id,
			system_service = EXCLUDED.system_service,
			service_status = EXCLUDED.service_status,
			maintenance = EXCLUDED.maintenance,
			affected_env = EXCLUDED.affected_env,
			maintenance_start = EXCLUDED.maintenance_start,
			maintenance_stop = EXCLUDED.maintenance_stop,
			maintenance_message = EXCLUDED.maintenance_message,
			maintenance_date = EXCLUDED.maintenance_date,
			last_update = EXCLUDED.last_update,
			raw_api_response = EXCLUDED.raw_api_response
	`

	_, err := r.pool.Exec(ctx, query,
		record.Product,
		record.SystemID,
		record.SystemService,
		record.ServiceStatus,
		record.Maintenance.String(),
		record.AffectedEnv,
		record.MaintenanceStart,
		record.MaintenanceStop,
		record.MaintenanceMessage,
		record.MaintenanceDate,
		record.LastUpdate,
		record.RawAPIResponse,
	)
	return err
}

// TouchLastUpdate sets only last_update for an existing record.
func (r *PostgresRepository) TouchLastUpdate(ctx context.Context, product, lastUpdate string) error {
	query := `UPDATE status_records SET last_update = $2 WHERE product = $1`

	result, err := r.pool.Exec(ctx, query, product, lastUpdate)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
