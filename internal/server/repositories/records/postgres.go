package records

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/tripsync/internal/dbx"
	"github.com/dmitrijs2005/tripsync/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert writes one device's payload for a data type, replacing any previous
// row for the same (user, device, data type) key.
func (r *PostgresRepository) Upsert(ctx context.Context, rec *models.SyncRecord) error {

	query :=
		`INSERT INTO sync_records (user_id, device_id, data_type, payload, last_updated, version)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (user_id, device_id, data_type)
		 DO UPDATE SET payload = EXCLUDED.payload,
		               last_updated = EXCLUDED.last_updated,
		               version = EXCLUDED.version
		 `

	_, err := r.db.ExecContext(ctx, query,
		rec.UserID, rec.DeviceID, rec.DataType, []byte(rec.Payload), rec.LastUpdated, rec.Version)

	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) GetByType(ctx context.Context, userID, dataType string) ([]models.SyncRecord, error) {
	query :=
		`SELECT id, user_id, device_id, data_type, payload, last_updated, version
		 FROM sync_records
		 WHERE user_id = $1 AND data_type = $2
		 ORDER BY device_id
		 `

	rows, err := r.db.QueryContext(ctx, query, userID, dataType)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

func (r *PostgresRepository) GetAll(ctx context.Context, userID string) ([]models.SyncRecord, error) {
	query :=
		`SELECT id, user_id, device_id, data_type, payload, last_updated, version
		 FROM sync_records
		 WHERE user_id = $1
		 ORDER BY data_type, device_id
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, deviceID, dataType string) error {
	query :=
		`DELETE FROM sync_records
		 WHERE user_id = $1 AND device_id = $2 AND data_type = $3
		 `

	if _, err := r.db.ExecContext(ctx, query, userID, deviceID, dataType); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteAll(ctx context.Context, userID string) error {
	query := `DELETE FROM sync_records WHERE user_id = $1`

	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func scanRecords(rows *sql.Rows) ([]models.SyncRecord, error) {
	var result []models.SyncRecord
	for rows.Next() {
		var rec models.SyncRecord
		var payload []byte
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.DeviceID, &rec.DataType,
			&payload, &rec.LastUpdated, &rec.Version); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		rec.Payload = payload
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
