package records

import (
	"context"

	"github.com/dmitrijs2005/tripsync/internal/server/models"
)

type Repository interface {
	Upsert(ctx context.Context, rec *models.SyncRecord) error
	GetByType(ctx context.Context, userID, dataType string) ([]models.SyncRecord, error)
	GetAll(ctx context.Context, userID string) ([]models.SyncRecord, error)
	Delete(ctx context.Context, userID, deviceID, dataType string) error
	DeleteAll(ctx context.Context, userID string) error
}
