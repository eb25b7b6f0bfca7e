package interfaces

import (
	"context"

	"referralhub/internal/models"
)

type ExportRepository interface {
	Create(ctx context.Context, export *models.Export) error
}
