package ports

import (
	"context"

	"github.com/aretw0/waypoint/pkg/domain"
)

// TemplateSource supplies quick templates for the editor catalog.
type TemplateSource interface {
	Templates(ctx context.Context) ([]domain.Template, error)
}
