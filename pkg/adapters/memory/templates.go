package memory

import (
	"context"

	"github.com/aretw0/waypoint/pkg/domain"
)

// Templates is a fixed ports.TemplateSource, handy for tests and embedding.
type Templates []domain.Template

// Templates returns a copy of the fixed set.
func (t Templates) Templates(context.Context) ([]domain.Template, error) {
	return append([]domain.Template(nil), t...), nil
}
