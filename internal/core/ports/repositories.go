package ports

import (
	"context"

	"github.com/jmdelacruz/lotlocate/internal/core/domain"
)

// ReferencePointRepository provides the survey monument table. Implementations
// must return the list deduplicated by display name and sorted by it.
type ReferencePointRepository interface {
	List(ctx context.Context) ([]domain.ReferencePoint, error)
}
