package ports

import (
	"context"

	"github.com/jmdelacruz/lotlocate/internal/core/domain"
)

// Transform converts a coordinate pair between two reference systems.
// The forward direction maps projected (easting, northing) to geographic
// (longitude, latitude); the inverse maps back.
type Transform func(x, y float64) (float64, float64, error)

// TransformerProvider builds reusable projected<->WGS84 transformer pairs for
// a target CRS given by EPSG code. Providers are expected to memoise pairs;
// building one is pure, so racing fills may recompute without harm.
type TransformerProvider interface {
	GetTransformers(targetEPSG string) (forward, inverse Transform, err error)
}

// CacheService provides read-through byte caching for serialisable data.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// EventPublisher pushes calculation summaries to realtime subscribers.
type EventPublisher interface {
	PublishPlotBatch(ctx context.Context, evt *domain.PlotBatchEvent) error
}
