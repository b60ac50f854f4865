package http

import (
	"github.com/nats-io/nats.go"

	"github.com/jmdelacruz/lotlocate/internal/adapters/postgres"
	"github.com/jmdelacruz/lotlocate/internal/adapters/valkey"
	"github.com/jmdelacruz/lotlocate/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Plots *usecases.PlotService
	Refs  *usecases.ReferenceService
	NATS  *nats.Conn
	DB    *postgres.DB
	Cache *valkey.Cache
}
