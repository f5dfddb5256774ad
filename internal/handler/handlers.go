// Package handler is the first layer after the router.
//
// It binds request bodies, validates them through the validation package
// and calls the service layer, acting as the interface between HTTP and
// the query logic.
package handler

import (
	"github.com/deppfellow/tokenfarms-api/internal/server"
	"github.com/deppfellow/tokenfarms-api/internal/service"
)

// Handlers groups every HTTP handler so router setup passes one value around.
type Handlers struct {
	Farm    *FarmHandler
	Health  *HealthHandler
	OpenAPI *OpenAPIHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Farm:    NewFarmHandler(s, services.Farms),
		Health:  NewHealthHandler(s),
		OpenAPI: NewOpenAPIHandler(s),
	}
}
