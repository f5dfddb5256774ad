package handler

import (
	"github.com/deppfellow/tokenfarms-api/internal/model"
	"github.com/deppfellow/tokenfarms-api/internal/server"
	"github.com/deppfellow/tokenfarms-api/internal/service"
	"github.com/labstack/echo/v4"
)

// FarmHandler serves the four query endpoints. The request context is
// handed down so a disconnecting client cancels its query.
type FarmHandler struct {
	Handler
	farms *service.FarmService
}

func NewFarmHandler(s *server.Server, farms *service.FarmService) *FarmHandler {
	return &FarmHandler{
		Handler: NewHandler(s),
		farms:   farms,
	}
}

func (h *FarmHandler) GetFarm(c echo.Context, req *model.GetFarmRequest) (*model.FarmResponse, error) {
	return h.farms.GetFarm(c.Request().Context(), req)
}

func (h *FarmHandler) GetFarms(c echo.Context, req *model.GetFarmsRequest) (*model.FarmsResponse, error) {
	return h.farms.GetFarms(c.Request().Context(), req)
}

func (h *FarmHandler) GetStakers(c echo.Context, req *model.GetStakersRequest) (*model.StakersResponse, error) {
	return h.farms.GetStakers(c.Request().Context(), req)
}

func (h *FarmHandler) GetStakedFarms(c echo.Context, req *model.StakedFarmsRequest) (*model.FarmsResponse, error) {
	return h.farms.GetStakedFarms(c.Request().Context(), req)
}
