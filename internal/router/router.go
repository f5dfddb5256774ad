// Package router initializes the HTTP router (using Echo).
//
// It registers the middlewares and maps every path to its handler.
package router

import (
	"net/http"

	"github.com/deppfellow/tokenfarms-api/internal/handler"
	"github.com/deppfellow/tokenfarms-api/internal/middleware"
	"github.com/deppfellow/tokenfarms-api/internal/server"
	"github.com/labstack/echo/v4"
)

func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true

	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	router.Use(
		middleware.RequestID(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
		middlewares.Global.CORS(),
		middlewares.Global.Secure(),
		middlewares.Global.BodyLimit(),
	)

	registerSystemRoutes(router, h)
	registerFarmRoutes(router, h)

	return router
}

func registerFarmRoutes(r *echo.Echo, h *handler.Handlers) {
	r.POST("/get-farm", handler.Handle(h.Farm.GetFarm, http.StatusOK))
	r.POST("/get-farms", handler.Handle(h.Farm.GetFarms, http.StatusOK))
	r.POST("/get-stakers", handler.Handle(h.Farm.GetStakers, http.StatusOK))
	r.POST("/staked-only", handler.Handle(h.Farm.GetStakedFarms, http.StatusOK))
}
