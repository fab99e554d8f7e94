package http

import (
	"net/http"

	"cmr/internal/core/domain/model/kernel"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// ShipmentHandler serves a route with an {id} path parameter.
type ShipmentHandler func(c echo.Context, id kernel.UUID) error

// RegisterHandlers mounts the API, the contract and the Swagger UI on e.
func RegisterHandlers(e *echo.Echo, s *Server) {
	e.GET("/health", s.Health)
	e.GET("/openapi.yaml", func(c echo.Context) error {
		return c.Blob(http.StatusOK, "application/yaml", OpenAPISpec())
	})
	e.GET("/swagger/*", echoSwagger.EchoWrapHandler(echoSwagger.URL("/openapi.yaml")))

	g := e.Group("/api/v1/shipments")
	g.POST("", s.RegisterShipment)
	g.GET("/active", s.GetActiveShipments)
	g.POST("/snapshots", s.GetDeliverySnapshots)
	g.GET("/:id/delivery", withShipmentID(s.GetDeliverySnapshot))
	g.POST("/:id/milestones", withShipmentID(s.RecordMilestone))
	g.POST("/:id/exception-actions", withShipmentID(s.ApplyExceptionAction))
	g.POST("/:id/complete", withShipmentID(s.MarkCompleted))
}

func withShipmentID(next ShipmentHandler) echo.HandlerFunc {
	return func(c echo.Context) error {
		var raw openapi_types.UUID

		err := runtime.BindStyledParameterWithOptions("simple", "id", c.Param("id"), &raw,
			runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
		if err != nil {
			return writeError(c, http.StatusBadRequest, codeInvalidRequest,
				"invalid format for parameter id: "+err.Error(), false)
		}

		id, err := toKernelUUID(raw)
		if err != nil {
			return writeError(c, http.StatusBadRequest, codeInvalidRequest, err.Error(), false)
		}
		return next(c, id)
	}
}
