package http

import (
	"context"
	"net/http"
	"time"

	"cmr/internal/core/application/usecases/commands"
	"cmr/internal/core/application/usecases/queries"
	"cmr/internal/core/domain/model/kernel"
	"cmr/internal/core/domain/model/shipment"

	"github.com/labstack/echo/v4"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"go.uber.org/zap"
)

// HealthCheck reports whether the backing store is reachable.
type HealthCheck func(ctx context.Context) error

// Handlers groups the use cases served over HTTP.
type Handlers struct {
	RegisterShipment     commands.RegisterShipmentCommandHandler
	RecordMilestone      commands.RecordMilestoneCommandHandler
	ApplyExceptionAction commands.ApplyExceptionActionCommandHandler
	MarkCompleted        commands.MarkCompletedCommandHandler

	GetDeliverySnapshot  queries.GetDeliverySnapshotQueryHandler
	GetDeliverySnapshots queries.GetDeliverySnapshotsQueryHandler
	GetActiveShipments   queries.GetActiveShipmentsQueryHandler
}

// Server translates HTTP requests into commands and queries.
type Server struct {
	handlers Handlers
	health   HealthCheck
	now      func() time.Time
	logger   *zap.Logger
}

// NewServer creates the server. health may be nil.
func NewServer(handlers Handlers, health HealthCheck, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		handlers: handlers,
		health:   health,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   logger.With(zap.String("component", "http_server")),
	}
}

// Health handles GET /health.
func (s *Server) Health(c echo.Context) error {
	if s.health != nil {
		if err := s.health(c.Request().Context()); err != nil {
			return writeError(c, http.StatusServiceUnavailable, "unhealthy", err.Error(), true)
		}
	}
	return c.String(http.StatusOK, "Healthy")
}

// RegisterShipment handles POST /api/v1/shipments. Without an id in the body a
// new one is generated.
func (s *Server) RegisterShipment(c echo.Context) error {
	var body NewShipment
	if err := c.Bind(&body); err != nil {
		return writeError(c, http.StatusBadRequest, codeInvalidRequest, "invalid request body", false)
	}

	id := kernel.NewUUID()
	if body.ID != nil {
		parsed, err := toKernelUUID(*body.ID)
		if err != nil {
			return s.fail(c, err)
		}
		id = parsed
	}

	cmd, err := commands.NewRegisterShipmentCommand(id)
	if err != nil {
		return s.fail(c, err)
	}
	if err = s.handlers.RegisterShipment.Handle(c.Request().Context(), cmd); err != nil {
		return s.fail(c, err)
	}

	return c.JSON(http.StatusCreated, ShipmentID{ID: id.Bytes()})
}

// GetActiveShipments handles GET /api/v1/shipments/active.
func (s *Server) GetActiveShipments(c echo.Context) error {
	active, err := s.handlers.GetActiveShipments.Handle(c.Request().Context(), queries.NewGetActiveShipmentsQuery())
	if err != nil {
		return s.fail(c, err)
	}

	response := make([]ActiveShipment, len(active))
	for i, a := range active {
		response[i] = ActiveShipment{
			ID:              a.ID.Bytes(),
			DeliveryStatus:  a.DeliveryStatus,
			CurrentStep:     a.CurrentStep,
			ServiceProvider: a.ServiceProvider,
			Version:         a.Version,
		}
	}
	return c.JSON(http.StatusOK, response)
}

// GetDeliverySnapshots handles POST /api/v1/shipments/snapshots.
func (s *Server) GetDeliverySnapshots(c echo.Context) error {
	var body SnapshotsRequest
	if err := c.Bind(&body); err != nil {
		return writeError(c, http.StatusBadRequest, codeInvalidRequest, "invalid request body", false)
	}

	ids := make([]kernel.UUID, 0, len(body.IDs))
	for _, raw := range body.IDs {
		id, err := toKernelUUID(raw)
		if err != nil {
			return s.fail(c, err)
		}
		ids = append(ids, id)
	}

	query, err := queries.NewGetDeliverySnapshotsQuery(ids)
	if err != nil {
		return s.fail(c, err)
	}
	results, err := s.handlers.GetDeliverySnapshots.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, err)
	}

	response := SnapshotsResponse{Results: make([]SnapshotResult, len(results))}
	for i, r := range results {
		response.Results[i] = SnapshotResult{ShipmentID: r.ShipmentID.Bytes(), Snapshot: r.Snapshot}
		if r.Err != nil {
			_, body := toError(r.Err)
			response.Results[i].Error = &body
		}
	}
	return c.JSON(http.StatusOK, response)
}

// GetDeliverySnapshot handles GET /api/v1/shipments/{id}/delivery.
func (s *Server) GetDeliverySnapshot(c echo.Context, id kernel.UUID) error {
	query, err := queries.NewGetDeliverySnapshotQuery(id)
	if err != nil {
		return s.fail(c, err)
	}

	snapshot, err := s.handlers.GetDeliverySnapshot.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, snapshot)
}

// RecordMilestone handles POST /api/v1/shipments/{id}/milestones.
func (s *Server) RecordMilestone(c echo.Context, id kernel.UUID) error {
	var body MilestoneUpdate
	if err := c.Bind(&body); err != nil {
		return writeError(c, http.StatusBadRequest, codeInvalidRequest, "invalid request body", false)
	}

	var slot shipment.MilestoneSlot
	if body.Slot != nil {
		slot = shipment.MilestoneSlot(*body.Slot)
	}

	var pickup *shipment.PickupDetails
	if body.ServiceProvider != "" || body.DeliveryAddress != "" {
		pickup = &shipment.PickupDetails{
			ServiceProvider: body.ServiceProvider,
			DeliveryAddress: body.DeliveryAddress,
		}
	}

	var exception *commands.ExceptionInput
	if body.Exception != nil {
		action, err := shipment.ParseExceptionAction(body.Exception.Action)
		if err != nil {
			return s.fail(c, err)
		}
		exception = &commands.ExceptionInput{
			Action: action,
			Note:   body.Exception.Note,
			Actor:  body.Exception.Actor,
		}
	}

	cmd, err := commands.NewRecordMilestoneCommand(id, slot, s.timestamp(body.Timestamp), body.Note, pickup, exception)
	if err != nil {
		return s.fail(c, err)
	}

	updated, err := s.handlers.RecordMilestone.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, queries.NewDeliverySnapshot(updated))
}

// ApplyExceptionAction handles POST /api/v1/shipments/{id}/exception-actions.
func (s *Server) ApplyExceptionAction(c echo.Context, id kernel.UUID) error {
	var body ExceptionActionRequest
	if err := c.Bind(&body); err != nil {
		return writeError(c, http.StatusBadRequest, codeInvalidRequest, "invalid request body", false)
	}

	action, err := shipment.ParseExceptionAction(body.Action)
	if err != nil {
		return s.fail(c, err)
	}

	cmd, err := commands.NewApplyExceptionActionCommand(id, action, body.Note, body.Actor, s.timestamp(body.Timestamp))
	if err != nil {
		return s.fail(c, err)
	}

	exception, err := s.handlers.ApplyExceptionAction.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, queries.NewExceptionSnapshot(exception))
}

// MarkCompleted handles POST /api/v1/shipments/{id}/complete.
func (s *Server) MarkCompleted(c echo.Context, id kernel.UUID) error {
	cmd, err := commands.NewMarkCompletedCommand(id)
	if err != nil {
		return s.fail(c, err)
	}

	if err = s.handlers.MarkCompleted.Handle(c.Request().Context(), cmd); err != nil {
		return s.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// timestamp defaults a missing client timestamp to the server clock.
func (s *Server) timestamp(t *time.Time) time.Time {
	if t == nil || t.IsZero() {
		return s.now()
	}
	return t.UTC()
}

func toKernelUUID(id openapi_types.UUID) (kernel.UUID, error) {
	return kernel.UUIDFromBytes(id[:])
}
