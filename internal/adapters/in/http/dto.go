package http

import (
	"time"

	"cmr/internal/core/application/usecases/queries"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

// Request and response bodies of the shipment API, mirroring openapi.yaml.

type NewShipment struct {
	ID *openapi_types.UUID `json:"id,omitempty"`
}

type ShipmentID struct {
	ID openapi_types.UUID `json:"id"`
}

type ActiveShipment struct {
	ID              openapi_types.UUID `json:"id"`
	DeliveryStatus  string             `json:"deliveryStatus"`
	CurrentStep     int                `json:"currentStep"`
	ServiceProvider string             `json:"serviceProvider,omitempty"`
	Version         int64              `json:"version"`
}

type SnapshotsRequest struct {
	IDs []openapi_types.UUID `json:"ids"`
}

type SnapshotsResponse struct {
	Results []SnapshotResult `json:"results"`
}

// SnapshotResult carries either Snapshot or Error.
type SnapshotResult struct {
	ShipmentID openapi_types.UUID        `json:"shipmentId"`
	Snapshot   *queries.DeliverySnapshot `json:"snapshot,omitempty"`
	Error      *Error                    `json:"error,omitempty"`
}

// MilestoneUpdate records a milestone, an exception action, or both. Slot may be
// omitted when Exception is set. A missing Timestamp means now.
type MilestoneUpdate struct {
	Slot            *int            `json:"slot,omitempty"`
	Timestamp       *time.Time      `json:"timestamp,omitempty"`
	Note            string          `json:"note,omitempty"`
	ServiceProvider string          `json:"serviceProvider,omitempty"`
	DeliveryAddress string          `json:"deliveryAddress,omitempty"`
	Exception       *ExceptionInput `json:"exception,omitempty"`
}

type ExceptionInput struct {
	Action string `json:"action"`
	Note   string `json:"note,omitempty"`
	Actor  string `json:"actor,omitempty"`
}

type ExceptionActionRequest struct {
	Action    string     `json:"action"`
	Note      string     `json:"note,omitempty"`
	Actor     string     `json:"actor,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}
