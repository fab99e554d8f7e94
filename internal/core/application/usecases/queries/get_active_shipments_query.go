package queries

import (
	"errors"

	"cmr/internal/core/domain/model/kernel"
	"cmr/internal/pkg/guard"
)

var ErrGetActiveShipmentsQueryIsNotConstructed = errors.New(
	"GetActiveShipmentsQuery must be created via NewGetActiveShipmentsQuery constructor",
)

// GetActiveShipmentsQuery lists shipments that still accept changes: neither
// completed nor exception-closed.
type GetActiveShipmentsQuery struct {
	guard guard.ConstructorGuard
}

func NewGetActiveShipmentsQuery() GetActiveShipmentsQuery {
	return GetActiveShipmentsQuery{guard: guard.NewConstructorGuard()}
}

// Validate ensures the query was created through the constructor.
func (q GetActiveShipmentsQuery) Validate() error {
	return q.guard.Validate(ErrGetActiveShipmentsQueryIsNotConstructed)
}

// GetActiveShipmentsQueryResponse is one row of the active shipment list.
type GetActiveShipmentsQueryResponse struct {
	ID              kernel.UUID
	DeliveryStatus  string
	CurrentStep     int
	ServiceProvider string
	Version         int64
}
