package queries

import (
	"context"
)

type GetActiveShipmentsQueryHandler struct {
	reader ShipmentReader
}

func NewGetActiveShipmentsQueryHandler(reader ShipmentReader) GetActiveShipmentsQueryHandler {
	return GetActiveShipmentsQueryHandler{reader: reader}
}

// Handle returns the active shipments ordered by id. The result is never nil.
func (h GetActiveShipmentsQueryHandler) Handle(
	ctx context.Context,
	query GetActiveShipmentsQuery,
) ([]GetActiveShipmentsQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	active, err := h.reader.GetAllActive(ctx)
	if err != nil {
		return nil, err
	}

	response := make([]GetActiveShipmentsQueryResponse, 0, len(active))
	for _, s := range active {
		response = append(response, GetActiveShipmentsQueryResponse{
			ID:              s.ID(),
			DeliveryStatus:  s.Status().String(),
			CurrentStep:     s.CurrentStep(),
			ServiceProvider: s.ServiceProvider(),
			Version:         s.Version(),
		})
	}
	return response, nil
}
