package queries

import (
	"context"
	"sort"
)

type GetStaleExceptionsQueryHandler struct {
	reader ShipmentReader
}

func NewGetStaleExceptionsQueryHandler(reader ShipmentReader) GetStaleExceptionsQueryHandler {
	return GetStaleExceptionsQueryHandler{reader: reader}
}

// Handle returns stale exceptions, oldest activity first.
func (h GetStaleExceptionsQueryHandler) Handle(
	ctx context.Context,
	query GetStaleExceptionsQuery,
) ([]GetStaleExceptionsQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	stale, err := h.reader.GetStaleExceptions(ctx, query.Before())
	if err != nil {
		return nil, err
	}

	response := make([]GetStaleExceptionsQueryResponse, 0, len(stale))
	for _, s := range stale {
		exception := s.Exception()
		if exception == nil || !exception.Status().IsLive() {
			continue
		}
		response = append(response, GetStaleExceptionsQueryResponse{
			ShipmentID:      s.ID(),
			ExceptionStatus: exception.Status().String(),
			Note:            exception.Note(),
			ReportedAt:      exception.ReportedAt(),
			LastActivityAt:  exception.LastActivityAt(),
		})
	}

	sort.SliceStable(response, func(i, j int) bool {
		return response[i].LastActivityAt.Before(response[j].LastActivityAt)
	})
	return response, nil
}
