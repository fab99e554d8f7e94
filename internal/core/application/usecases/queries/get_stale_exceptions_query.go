package queries

import (
	"errors"
	"time"

	"cmr/internal/core/domain/model/kernel"
	"cmr/internal/pkg/errs"
	"cmr/internal/pkg/guard"
)

var ErrGetStaleExceptionsQueryIsNotConstructed = errors.New(
	"GetStaleExceptionsQuery must be created via NewGetStaleExceptionsQuery constructor",
)

// GetStaleExceptionsQuery finds live exceptions with no audit activity since before.
type GetStaleExceptionsQuery struct {
	before time.Time

	guard guard.ConstructorGuard
}

func NewGetStaleExceptionsQuery(before time.Time) (GetStaleExceptionsQuery, error) {
	if before.IsZero() {
		return GetStaleExceptionsQuery{}, errs.NewValueIsRequiredError("before")
	}
	return GetStaleExceptionsQuery{
		before: before,
		guard:  guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetStaleExceptionsQuery) Validate() error {
	return q.guard.Validate(ErrGetStaleExceptionsQueryIsNotConstructed)
}

func (q GetStaleExceptionsQuery) Before() time.Time {
	return q.before
}

type GetStaleExceptionsQueryResponse struct {
	ShipmentID      kernel.UUID
	ExceptionStatus string
	Note            string
	ReportedAt      time.Time
	LastActivityAt  time.Time
}
