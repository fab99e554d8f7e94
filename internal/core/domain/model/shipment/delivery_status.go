package shipment

import (
	"fmt"
	"strings"

	"cmr/internal/pkg/errs"
)

// DeliveryStatus is the state of the delivery state machine.
// It is never set directly: Shipment derives it from the milestone ledger and
// the exception track after every change (see deriveStatus).
type DeliveryStatus int

const (
	// UnknownStatus catches uninitialized values.
	UnknownStatus DeliveryStatus = iota

	// NotStarted means no milestone has been recorded yet.
	NotStarted

	// InTransit means pickup happened and the confirmed delivery has not.
	InTransit

	// Delivered means all five milestones are recorded and no exception is open.
	Delivered

	// Exception means an exception is Reported or Following.
	Exception

	// ExceptionClosed means the exception track terminated the shipment.
	ExceptionClosed
)

var deliveryStatusNames = map[DeliveryStatus]string{
	NotStarted:      "NotStarted",
	InTransit:       "InTransit",
	Delivered:       "Delivered",
	Exception:       "Exception",
	ExceptionClosed: "ExceptionClosed",
}

// Validate rejects UnknownStatus and out-of-range values read from storage.
func (s DeliveryStatus) Validate() error {
	if _, ok := deliveryStatusNames[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause(
			"delivery status is invalid",
			fmt.Errorf("%d is not a valid delivery status", s),
		)
	}
	return nil
}

// String returns the status name, or "Unknown" for invalid values.
func (s DeliveryStatus) String() string {
	if name, ok := deliveryStatusNames[s]; ok {
		return name
	}
	return "Unknown"
}

// IsTerminal reports whether the status accepts no further delivery events.
// Delivered is not terminal: it still accepts ReportException and MarkCompleted.
func (s DeliveryStatus) IsTerminal() bool {
	return s == ExceptionClosed
}

// ParseDeliveryStatus is the inverse of String, case-insensitive.
func ParseDeliveryStatus(name string) (DeliveryStatus, error) {
	for status, n := range deliveryStatusNames {
		if strings.EqualFold(n, name) {
			return status, nil
		}
	}
	return UnknownStatus, errs.NewValueIsInvalidErrorWithCause(
		"delivery status is invalid",
		fmt.Errorf("%q is not a valid delivery status", name),
	)
}

// deriveStatus computes the delivery status from its two inputs.
// The exception track wins over the ledger while it is live or closed.
func deriveStatus(currentStep int, exception *ExceptionState) DeliveryStatus {
	if exception != nil {
		switch {
		case exception.status.IsLive():
			return Exception
		case exception.status == Closed:
			return ExceptionClosed
		}
	}

	switch currentStep {
	case 0:
		return NotStarted
	case MilestoneCount:
		return Delivered
	default:
		return InTransit
	}
}
