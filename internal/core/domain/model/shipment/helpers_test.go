package shipment_test

import (
	"testing"
	"time"

	"cmr/internal/core/domain/model/kernel"
	"cmr/internal/core/domain/model/shipment"

	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2026, time.March, 2, 8, 0, 0, 0, time.UTC)

func at(hours int) time.Time {
	return baseTime.Add(time.Duration(hours) * time.Hour)
}

func newShipment(t *testing.T) *shipment.Shipment {
	t.Helper()
	s, err := shipment.NewShipment(kernel.NewUUID())
	require.NoError(t, err)
	return s
}

// shipmentAtStep records the first step milestones in order.
func shipmentAtStep(t *testing.T, step int) *shipment.Shipment {
	t.Helper()
	s := newShipment(t)
	for i := 1; i <= step; i++ {
		var pickup *shipment.PickupDetails
		if i == 1 {
			pickup = &shipment.PickupDetails{ServiceProvider: "Rhenus", DeliveryAddress: "Hamburg Port 7"}
		}
		require.NoError(t, s.RecordMilestone(shipment.MilestoneSlot(i), at(i), "", pickup))
	}
	return s
}

func withOpenException(t *testing.T, step int) *shipment.Shipment {
	t.Helper()
	s := shipmentAtStep(t, step)
	require.NoError(t, s.ApplyExceptionAction(shipment.ActionReport, "customs hold", "ops", at(10)))
	return s
}
