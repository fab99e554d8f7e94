package shipment_test

import (
	"testing"
	"time"

	"cmr/internal/core/domain/model/shipment"
	"cmr/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExceptionStatus_Transitions(t *testing.T) {
	testCases := []struct {
		name     string
		from     shipment.ExceptionStatus
		apply    func(shipment.ExceptionStatus) (shipment.ExceptionStatus, error)
		expected shipment.ExceptionStatus
		wantErr  bool
	}{
		{"followup reported", shipment.Reported, shipment.ExceptionStatus.Followup, shipment.Following, false},
		{"followup following", shipment.Following, shipment.ExceptionStatus.Followup, shipment.Following, false},
		{"followup resolved", shipment.Resolved, shipment.ExceptionStatus.Followup, 0, true},
		{"followup closed", shipment.Closed, shipment.ExceptionStatus.Followup, 0, true},
		{"resolve reported", shipment.Reported, shipment.ExceptionStatus.Resolve, shipment.Resolved, false},
		{"resolve following", shipment.Following, shipment.ExceptionStatus.Resolve, shipment.Resolved, false},
		{"resolve resolved", shipment.Resolved, shipment.ExceptionStatus.Resolve, 0, true},
		{"close reported", shipment.Reported, shipment.ExceptionStatus.Close, shipment.Closed, false},
		{"close following", shipment.Following, shipment.ExceptionStatus.Close, shipment.Closed, false},
		{"close resolved", shipment.Resolved, shipment.ExceptionStatus.Close, shipment.Closed, false},
		{"close closed", shipment.Closed, shipment.ExceptionStatus.Close, 0, true},
		{"close unknown", shipment.UnknownExceptionStatus, shipment.ExceptionStatus.Close, 0, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			next, err := tc.apply(tc.from)

			if tc.wantErr {
				require.ErrorIs(t, err, shipment.ErrIllegalTransition)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, next)
		})
	}
}

func TestExceptionStatus_IsLive(t *testing.T) {
	assert.True(t, shipment.Reported.IsLive())
	assert.True(t, shipment.Following.IsLive())
	assert.False(t, shipment.Resolved.IsLive())
	assert.False(t, shipment.Closed.IsLive())
}

func TestParseExceptionAction(t *testing.T) {
	t.Run("should parse names case-insensitively", func(t *testing.T) {
		for input, expected := range map[string]shipment.ExceptionAction{
			"Report":     shipment.ActionReport,
			"followup":   shipment.ActionFollowup,
			"RESOLVE":    shipment.ActionResolve,
			" continue ": shipment.ActionContinue,
			"Close":      shipment.ActionClose,
		} {
			action, err := shipment.ParseExceptionAction(input)

			require.NoError(t, err, input)
			assert.Equal(t, expected, action)
		}
	})

	t.Run("should reject unknown actions", func(t *testing.T) {
		action, err := shipment.ParseExceptionAction("archive")

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
		assert.Equal(t, shipment.UnknownAction, action)
	})
}

func TestParseExceptionStatus(t *testing.T) {
	status, err := shipment.ParseExceptionStatus("following")
	require.NoError(t, err)
	assert.Equal(t, shipment.Following, status)

	_, err = shipment.ParseExceptionStatus("Open")
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}

func TestNewExceptionRecord(t *testing.T) {
	t.Run("should keep every field", func(t *testing.T) {
		record, err := shipment.NewExceptionRecord(shipment.ActionFollowup, "called", "ana", at(1))

		require.NoError(t, err)
		assert.Equal(t, shipment.ActionFollowup, record.Action())
		assert.Equal(t, "called", record.Note())
		assert.Equal(t, "ana", record.Actor())
		assert.True(t, record.At().Equal(at(1)))
	})

	t.Run("should require a valid action and timestamp", func(t *testing.T) {
		_, err := shipment.NewExceptionRecord(shipment.UnknownAction, "", "", at(1))
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)

		_, err = shipment.NewExceptionRecord(shipment.ActionReport, "", "", time.Time{})
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})
}

func TestRestoreExceptionState(t *testing.T) {
	record, err := shipment.NewExceptionRecord(shipment.ActionReport, "hold", "", at(1))
	require.NoError(t, err)

	t.Run("should restore a valid exception", func(t *testing.T) {
		records := []shipment.ExceptionRecord{record}

		state, err := shipment.RestoreExceptionState(shipment.Reported, "hold", at(1), records)

		require.NoError(t, err)
		assert.Equal(t, shipment.Reported, state.Status())
		assert.Equal(t, "hold", state.Note())
		assert.True(t, state.LastActivityAt().Equal(at(1)))

		records[0] = shipment.ExceptionRecord{}
		assert.Equal(t, shipment.ActionReport, state.Records()[0].Action())
	})

	t.Run("should report every problem at once", func(t *testing.T) {
		_, err := shipment.RestoreExceptionState(shipment.UnknownExceptionStatus, "", time.Time{}, nil)

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
		assert.ErrorIs(t, err, errs.ErrValueIsRequired)
		assert.Contains(t, err.Error(), "exception note")
		assert.Contains(t, err.Error(), "exception reportedAt")
		assert.Contains(t, err.Error(), "exception records")
	})
}

func TestShipment_ExceptionIsACopy(t *testing.T) {
	s := withOpenException(t, 2)

	exception := s.Exception()
	records := exception.Records()
	records[0] = shipment.ExceptionRecord{}

	assert.Equal(t, shipment.ActionReport, s.Exception().Records()[0].Action())
}
