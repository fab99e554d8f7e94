package commands_test

import (
	"testing"
	"time"

	"cmr/internal/core/application/usecases/commands"
	"cmr/internal/core/domain/model/kernel"
	"cmr/internal/core/domain/model/shipment"
	"cmr/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewApplyExceptionActionCommand_ValidInput(t *testing.T) {
	id := kernel.NewUUID()

	cmd, err := commands.NewApplyExceptionActionCommand(id, shipment.ActionFollowup, "called broker", "ana", at(1))

	require.NoError(t, err)
	assert.NoError(t, cmd.Validate())
	assert.Equal(t, id, cmd.ShipmentID())
	assert.Equal(t, shipment.ActionFollowup, cmd.Action())
}

func TestNewApplyExceptionActionCommand_InvalidInput(t *testing.T) {
	_, err := commands.NewApplyExceptionActionCommand(kernel.UUID{}, shipment.UnknownAction, "", "", time.Time{})

	require.Error(t, err)
	assert.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
	assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	assert.ErrorIs(t, err, errs.ErrValueIsRequired)
}

func TestApplyExceptionActionCommand_NotConstructedViaConstructor(t *testing.T) {
	cmd := commands.ApplyExceptionActionCommand{}

	assert.ErrorIs(t, cmd.Validate(), commands.ErrApplyExceptionActionCommandIsNotConstructed)
}
