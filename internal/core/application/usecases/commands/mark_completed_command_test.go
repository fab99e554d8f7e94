package commands_test

import (
	"testing"

	"cmr/internal/core/application/usecases/commands"
	"cmr/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMarkCompletedCommand(t *testing.T) {
	id := kernel.NewUUID()

	cmd, err := commands.NewMarkCompletedCommand(id)
	require.NoError(t, err)
	assert.Equal(t, id, cmd.ShipmentID())
	assert.NoError(t, cmd.Validate())

	_, err = commands.NewMarkCompletedCommand(kernel.UUID{})
	require.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)

	assert.ErrorIs(t, commands.MarkCompletedCommand{}.Validate(), commands.ErrMarkCompletedCommandIsNotConstructed)
}
