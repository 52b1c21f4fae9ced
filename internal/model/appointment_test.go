package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionForKnownActions(t *testing.T) {
	confirm, ok := TransitionFor(AppointmentActionConfirm)
	require.True(t, ok)
	assert.Equal(t, []AppointmentStatus{AppointmentStatusPending}, confirm.From)
	assert.Equal(t, AppointmentStatusConfirmed, confirm.To)

	cancel, ok := TransitionFor(AppointmentActionCancel)
	require.True(t, ok)
	assert.ElementsMatch(t,
		[]AppointmentStatus{AppointmentStatusPending, AppointmentStatusConfirmed}, cancel.From)
	assert.Equal(t, AppointmentStatusCancelled, cancel.To)

	complete, ok := TransitionFor(AppointmentActionComplete)
	require.True(t, ok)
	assert.Equal(t, []AppointmentStatus{AppointmentStatusConfirmed}, complete.From)
	assert.Equal(t, AppointmentStatusCompleted, complete.To)
}

func TestTransitionForUnknownAction(t *testing.T) {
	_, ok := TransitionFor("reschedule")
	assert.False(t, ok)
}

func TestNoTransitionLeavesTerminalStatuses(t *testing.T) {
	for _, tr := range transitions {
		assert.NotContains(t, tr.From, AppointmentStatusCancelled)
		assert.NotContains(t, tr.From, AppointmentStatusCompleted)
	}
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RolePatient.Valid())
	assert.True(t, RoleDoctor.Valid())
	assert.False(t, Role("admin").Valid())
	assert.False(t, Role("").Valid())
}
