package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAppointmentStatus(t *testing.T) {
	tests := []struct {
		in   string
		want AppointmentStatus
	}{
		{"pending", AppointmentStatusPending},
		{"confirmed", AppointmentStatusConfirmed},
		{"scheduled", AppointmentStatusScheduled},
		{"completed", AppointmentStatusCompleted},
		{"cancelled", AppointmentStatusCancelled},
		{"declined", AppointmentStatusDeclined},
		{"", AppointmentStatusPending},
		{"garbage", AppointmentStatusPending},
		{"COMPLETED", AppointmentStatusPending},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseAppointmentStatus(tt.in), "input %q", tt.in)
	}
}

func TestAppointmentStatusScan(t *testing.T) {
	var s AppointmentStatus

	require.NoError(t, s.Scan("confirmed"))
	assert.Equal(t, AppointmentStatusConfirmed, s)

	require.NoError(t, s.Scan([]byte("declined")))
	assert.Equal(t, AppointmentStatusDeclined, s)

	// A garbled stored value decodes to pending, never terminal.
	require.NoError(t, s.Scan("corrupted-value"))
	assert.Equal(t, AppointmentStatusPending, s)
	assert.False(t, s.Terminal())

	require.NoError(t, s.Scan(nil))
	assert.Equal(t, AppointmentStatusPending, s)

	assert.Error(t, s.Scan(42))
}

func TestTerminal(t *testing.T) {
	assert.False(t, AppointmentStatusPending.Terminal())
	assert.False(t, AppointmentStatusConfirmed.Terminal())
	assert.False(t, AppointmentStatusScheduled.Terminal())
	assert.True(t, AppointmentStatusCompleted.Terminal())
	assert.True(t, AppointmentStatusCancelled.Terminal())
	assert.True(t, AppointmentStatusDeclined.Terminal())
}

func TestAppointmentClone(t *testing.T) {
	nurseID := uuid.New()
	notes := "bring previous scans"
	apt := &Appointment{
		ID:      uuid.New(),
		NurseID: &nurseID,
		Notes:   &notes,
		Status:  AppointmentStatusConfirmed,
	}

	clone := apt.Clone()
	require.Equal(t, apt, clone)

	*clone.Notes = "changed"
	clone.Status = AppointmentStatusCancelled
	assert.Equal(t, "bring previous scans", *apt.Notes)
	assert.Equal(t, AppointmentStatusConfirmed, apt.Status)
}

func TestParseRole(t *testing.T) {
	assert.Equal(t, RolePatient, ParseRole("patient"))
	assert.Equal(t, RoleDoctor, ParseRole("doctor"))
	assert.Equal(t, RoleNurse, ParseRole("nurse"))
	assert.Equal(t, RoleAdmin, ParseRole("admin"))
	assert.Equal(t, RoleUnknown, ParseRole("superuser"))
	assert.Equal(t, RoleUnknown, ParseRole(""))
}
