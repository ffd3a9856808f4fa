package status_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SydneyUniLibrary/exlibris-status-api/internal/status"
)

func TestParseWindow(t *testing.T) {
	text := "Estimated Start: Monday, 2024-January-05 10:00 UTC " +
		"Estimated End: Monday, 2024-January-05 12:00 UTC Description: test"

	w, err := status.ParseWindow(text)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC), w.Stop)
}

func TestParseWindow_PatternAbsent(t *testing.T) {
	_, err := status.ParseWindow("no window to be found here")
	assert.ErrorIs(t, err, status.ErrNoWindowPattern)
}

func TestParseWindow_UnparseableTimestamp(t *testing.T) {
	_, err := status.ParseWindow(
		"Estimated Start: soonish UTC Estimated End: later UTC Description: vague",
	)
	require.Error(t, err)
	assert.NotErrorIs(t, err, status.ErrNoWindowPattern)
}

func TestParseWindow_StartAfterStop(t *testing.T) {
	_, err := status.ParseWindow(
		"Estimated Start: Friday, 2024-January-05 12:00 UTC " +
			"Estimated End: Friday, 2024-January-05 10:00 UTC Description: inverted",
	)
	assert.ErrorIs(t, err, status.ErrInvalidWindow)
}

func TestToLocal(t *testing.T) {
	loc := sydney(t)

	local := status.ToLocal(time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC), loc)

	assert.Equal(t, "2024-01-05 21:00 AEDT", local.Format("2006-01-02 15:04 MST"))
}

func TestRoutineMessage_SameZone(t *testing.T) {
	loc := sydney(t)
	start := status.ToLocal(time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC), loc)
	stop := status.ToLocal(time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC), loc)

	msg := status.RoutineMessage(start, stop, "Library Search")

	// Zone abbreviation only on the end time when both fall in the same
	// zone.
	assert.Equal(t,
		"Due to routine maintenance, Library Search may be unavailable "+
			"between 05 Jan at 09:00 PM and 05 Jan at 11:00 PM AEDT. "+
			"We apologize for the inconvenience.",
		msg,
	)
}

func TestRoutineMessage_WindowStraddlesZoneChange(t *testing.T) {
	loc := sydney(t)
	// Sydney left daylight saving on 2024-04-07 at 03:00 AEDT.
	start := status.ToLocal(time.Date(2024, 4, 5, 6, 0, 0, 0, time.UTC), loc) // AEDT
	stop := status.ToLocal(time.Date(2024, 4, 7, 6, 0, 0, 0, time.UTC), loc)  // AEST

	msg := status.RoutineMessage(start, stop, "Library Search")

	assert.Contains(t, msg, "AEDT")
	assert.Contains(t, msg, "AEST")
	assert.Contains(t, msg, "05 Apr at 05:00 PM AEDT")
	assert.Contains(t, msg, "07 Apr at 04:00 PM AEST")
}

func TestMaintenanceWindowValidate(t *testing.T) {
	now := time.Now()

	assert.NoError(t, status.MaintenanceWindow{Start: now, Stop: now}.Validate())
	assert.NoError(t, status.MaintenanceWindow{Start: now, Stop: now.Add(time.Hour)}.Validate())
	assert.ErrorIs(t,
		status.MaintenanceWindow{Start: now, Stop: now.Add(-time.Minute)}.Validate(),
		status.ErrInvalidWindow,
	)
}
