package status

import (
	"fmt"
	"regexp"
	"time"
)

// windowLayout is the timestamp format embedded in maintenance notices,
// e.g. "Monday, 2024-January-05 10:00". No seconds, no zone; values are UTC
// by vendor convention.
const windowLayout = "Monday, 2006-January-02 15:04"

var windowPattern = regexp.MustCompile(
	`Estimated Start: (.*) UTC Estimated End: (.*) UTC Description:`,
)

// ParseWindow extracts the maintenance start/stop pair from free text
// containing the vendor's "Estimated Start: … UTC Estimated End: … UTC
// Description:" notice. Returns ErrNoWindowPattern when the notice is
// absent; callers fall back to their branch's conservative outcome.
func ParseWindow(text string) (MaintenanceWindow, error) {
	m := windowPattern.FindStringSubmatch(text)
	if m == nil {
		return MaintenanceWindow{}, ErrNoWindowPattern
	}

	start, err := time.Parse(windowLayout, m[1])
	if err != nil {
		return MaintenanceWindow{}, fmt.Errorf("parse window start: %w", err)
	}
	stop, err := time.Parse(windowLayout, m[2])
	if err != nil {
		return MaintenanceWindow{}, fmt.Errorf("parse window stop: %w", err)
	}

	w := MaintenanceWindow{Start: start, Stop: stop}
	if err := w.Validate(); err != nil {
		return MaintenanceWindow{}, err
	}
	return w, nil
}

// ToLocal converts a naive UTC timestamp to the given zone. Pure.
func ToLocal(t time.Time, loc *time.Location) time.Time {
	return time.Date(
		t.Year(), t.Month(), t.Day(),
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(),
		time.UTC,
	).In(loc)
}

// RoutineMessage formats the user-facing maintenance notification for a
// window already converted to local time. The zone abbreviation is shown on
// the end time always, and on the start time only when the window straddles
// a zone transition and the two abbreviations differ.
func RoutineMessage(start, stop time.Time, productLabel string) string {
	startZone, _ := start.Zone()
	stopZone, _ := stop.Zone()

	startLayout := "02 Jan at 03:04 PM"
	if startZone != stopZone {
		startLayout = "02 Jan at 03:04 PM MST"
	}

	return fmt.Sprintf(
		"Due to routine maintenance, %s may be unavailable between %s and %s. We apologize for the inconvenience.",
		productLabel,
		start.Format(startLayout),
		stop.Format("02 Jan at 03:04 PM MST"),
	)
}
