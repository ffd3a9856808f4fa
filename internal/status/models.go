// Package status implements classification of ExLibris cloud status
// documents into service-status records.
package status

import (
	"bytes"
	"errors"
	"time"
)

// Status errors.
var (
	ErrRecordNotFound  = errors.New("status record not found")
	ErrMalformedXML    = errors.New("malformed status document")
	ErrNoWindowPattern = errors.New("no maintenance window pattern in text")
	ErrInvalidWindow   = errors.New("maintenance window start after stop")
)

// Sentinel values used in record fields.
const (
	// SentinelNA marks a field as recognized but not applicable to the
	// classified outcome.
	SentinelNA = "NA"

	// SentinelUnknown marks a field as unclassifiable. Distinct from NA:
	// unknown means the document shape matched no known combination.
	SentinelUnknown = "unknown"
)

// ServiceStatus is the classification outcome for the hosted product.
type ServiceStatus string

const (
	ServiceOK                    ServiceStatus = "OK"
	ServiceOutage                ServiceStatus = "OUTAGE"
	ServiceMaintenanceScheduled  ServiceStatus = "OK, Maintenance Scheduled"
	ServiceMaintenanceInProgress ServiceStatus = "Maintenance In-Progress"
	ServiceMaintenanceCompleted  ServiceStatus = "OK, Maintenance Completed"
	ServicePossibleInterruption  ServiceStatus = "Possible service interruption"
	ServiceUnknown               ServiceStatus = ServiceStatus(SentinelUnknown)
)

// AffectedEnv identifies which hosted environment a maintenance event targets.
type AffectedEnv string

const (
	EnvSandbox    AffectedEnv = "Sandbox"
	EnvProduction AffectedEnv = "Production"
	EnvNA         AffectedEnv = AffectedEnv(SentinelNA)
	EnvUnknown    AffectedEnv = AffectedEnv(SentinelUnknown)
)

// MaintenanceFlag is a tri-state maintenance indicator. The vendor feed can
// leave us unable to say either way, so plain bool does not fit.
type MaintenanceFlag int

const (
	MaintenanceOff MaintenanceFlag = iota
	MaintenanceOn
	MaintenanceUnknown
)

// MarshalJSON renders the flag as true/false, or the "unknown" sentinel
// string when classification failed to match any known shape.
func (f MaintenanceFlag) MarshalJSON() ([]byte, error) {
	switch f {
	case MaintenanceOn:
		return []byte("true"), nil
	case MaintenanceUnknown:
		return []byte(`"` + SentinelUnknown + `"`), nil
	default:
		return []byte("false"), nil
	}
}

// UnmarshalJSON accepts true, false, or the "unknown" sentinel.
func (f *MaintenanceFlag) UnmarshalJSON(data []byte) error {
	switch {
	case bytes.Equal(data, []byte("true")):
		*f = MaintenanceOn
	case bytes.Equal(data, []byte("false")):
		*f = MaintenanceOff
	case bytes.Equal(data, []byte(`"`+SentinelUnknown+`"`)):
		*f = MaintenanceUnknown
	default:
		return errors.New("invalid maintenance flag")
	}
	return nil
}

// String returns the textual form stored in the database.
func (f MaintenanceFlag) String() string {
	switch f {
	case MaintenanceOn:
		return "true"
	case MaintenanceUnknown:
		return SentinelUnknown
	default:
		return "false"
	}
}

// ParseMaintenanceFlag converts the stored textual form back to a flag.
func ParseMaintenanceFlag(s string) MaintenanceFlag {
	switch s {
	case "true":
		return MaintenanceOn
	case SentinelUnknown:
		return MaintenanceUnknown
	default:
		return MaintenanceOff
	}
}

// MaintenanceWindow is a start/stop pair in UTC at minute precision.
// Immutable once derived.
type MaintenanceWindow struct {
	Start time.Time
	Stop  time.Time
}

// Validate rejects windows that stop before they start.
func (w MaintenanceWindow) Validate() error {
	if w.Stop.Before(w.Start) {
		return ErrInvalidWindow
	}
	return nil
}

// Record is the persisted status entity, one row per product.
type Record struct {
	Product            string          `json:"product"`
	SystemID           string          `json:"system_id,omitempty"`
	SystemService      string          `json:"system_service,omitempty"`
	ServiceStatus      ServiceStatus   `json:"service_status"`
	Maintenance        MaintenanceFlag `json:"maintenance"`
	AffectedEnv        AffectedEnv     `json:"affected_env"`
	MaintenanceStart   string          `json:"maintenance_start"`
	MaintenanceStop    string          `json:"maintenance_stop"`
	MaintenanceMessage string          `json:"maintenance_message"`
	MaintenanceDate    string          `json:"maintenance_date"`
	LastUpdate         string          `json:"last_update"`
	RawAPIResponse     string          `json:"raw_api_response"`
}

// Outcome is the result of classifying one status document. Every field is
// internally consistent with exactly one decision-table row.
type Outcome struct {
	ServiceStatus      ServiceStatus
	Maintenance        MaintenanceFlag
	AffectedEnv        AffectedEnv
	MaintenanceStart   string
	MaintenanceStop    string
	MaintenanceMessage string
	MaintenanceDate    string

	// Window is the derived maintenance window in UTC, nil when the
	// outcome carries none.
	Window *MaintenanceWindow

	// Degraded is set when a matched row failed to derive its window or
	// environment and fell back to its conservative sub-case. It lets
	// callers tell "no maintenance" apart from "maintenance detection
	// failed"; it is not persisted.
	Degraded bool
}
