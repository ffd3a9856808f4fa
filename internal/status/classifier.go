package status

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// finishedPhrase is the vendor wording that marks a completed maintenance.
const finishedPhrase = "The scheduled maintenance on your environment has now finished."

// recordTimeLayout is the local-time, human-formatted form of the window
// endpoints stored in the record.
const recordTimeLayout = "2006-01-02 15:04 MST"

// maintenanceDateLayout is the machine-readable form of the window start.
const maintenanceDateLayout = "2006-01-02T15:04:05Z"

var (
	// scheduledEnvPattern extracts the target environment from scheduled
	// maintenance notices.
	scheduledEnvPattern = regexp.MustCompile(
		`we will be performing the following maintenance on your (Sandbox|Production) environment`,
	)

	// timestampPattern matches the vendor's schedule timestamps, e.g.
	// "05-Jan-2024 UTC 10:00:00".
	timestampPattern = regexp.MustCompile(
		`\d\d-[A-Za-z]{3}-\d{4} UTC \d{1,2}:\d{2}:\d{2}`,
	)

	// entryDatePattern anchors the leading date token of a schedule entry.
	entryDatePattern = regexp.MustCompile(
		`^(\d\d-[A-Za-z]{3}-\d{4}) UTC \d{1,2}:\d{2}:\d{2}`,
	)
)

// entryDateLayout parses the leading date token of a schedule entry.
const entryDateLayout = "02-Jan-2006"

// Config holds the deployment-fixed inputs of classification. It is passed
// in explicitly; the classifier keeps no ambient state.
type Config struct {
	// Product is the vendor product name, e.g. "Primo". Used in the
	// in-progress environment pattern.
	Product string

	// ProductLabel is the human-facing name used in notification text,
	// e.g. "Library Search".
	ProductLabel string

	// Location is the local zone window endpoints are rendered in.
	Location *time.Location
}

// Classifier maps a parsed status document to exactly one Outcome.
type Classifier struct {
	cfg    Config
	logger zerolog.Logger

	// inProgressEnvPattern extracts the environment from in-progress
	// maintenance messages; the wording names the product.
	inProgressEnvPattern *regexp.Regexp

	rules []rule
}

// shape is the document summary the decision table matches on.
type shape struct {
	doc       *Document
	status    string
	nMessages int
	nSchedule int
	message   string
	schedule  string
}

// rule is one row of the decision table. Rows are evaluated in order; the
// first match wins. When derive fails, the row degrades to its fallback
// outcome instead of propagating the error.
type rule struct {
	name     string
	match    func(s shape) bool
	derive   func(s shape) (Outcome, error)
	fallback func() Outcome
}

// NewClassifier creates a classifier for the given deployment configuration.
func NewClassifier(cfg Config, logger zerolog.Logger) *Classifier {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}

	c := &Classifier{
		cfg:    cfg,
		logger: logger,
		inProgressEnvPattern: regexp.MustCompile(
			`on your ` + regexp.QuoteMeta(cfg.Product) + ` (Sandbox|Production) environment`,
		),
	}

	c.rules = []rule{
		{
			name:  "outage",
			match: func(s shape) bool { return s.status == "ERROR" },
			derive: func(shape) (Outcome, error) {
				return c.outageOutcome(), nil
			},
		},
		{
			name: "ok-quiet",
			match: func(s shape) bool {
				return s.status == "OK" && s.nMessages == 0 && s.nSchedule == 0
			},
			derive: func(shape) (Outcome, error) {
				return c.okOutcome(), nil
			},
		},
		{
			name: "ok-schedule-only",
			match: func(s shape) bool {
				return s.status == "OK" && s.nMessages == 0 && s.nSchedule == 1
			},
			derive:   c.deriveScheduleOnly,
			fallback: c.okOutcome,
		},
		{
			name: "maintenance-in-progress",
			match: func(s shape) bool {
				return s.status == "MAINT" && s.nMessages == 1 && s.nSchedule == 1
			},
			derive:   c.deriveInProgress,
			fallback: c.inProgressFallback,
		},
		{
			name: "maintenance-finished",
			match: func(s shape) bool {
				return s.status == "OK" && s.nMessages == 1 && s.nSchedule == 1 &&
					strings.Contains(s.message, finishedPhrase)
			},
			derive:   c.deriveFinished,
			fallback: c.completedOutcome,
		},
		{
			name: "service-notice",
			match: func(s shape) bool {
				return (s.status == "SERVICE" || s.status == "OK") &&
					s.nMessages == 1 && s.nSchedule == 1
			},
			derive:   c.deriveServiceNotice,
			fallback: c.possibleInterruptionOutcome,
		},
	}

	return c
}

// Classify evaluates the decision table against the document. It never
// fails for a structurally valid document: derivation errors degrade to the
// matched row's conservative fallback, and unmatched shapes produce the
// all-unknown outcome.
func (c *Classifier) Classify(doc *Document) Outcome {
	s := shape{
		doc:       doc,
		status:    doc.Instance.Status,
		nMessages: len(doc.Instance.Messages),
		nSchedule: len(doc.Instance.Schedules),
	}
	if s.nMessages > 0 {
		s.message = doc.Instance.Messages[0]
	}
	if s.nSchedule > 0 {
		s.schedule = doc.Instance.Schedules[0]
	}

	for _, r := range c.rules {
		if !r.match(s) {
			continue
		}
		out, err := r.derive(s)
		if err != nil {
			c.logger.Warn().
				Str("rule", r.name).
				Err(err).
				Msg("outcome derivation degraded to fallback")
			out = r.fallback()
			out.Degraded = true
		}
		return out
	}

	return c.unknownOutcome()
}

// deriveScheduleOnly handles status OK with a schedule element and no
// message: a scheduled maintenance announcement, possibly containing
// several concatenated entries.
func (c *Classifier) deriveScheduleOnly(s shape) (Outcome, error) {
	entries := DedupSchedule(s.schedule)
	switch len(entries) {
	case 0:
		return c.okOutcome(), nil
	case 1:
		return c.scheduledOutcome(RenumberSchedule(s.doc.Text, s.schedule, entries))
	default:
		entry, err := earliestEntry(entries)
		if err != nil {
			return Outcome{}, err
		}
		return c.scheduledOutcome(entry)
	}
}

// deriveInProgress handles an active maintenance: window from the message
// text, environment from the in-progress wording.
func (c *Classifier) deriveInProgress(s shape) (Outcome, error) {
	w, err := ParseWindow(s.doc.Text)
	if err != nil {
		return Outcome{}, err
	}
	out := c.windowedOutcome(ServiceMaintenanceInProgress, w)
	out.AffectedEnv = extractEnv(c.inProgressEnvPattern, s.doc.Text)
	return out, nil
}

// deriveFinished handles the completion notice. The vendor sometimes leaves
// the next maintenance schedule in place alongside the finished message;
// when the schedule still carries timestamps the status stays scheduled.
func (c *Classifier) deriveFinished(s shape) (Outcome, error) {
	if len(timestampPattern.FindAllString(s.schedule, -1)) == 0 {
		return c.completedOutcome(), nil
	}
	return c.scheduledOutcome(s.doc.Text)
}

// deriveServiceNotice handles SERVICE (or OK) with a free-form message: a
// scheduled maintenance when the schedule carries timestamps, otherwise a
// possible interruption.
func (c *Classifier) deriveServiceNotice(s shape) (Outcome, error) {
	if len(timestampPattern.FindAllString(s.schedule, -1)) == 0 {
		return c.possibleInterruptionOutcome(), nil
	}
	return c.scheduledOutcome(s.doc.Text)
}

// scheduledOutcome derives the maintenance-scheduled outcome from the text
// carrying the selected entry (or the whole document when there is only
// one).
func (c *Classifier) scheduledOutcome(text string) (Outcome, error) {
	w, err := ParseWindow(text)
	if err != nil {
		return Outcome{}, err
	}
	out := c.windowedOutcome(ServiceMaintenanceScheduled, w)
	out.AffectedEnv = extractEnv(scheduledEnvPattern, text)
	return out, nil
}

// windowedOutcome fills the window-dependent fields shared by the scheduled
// and in-progress outcomes.
func (c *Classifier) windowedOutcome(status ServiceStatus, w MaintenanceWindow) Outcome {
	start := ToLocal(w.Start, c.cfg.Location)
	stop := ToLocal(w.Stop, c.cfg.Location)
	return Outcome{
		ServiceStatus:      status,
		Maintenance:        MaintenanceOn,
		AffectedEnv:        EnvNA,
		MaintenanceStart:   start.Format(recordTimeLayout),
		MaintenanceStop:    stop.Format(recordTimeLayout),
		MaintenanceMessage: RoutineMessage(start, stop, c.cfg.ProductLabel),
		MaintenanceDate:    w.Start.Format(maintenanceDateLayout),
		Window:             &w,
	}
}

func (c *Classifier) outageOutcome() Outcome {
	return Outcome{
		ServiceStatus:    ServiceOutage,
		Maintenance:      MaintenanceOff,
		AffectedEnv:      EnvNA,
		MaintenanceStart: SentinelNA,
		MaintenanceStop:  SentinelNA,
		MaintenanceMessage: fmt.Sprintf(
			"%s is currently experiencing service interruptions. We appreciate your understanding while we work to resolve this issue.",
			c.cfg.ProductLabel,
		),
		MaintenanceDate: SentinelNA,
	}
}

func (c *Classifier) okOutcome() Outcome {
	return c.quietOutcome(ServiceOK)
}

func (c *Classifier) completedOutcome() Outcome {
	return c.quietOutcome(ServiceMaintenanceCompleted)
}

func (c *Classifier) possibleInterruptionOutcome() Outcome {
	return c.quietOutcome(ServicePossibleInterruption)
}

// inProgressFallback keeps the in-progress status and the maintenance flag
// when the window cannot be derived; the vendor is mid-maintenance even if
// the notice text is off.
func (c *Classifier) inProgressFallback() Outcome {
	out := c.quietOutcome(ServiceMaintenanceInProgress)
	out.Maintenance = MaintenanceOn
	return out
}

// quietOutcome is a no-window outcome with every maintenance field NA.
func (c *Classifier) quietOutcome(status ServiceStatus) Outcome {
	return Outcome{
		ServiceStatus:      status,
		Maintenance:        MaintenanceOff,
		AffectedEnv:        EnvNA,
		MaintenanceStart:   SentinelNA,
		MaintenanceStop:    SentinelNA,
		MaintenanceMessage: SentinelNA,
		MaintenanceDate:    SentinelNA,
	}
}

// unknownOutcome marks every field unclassifiable. Distinct from NA.
func (c *Classifier) unknownOutcome() Outcome {
	return Outcome{
		ServiceStatus:      ServiceUnknown,
		Maintenance:        MaintenanceUnknown,
		AffectedEnv:        EnvUnknown,
		MaintenanceStart:   SentinelUnknown,
		MaintenanceStop:    SentinelUnknown,
		MaintenanceMessage: SentinelUnknown,
		MaintenanceDate:    SentinelUnknown,
	}
}

// extractEnv returns the captured environment, or NA when the pattern is
// absent. Absence is not an error.
func extractEnv(pattern *regexp.Regexp, text string) AffectedEnv {
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return EnvNA
	}
	return AffectedEnv(m[1])
}

// earliestEntry selects the schedule entry with the minimum leading date.
// The comparison is date-only; entries sharing the minimum date resolve to
// the first one in document order.
func earliestEntry(entries []string) (string, error) {
	var (
		best     string
		bestDate time.Time
	)
	for i, entry := range entries {
		m := entryDatePattern.FindStringSubmatch(entry)
		if m == nil {
			return "", fmt.Errorf("schedule entry %d: no leading date token", i+1)
		}
		d, err := time.Parse(entryDateLayout, m[1])
		if err != nil {
			return "", fmt.Errorf("schedule entry %d: %w", i+1, err)
		}
		if i == 0 || d.Before(bestDate) {
			best = entry
			bestDate = d
		}
	}
	return best, nil
}
