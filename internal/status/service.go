package status

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// lastUpdateLayout is the local poll timestamp stored on every cycle.
const lastUpdateLayout = "2006-01-02 15:04"

// ServiceConfig holds configuration for the poll service.
type ServiceConfig struct {
	Repository Repository
	Classifier *Classifier
	Logger     zerolog.Logger

	// Product keys the persisted record, e.g. "Primo".
	Product string

	// Location is the local zone for the last_update stamp.
	Location *time.Location

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Service runs one poll cycle: change detection, classification, and
// persistence. Fetching is the caller's concern.
type Service struct {
	repo       Repository
	classifier *Classifier
	logger     zerolog.Logger
	product    string
	location   *time.Location
	now        func() time.Time
}

// NewService creates a new poll service.
func NewService(cfg ServiceConfig) *Service {
	location := cfg.Location
	if location == nil {
		location = time.UTC
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Service{
		repo:       cfg.Repository,
		classifier: cfg.Classifier,
		logger:     cfg.Logger,
		product:    cfg.Product,
		location:   location,
		now:        now,
	}
}

// PollResult reports what one poll cycle did.
type PollResult struct {
	// Changed is false when the raw document matched the stored one and
	// only last_update was touched.
	Changed bool

	// Outcome is the classification, set only when Changed.
	Outcome Outcome

	// Record is the stored record, set only when Changed.
	Record *Record
}

// Poll processes one raw feed document. When the document is byte-identical
// to the previously stored one, classification is skipped and only the poll
// timestamp moves; otherwise the record is rebuilt and replaced whole, so
// it is always internally consistent with exactly one outcome.
//
// Malformed XML aborts the cycle without touching the stored record.
func (s *Service) Poll(ctx context.Context, raw string) (*PollResult, error) {
	now := s.now().In(s.location).Format(lastUpdateLayout)

	prev, err := s.repo.Get(ctx, s.product)
	if err != nil && !errors.Is(err, ErrRecordNotFound) {
		return nil, fmt.Errorf("load previous record: %w", err)
	}

	if prev != nil && prev.RawAPIResponse == raw {
		if err := s.repo.TouchLastUpdate(ctx, s.product, now); err != nil {
			return nil, fmt.Errorf("touch last update: %w", err)
		}
		s.logger.Debug().
			Str("product", s.product).
			Msg("feed unchanged, touched last update")
		return &PollResult{Changed: false}, nil
	}

	doc, err := ParseDocument(Normalize(raw))
	if err != nil {
		return nil, err
	}

	outcome := s.classifier.Classify(doc)
	record := &Record{
		Product:            s.product,
		SystemID:           doc.Instance.ID,
		SystemService:      doc.Instance.Service,
		ServiceStatus:      outcome.ServiceStatus,
		Maintenance:        outcome.Maintenance,
		AffectedEnv:        outcome.AffectedEnv,
		MaintenanceStart:   outcome.MaintenanceStart,
		MaintenanceStop:    outcome.MaintenanceStop,
		MaintenanceMessage: outcome.MaintenanceMessage,
		MaintenanceDate:    outcome.MaintenanceDate,
		LastUpdate:         now,
		RawAPIResponse:     raw,
	}

	if err := s.repo.Put(ctx, record); err != nil {
		return nil, fmt.Errorf("store record: %w", err)
	}

	s.logger.Info().
		Str("product", s.product).
		Str("service_status", string(outcome.ServiceStatus)).
		Str("affected_env", string(outcome.AffectedEnv)).
		Bool("degraded", outcome.Degraded).
		Msg("status record updated")

	return &PollResult{Changed: true, Outcome: outcome, Record: record}, nil
}
