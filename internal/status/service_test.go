package status_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SydneyUniLibrary/exlibris-status-api/internal/status"
)

// mockRepository is an in-memory Repository for testing.
type mockRepository struct {
	records map[string]*status.Record
	puts    int
	touches int
}

func newMockRepository() *mockRepository {
	return &mockRepository{records: make(map[string]*status.Record)}
}

func (m *mockRepository) Get(_ context.Context, product string) (*status.Record, error) {
	record, ok := m.records[product]
	if !ok {
		return nil, status.ErrRecordNotFound
	}
	clone := *record
	return &clone, nil
}

func (m *mockRepository) Put(_ context.Context, record *status.Record) error {
	m.puts++
	clone := *record
	m.records[record.Product] = &clone
	return nil
}

func (m *mockRepository) TouchLastUpdate(_ context.Context, product, lastUpdate string) error {
	m.touches++
	record, ok := m.records[product]
	if !ok {
		return status.ErrRecordNotFound
	}
	record.LastUpdate = lastUpdate
	return nil
}

func newTestService(t *testing.T, repo status.Repository, now time.Time) *status.Service {
	t.Helper()
	loc := sydney(t)
	classifier := status.NewClassifier(status.Config{
		Product:      "Primo",
		ProductLabel: "Library Search",
		Location:     loc,
	}, zerolog.Nop())

	return status.NewService(status.ServiceConfig{
		Repository: repo,
		Classifier: classifier,
		Logger:     zerolog.Nop(),
		Product:    "Primo",
		Location:   loc,
		Now:        func() time.Time { return now },
	})
}

func TestService_PollFirstEver(t *testing.T) {
	repo := newMockRepository()
	service := newTestService(t, repo, time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC))

	raw := feedDoc("OK", "", "")
	result, err := service.Poll(context.Background(), raw)
	require.NoError(t, err)

	assert.True(t, result.Changed)
	assert.Equal(t, 1, repo.puts)
	assert.Equal(t, 0, repo.touches)

	stored := repo.records["Primo"]
	require.NotNil(t, stored)
	assert.Equal(t, "Primo", stored.Product)
	assert.Equal(t, "1290", stored.SystemID)
	assert.Equal(t, "Primo", stored.SystemService)
	assert.Equal(t, status.ServiceOK, stored.ServiceStatus)
	assert.Equal(t, raw, stored.RawAPIResponse)
	// 2024-01-05 10:00 UTC stamped in Sydney local time.
	assert.Equal(t, "2024-01-05 21:00", stored.LastUpdate)
}

func TestService_PollUnchangedTouchesOnlyTimestamp(t *testing.T) {
	repo := newMockRepository()
	raw := feedDoc("OK", "", sandboxEntry+sep)

	first := newTestService(t, repo, time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC))
	result, err := first.Poll(context.Background(), raw)
	require.NoError(t, err)
	require.True(t, result.Changed)
	before := *repo.records["Primo"]

	second := newTestService(t, repo, time.Date(2024, 1, 5, 10, 5, 0, 0, time.UTC))
	result, err = second.Poll(context.Background(), raw)
	require.NoError(t, err)

	assert.False(t, result.Changed)
	assert.Equal(t, 1, repo.puts)
	assert.Equal(t, 1, repo.touches)

	after := repo.records["Primo"]
	assert.Equal(t, "2024-01-05 21:05", after.LastUpdate)

	// Every other field is untouched.
	before.LastUpdate = after.LastUpdate
	assert.Equal(t, &before, after)
}

func TestService_PollChangedReplacesRecord(t *testing.T) {
	repo := newMockRepository()
	service := newTestService(t, repo, time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC))

	_, err := service.Poll(context.Background(), feedDoc("OK", "", ""))
	require.NoError(t, err)

	result, err := service.Poll(context.Background(), feedDoc("ERROR", "", ""))
	require.NoError(t, err)

	assert.True(t, result.Changed)
	assert.Equal(t, 2, repo.puts)
	assert.Equal(t, status.ServiceOutage, repo.records["Primo"].ServiceStatus)
	assert.Equal(t, status.MaintenanceOff, repo.records["Primo"].Maintenance)
}

func TestService_PollMalformedXMLAbortsWithoutWrite(t *testing.T) {
	repo := newMockRepository()
	service := newTestService(t, repo, time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC))

	_, err := service.Poll(context.Background(), feedDoc("OK", "", ""))
	require.NoError(t, err)
	before := *repo.records["Primo"]

	_, err = service.Poll(context.Background(), "<exlibriscloudstatus><instance")
	require.Error(t, err)
	assert.ErrorIs(t, err, status.ErrMalformedXML)

	// The stored record is untouched by the failed cycle.
	assert.Equal(t, 1, repo.puts)
	assert.Equal(t, &before, repo.records["Primo"])
}
