package session_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"searchlens/internal/session"
	"searchlens/internal/testsupport"
)

// MockTimeProvider implements the TimeProvider interface for testing
type MockTimeProvider struct {
	CurrentTime time.Time
}

func (m *MockTimeProvider) Now() time.Time {
	return m.CurrentTime
}

func newTestRegistry(ttl time.Duration) (*session.Registry, *MockTimeProvider) {
	clock := &MockTimeProvider{CurrentTime: time.Date(2024, 7, 15, 9, 0, 0, 0, time.UTC)}
	return session.NewRegistry(ttl, testsupport.GetLogger(), clock), clock
}

func TestCreateAndGetRoundTrip(t *testing.T) {
	registry, clock := newTestRegistry(30 * time.Minute)

	created := registry.Create()
	require.NotEmpty(t, created.ID)
	assert.Equal(t, clock.CurrentTime, created.CreatedAt)
	assert.Equal(t, clock.CurrentTime, created.LastSeenAt)

	got, err := registry.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, 1, registry.Count())
}

func TestGetUnknownSessionIsNotFound(t *testing.T) {
	registry, _ := newTestRegistry(30 * time.Minute)

	_, err := registry.Get("nope")

	var notFoundErr *session.SessionNotFoundError
	require.ErrorAs(t, err, &notFoundErr)
	assert.Equal(t, "nope", notFoundErr.ID)
}

func TestUpdateMutatesStoredSession(t *testing.T) {
	registry, _ := newTestRegistry(30 * time.Minute)
	created := registry.Create()

	updated, err := registry.Update(created.ID, func(s *session.Session) {
		s.Property = "https://example.com/"
		s.URLs = []string{"https://example.com/a", "https://example.com/b"}
		s.Selector = "30"
		s.PeriodCount = 3
	})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/", updated.Property)

	got, err := registry.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/a", "https://example.com/b"}, got.URLs)
	assert.Equal(t, "30", got.Selector)
	assert.Equal(t, 3, got.PeriodCount)
}

func TestUpdateUnknownSessionIsNotFound(t *testing.T) {
	registry, _ := newTestRegistry(30 * time.Minute)

	_, err := registry.Update("nope", func(s *session.Session) { s.Property = "x" })

	var notFoundErr *session.SessionNotFoundError
	assert.ErrorAs(t, err, &notFoundErr)
}

func TestSessionExpiresAfterIdleTTL(t *testing.T) {
	registry, clock := newTestRegistry(30 * time.Minute)
	created := registry.Create()

	clock.CurrentTime = clock.CurrentTime.Add(31 * time.Minute)

	_, err := registry.Get(created.ID)
	var notFoundErr *session.SessionNotFoundError
	require.ErrorAs(t, err, &notFoundErr)
	assert.Equal(t, 0, registry.Count(), "expired session is removed on access")
}

func TestAccessRefreshesIdleTimer(t *testing.T) {
	registry, clock := newTestRegistry(30 * time.Minute)
	created := registry.Create()

	clock.CurrentTime = clock.CurrentTime.Add(20 * time.Minute)
	_, err := registry.Get(created.ID)
	require.NoError(t, err)

	// 40 minutes after creation but only 20 since the last access.
	clock.CurrentTime = clock.CurrentTime.Add(20 * time.Minute)
	_, err = registry.Get(created.ID)
	assert.NoError(t, err)
}

func TestSweepPrunesOnlyExpired(t *testing.T) {
	registry, clock := newTestRegistry(30 * time.Minute)
	stale := registry.Create()

	clock.CurrentTime = clock.CurrentTime.Add(10 * time.Minute)
	fresh := registry.Create()

	clock.CurrentTime = clock.CurrentTime.Add(25 * time.Minute)

	assert.Equal(t, 1, registry.Sweep())
	assert.Equal(t, 1, registry.Count())

	_, err := registry.Get(stale.ID)
	var notFoundErr *session.SessionNotFoundError
	assert.ErrorAs(t, err, &notFoundErr)

	_, err = registry.Get(fresh.ID)
	assert.NoError(t, err)
}

func TestReturnedSessionsAreCopies(t *testing.T) {
	registry, _ := newTestRegistry(30 * time.Minute)
	created := registry.Create()

	updated, err := registry.Update(created.ID, func(s *session.Session) {
		s.URLs = []string{"https://example.com/a"}
	})
	require.NoError(t, err)

	updated.URLs[0] = "https://example.com/mutated"

	got, err := registry.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/a"}, got.URLs)
}
