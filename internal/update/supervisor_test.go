package update

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSource struct {
	mock.Mock
}

func (m *mockSource) Latest(ctx context.Context) (string, error) {
	args := m.Called(ctx)

	return args.String(0), args.Error(1)
}

type countingRestarter struct {
	calls int
}

func (r *countingRestarter) Restart() error {
	r.calls++

	return nil
}

func newSupervisor(source Source) (*Supervisor, *countingRestarter) {
	log, _ := test.NewNullLogger()
	r := &countingRestarter{}

	return New(source, r, 0, log), r
}

func TestSupervisorTransitions(t *testing.T) {
	ctx := context.Background()
	source := new(mockSource)
	s, restarter := newSupervisor(source)

	state, revision := s.State()
	assert.Equal(t, Uninitialized, state)
	assert.Empty(t, revision)

	source.On("Latest", ctx).Return("abc", nil).Twice()
	source.On("Latest", ctx).Return("def", nil).Once()

	require.NoError(t, s.Tick(ctx))

	state, revision = s.State()
	assert.Equal(t, Tracking, state)
	assert.Equal(t, "abc", revision)
	assert.Equal(t, 0, restarter.calls)

	require.NoError(t, s.Tick(ctx))
	assert.Equal(t, 0, restarter.calls)

	require.NoError(t, s.Tick(ctx))

	state, revision = s.State()
	assert.Equal(t, Tracking, state)
	assert.Equal(t, "def", revision)
	assert.Equal(t, 1, restarter.calls)

	source.AssertExpectations(t)
}

func TestSupervisorFetchFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	source := new(mockSource)
	s, restarter := newSupervisor(source)

	source.On("Latest", ctx).Return("", errors.New("connection refused")).Once()
	source.On("Latest", ctx).Return("abc", nil).Once()
	source.On("Latest", ctx).Return("", &StatusError{Code: 502}).Once()

	assert.Error(t, s.Tick(ctx))

	state, _ := s.State()
	assert.Equal(t, Uninitialized, state)

	require.NoError(t, s.Tick(ctx))
	assert.Error(t, s.Tick(ctx))

	state, revision := s.State()
	assert.Equal(t, Tracking, state)
	assert.Equal(t, "abc", revision)
	assert.Equal(t, 0, restarter.calls)
}

func TestSupervisorIgnoresEmptyRevision(t *testing.T) {
	ctx := context.Background()
	source := new(mockSource)
	s, restarter := newSupervisor(source)

	source.On("Latest", ctx).Return("", nil).Once()
	source.On("Latest", ctx).Return("abc", nil).Once()
	source.On("Latest", ctx).Return("", nil).Once()

	result, _, err := s.Check(ctx)
	require.NoError(t, err)
	assert.Equal(t, ResultUnchanged, result)

	state, _ := s.State()
	assert.Equal(t, Uninitialized, state)

	result, revision, err := s.Check(ctx)
	require.NoError(t, err)
	assert.Equal(t, ResultInitialized, result)
	assert.Equal(t, "abc", revision)

	result, revision, err = s.Check(ctx)
	require.NoError(t, err)
	assert.Equal(t, ResultUnchanged, result)
	assert.Equal(t, "abc", revision)
	assert.Equal(t, 0, restarter.calls)
}

func TestSupervisorCheckDoesNotRestart(t *testing.T) {
	ctx := context.Background()
	source := new(mockSource)
	s, restarter := newSupervisor(source)

	source.On("Latest", ctx).Return("abc", nil).Once()
	source.On("Latest", ctx).Return("def", nil).Once()

	result, _, err := s.Check(ctx)
	require.NoError(t, err)
	assert.Equal(t, "initialized", result.String())

	result, revision, err := s.Check(ctx)
	require.NoError(t, err)
	assert.Equal(t, ResultRestarting, result)
	assert.Equal(t, "def", revision)
	assert.Equal(t, 0, restarter.calls)

	require.NoError(t, s.Restart())
	assert.Equal(t, 1, restarter.calls)
}

func TestSupervisorTask(t *testing.T) {
	s, _ := newSupervisor(new(mockSource))

	task := s.Task()
	assert.Equal(t, "update.check", task.Name)
	assert.Equal(t, DefaultInterval, task.Interval)
}
