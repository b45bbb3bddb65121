package complete_appointments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCompleter struct{ mock.Mock }

func (m *mockCompleter) CompleteEnded(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type countingMetrics struct{ total int64 }

func (m *countingMetrics) AddCompleted(n int64) { m.total += n }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func TestRunOnce(t *testing.T) {
	completer := &mockCompleter{}
	completer.On("CompleteEnded", mock.Anything).Return(int64(3), nil).Once()
	completer.On("CompleteEnded", mock.Anything).Return(int64(0), nil).Once()
	metrics := &countingMetrics{}
	job := NewJob(completer, metrics, nopLogger{})

	n, err := job.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	n, err = job.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	assert.Equal(t, int64(3), metrics.total)
	completer.AssertExpectations(t)
}

func TestRunOnce_Error(t *testing.T) {
	completer := &mockCompleter{}
	completer.On("CompleteEnded", mock.Anything).Return(int64(0), errors.New("db is down"))
	metrics := &countingMetrics{}

	_, err := NewJob(completer, metrics, nopLogger{}).RunOnce(context.Background())
	assert.Error(t, err)
	assert.Zero(t, metrics.total)
}

func TestNewScheduler(t *testing.T) {
	job := NewJob(&mockCompleter{}, nil, nopLogger{})

	_, err := NewScheduler("not a schedule", time.UTC, job, nopLogger{})
	assert.Error(t, err)

	s, err := NewScheduler("@every 5m", nil, job, nopLogger{})
	require.NoError(t, err)
	s.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, s.Stop(ctx))
}
