package appointments

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-MeetingService/internal/domain"
	"github.com/m04kA/SMC-MeetingService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-MeetingService/internal/service/appointments/models"
)

type fixedTime time.Time

func (f fixedTime) Now() time.Time { return time.Time(f) }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type recordingDeleter struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (d *recordingDeleter) DeleteEvent(_ context.Context, _ int64, eventRef string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, eventRef)
	return d.err
}

var base = time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

func newService(deleter EventDeleter) *Service {
	return NewService(memory.NewStore(), memory.TxManager{}, deleter, 8*time.Hour, nopLogger{}).
		WithTimeProvider(fixedTime(base.Add(-24 * time.Hour)))
}

func reserveReq(start time.Time, minutes int) *models.ReserveRequest {
	return &models.ReserveRequest{
		OwnerID:     1,
		RequesterID: 2,
		Start:       start,
		End:         start.Add(time.Duration(minutes) * time.Minute),
		Title:       domain.DefaultTitle,
	}
}

func TestReserve_Validation(t *testing.T) {
	svc := newService(nil)
	ctx := context.Background()

	tests := []struct {
		name    string
		req     *models.ReserveRequest
		wantErr error
	}{
		{name: "empty range", req: reserveReq(base, 0), wantErr: ErrInvalidTimeRange},
		{name: "too long", req: reserveReq(base, 9*60), wantErr: ErrInvalidTimeRange},
		{name: "no owner", req: &models.ReserveRequest{RequesterID: 2, Start: base, End: base.Add(time.Hour)}, wantErr: ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Reserve(ctx, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestReserve_SlotTaken(t *testing.T) {
	svc := newService(nil)
	ctx := context.Background()

	created, err := svc.Reserve(ctx, reserveReq(base, 30))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusScheduled, created.Status)
	assert.NotEqual(t, uuid.Nil, created.ID)

	_, err = svc.Reserve(ctx, reserveReq(base.Add(15*time.Minute), 30))
	assert.ErrorIs(t, err, ErrSlotTaken)

	// смежный интервал не пересекается
	_, err = svc.Reserve(ctx, reserveReq(base.Add(30*time.Minute), 30))
	assert.NoError(t, err)
}

func TestReserve_Concurrent(t *testing.T) {
	svc := newService(nil)
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
		taken   int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Reserve(ctx, reserveReq(base, 30))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				success++
			case errors.Is(err, ErrSlotTaken):
				taken++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, success)
	assert.Equal(t, 9, taken)
}

func TestGetByID_Access(t *testing.T) {
	svc := newService(nil)
	ctx := context.Background()

	created, err := svc.Reserve(ctx, reserveReq(base, 30))
	require.NoError(t, err)

	resp, err := svc.GetByID(ctx, created.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, created.ID.String(), resp.ID)
	assert.Equal(t, "scheduled", resp.Status)

	_, err = svc.GetByID(ctx, created.ID, 3)
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = svc.GetByID(ctx, uuid.New(), 1)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestCancel(t *testing.T) {
	deleter := &recordingDeleter{err: errors.New("calendar is down")}
	svc := newService(deleter)
	ctx := context.Background()

	created, err := svc.Reserve(ctx, reserveReq(base, 30))
	require.NoError(t, err)
	require.NoError(t, svc.Confirm(ctx, created.ID, domain.ExternalEvent{Ref: "evt-1", Link: "https://meet.example/abc"}))

	_, err = svc.Cancel(ctx, created.ID, &models.CancelRequest{UserID: 3})
	assert.ErrorIs(t, err, ErrAccessDenied)

	reason := "не получается"
	resp, err := svc.Cancel(ctx, created.ID, &models.CancelRequest{UserID: 1, CancellationReason: &reason})
	require.NoError(t, err)
	assert.Equal(t, "cancelled", resp.Status)
	require.NotNil(t, resp.CancelledAt)
	assert.Equal(t, &reason, resp.CancellationReason)
	// ошибка календаря не мешает отмене
	assert.Equal(t, []string{"evt-1"}, deleter.calls)

	_, err = svc.Cancel(ctx, created.ID, &models.CancelRequest{UserID: 2})
	assert.ErrorIs(t, err, ErrCannotCancel)

	// отменённый интервал снова свободен
	_, err = svc.Reserve(ctx, reserveReq(base, 30))
	assert.NoError(t, err)
}

func TestConfirm_OnlyFromScheduled(t *testing.T) {
	svc := newService(nil)
	ctx := context.Background()

	created, err := svc.Reserve(ctx, reserveReq(base, 30))
	require.NoError(t, err)

	event := domain.ExternalEvent{Ref: "evt-1"}
	require.NoError(t, svc.Confirm(ctx, created.ID, event))
	assert.ErrorIs(t, svc.Confirm(ctx, created.ID, event), ErrInvalidInput)
	assert.ErrorIs(t, svc.Confirm(ctx, uuid.New(), event), ErrAppointmentNotFound)
}

func TestList(t *testing.T) {
	svc := newService(nil)
	ctx := context.Background()

	_, err := svc.Reserve(ctx, reserveReq(base.Add(time.Hour), 30))
	require.NoError(t, err)
	_, err = svc.Reserve(ctx, reserveReq(base, 30))
	require.NoError(t, err)

	resp, err := svc.List(ctx, &models.ListRequest{UserID: 2})
	require.NoError(t, err)
	require.Len(t, resp.Appointments, 2)
	assert.Equal(t, base.Format(time.RFC3339), resp.Appointments[0].Start)

	resp, err = svc.List(ctx, &models.ListRequest{UserID: 2, Filter: "past"})
	require.NoError(t, err)
	assert.Empty(t, resp.Appointments)

	_, err = svc.List(ctx, &models.ListRequest{UserID: 2, Filter: "later"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCompleteEnded(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store, memory.TxManager{}, nil, 8*time.Hour, nopLogger{}).
		WithTimeProvider(fixedTime(base.Add(2 * time.Hour)))
	ctx := context.Background()

	confirmed, err := svc.Reserve(ctx, reserveReq(base, 30))
	require.NoError(t, err)
	require.NoError(t, svc.Confirm(ctx, confirmed.ID, domain.ExternalEvent{Ref: "evt-1"}))
	scheduled, err := svc.Reserve(ctx, reserveReq(base.Add(30*time.Minute), 30))
	require.NoError(t, err)

	n, err := svc.CompleteEnded(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := store.GetByID(ctx, confirmed.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, got.Status)

	got, err = store.GetByID(ctx, scheduled.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusScheduled, got.Status)
}
