package create_booking

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-MeetingService/internal/api/middleware"
	"github.com/m04kA/SMC-MeetingService/internal/domain"
	createBooking "github.com/m04kA/SMC-MeetingService/internal/usecase/create_booking"
)

type mockUseCase struct{ mock.Mock }

func (m *mockUseCase) Execute(ctx context.Context, req *createBooking.Request) (*createBooking.Response, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*createBooking.Response)
	return resp, args.Error(1)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

const validBody = `{"ownerId":1,"start":"2025-06-02T09:00:00Z","end":"2025-06-02T09:30:00Z"}`

func newRequest(body string, userID int64) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments", strings.NewReader(body))
	if userID > 0 {
		req = req.WithContext(middleware.WithUserID(req.Context(), userID))
	}
	return req
}

func TestHandle_Created(t *testing.T) {
	uc := &mockUseCase{}
	start := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	ref, link := "evt-1", "https://meet.example/abc"
	appointment := &domain.Appointment{
		ID:                uuid.New(),
		OwnerID:           1,
		RequesterID:       2,
		Start:             start,
		End:               start.Add(30 * time.Minute),
		Title:             domain.DefaultTitle,
		Status:            domain.StatusConfirmed,
		ExternalEventRef:  &ref,
		ExternalEventLink: &link,
	}
	uc.On("Execute", mock.Anything, mock.MatchedBy(func(r *createBooking.Request) bool {
		return r.OwnerID == 1 && r.RequesterID == 2 && r.Start.Equal(start)
	})).Return(&createBooking.Response{
		Appointment: appointment,
		Event:       &domain.ExternalEvent{Ref: ref, Link: link},
	}, nil)

	rec := httptest.NewRecorder()
	NewHandler(uc, nopLogger{}).Handle(rec, newRequest(validBody, 2))

	require.Equal(t, http.StatusCreated, rec.Code)
	var body BookingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, appointment.ID.String(), body.Appointment.ID)
	assert.Equal(t, "confirmed", body.Appointment.Status)
	require.NotNil(t, body.Event)
	assert.Equal(t, ref, body.Event.ExternalRef)
	assert.Empty(t, body.Warning)
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "slot taken", err: createBooking.ErrSlotTaken, wantStatus: http.StatusConflict},
		{name: "no longer available", err: createBooking.ErrSlotNoLongerAvailable, wantStatus: http.StatusConflict},
		{name: "not connected", err: createBooking.ErrCalendarNotConnected, wantStatus: http.StatusConflict},
		{name: "unauthorized calendar", err: fmt.Errorf("%w: 401", createBooking.ErrCalendarUnauthorized), wantStatus: http.StatusBadGateway},
		{name: "owner not found", err: createBooking.ErrOwnerNotFound, wantStatus: http.StatusNotFound},
		{name: "requester not found", err: createBooking.ErrRequesterNotFound, wantStatus: http.StatusNotFound},
		{name: "too late", err: createBooking.ErrTooLateToBook, wantStatus: http.StatusBadRequest},
		{name: "invalid", err: fmt.Errorf("%w: start must be before end", createBooking.ErrInvalidInput), wantStatus: http.StatusBadRequest},
		{name: "internal", err: createBooking.ErrInternal, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockUseCase{}
			uc.On("Execute", mock.Anything, mock.Anything).Return(nil, tt.err)

			rec := httptest.NewRecorder()
			NewHandler(uc, nopLogger{}).Handle(rec, newRequest(validBody, 2))

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestHandle_BadRequest(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		userID     int64
		wantStatus int
	}{
		{name: "no user", body: validBody, wantStatus: http.StatusUnauthorized},
		{name: "broken json", body: `{"ownerId":`, userID: 2, wantStatus: http.StatusBadRequest},
		{name: "unknown field", body: `{"ownerId":1,"slot":"x"}`, userID: 2, wantStatus: http.StatusBadRequest},
		{name: "bad time", body: `{"ownerId":1,"start":"tomorrow","end":"2025-06-02T09:30:00Z"}`, userID: 2, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockUseCase{}

			rec := httptest.NewRecorder()
			NewHandler(uc, nopLogger{}).Handle(rec, newRequest(tt.body, tt.userID))

			assert.Equal(t, tt.wantStatus, rec.Code)
			uc.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
		})
	}
}
