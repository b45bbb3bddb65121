package list_appointments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-MeetingService/internal/api/middleware"
	"github.com/m04kA/SMC-MeetingService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-MeetingService/internal/service/appointments"
	"github.com/m04kA/SMC-MeetingService/internal/service/appointments/models"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func TestHandle(t *testing.T) {
	svc := appointments.NewService(memory.NewStore(), memory.TxManager{}, nil, 8*time.Hour, nopLogger{})
	start := time.Now().UTC().Truncate(time.Hour).Add(48 * time.Hour)
	_, err := svc.Reserve(context.Background(), &models.ReserveRequest{
		OwnerID:     1,
		RequesterID: 2,
		Start:       start,
		End:         start.Add(30 * time.Minute),
		Title:       "Intro",
	})
	require.NoError(t, err)

	h := NewHandler(svc, nopLogger{})

	tests := []struct {
		name       string
		userID     int64
		query      string
		wantStatus int
		wantCount  int
	}{
		{name: "owner default filter", userID: 1, wantStatus: http.StatusOK, wantCount: 1},
		{name: "requester upcoming", userID: 2, query: "?filter=upcoming", wantStatus: http.StatusOK, wantCount: 1},
		{name: "past is empty", userID: 2, query: "?filter=past", wantStatus: http.StatusOK, wantCount: 0},
		{name: "stranger", userID: 3, query: "?filter=all", wantStatus: http.StatusOK, wantCount: 0},
		{name: "bad filter", userID: 1, query: "?filter=soon", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments"+tt.query, nil)
			req = req.WithContext(middleware.WithUserID(req.Context(), tt.userID))
			rec := httptest.NewRecorder()

			h.Handle(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus != http.StatusOK {
				return
			}
			var resp models.AppointmentListResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Len(t, resp.Appointments, tt.wantCount)
		})
	}
}

func TestHandle_MissingUser(t *testing.T) {
	svc := appointments.NewService(memory.NewStore(), memory.TxManager{}, nil, 8*time.Hour, nopLogger{})
	rec := httptest.NewRecorder()

	NewHandler(svc, nopLogger{}).Handle(rec, httptest.NewRequest(http.MethodGet, "/api/v1/appointments", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
