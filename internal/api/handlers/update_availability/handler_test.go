package update_availability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-MeetingService/internal/api/middleware"
	"github.com/m04kA/SMC-MeetingService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-MeetingService/internal/service/availability"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func TestHandle(t *testing.T) {
	svc := availability.NewService(memory.NewStore(), memory.TxManager{}, 2, nopLogger{})
	h := NewHandler(svc, nopLogger{})

	tests := []struct {
		name       string
		userID     int64
		body       string
		wantStatus int
	}{
		{name: "owner replaces rules", userID: 1, body: `{"rules":[{"weekday":1,"startMinute":540,"endMinute":1020}]}`, wantStatus: http.StatusOK},
		{name: "other user", userID: 2, body: `{"rules":[]}`, wantStatus: http.StatusForbidden},
		{name: "empty range", userID: 1, body: `{"rules":[{"weekday":1,"startMinute":600,"endMinute":600}]}`, wantStatus: http.StatusBadRequest},
		{name: "too many", userID: 1, body: `{"rules":[{"weekday":1,"startMinute":0,"endMinute":60},{"weekday":2,"startMinute":0,"endMinute":60},{"weekday":3,"startMinute":0,"endMinute":60}]}`, wantStatus: http.StatusBadRequest},
		{name: "broken body", userID: 1, body: `rules`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, "/api/v1/owners/1/availability", strings.NewReader(tt.body))
			req = mux.SetURLVars(req, map[string]string{"ownerId": "1"})
			req = req.WithContext(middleware.WithUserID(req.Context(), tt.userID))
			rec := httptest.NewRecorder()

			h.Handle(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}

	// после неудачных попыток остаётся первый набор
	rules, err := svc.GetRules(httptest.NewRequest(http.MethodGet, "/", nil).Context(), 1)
	require.NoError(t, err)
	require.Len(t, rules.Rules, 1)
	assert.Equal(t, 540, rules.Rules[0].StartMinute)
}
