package get_availability

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-MeetingService/internal/domain"
	"github.com/m04kA/SMC-MeetingService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-MeetingService/internal/service/availability"
	"github.com/m04kA/SMC-MeetingService/internal/service/availability/models"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func TestHandle(t *testing.T) {
	store := memory.NewStore()
	require.NoError(t, store.ReplaceRules(context.Background(), 1, []domain.AvailabilityRule{
		{OwnerID: 1, Weekday: 1, StartMinute: 540, EndMinute: 1020},
	}))
	h := NewHandler(availability.NewService(store, memory.TxManager{}, 0, nopLogger{}), nopLogger{})

	tests := []struct {
		name       string
		ownerID    string
		wantStatus int
		wantRules  int
	}{
		{name: "owner with rules", ownerID: "1", wantStatus: http.StatusOK, wantRules: 1},
		{name: "owner without rules", ownerID: "5", wantStatus: http.StatusOK, wantRules: 0},
		{name: "bad id", ownerID: "abc", wantStatus: http.StatusBadRequest},
		{name: "non-positive id", ownerID: "0", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/owners/"+tt.ownerID+"/availability", nil)
			req = mux.SetURLVars(req, map[string]string{"ownerId": tt.ownerID})
			rec := httptest.NewRecorder()

			h.Handle(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus != http.StatusOK {
				return
			}
			var resp models.RulesResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Len(t, resp.Rules, tt.wantRules)
		})
	}
}
