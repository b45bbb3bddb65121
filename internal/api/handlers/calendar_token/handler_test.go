package calendar_token

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-MeetingService/internal/api/handlers/calendar_connection"
	"github.com/m04kA/SMC-MeetingService/internal/infra/storage/memory"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type tokenChecker struct{ store *memory.Store }

func (c tokenChecker) IsConnected(ctx context.Context, ownerID int64) (bool, error) {
	_, ok, err := c.store.GetRefreshToken(ctx, ownerID)
	return ok, err
}

func TestTokenLifecycle(t *testing.T) {
	store := memory.NewStore()
	r := mux.NewRouter()
	tokens := NewHandler(store, nopLogger{})
	r.HandleFunc("/internal/v1/users/{userId}/calendar-token", tokens.Save).Methods(http.MethodPut)
	r.HandleFunc("/internal/v1/users/{userId}/calendar-token", tokens.Delete).Methods(http.MethodDelete)
	r.HandleFunc("/api/v1/users/{userId}/calendar-connection",
		calendar_connection.NewHandler(tokenChecker{store}, nopLogger{}).Handle).Methods(http.MethodGet)

	do := func(method, target, body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(method, target, strings.NewReader(body)))
		return rec
	}

	rec := do(http.MethodGet, "/api/v1/users/5/calendar-connection", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"userId":5,"connected":false}`, rec.Body.String())

	assert.Equal(t, http.StatusBadRequest, do(http.MethodPut, "/internal/v1/users/5/calendar-token", `{"refreshToken":"  "}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(http.MethodPut, "/internal/v1/users/x/calendar-token", `{"refreshToken":"rt"}`).Code)
	assert.Equal(t, http.StatusNoContent, do(http.MethodPut, "/internal/v1/users/5/calendar-token", `{"refreshToken":"rt-1"}`).Code)

	rec = do(http.MethodGet, "/api/v1/users/5/calendar-connection", "")
	assert.JSONEq(t, `{"userId":5,"connected":true}`, rec.Body.String())

	assert.Equal(t, http.StatusNoContent, do(http.MethodDelete, "/internal/v1/users/5/calendar-token", "").Code)
	rec = do(http.MethodGet, "/api/v1/users/5/calendar-connection", "")
	assert.JSONEq(t, `{"userId":5,"connected":false}`, rec.Body.String())
}
