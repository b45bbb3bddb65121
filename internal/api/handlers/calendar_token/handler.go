package calendar_token

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-MeetingService/internal/api/handlers"
)

const (
	msgInvalidUserID      = "некорректный ID пользователя"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingToken       = "refresh token обязателен"
)

type Handler struct {
	store  TokenStore
	logger Logger
}

func NewHandler(store TokenStore, logger Logger) *Handler {
	return &Handler{
		store:  store,
		logger: logger,
	}
}

// Save PUT /internal/v1/users/{userId}/calendar-token
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r, "PUT")
	if !ok {
		return
	}

	var req SaveTokenRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /users/{id}/calendar-token - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	token := strings.TrimSpace(req.RefreshToken)
	if token == "" {
		handlers.RespondBadRequest(w, msgMissingToken)
		return
	}

	if err := h.store.SaveRefreshToken(r.Context(), userID, token); err != nil {
		h.logger.Error("PUT /users/{id}/calendar-token - Failed to save token: user_id=%d, error=%v", userID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("PUT /users/{id}/calendar-token - Calendar connected: user_id=%d", userID)
	w.WriteHeader(http.StatusNoContent)
}

// Delete DELETE /internal/v1/users/{userId}/calendar-token
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r, "DELETE")
	if !ok {
		return
	}

	if err := h.store.DeleteRefreshToken(r.Context(), userID); err != nil {
		h.logger.Error("DELETE /users/{id}/calendar-token - Failed to delete token: user_id=%d, error=%v", userID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("DELETE /users/{id}/calendar-token - Calendar disconnected: user_id=%d", userID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) userID(w http.ResponseWriter, r *http.Request, method string) (int64, bool) {
	userID, err := strconv.ParseInt(mux.Vars(r)["userId"], 10, 64)
	if err != nil || userID <= 0 {
		h.logger.Warn("%s /users/{id}/calendar-token - Invalid user ID: %v", method, err)
		handlers.RespondBadRequest(w, msgInvalidUserID)
		return 0, false
	}
	return userID, true
}
