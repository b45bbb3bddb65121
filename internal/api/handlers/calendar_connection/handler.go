package calendar_connection

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-MeetingService/internal/api/handlers"
)

const msgInvalidUserID = "некорректный ID пользователя"

// ConnectionResponse HTTP response model
type ConnectionResponse struct {
	UserID    int64 `json:"userId"`
	Connected bool  `json:"connected"`
}

type Handler struct {
	checker ConnectionChecker
	logger  Logger
}

func NewHandler(checker ConnectionChecker, logger Logger) *Handler {
	return &Handler{
		checker: checker,
		logger:  logger,
	}
}

// Handle GET /api/v1/users/{userId}/calendar-connection
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(mux.Vars(r)["userId"], 10, 64)
	if err != nil || userID <= 0 {
		h.logger.Warn("GET /users/{id}/calendar-connection - Invalid user ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidUserID)
		return
	}

	connected, err := h.checker.IsConnected(r.Context(), userID)
	if err != nil {
		h.logger.Error("GET /users/{id}/calendar-connection - Failed to check connection: user_id=%d, error=%v", userID, err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, ConnectionResponse{UserID: userID, Connected: connected})
}
