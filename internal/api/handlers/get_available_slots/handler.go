package get_available_slots

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-MeetingService/internal/api/handlers"
	getAvailableSlots "github.com/m04kA/SMC-MeetingService/internal/usecase/get_available_slots"
)

const (
	msgInvalidOwnerID       = "некорректный ID владельца"
	msgMissingDate          = "дата обязательна"
	msgInvalidDate          = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidInput         = "некорректные параметры запроса"
	msgCalendarNotConnected = "календарь владельца не подключен"
	msgCalendarUnavailable  = "календарь владельца временно недоступен, повторите позже"
	msgCalendarUnauthorized = "календарь владельца отклонил доступ"
)

type Handler struct {
	useCase  GetAvailableSlotsUseCase
	location *time.Location
	logger   Logger
}

func NewHandler(useCase GetAvailableSlotsUseCase, location *time.Location, logger Logger) *Handler {
	if location == nil {
		location = time.UTC
	}
	return &Handler{
		useCase:  useCase,
		location: location,
		logger:   logger,
	}
}

// Handle GET /api/v1/owners/{ownerId}/slots
// Query params: date (required, YYYY-MM-DD)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	ownerID, err := strconv.ParseInt(mux.Vars(r)["ownerId"], 10, 64)
	if err != nil || ownerID <= 0 {
		h.logger.Warn("GET /owners/{id}/slots - Invalid owner ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidOwnerID)
		return
	}

	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		h.logger.Warn("GET /owners/{id}/slots - Missing date")
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}

	useCaseReq, err := ToUseCaseRequest(ownerID, dateStr, h.location)
	if err != nil {
		h.logger.Warn("GET /owners/{id}/slots - Invalid date format: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, getAvailableSlots.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, getAvailableSlots.ErrCalendarNotConnected):
			h.logger.Warn("GET /owners/{id}/slots - Calendar not connected: owner_id=%d", ownerID)
			handlers.RespondConflict(w, msgCalendarNotConnected)

		case errors.Is(err, getAvailableSlots.ErrCalendarUnavailable):
			h.logger.Warn("GET /owners/{id}/slots - Calendar unavailable: owner_id=%d, error=%v", ownerID, err)
			handlers.RespondServiceUnavailable(w, msgCalendarUnavailable)

		case errors.Is(err, getAvailableSlots.ErrCalendarUnauthorized):
			h.logger.Warn("GET /owners/{id}/slots - Calendar unauthorized: owner_id=%d", ownerID)
			handlers.RespondBadGateway(w, msgCalendarUnauthorized)

		default:
			h.logger.Error("GET /owners/{id}/slots - Failed to get slots: owner_id=%d, error=%v", ownerID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /owners/{id}/slots - Slots retrieved: owner_id=%d, date=%s, count=%d",
		ownerID, dateStr, len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
