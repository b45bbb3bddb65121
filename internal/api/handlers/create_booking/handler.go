package create_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-MeetingService/internal/api/handlers"
	"github.com/m04kA/SMC-MeetingService/internal/api/middleware"
	createBooking "github.com/m04kA/SMC-MeetingService/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgInvalidTime          = "некорректный формат времени, ожидается RFC 3339"
	msgMissingUserID        = "отсутствует ID пользователя"
	msgInvalidInput         = "некорректные данные встречи"
	msgTooLateToBook        = "слишком поздно для бронирования этого слота"
	msgOwnerNotFound        = "владелец не найден"
	msgRequesterNotFound    = "пользователь не найден"
	msgCalendarNotConnected = "календарь владельца не подключен"
	msgCalendarUnauthorized = "календарь владельца отклонил доступ"
	msgSlotNoLongerFree     = "выбранный слот больше недоступен"
	msgSlotTaken            = "выбранный слот уже занят"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/appointments
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /appointments - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /appointments - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(userID)
	if err != nil {
		h.logger.Warn("POST /appointments - Failed to parse time: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTime)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createBooking.ErrSlotTaken):
			h.logger.Warn("POST /appointments - Slot taken: owner_id=%d, requester_id=%d", req.OwnerID, userID)
			handlers.RespondConflict(w, msgSlotTaken)

		case errors.Is(err, createBooking.ErrSlotNoLongerAvailable):
			h.logger.Warn("POST /appointments - Slot no longer available: owner_id=%d, requester_id=%d", req.OwnerID, userID)
			handlers.RespondConflict(w, msgSlotNoLongerFree)

		case errors.Is(err, createBooking.ErrCalendarNotConnected):
			handlers.RespondConflict(w, msgCalendarNotConnected)

		case errors.Is(err, createBooking.ErrCalendarUnauthorized):
			h.logger.Warn("POST /appointments - Calendar unauthorized: owner_id=%d", req.OwnerID)
			handlers.RespondBadGateway(w, msgCalendarUnauthorized)

		case errors.Is(err, createBooking.ErrOwnerNotFound):
			handlers.RespondNotFound(w, msgOwnerNotFound)

		case errors.Is(err, createBooking.ErrRequesterNotFound):
			handlers.RespondNotFound(w, msgRequesterNotFound)

		case errors.Is(err, createBooking.ErrTooLateToBook):
			handlers.RespondBadRequest(w, msgTooLateToBook)

		case errors.Is(err, createBooking.ErrInvalidInput):
			h.logger.Warn("POST /appointments - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /appointments - Failed to create appointment: owner_id=%d, requester_id=%d, error=%v",
				req.OwnerID, userID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	if result.Warning != "" {
		h.logger.Warn("POST /appointments - Appointment created with warning: id=%s, warning=%s",
			result.Appointment.ID, result.Warning)
	} else {
		h.logger.Info("POST /appointments - Appointment created: id=%s, owner_id=%d, requester_id=%d",
			result.Appointment.ID, req.OwnerID, userID)
	}
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
