package update_availability

import "github.com/m04kA/SMC-MeetingService/internal/service/availability/models"

// UpdateAvailabilityRequest HTTP request model
// Набор правил заменяется целиком, пустой список удаляет все правила
type UpdateAvailabilityRequest struct {
	Rules []models.RuleDTO `json:"rules"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *UpdateAvailabilityRequest) ToServiceRequest(userID, ownerID int64) *models.ReplaceRulesRequest {
	rules := r.Rules
	if rules == nil {
		rules = []models.RuleDTO{}
	}
	return &models.ReplaceRulesRequest{
		UserID:  userID,
		OwnerID: ownerID,
		Rules:   rules,
	}
}
