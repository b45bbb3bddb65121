package models

import "github.com/m04kA/SMC-MeetingService/internal/domain"

// RuleDTO правило доступности в формате API
type RuleDTO struct {
	Weekday     int `json:"weekday"`     // 0 = воскресенье
	StartMinute int `json:"startMinute"` // минуты от полуночи
	EndMinute   int `json:"endMinute"`
}

// ReplaceRulesRequest запрос на замену всего набора правил владельца
type ReplaceRulesRequest struct {
	UserID  int64     `json:"-"`
	OwnerID int64     `json:"-"`
	Rules   []RuleDTO `json:"rules"`
}

// RulesResponse ответ с набором правил владельца
type RulesResponse struct {
	OwnerID int64     `json:"ownerId"`
	Rules   []RuleDTO `json:"rules"`
}

// ToDomainRules конвертирует DTO в domain модели
func ToDomainRules(ownerID int64, rules []RuleDTO) []domain.AvailabilityRule {
	result := make([]domain.AvailabilityRule, 0, len(rules))
	for _, r := range rules {
		result = append(result, domain.AvailabilityRule{
			OwnerID:     ownerID,
			Weekday:     r.Weekday,
			StartMinute: r.StartMinute,
			EndMinute:   r.EndMinute,
		})
	}
	return result
}

// FromDomainRules конвертирует domain модели в DTO
func FromDomainRules(ownerID int64, rules []domain.AvailabilityRule) *RulesResponse {
	resp := &RulesResponse{
		OwnerID: ownerID,
		Rules:   make([]RuleDTO, 0, len(rules)),
	}
	for _, r := range rules {
		resp.Rules = append(resp.Rules, RuleDTO{
			Weekday:     r.Weekday,
			StartMinute: r.StartMinute,
			EndMinute:   r.EndMinute,
		})
	}
	return resp
}
