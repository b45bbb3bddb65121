package availability

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-MeetingService/internal/domain"
	"github.com/m04kA/SMC-MeetingService/internal/service/availability/models"
)

// Service сервис шаблонов доступности
type Service struct {
	rulesRepo RulesRepository
	txManager TransactionManager
	maxRules  int
	logger    Logger
}

// NewService создает новый экземпляр сервиса доступности
func NewService(
	rulesRepo RulesRepository,
	txManager TransactionManager,
	maxRules int,
	logger Logger,
) *Service {
	if maxRules <= 0 {
		maxRules = domain.DefaultMaxRules
	}
	return &Service{
		rulesRepo: rulesRepo,
		txManager: txManager,
		maxRules:  maxRules,
		logger:    logger,
	}
}

// GetRules получает набор правил владельца
// Отсутствие правил не ошибка, возвращается пустой список
func (s *Service) GetRules(ctx context.Context, ownerID int64) (*models.RulesResponse, error) {
	if ownerID <= 0 {
		return nil, fmt.Errorf("%w: ownerID must be positive", ErrInvalidInput)
	}

	rules, err := s.rulesRepo.GetRules(ctx, ownerID)
	if err != nil {
		s.logger.Error("GetRules: repository error for owner=%d: %v", ownerID, err)
		return nil, fmt.Errorf("%w: GetRules - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainRules(ownerID, rules), nil
}

// ReplaceRules заменяет весь набор правил владельца
// Новый набор полностью валидируется до записи, при ошибке прежний набор не меняется
func (s *Service) ReplaceRules(ctx context.Context, req *models.ReplaceRulesRequest) (*models.RulesResponse, error) {
	s.logger.Info("ReplaceRules: replacing %d rules of owner=%d by user=%d", len(req.Rules), req.OwnerID, req.UserID)

	if req.OwnerID <= 0 {
		return nil, fmt.Errorf("%w: ownerID must be positive", ErrInvalidInput)
	}
	if req.UserID != req.OwnerID {
		s.logger.Warn("ReplaceRules: user=%d is not owner=%d", req.UserID, req.OwnerID)
		return nil, ErrAccessDenied
	}
	if len(req.Rules) > s.maxRules {
		s.logger.Warn("ReplaceRules: owner=%d sent %d rules, limit is %d", req.OwnerID, len(req.Rules), s.maxRules)
		return nil, fmt.Errorf("%w: at most %d rules allowed", ErrTooManyRules, s.maxRules)
	}

	rules := models.ToDomainRules(req.OwnerID, req.Rules)
	for i, rule := range rules {
		if err := rule.Validate(); err != nil {
			s.logger.Warn("ReplaceRules: rule #%d of owner=%d is invalid: %v", i, req.OwnerID, err)
			return nil, fmt.Errorf("%w: rule #%d: %v", ErrInvalidRules, i, err)
		}
	}

	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		return s.rulesRepo.ReplaceRules(ctx, req.OwnerID, rules)
	})
	if err != nil {
		s.logger.Error("ReplaceRules: repository error for owner=%d: %v", req.OwnerID, err)
		return nil, fmt.Errorf("%w: ReplaceRules - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("ReplaceRules: owner=%d now has %d rules", req.OwnerID, len(rules))
	return s.GetRules(ctx, req.OwnerID)
}
