package availability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-MeetingService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-MeetingService/internal/service/availability/models"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func replace(owner int64, rules ...models.RuleDTO) *models.ReplaceRulesRequest {
	return &models.ReplaceRulesRequest{UserID: owner, OwnerID: owner, Rules: rules}
}

func TestReplaceRules(t *testing.T) {
	svc := NewService(memory.NewStore(), memory.TxManager{}, 3, nopLogger{})
	ctx := context.Background()

	resp, err := svc.ReplaceRules(ctx, replace(1,
		models.RuleDTO{Weekday: 3, StartMinute: 600, EndMinute: 720},
		models.RuleDTO{Weekday: 1, StartMinute: 540, EndMinute: 1020},
	))
	require.NoError(t, err)
	assert.Equal(t, []models.RuleDTO{
		{Weekday: 1, StartMinute: 540, EndMinute: 1020},
		{Weekday: 3, StartMinute: 600, EndMinute: 720},
	}, resp.Rules)

	// замена целиком, а не слияние
	resp, err = svc.ReplaceRules(ctx, replace(1, models.RuleDTO{Weekday: 5, StartMinute: 0, EndMinute: 60}))
	require.NoError(t, err)
	assert.Equal(t, []models.RuleDTO{{Weekday: 5, StartMinute: 0, EndMinute: 60}}, resp.Rules)

	resp, err = svc.ReplaceRules(ctx, replace(1))
	require.NoError(t, err)
	assert.Empty(t, resp.Rules)
}

func TestReplaceRules_InvalidKeepsPriorSet(t *testing.T) {
	svc := NewService(memory.NewStore(), memory.TxManager{}, 100, nopLogger{})
	ctx := context.Background()

	prior := models.RuleDTO{Weekday: 1, StartMinute: 540, EndMinute: 1020}
	_, err := svc.ReplaceRules(ctx, replace(1, prior))
	require.NoError(t, err)

	tests := []struct {
		name    string
		rules   []models.RuleDTO
		wantErr error
	}{
		{name: "empty range", rules: []models.RuleDTO{{Weekday: 1, StartMinute: 600, EndMinute: 600}}, wantErr: ErrInvalidRules},
		{name: "weekday out of range", rules: []models.RuleDTO{{Weekday: 7, StartMinute: 0, EndMinute: 60}}, wantErr: ErrInvalidRules},
		{name: "past midnight", rules: []models.RuleDTO{{Weekday: 2, StartMinute: 1380, EndMinute: 1500}}, wantErr: ErrInvalidRules},
		{name: "one bad rule among good", rules: []models.RuleDTO{prior, {Weekday: 2, StartMinute: 700, EndMinute: 600}}, wantErr: ErrInvalidRules},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ReplaceRules(ctx, replace(1, tt.rules...))
			assert.ErrorIs(t, err, tt.wantErr)

			resp, err := svc.GetRules(ctx, 1)
			require.NoError(t, err)
			assert.Equal(t, []models.RuleDTO{prior}, resp.Rules)
		})
	}
}

func TestReplaceRules_Limits(t *testing.T) {
	svc := NewService(memory.NewStore(), memory.TxManager{}, 1, nopLogger{})
	ctx := context.Background()

	_, err := svc.ReplaceRules(ctx, replace(1,
		models.RuleDTO{Weekday: 1, StartMinute: 0, EndMinute: 60},
		models.RuleDTO{Weekday: 2, StartMinute: 0, EndMinute: 60},
	))
	assert.ErrorIs(t, err, ErrTooManyRules)

	req := replace(1)
	req.UserID = 2
	_, err = svc.ReplaceRules(ctx, req)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestGetRules_Empty(t *testing.T) {
	svc := NewService(memory.NewStore(), memory.TxManager{}, 0, nopLogger{})

	resp, err := svc.GetRules(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), resp.OwnerID)
	assert.NotNil(t, resp.Rules)
	assert.Empty(t, resp.Rules)

	_, err = svc.GetRules(context.Background(), 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
