package entity_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"stock_backtest/internal/feature/backtest/domain"
	"stock_backtest/internal/feature/backtest/domain/entity"
)

func TestParams_Validate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(p *entity.Params)
		wantErr bool
	}{
		{name: "defaults are valid", mutate: func(p *entity.Params) {}},
		{name: "zero max wait is allowed", mutate: func(p *entity.Params) { p.MaxWaitDays = 0 }},
		{name: "zero commission is allowed", mutate: func(p *entity.Params) { p.CommissionRate = decimal.Zero }},
		{name: "full allocation is allowed", mutate: func(p *entity.Params) { p.PositionPct = decimal.NewFromInt(1) }},
		{name: "zero profit target", mutate: func(p *entity.Params) { p.ProfitTarget = decimal.Zero }, wantErr: true},
		{name: "negative stop loss", mutate: func(p *entity.Params) { p.StopLoss = decimal.NewFromFloat(-0.05) }, wantErr: true},
		{name: "zero max hold", mutate: func(p *entity.Params) { p.MaxHoldDays = 0 }, wantErr: true},
		{name: "zero lookback", mutate: func(p *entity.Params) { p.LookbackDays = 0 }, wantErr: true},
		{name: "negative max wait", mutate: func(p *entity.Params) { p.MaxWaitDays = -1 }, wantErr: true},
		{name: "position pct above one", mutate: func(p *entity.Params) { p.PositionPct = decimal.NewFromFloat(1.5) }, wantErr: true},
		{name: "commission of one", mutate: func(p *entity.Params) { p.CommissionRate = decimal.NewFromInt(1) }, wantErr: true},
		{name: "no capital", mutate: func(p *entity.Params) { p.InitialCapital = decimal.Zero }, wantErr: true},
		{name: "zero lot", mutate: func(p *entity.Params) { p.LotSize = 0 }, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := entity.DefaultParams()
			tc.mutate(&p)

			err := p.Validate()
			if tc.wantErr {
				assert.True(t, errors.Is(err, domain.ErrInvalidParams), "got %v", err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
