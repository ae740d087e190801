package repository

import (
	"context"
	"time"

	"steinberg/sources/persistence/entities"
	"steinberg/sources/platform"
	"steinberg/sources/tracing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ExchangesRepository struct {
	db *gorm.DB
}

func NewExchangesRepository(db *gorm.DB) *ExchangesRepository {
	return &ExchangesRepository{db: db}
}

func (x *ExchangesRepository) SaveExchange(logger *tracing.Logger, exchange *entities.Exchange) error {
	ctx, cancel := platform.ContextTimeoutVal(context.Background(), 20*time.Second)
	defer cancel()

	if err := x.db.WithContext(ctx).Create(exchange).Error; err != nil {
		logger.E("Failed to save exchange", tracing.InnerError, err)
		return err
	}

	logger.I("exchange_saved", tracing.SessionId, exchange.SessionID, tracing.AiModel, exchange.Model, tracing.AiTokens, exchange.PromptTokens+exchange.ResponseTokens, tracing.AiCost, exchange.Cost)
	return nil
}

func (x *ExchangesRepository) GetTotalCost(logger *tracing.Logger) (decimal.Decimal, error) {
	defer tracing.ProfilePoint(logger, "Exchanges get total cost completed", "repository.exchanges.get.total.cost")()
	ctx, cancel := platform.ContextTimeoutVal(context.Background(), 20*time.Second)
	defer cancel()

	var totalCost decimal.NullDecimal
	err := x.db.WithContext(ctx).
		Model(&entities.Exchange{}).
		Select("SUM(cost)").
		Row().Scan(&totalCost)

	if err != nil {
		logger.E("Failed to get total cost", tracing.InnerError, err)
		return decimal.Zero, err
	}

	if !totalCost.Valid {
		return decimal.Zero, nil
	}
	return totalCost.Decimal, nil
}

func (x *ExchangesRepository) GetSessionCostToday(logger *tracing.Logger, session string) (decimal.Decimal, error) {
	defer tracing.ProfilePoint(logger, "Exchanges get session cost completed", "repository.exchanges.get.session.cost", tracing.SessionId, session)()
	ctx, cancel := platform.ContextTimeoutVal(context.Background(), 20*time.Second)
	defer cancel()

	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var totalCost decimal.NullDecimal
	err := x.db.WithContext(ctx).
		Model(&entities.Exchange{}).
		Where("session_id = ? AND created_at >= ?", session, startOfDay).
		Select("SUM(cost)").
		Row().Scan(&totalCost)

	if err != nil {
		logger.E("Failed to get session cost", tracing.InnerError, err)
		return decimal.Zero, err
	}

	if !totalCost.Valid {
		return decimal.Zero, nil
	}
	return totalCost.Decimal, nil
}
