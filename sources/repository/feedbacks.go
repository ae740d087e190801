package repository

import (
	"context"
	"time"

	"steinberg/sources/persistence/entities"
	"steinberg/sources/platform"
	"steinberg/sources/tracing"

	"gorm.io/gorm"
)

type FeedbacksRepository struct {
	db *gorm.DB
}

func NewFeedbacksRepository(db *gorm.DB) *FeedbacksRepository {
	return &FeedbacksRepository{db: db}
}

func (x *FeedbacksRepository) CreateFeedback(logger *tracing.Logger, feedback *entities.Feedback) error {
	defer tracing.ProfilePoint(logger, "Feedbacks create completed", "repository.feedbacks.create", tracing.SessionId, feedback.SessionID)()

	ctx, cancel := platform.ContextTimeoutVal(context.Background(), 20*time.Second)
	defer cancel()

	if err := x.db.WithContext(ctx).Create(feedback).Error; err != nil {
		logger.E("Failed to create feedback", tracing.InnerError, err)
		return err
	}

	logger.I("feedback_created", tracing.SessionId, feedback.SessionID, tracing.MessageId, feedback.MessageID, "helpful", feedback.Helpful)
	return nil
}

func (x *FeedbacksRepository) GetFeedbackStats(logger *tracing.Logger) (helpful int64, unhelpful int64, err error) {
	defer tracing.ProfilePoint(logger, "Feedbacks get stats completed", "repository.feedbacks.get.stats")()

	ctx, cancel := platform.ContextTimeoutVal(context.Background(), 20*time.Second)
	defer cancel()

	if err = x.db.WithContext(ctx).Model(&entities.Feedback{}).Where("helpful = ?", true).Count(&helpful).Error; err != nil {
		logger.E("Failed to count helpful feedback", tracing.InnerError, err)
		return 0, 0, err
	}

	if err = x.db.WithContext(ctx).Model(&entities.Feedback{}).Where("helpful = ?", false).Count(&unhelpful).Error; err != nil {
		logger.E("Failed to count unhelpful feedback", tracing.InnerError, err)
		return 0, 0, err
	}

	return helpful, unhelpful, nil
}
