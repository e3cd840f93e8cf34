package repository

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/topup-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/topup-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/topup-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/topup-ledger/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
)

// SettlementEventRepository implements the settlement outbox using GORM
type SettlementEventRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewSettlementEventRepository creates a new SettlementEventRepository instance
func NewSettlementEventRepository(db *gorm.DB, logger coreport.Logger) *SettlementEventRepository {
	return &SettlementEventRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

// Create records the event; the unique index on transaction_id rejects a second one
func (r *SettlementEventRepository) Create(ctx context.Context, event *entity.SettlementEvent) error {
	row := model.SettlementEvent{
		EventID:       event.EventID,
		TransactionID: event.TransactionID,
		UserID:        event.UserID,
		ProductLabel:  event.ProductLabel,
		Amount:        event.Amount,
		Status:        string(event.Status),
		Timestamp:     event.Timestamp,
		PublishedAt:   event.PublishedAt,
	}

	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if r.errorClassifier.IsDuplicateKeyError(err) {
			r.logger.Warn("Settlement event already recorded", map[string]any{
				"transaction_id": event.TransactionID,
			})
			return errs.ErrDuplicateSettlementEvent
		}
		return wrapDatabaseError(r.logger, r.errorClassifier, "create settlement event", err, map[string]any{
			"event_id":       event.EventID,
			"transaction_id": event.TransactionID,
		})
	}
	return nil
}

// FindUnpublished returns the oldest events not yet handed to the bus
func (r *SettlementEventRepository) FindUnpublished(ctx context.Context, limit int) ([]*entity.SettlementEvent, error) {
	var rows []model.SettlementEvent
	err := r.db.WithContext(ctx).
		Where("published_at IS NULL").
		Order("id ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, wrapDatabaseError(r.logger, r.errorClassifier, "find unpublished events", err, nil)
	}

	events := make([]*entity.SettlementEvent, 0, len(rows))
	for _, row := range rows {
		events = append(events, &entity.SettlementEvent{
			EventID:       row.EventID,
			TransactionID: row.TransactionID,
			UserID:        row.UserID,
			ProductLabel:  row.ProductLabel,
			Amount:        row.Amount,
			Status:        entity.TransactionStatus(row.Status),
			Timestamp:     row.Timestamp,
			PublishedAt:   row.PublishedAt,
		})
	}
	return events, nil
}

// MarkPublished stamps the event as delivered
func (r *SettlementEventRepository) MarkPublished(ctx context.Context, eventID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&model.SettlementEvent{}).
		Where("event_id = ?", eventID).
		Update("published_at", publishedAt)
	if result.Error != nil {
		return wrapDatabaseError(r.logger, r.errorClassifier, "mark event published", result.Error, map[string]any{
			"event_id": eventID,
		})
	}
	if result.RowsAffected == 0 {
		return errs.ErrNotFound
	}
	return nil
}
