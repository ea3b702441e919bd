package db

import (
	"context"

	"github.com/NasaVasa/pricewatch/internal/domain"
	"gorm.io/gorm"
)

type AlertRepository struct {
	db *gorm.DB
}

func NewAlertRepository(db *gorm.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

func (r *AlertRepository) Create(ctx context.Context, alert *domain.PriceAlert) error {
	model := mapAlertToModel(*alert)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return domain.NewStorageError("create alert", err)
	}
	*alert = mapAlertToDomain(model)
	return nil
}

func (r *AlertRepository) ListActiveByProduct(ctx context.Context, productID uint) ([]domain.PriceAlert, error) {
	var models []alertModel
	if err := r.db.WithContext(ctx).Where("product_id = ? AND active = ?", productID, true).Order("id").Find(&models).Error; err != nil {
		return nil, domain.NewStorageError("list product alerts", err)
	}
	return mapAlertsToDomain(models), nil
}

func (r *AlertRepository) ListActiveByRecipient(ctx context.Context, recipient string) ([]domain.PriceAlert, error) {
	var models []alertModel
	if err := r.db.WithContext(ctx).Where("recipient = ? AND active = ?", recipient, true).Order("id").Find(&models).Error; err != nil {
		return nil, domain.NewStorageError("list recipient alerts", err)
	}
	return mapAlertsToDomain(models), nil
}

// Deactivate only updates rows that are still active.
func (r *AlertRepository) Deactivate(ctx context.Context, alertID uint) error {
	result := r.db.WithContext(ctx).Model(&alertModel{}).Where("id = ? AND active = ?", alertID, true).Update("active", false)
	if result.Error != nil {
		return domain.NewStorageError("deactivate alert", result.Error)
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&alertModel{}).Where("id = ?", alertID).Count(&count).Error; err != nil {
			return domain.NewStorageError("deactivate alert", err)
		}
		if count == 0 {
			return domain.ErrNotFound
		}
		return domain.ErrAlertInactive
	}
	return nil
}

func mapAlertsToDomain(models []alertModel) []domain.PriceAlert {
	alerts := make([]domain.PriceAlert, 0, len(models))
	for _, model := range models {
		alerts = append(alerts, mapAlertToDomain(model))
	}
	return alerts
}

func mapAlertToDomain(model alertModel) domain.PriceAlert {
	return domain.PriceAlert{
		ID:          model.ID,
		ProductID:   model.ProductID,
		Recipient:   model.Recipient,
		TargetPrice: model.TargetPrice,
		Active:      model.Active,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

func mapAlertToModel(alert domain.PriceAlert) alertModel {
	return alertModel{
		ID:          alert.ID,
		ProductID:   alert.ProductID,
		Recipient:   alert.Recipient,
		TargetPrice: alert.TargetPrice,
		Active:      alert.Active,
		CreatedAt:   alert.CreatedAt,
		UpdatedAt:   alert.UpdatedAt,
	}
}
