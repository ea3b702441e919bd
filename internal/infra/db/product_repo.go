package db

import (
	"context"
	"errors"
	"time"

	"github.com/NasaVasa/pricewatch/internal/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) ListDue(ctx context.Context, cutoff time.Time) ([]domain.Product, error) {
	var models []productModel
	if err := r.db.WithContext(ctx).
		Where("last_checked IS NULL OR last_checked < ?", cutoff).
		Order("id").
		Find(&models).Error; err != nil {
		return nil, domain.NewStorageError("list due products", err)
	}
	return mapProductsToDomain(models), nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id uint) (*domain.Product, error) {
	var model productModel
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.NewStorageError("get product", err)
	}
	product := mapProductToDomain(model)
	return &product, nil
}

func (r *ProductRepository) GetByURL(ctx context.Context, url string) (*domain.Product, error) {
	var model productModel
	if err := r.db.WithContext(ctx).Where("url = ?", url).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.NewStorageError("get product by url", err)
	}
	product := mapProductToDomain(model)
	return &product, nil
}

func (r *ProductRepository) List(ctx context.Context, offset, limit int) ([]domain.Product, error) {
	var models []productModel
	if err := r.db.WithContext(ctx).Order("id").Offset(offset).Limit(limit).Find(&models).Error; err != nil {
		return nil, domain.NewStorageError("list products", err)
	}
	return mapProductsToDomain(models), nil
}

func (r *ProductRepository) CreateChecked(ctx context.Context, product *domain.Product, checkedAt time.Time) error {
	model := mapProductToModel(*product)
	model.LastChecked = &checkedAt
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&model).Error; err != nil {
			return err
		}
		entry := priceHistoryModel{ProductID: model.ID, Price: model.CurrentPrice, CheckedAt: checkedAt}
		return tx.Create(&entry).Error
	})
	if err != nil {
		return domain.NewStorageError("create product", err)
	}
	*product = mapProductToDomain(model)
	return nil
}

func (r *ProductRepository) RecordPrice(ctx context.Context, productID uint, price decimal.Decimal, checkedAt time.Time) (*domain.Product, error) {
	var model productModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&productModel{}).
			Where("id = ?", productID).
			Updates(map[string]any{"current_price": price, "last_checked": checkedAt})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		entry := priceHistoryModel{ProductID: productID, Price: price, CheckedAt: checkedAt}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
		return tx.First(&model, productID).Error
	})
	if err != nil {
		return nil, domain.NewStorageError("record price", err)
	}
	product := mapProductToDomain(model)
	return &product, nil
}

func (r *ProductRepository) History(ctx context.Context, productID uint, limit int) ([]domain.PriceHistoryEntry, error) {
	var models []priceHistoryModel
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("checked_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, domain.NewStorageError("price history", err)
	}
	entries := make([]domain.PriceHistoryEntry, 0, len(models))
	for _, model := range models {
		entries = append(entries, domain.PriceHistoryEntry{
			ID:        model.ID,
			ProductID: model.ProductID,
			Price:     model.Price,
			CheckedAt: model.CheckedAt,
		})
	}
	return entries, nil
}

func mapProductsToDomain(models []productModel) []domain.Product {
	products := make([]domain.Product, 0, len(models))
	for _, model := range models {
		products = append(products, mapProductToDomain(model))
	}
	return products
}

func mapProductToDomain(model productModel) domain.Product {
	return domain.Product{
		ID:           model.ID,
		Name:         model.Name,
		URL:          model.URL,
		Store:        model.Store,
		CurrentPrice: model.CurrentPrice,
		LastChecked:  model.LastChecked,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}

func mapProductToModel(product domain.Product) productModel {
	return productModel{
		ID:           product.ID,
		Name:         product.Name,
		URL:          product.URL,
		Store:        product.Store,
		CurrentPrice: product.CurrentPrice,
		LastChecked:  product.LastChecked,
		CreatedAt:    product.CreatedAt,
		UpdatedAt:    product.UpdatedAt,
	}
}
