package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/loboISC/arrendamiento-sub000/internal/model"
)

type QuotationRepository struct {
	db *gorm.DB
}

func NewQuotationRepository(db *gorm.DB) *QuotationRepository {
	return &QuotationRepository{db: db}
}

// Snapshot loads the quotation aggregate handed to contract creation.
func (r *QuotationRepository) Snapshot(ctx context.Context, id uuid.UUID) (*model.QuotationSnapshot, error) {
	var row struct {
		ID              uuid.UUID
		Number          string
		ClientID        uuid.UUID
		Subtotal        decimal.Decimal
		Tax             decimal.Decimal
		Discount        decimal.Decimal
		Total           decimal.Decimal
		GuaranteeAmount decimal.Decimal
		IssuedAt        time.Time
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, number, client_id, subtotal, tax, discount, total, guarantee_amount, issued_at
		FROM quotations
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}

	var items []itemRow
	err = r.db.WithContext(ctx).Raw(`
		SELECT item_key, description, quantity, unit_price, guarantee
		FROM quotation_items
		WHERE quotation_id = ?
		ORDER BY position ASC
	`, id).Scan(&items).Error
	if err != nil {
		return nil, err
	}

	snapshot := &model.QuotationSnapshot{
		ID:              row.ID,
		Number:          row.Number,
		ClientID:        row.ClientID,
		Subtotal:        row.Subtotal,
		Tax:             row.Tax,
		Discount:        row.Discount,
		Total:           row.Total,
		GuaranteeAmount: row.GuaranteeAmount,
		IssuedAt:        row.IssuedAt,
	}
	for _, item := range items {
		snapshot.Items = append(snapshot.Items, model.ContractItem{
			Key:         item.ItemKey,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Guarantee:   item.Guarantee,
		})
	}
	return snapshot, nil
}
