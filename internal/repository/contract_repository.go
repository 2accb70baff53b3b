package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/loboISC/arrendamiento-sub000/internal/model"
)

type ContractRepository struct {
	db *gorm.DB
}

func NewContractRepository(db *gorm.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

// ListFilter narrows List results. Nil fields match everything.
type ListFilter struct {
	ClientID *uuid.UUID
	Status   *string
}

type contractRow struct {
	ID                 uuid.UUID
	Number             string
	ClientID           uuid.UUID
	StartDate          *time.Time
	EndDate            *time.Time
	Status             string
	Responsible        string
	Subtotal           decimal.Decimal
	Tax                decimal.Decimal
	Discount           decimal.Decimal
	Total              decimal.Decimal
	GuaranteeAmount    decimal.Decimal
	DailyRate          decimal.Decimal
	QuotationID        *uuid.UUID
	QuotationGuarantee *decimal.Decimal
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type itemRow struct {
	ItemKey     string
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
	Guarantee   decimal.Decimal
	LineTotal   decimal.Decimal
	ManualTotal bool
}

const contractColumns = `
	id, number, client_id, start_date, end_date, status, responsible,
	subtotal, tax, discount, total, guarantee_amount, daily_rate,
	quotation_id, quotation_guarantee, created_at, updated_at
`

func (r *ContractRepository) Get(ctx context.Context, id uuid.UUID) (*model.Contract, error) {
	var row contractRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+contractColumns+`
		FROM contracts
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
		SELECT item_key, description, quantity, unit_price, guarantee, line_total, manual_total
		FROM contract_items
		WHERE contract_id = ?
		ORDER BY position ASC
	`, id).Scan(&items).Error
	if err != nil {
		return nil, err
	}

	return rowToContract(row, items), nil
}

func (r *ContractRepository) List(ctx context.Context, filter ListFilter) ([]model.Contract, error) {
	query := `SELECT ` + contractColumns + ` FROM contracts WHERE 1=1`
	var args []interface{}
	if filter.ClientID != nil {
		query += ` AND client_id = ?`
		args = append(args, *filter.ClientID)
	}
	if filter.Status != nil {
		query += ` AND status = ?`
		args = append(args, *filter.Status)
	}
	query += ` ORDER BY created_at DESC`

	var rows []contractRow
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}

	contracts := make([]model.Contract, 0, len(rows))
	for _, row := range rows {
		contracts = append(contracts, *rowToContract(row, nil))
	}
	return contracts, nil
}

func (r *ContractRepository) Create(ctx context.Context, contract *model.Contract) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var created struct {
			ID        uuid.UUID
			CreatedAt time.Time
			UpdatedAt time.Time
		}
		err := tx.Raw(`
			INSERT INTO contracts (
				number, client_id, start_date, end_date, status, responsible,
				subtotal, tax, discount, total, guarantee_amount, daily_rate,
				quotation_id, quotation_guarantee
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			RETURNING id, created_at, updated_at
		`,
			contract.Number,
			contract.ClientID,
			nullableDate(contract.StartDate),
			nullableDate(contract.EndDate),
			contract.Status,
			contract.Responsible,
			contract.Financials.Subtotal,
			contract.Financials.Tax,
			contract.Financials.Discount,
			contract.Financials.Total,
			contract.Financials.GuaranteeAmount,
			contract.DailyRate,
			contract.QuotationID,
			contract.QuotationGuarantee,
		).Scan(&created).Error
		if err != nil {
			return err
		}

		contract.ID = created.ID
		contract.CreatedAt = created.CreatedAt
		contract.UpdatedAt = created.UpdatedAt
		return insertItems(tx, contract.ID, contract.Items)
	})
}

// Replace atomically swaps the contract header and its full item list. An
// external reader never sees updated items next to stale totals.
func (r *ContractRepository) Replace(ctx context.Context, contract *model.Contract) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Exec(`
			UPDATE contracts
			SET
				number = ?,
				client_id = ?,
				start_date = ?,
				end_date = ?,
				status = ?,
				responsible = ?,
				subtotal = ?,
				tax = ?,
				discount = ?,
				total = ?,
				guarantee_amount = ?,
				daily_rate = ?,
				quotation_guarantee = ?,
				updated_at = NOW()
			WHERE id = ?
		`,
			contract.Number,
			contract.ClientID,
			nullableDate(contract.StartDate),
			nullableDate(contract.EndDate),
			contract.Status,
			contract.Responsible,
			contract.Financials.Subtotal,
			contract.Financials.Tax,
			contract.Financials.Discount,
			contract.Financials.Total,
			contract.Financials.GuaranteeAmount,
			contract.DailyRate,
			contract.QuotationGuarantee,
			contract.ID,
		)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if err := tx.Exec(`DELETE FROM contract_items WHERE contract_id = ?`, contract.ID).Error; err != nil {
			return err
		}
		return insertItems(tx, contract.ID, contract.Items)
	})
}

func (r *ContractRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`DELETE FROM contract_items WHERE contract_id = ?`, id).Error; err != nil {
			return err
		}
		result := tx.Exec(`DELETE FROM contracts WHERE id = ?`, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *ContractRepository) GetClientName(ctx context.Context, id uuid.UUID) (string, error) {
	var row struct {
		ID   uuid.UUID
		Name string
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, name FROM clients WHERE id = ? LIMIT 1
	`, id).Scan(&row).Error
	if err != nil {
		return "", err
	}
	if row.ID == uuid.Nil {
		return "", gorm.ErrRecordNotFound
	}
	return row.Name, nil
}

func insertItems(tx *gorm.DB, contractID uuid.UUID, items []model.ContractItem) error {
	for i, item := range items {
		err := tx.Exec(`
			INSERT INTO contract_items (
				contract_id, position, item_key, description,
				quantity, unit_price, guarantee, line_total, manual_total
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			contractID,
			i,
			item.Key,
			item.Description,
			item.Quantity,
			item.UnitPrice,
			item.Guarantee,
			item.LineTotal,
			item.ManualTotal,
		).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func rowToContract(row contractRow, items []itemRow) *model.Contract {
	contract := &model.Contract{
		ID:          row.ID,
		Number:      row.Number,
		ClientID:    row.ClientID,
		Status:      row.Status,
		Responsible: row.Responsible,
		Financials: model.ContractFinancials{
			Subtotal:        row.Subtotal,
			Tax:             row.Tax,
			Discount:        row.Discount,
			Total:           row.Total,
			GuaranteeAmount: row.GuaranteeAmount,
		},
		DailyRate:          row.DailyRate,
		QuotationID:        row.QuotationID,
		QuotationGuarantee: row.QuotationGuarantee,
		CreatedAt:          row.CreatedAt,
		UpdatedAt:          row.UpdatedAt,
	}
	if row.StartDate != nil {
		contract.StartDate = *row.StartDate
	}
	if row.EndDate != nil {
		contract.EndDate = *row.EndDate
	}
	for _, item := range items {
		contract.Items = append(contract.Items, model.ContractItem{
			Key:         item.ItemKey,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Guarantee:   item.Guarantee,
			LineTotal:   item.LineTotal,
			ManualTotal: item.ManualTotal,
		})
	}
	return contract
}

func nullableDate(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
