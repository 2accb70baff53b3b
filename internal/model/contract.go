package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ContractItem is one rented line. LineTotal is derived from Quantity and
// UnitPrice unless ManualTotal is set, in which case the stored value is kept
// verbatim until the quantity or the price of the line is edited again.
type ContractItem struct {
	Key         string
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
	Guarantee   decimal.Decimal
	LineTotal   decimal.Decimal
	ManualTotal bool
}

// ContractFinancials is the derived money aggregate of a contract. It is
// recomputed on every edit and never persisted apart from its contract.
// Outside of an open extension edit, Total = Subtotal - Discount + Tax.
type ContractFinancials struct {
	Subtotal        decimal.Decimal
	Tax             decimal.Decimal
	Discount        decimal.Decimal
	Total           decimal.Decimal
	GuaranteeAmount decimal.Decimal
}

type Contract struct {
	ID          uuid.UUID
	Number      string
	ClientID    uuid.UUID
	StartDate   time.Time
	EndDate     time.Time
	Status      string // stored display label, may be a manual override
	Responsible string
	Financials  ContractFinancials
	Items       []ContractItem
	DailyRate   decimal.Decimal
	QuotationID *uuid.UUID
	// QuotationGuarantee is the guarantee supplied by the originating
	// quotation. When present it stays authoritative over the item-level sum.
	QuotationGuarantee *decimal.Decimal
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// ProrationState is the session-scoped extension snapshot. The base fields are
// captured at first activation and must not change while the session is open;
// when Active is false the contract carries exactly the base values.
type ProrationState struct {
	BaseDays     int
	BaseSubtotal decimal.Decimal
	BaseTax      decimal.Decimal
	BaseTotal    decimal.Decimal
	BaseEndDate  time.Time
	ExtraDays    int
	Active       bool
}
