package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuotationSnapshot is the one-shot creation input supplied by the quotation
// system. It seeds the contract's initial financials and item list.
type QuotationSnapshot struct {
	ID              uuid.UUID
	Number          string
	ClientID        uuid.UUID
	Subtotal        decimal.Decimal
	Tax             decimal.Decimal
	Discount        decimal.Decimal
	Total           decimal.Decimal
	GuaranteeAmount decimal.Decimal
	Items           []ContractItem
	IssuedAt        time.Time
}
