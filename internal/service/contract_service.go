package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/loboISC/arrendamiento-sub000/internal/engine"
	"github.com/loboISC/arrendamiento-sub000/internal/model"
	"github.com/loboISC/arrendamiento-sub000/internal/repository"
)

// ContractStore is the persistence collaborator. Replace must swap the
// header and the full item list atomically.
type ContractStore interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Contract, error)
	List(ctx context.Context, filter repository.ListFilter) ([]model.Contract, error)
	Create(ctx context.Context, contract *model.Contract) error
	Replace(ctx context.Context, contract *model.Contract) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetClientName(ctx context.Context, id uuid.UUID) (string, error)
}

// QuotationSource supplies the one-shot snapshot when a contract is created
// from a quotation.
type QuotationSource interface {
	Snapshot(ctx context.Context, id uuid.UUID) (*model.QuotationSnapshot, error)
}

type StatementGenerator interface {
	Generate(doc model.ContractDocument) ([]byte, error)
}

type DocumentRenderer interface {
	Render(doc model.ContractDocument) ([]byte, error)
}

// ContractService owns the edit sessions of contracts. Each contract gets a
// private proration session; concurrent edits of the same contract resolve
// to last-committed-write-wins at the store.
type ContractService struct {
	contracts  ContractStore
	quotations QuotationSource
	excel      StatementGenerator
	pdf        DocumentRenderer
	controller *engine.TotalsController
	now        func() time.Time

	mu       sync.Mutex
	sessions map[uuid.UUID]*engine.ProrationSession
}

func NewContractService(
	contracts ContractStore,
	quotations QuotationSource,
	excel StatementGenerator,
	pdf DocumentRenderer,
	controller *engine.TotalsController,
) *ContractService {
	return &ContractService{
		contracts:  contracts,
		quotations: quotations,
		excel:      excel,
		pdf:        pdf,
		controller: controller,
		now:        time.Now,
		sessions:   make(map[uuid.UUID]*engine.ProrationSession),
	}
}

// ContractView is a contract record together with its display projection.
type ContractView struct {
	Contract   model.Contract
	Projection engine.Projection
}

// ContractSummary is a list row: stored header fields plus derived status.
type ContractSummary struct {
	Contract model.Contract
	Status   model.StatusProjection
}

type ItemInput struct {
	Key         string
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
	Guarantee   decimal.Decimal
	// LineTotal, when set, is a manual override preserved verbatim.
	LineTotal *decimal.Decimal
}

// ItemPatch updates only the fields that are set. Editing quantity or unit
// price clears a manual line-total override; setting LineTotal installs one.
type ItemPatch struct {
	Key         *string
	Description *string
	Quantity    *int
	UnitPrice   *decimal.Decimal
	Guarantee   *decimal.Decimal
	LineTotal   *decimal.Decimal
}

type CreateContractInput struct {
	Principal   model.Principal
	Number      string
	ClientID    uuid.UUID
	StartDate   time.Time
	EndDate     time.Time
	Responsible string
	DailyRate   decimal.Decimal
	Discount    decimal.Decimal
	QuotationID *uuid.UUID
	Items       []ItemInput
}

type ExportResult struct {
	FileName string
	Content  []byte
}

func (s *ContractService) Create(ctx context.Context, input CreateContractInput) (*ContractView, error) {
	if input.Principal.IsReadOnly() {
		return nil, ErrPermissionDenied
	}
	if strings.TrimSpace(input.Number) == "" {
		return nil, fmt.Errorf("%w: number is required", ErrInvalidInput)
	}

	contract := &model.Contract{
		Number:      strings.TrimSpace(input.Number),
		ClientID:    input.ClientID,
		StartDate:   engine.DateOnly(input.StartDate),
		EndDate:     engine.DateOnly(input.EndDate),
		Responsible: input.Responsible,
		DailyRate:   clampAmount(input.DailyRate),
		Financials:  model.ContractFinancials{Discount: clampAmount(input.Discount)},
		Items:       toItems(input.Items),
	}

	if input.QuotationID != nil {
		snapshot, err := s.quotations.Snapshot(ctx, *input.QuotationID)
		if err != nil {
			return nil, mapStoreErr(err)
		}
		contract.QuotationID = &snapshot.ID
		guarantee := snapshot.GuaranteeAmount
		contract.QuotationGuarantee = &guarantee
		contract.Financials = model.ContractFinancials{
			Subtotal:        snapshot.Subtotal,
			Tax:             snapshot.Tax,
			Discount:        snapshot.Discount,
			Total:           snapshot.Total,
			GuaranteeAmount: snapshot.GuaranteeAmount,
		}
		if len(contract.Items) == 0 {
			contract.Items = append([]model.ContractItem(nil), snapshot.Items...)
		}
		if contract.ClientID == uuid.Nil {
			contract.ClientID = snapshot.ClientID
		}
	}
	if contract.ClientID == uuid.Nil {
		return nil, fmt.Errorf("%w: client_id is required", ErrInvalidInput)
	}

	session := engine.NewProrationSession()
	proj, err := s.controller.Recompute(contract, session, s.today())
	if err != nil {
		return nil, err
	}
	commit(contract, proj)

	if err := s.contracts.Create(ctx, contract); err != nil {
		return nil, mapStoreErr(err)
	}

	s.mu.Lock()
	s.sessions[contract.ID] = session
	s.mu.Unlock()

	return &ContractView{Contract: *contract, Projection: proj}, nil
}

func (s *ContractService) Get(ctx context.Context, principal model.Principal, id uuid.UUID) (*ContractView, error) {
	contract, err := s.contracts.Get(ctx, id)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	proj, err := s.controller.Recompute(contract, s.session(id), s.today())
	if err != nil {
		return nil, err
	}
	return &ContractView{Contract: *contract, Projection: proj}, nil
}

func (s *ContractService) List(ctx context.Context, principal model.Principal, filter repository.ListFilter) ([]ContractSummary, error) {
	contracts, err := s.contracts.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	today := s.today()
	summaries := make([]ContractSummary, 0, len(contracts))
	for i := range contracts {
		summaries = append(summaries, ContractSummary{
			Contract: contracts[i],
			Status:   s.controller.Status(&contracts[i], today),
		})
	}
	return summaries, nil
}

func (s *ContractService) Delete(ctx context.Context, principal model.Principal, id uuid.UUID) error {
	if !principal.IsAdmin() {
		return ErrPermissionDenied
	}
	if err := s.contracts.Delete(ctx, id); err != nil {
		return mapStoreErr(err)
	}
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}

func (s *ContractService) AddItem(ctx context.Context, principal model.Principal, contractID uuid.UUID, item ItemInput) (*ContractView, error) {
	return s.mutate(ctx, principal, contractID, func(contract *model.Contract) error {
		contract.Items = append(contract.Items, toItem(item))
		return nil
	})
}

func (s *ContractService) UpdateItem(ctx context.Context, principal model.Principal, contractID uuid.UUID, index int, patch ItemPatch) (*ContractView, error) {
	return s.mutate(ctx, principal, contractID, func(contract *model.Contract) error {
		if index < 0 || index >= len(contract.Items) {
			return fmt.Errorf("%w: item index %d out of range", ErrInvalidInput, index)
		}
		item := &contract.Items[index]
		if patch.Key != nil {
			item.Key = *patch.Key
		}
		if patch.Description != nil {
			item.Description = *patch.Description
		}
		if patch.Quantity != nil {
			item.Quantity = clampQuantity(*patch.Quantity)
			item.ManualTotal = false
		}
		if patch.UnitPrice != nil {
			item.UnitPrice = clampAmount(*patch.UnitPrice)
			item.ManualTotal = false
		}
		if patch.Guarantee != nil {
			item.Guarantee = clampAmount(*patch.Guarantee)
		}
		if patch.LineTotal != nil {
			item.LineTotal = *patch.LineTotal
			item.ManualTotal = true
		}
		return nil
	})
}

func (s *ContractService) RemoveItem(ctx context.Context, principal model.Principal, contractID uuid.UUID, index int) (*ContractView, error) {
	return s.mutate(ctx, principal, contractID, func(contract *model.Contract) error {
		if index < 0 || index >= len(contract.Items) {
			return fmt.Errorf("%w: item index %d out of range", ErrInvalidInput, index)
		}
		contract.Items = append(contract.Items[:index], contract.Items[index+1:]...)
		return nil
	})
}

func (s *ContractService) SetDailyRate(ctx context.Context, principal model.Principal, contractID uuid.UUID, rate decimal.Decimal) (*ContractView, error) {
	return s.mutate(ctx, principal, contractID, func(contract *model.Contract) error {
		contract.DailyRate = clampAmount(rate)
		return nil
	})
}

// SetExtension opens, updates or cancels a contract's extension and persists
// the outcome.
func (s *ContractService) SetExtension(ctx context.Context, principal model.Principal, contractID uuid.UUID, active bool, extraDays int) (*ContractView, error) {
	if principal.IsReadOnly() {
		return nil, ErrPermissionDenied
	}
	contract, err := s.contracts.Get(ctx, contractID)
	if err != nil {
		return nil, mapStoreErr(err)
	}

	proj, err := s.controller.SetExtension(contract, s.session(contractID), active, extraDays, s.today())
	if err != nil {
		return nil, err
	}
	commit(contract, proj)

	if err := s.contracts.Replace(ctx, contract); err != nil {
		return nil, mapStoreErr(err)
	}
	return &ContractView{Contract: *contract, Projection: proj}, nil
}

func (s *ContractService) ExportStatement(ctx context.Context, principal model.Principal, contractID uuid.UUID) (*ExportResult, error) {
	doc, err := s.document(ctx, contractID)
	if err != nil {
		return nil, err
	}
	content, err := s.excel.Generate(*doc)
	if err != nil {
		return nil, err
	}
	return &ExportResult{FileName: s.buildFileName(doc.Contract, "xlsx"), Content: content}, nil
}

func (s *ContractService) ExportDocument(ctx context.Context, principal model.Principal, contractID uuid.UUID) (*ExportResult, error) {
	doc, err := s.document(ctx, contractID)
	if err != nil {
		return nil, err
	}
	content, err := s.pdf.Render(*doc)
	if err != nil {
		return nil, err
	}
	return &ExportResult{FileName: s.buildFileName(doc.Contract, "pdf"), Content: content}, nil
}

func (s *ContractService) document(ctx context.Context, contractID uuid.UUID) (*model.ContractDocument, error) {
	contract, err := s.contracts.Get(ctx, contractID)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	proj, err := s.controller.Recompute(contract, s.session(contractID), s.today())
	if err != nil {
		return nil, err
	}
	commit(contract, proj)

	clientName, err := s.contracts.GetClientName(ctx, contract.ClientID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return &model.ContractDocument{
		Contract:   *contract,
		ClientName: clientName,
		Status:     proj.Status,
		DaysTotal:  proj.DaysTotal,
		Extended:   proj.Extended,
		ExtraDays:  proj.ExtraDays,
	}, nil
}

func (s *ContractService) mutate(ctx context.Context, principal model.Principal, contractID uuid.UUID, apply func(*model.Contract) error) (*ContractView, error) {
	if principal.IsReadOnly() {
		return nil, ErrPermissionDenied
	}
	contract, err := s.contracts.Get(ctx, contractID)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	if err := apply(contract); err != nil {
		return nil, err
	}

	proj, err := s.controller.Recompute(contract, s.session(contractID), s.today())
	if err != nil {
		return nil, err
	}
	commit(contract, proj)

	if err := s.contracts.Replace(ctx, contract); err != nil {
		return nil, mapStoreErr(err)
	}
	return &ContractView{Contract: *contract, Projection: proj}, nil
}

// commit folds the recompute result back into the persisted record.
func commit(contract *model.Contract, proj engine.Projection) {
	contract.Financials = proj.Financials
	if !proj.EndDate.IsZero() {
		contract.EndDate = proj.EndDate
	}
	contract.Status = proj.Status.State.Label()
}

func (s *ContractService) session(id uuid.UUID) *engine.ProrationSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[id]; ok {
		return session
	}
	session := engine.NewProrationSession()
	s.sessions[id] = session
	return session
}

func (s *ContractService) today() time.Time {
	return engine.DateOnly(s.now())
}

func (s *ContractService) buildFileName(contract model.Contract, extension string) string {
	number := sanitizeFileName(contract.Number)
	if number == "" {
		number = contract.ID.String()
	}
	return fmt.Sprintf("contrato-%s-%s.%s", number, s.today().Format("20060102"), extension)
}

func toItems(inputs []ItemInput) []model.ContractItem {
	items := make([]model.ContractItem, 0, len(inputs))
	for _, input := range inputs {
		items = append(items, toItem(input))
	}
	return items
}

func toItem(input ItemInput) model.ContractItem {
	item := model.ContractItem{
		Key:         input.Key,
		Description: input.Description,
		Quantity:    clampQuantity(input.Quantity),
		UnitPrice:   clampAmount(input.UnitPrice),
		Guarantee:   clampAmount(input.Guarantee),
	}
	if input.LineTotal != nil {
		item.LineTotal = *input.LineTotal
		item.ManualTotal = true
	}
	return item
}

func clampQuantity(q int) int {
	if q < 0 {
		return 0
	}
	return q
}

func clampAmount(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

func mapStoreErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func sanitizeFileName(input string) string {
	result := make([]rune, 0, len(input))
	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z':
			result = append(result, r)
		case r >= 'A' && r <= 'Z':
			result = append(result, r)
		case r >= '0' && r <= '9':
			result = append(result, r)
		case r == '-', r == '_':
			result = append(result, r)
		default:
			result = append(result, '-')
		}
	}
	return strings.Trim(string(result), "-")
}
