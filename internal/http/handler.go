package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/loboISC/arrendamiento-sub000/internal/http/middleware"
	"github.com/loboISC/arrendamiento-sub000/internal/model"
	"github.com/loboISC/arrendamiento-sub000/internal/repository"
	"github.com/loboISC/arrendamiento-sub000/internal/service"
)

type Handler struct {
	contracts *service.ContractService
	log       zerolog.Logger
}

func NewHandler(contracts *service.ContractService, log zerolog.Logger) *Handler {
	return &Handler{contracts: contracts, log: log}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	protected := router.Group("/")
	protected.Use(authMiddleware)

	protected.POST("/contracts", h.createContract)
	protected.GET("/contracts", h.listContracts)
	protected.GET("/contracts/:id", h.getContract)
	protected.DELETE("/contracts/:id", h.deleteContract)

	protected.POST("/contracts/:id/items", h.addItem)
	protected.PUT("/contracts/:id/items/:index", h.updateItem)
	protected.DELETE("/contracts/:id/items/:index", h.removeItem)

	protected.POST("/contracts/:id/extension", h.setExtension)
	protected.PUT("/contracts/:id/daily-rate", h.setDailyRate)

	protected.POST("/contracts/:id/export", h.exportStatement)
	protected.POST("/contracts/:id/export/pdf", h.exportDocument)
}

type itemRequest struct {
	Key         string `json:"key"`
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	Guarantee   string `json:"guarantee"`
	LineTotal   string `json:"line_total"`
}

type createContractRequest struct {
	Number      string        `json:"number" binding:"required"`
	ClientID    string        `json:"client_id"`
	StartDate   string        `json:"start_date"`
	EndDate     string        `json:"end_date"`
	Responsible string        `json:"responsible"`
	DailyRate   string        `json:"daily_rate"`
	Discount    string        `json:"discount"`
	QuotationID string        `json:"quotation_id"`
	Items       []itemRequest `json:"items"`
}

type itemPatchRequest struct {
	Key         *string `json:"key"`
	Description *string `json:"description"`
	Quantity    *string `json:"quantity"`
	UnitPrice   *string `json:"unit_price"`
	Guarantee   *string `json:"guarantee"`
	LineTotal   *string `json:"line_total"`
}

type extensionRequest struct {
	Active    bool   `json:"active"`
	ExtraDays string `json:"extra_days"`
}

type dailyRateRequest struct {
	DailyRate string `json:"daily_rate"`
}

func (h *Handler) createContract(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var req createContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := service.CreateContractInput{
		Principal:   principal,
		Number:      req.Number,
		StartDate:   parseDate(req.StartDate),
		EndDate:     parseDate(req.EndDate),
		Responsible: req.Responsible,
		DailyRate:   parseAmount(req.DailyRate),
		Discount:    parseAmount(req.Discount),
	}
	if req.ClientID != "" {
		clientID, err := uuid.Parse(strings.TrimSpace(req.ClientID))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client_id"})
			return
		}
		input.ClientID = clientID
	}
	if req.QuotationID != "" {
		quotationID, err := uuid.Parse(strings.TrimSpace(req.QuotationID))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid quotation_id"})
			return
		}
		input.QuotationID = &quotationID
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, toItemInput(item))
	}

	view, err := h.contracts.Create(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toContractResponse(view))
}

func (h *Handler) getContract(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}

	view, err := h.contracts.Get(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toContractResponse(view))
}

func (h *Handler) listContracts(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var filter repository.ListFilter
	if raw := c.Query("client_id"); raw != "" {
		clientID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client_id"})
			return
		}
		filter.ClientID = &clientID
	}
	if raw := c.Query("status"); raw != "" {
		filter.Status = &raw
	}

	summaries, err := h.contracts.List(c.Request.Context(), principal, filter)
	if err != nil {
		h.handleError(c, err)
		return
	}

	out := make([]gin.H, 0, len(summaries))
	for _, summary := range summaries {
		out = append(out, gin.H{
			"id":        summary.Contract.ID,
			"number":    summary.Contract.Number,
			"client_id": summary.Contract.ClientID,
			"start_date": formatDate(summary.Contract.StartDate),
			"end_date":   formatDate(summary.Contract.EndDate),
			"total":      summary.Contract.Financials.Total.String(),
			"status":     toStatusResponse(summary.Status),
		})
	}
	c.JSON(http.StatusOK, gin.H{"contracts": out})
}

func (h *Handler) deleteContract(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}

	if err := h.contracts.Delete(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) addItem(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}

	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.contracts.AddItem(c.Request.Context(), principal, id, toItemInput(req))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toContractResponse(view))
}

func (h *Handler) updateItem(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item index"})
		return
	}

	var req itemPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patch := service.ItemPatch{
		Key:         req.Key,
		Description: req.Description,
	}
	if req.Quantity != nil {
		quantity := parseQuantity(*req.Quantity)
		patch.Quantity = &quantity
	}
	if req.UnitPrice != nil {
		price := parseAmount(*req.UnitPrice)
		patch.UnitPrice = &price
	}
	if req.Guarantee != nil {
		guarantee := parseAmount(*req.Guarantee)
		patch.Guarantee = &guarantee
	}
	if req.LineTotal != nil {
		total := parseAmount(*req.LineTotal)
		patch.LineTotal = &total
	}

	view, err := h.contracts.UpdateItem(c.Request.Context(), principal, id, index, patch)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toContractResponse(view))
}

func (h *Handler) removeItem(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item index"})
		return
	}

	view, err := h.contracts.RemoveItem(c.Request.Context(), principal, id, index)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toContractResponse(view))
}

func (h *Handler) setExtension(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}

	var req extensionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.contracts.SetExtension(c.Request.Context(), principal, id, req.Active, parseQuantity(req.ExtraDays))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toContractResponse(view))
}

func (h *Handler) setDailyRate(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}

	var req dailyRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.contracts.SetDailyRate(c.Request.Context(), principal, id, parseAmount(req.DailyRate))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toContractResponse(view))
}

func (h *Handler) exportStatement(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}

	result, err := h.contracts.ExportStatement(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	const contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, contentType, result.Content)
}

func (h *Handler) exportDocument(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}

	result, err := h.contracts.ExportDocument(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, "application/pdf", result.Content)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Msg("contract operation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

type statusResponse struct {
	State         string `json:"state"`
	Label         string `json:"label"`
	Color         string `json:"color"`
	Icon          string `json:"icon"`
	DaysRemaining int    `json:"days_remaining"`
}

type itemResponse struct {
	Key         string `json:"key"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	Guarantee   string `json:"guarantee"`
	LineTotal   string `json:"line_total"`
	ManualTotal bool   `json:"manual_total"`
}

type contractResponse struct {
	ID              uuid.UUID      `json:"id"`
	Number          string         `json:"number"`
	ClientID        uuid.UUID      `json:"client_id"`
	StartDate       string         `json:"start_date"`
	EndDate         string         `json:"end_date"`
	Responsible     string         `json:"responsible"`
	DailyRate       string         `json:"daily_rate"`
	Subtotal        string         `json:"subtotal"`
	Tax             string         `json:"tax"`
	Discount        string         `json:"discount"`
	Total           string         `json:"total"`
	GuaranteeAmount string         `json:"guarantee_amount"`
	Items           []itemResponse `json:"items"`
	DaysTotal       int            `json:"days_total"`
	Extended        bool           `json:"extended"`
	ExtraDays       int            `json:"extra_days"`
	Status          statusResponse `json:"status"`
}

func toContractResponse(view *service.ContractView) contractResponse {
	fin := view.Projection.Financials
	out := contractResponse{
		ID:              view.Contract.ID,
		Number:          view.Contract.Number,
		ClientID:        view.Contract.ClientID,
		StartDate:       formatDate(view.Contract.StartDate),
		EndDate:         formatDate(view.Projection.EndDate),
		Responsible:     view.Contract.Responsible,
		DailyRate:       view.Contract.DailyRate.String(),
		Subtotal:        fin.Subtotal.String(),
		Tax:             fin.Tax.String(),
		Discount:        fin.Discount.String(),
		Total:           fin.Total.String(),
		GuaranteeAmount: fin.GuaranteeAmount.String(),
		DaysTotal:       view.Projection.DaysTotal,
		Extended:        view.Projection.Extended,
		ExtraDays:       view.Projection.ExtraDays,
		Status:          toStatusResponse(view.Projection.Status),
	}
	for _, item := range view.Contract.Items {
		out.Items = append(out.Items, itemResponse{
			Key:         item.Key,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice.String(),
			Guarantee:   item.Guarantee.String(),
			LineTotal:   item.LineTotal.String(),
			ManualTotal: item.ManualTotal,
		})
	}
	return out
}

func toStatusResponse(status model.StatusProjection) statusResponse {
	return statusResponse{
		State:         string(status.State),
		Label:         status.State.Label(),
		Color:         status.ColorToken,
		Icon:          status.IconToken,
		DaysRemaining: status.DaysRemaining,
	}
}

func toItemInput(req itemRequest) service.ItemInput {
	input := service.ItemInput{
		Key:         req.Key,
		Description: req.Description,
		Quantity:    parseQuantity(req.Quantity),
		UnitPrice:   parseAmount(req.UnitPrice),
		Guarantee:   parseAmount(req.Guarantee),
	}
	if strings.TrimSpace(req.LineTotal) != "" {
		total := parseAmount(req.LineTotal)
		input.LineTotal = &total
	}
	return input
}

func parseID(c *gin.Context) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(c.Param("id")))
}

// parseAmount coerces form input to a decimal, degrading garbage to zero so
// a partially filled form never crashes the edit session.
func parseAmount(raw string) decimal.Decimal {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	if raw == "" {
		return decimal.Zero
	}
	value, err := decimal.NewFromString(raw)
	if err != nil || value.IsNegative() {
		return decimal.Zero
	}
	return value
}

func parseQuantity(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0
	}
	return value
}

// parseDate accepts the layouts the UI sends; anything else maps to an
// undetermined (zero) date.
func parseDate(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	layouts := []string{
		"2006-01-02",
		time.RFC3339,
		"02/01/2006",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
