package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apprecon "github.com/payables/backoffice/internal/application/reconciliation"
	"github.com/payables/backoffice/internal/interfaces/http/middleware"
)

// ReconciliationHandler handles bank reconciliation API endpoints
type ReconciliationHandler struct {
	BaseHandler
	scopeService          *apprecon.ScopeService
	reconciliationService *apprecon.ReconciliationService
}

// NewReconciliationHandler creates a new ReconciliationHandler
func NewReconciliationHandler(
	scopeService *apprecon.ScopeService,
	reconciliationService *apprecon.ReconciliationService,
) *ReconciliationHandler {
	return &ReconciliationHandler{
		scopeService:          scopeService,
		reconciliationService: reconciliationService,
	}
}

// ScopeQuery bounds a listing or automatic run to one company, bank account
// and calendar day. An omitted date means today.
type ScopeQuery struct {
	CompanyID     string `form:"company_id" json:"company_id" binding:"required,uuid"`
	BankAccountID string `form:"bank_account_id" json:"bank_account_id" binding:"required,uuid"`
	Date          string `form:"date" json:"date" binding:"omitempty,datetime=2006-01-02"`
}

// ManualMatchRequest pairs one invoice with one movement without committing
type ManualMatchRequest struct {
	InvoiceID  string `json:"invoice_id" binding:"required,uuid"`
	MovementID string `json:"movement_id" binding:"required,uuid"`
	Comment    string `json:"comment" binding:"max=500"`
}

// DirectMatchRequest commits one invoice against one or more movements
type DirectMatchRequest struct {
	InvoiceID   string   `json:"invoice_id" binding:"required,uuid"`
	MovementIDs []string `json:"movement_ids" binding:"required,min=1,dive,uuid"`
	Comment     string   `json:"comment" binding:"max=500"`
}

// CloseEntryRequest is one pair inside a batch close request
type CloseEntryRequest struct {
	InvoiceID     string `json:"invoice_id" binding:"required,uuid"`
	MovementID    string `json:"movement_id" binding:"required,uuid"`
	Comment       string `json:"comment" binding:"max=500"`
	Type          string `json:"type" binding:"omitempty,oneof=automatic manual direct"`
	CorrelationID string `json:"correlation_id" binding:"omitempty,uuid"`
}

// CloseRequest commits a batch of reviewed pairs atomically
type CloseRequest struct {
	Entries []CloseEntryRequest `json:"entries" binding:"required,min=1,dive"`
}

// toScopeRequest converts a validated query into the application DTO. The
// date is interpreted in the server's local calendar.
func (q *ScopeQuery) toScopeRequest() (apprecon.ScopeRequest, error) {
	companyID, err := uuid.Parse(q.CompanyID)
	if err != nil {
		return apprecon.ScopeRequest{}, err
	}
	bankAccountID, err := uuid.Parse(q.BankAccountID)
	if err != nil {
		return apprecon.ScopeRequest{}, err
	}

	req := apprecon.ScopeRequest{
		CompanyID:     companyID,
		BankAccountID: bankAccountID,
	}
	if q.Date != "" {
		date, err := time.ParseInLocation("2006-01-02", q.Date, time.Local)
		if err != nil {
			return apprecon.ScopeRequest{}, err
		}
		req.Date = &date
	}
	return req, nil
}

// ListInvoices godoc
// @Summary      List eligible invoices
// @Description  Lists the unreconciled invoices of packages scheduled for payment in the scope window
// @Tags         reconciliation
// @Produce      json
// @Param        company_id query string true "Company ID" format(uuid)
// @Param        bank_account_id query string true "Bank account ID" format(uuid)
// @Param        date query string false "Calendar day (YYYY-MM-DD), defaults to today"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /reconciliation/invoices [get]
func (h *ReconciliationHandler) ListInvoices(c *gin.Context) {
	var query ScopeQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	req, err := query.toScopeRequest()
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	scope, err := h.scopeService.Resolve(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, scope.EligibleInvoices, int64(len(scope.EligibleInvoices)))
}

// ListMovements godoc
// @Summary      List eligible bank movements
// @Description  Lists the unreconciled bank movements dated inside the scope window
// @Tags         reconciliation
// @Produce      json
// @Param        company_id query string true "Company ID" format(uuid)
// @Param        bank_account_id query string true "Bank account ID" format(uuid)
// @Param        date query string false "Calendar day (YYYY-MM-DD), defaults to today"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /reconciliation/movements [get]
func (h *ReconciliationHandler) ListMovements(c *gin.Context) {
	var query ScopeQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	req, err := query.toScopeRequest()
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	scope, err := h.scopeService.Resolve(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, scope.EligibleMovements, int64(len(scope.EligibleMovements)))
}

// RunAutomatic godoc
// @Summary      Run automatic matching
// @Description  Proposes invoice/movement pairs by reference and amount without persisting anything
// @Tags         reconciliation
// @Accept       json
// @Produce      json
// @Param        request body ScopeQuery true "Matching scope"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /reconciliation/automatic [post]
func (h *ReconciliationHandler) RunAutomatic(c *gin.Context) {
	var body ScopeQuery
	if err := c.ShouldBindJSON(&body); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	req, err := body.toScopeRequest()
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.reconciliationService.RunAutomatic(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// ProposeManual godoc
// @Summary      Propose a manual match
// @Description  Validates one invoice/movement pair and returns an unpersisted proposal
// @Tags         reconciliation
// @Accept       json
// @Produce      json
// @Param        request body ManualMatchRequest true "Manual match request"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /reconciliation/manual [post]
func (h *ReconciliationHandler) ProposeManual(c *gin.Context) {
	var body ManualMatchRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	proposal, err := h.reconciliationService.ProposeManualMatch(c.Request.Context(), apprecon.ManualMatchRequest{
		InvoiceID:  uuid.MustParse(body.InvoiceID),
		MovementID: uuid.MustParse(body.MovementID),
		Comment:    body.Comment,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, proposal)
}

// DirectMatch godoc
// @Summary      Commit a direct match
// @Description  Atomically settles one invoice against one or more movements under a single correlation id
// @Tags         reconciliation
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Idempotency key"
// @Param        request body DirectMatchRequest true "Direct match request"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /reconciliation/direct [post]
func (h *ReconciliationHandler) DirectMatch(c *gin.Context) {
	var body DirectMatchRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	movementIDs := make([]uuid.UUID, 0, len(body.MovementIDs))
	for _, id := range body.MovementIDs {
		movementIDs = append(movementIDs, uuid.MustParse(id))
	}

	result, err := h.reconciliationService.DirectMatch(c.Request.Context(), apprecon.DirectMatchRequest{
		InvoiceID:   uuid.MustParse(body.InvoiceID),
		MovementIDs: movementIDs,
		Comment:     body.Comment,
	}, c.GetHeader("Idempotency-Key"))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// Close godoc
// @Summary      Close a reconciliation batch
// @Description  Atomically commits a reviewed batch of invoice/movement pairs; the batch succeeds or fails as a whole
// @Tags         reconciliation
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Idempotency key"
// @Param        request body CloseRequest true "Batch close request"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /reconciliation/close [post]
func (h *ReconciliationHandler) Close(c *gin.Context) {
	var body CloseRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	entries := make([]apprecon.CloseEntry, 0, len(body.Entries))
	for _, e := range body.Entries {
		entry := apprecon.CloseEntry{
			InvoiceID:  uuid.MustParse(e.InvoiceID),
			MovementID: uuid.MustParse(e.MovementID),
			Comment:    e.Comment,
			Type:       e.Type,
		}
		if e.CorrelationID != "" {
			correlationID := uuid.MustParse(e.CorrelationID)
			entry.CorrelationID = &correlationID
		}
		entries = append(entries, entry)
	}

	result, err := h.reconciliationService.CloseReconciliation(c.Request.Context(), entries, c.GetHeader("Idempotency-Key"))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// RegisterRoutes implements router.RouteRegistrar
func (h *ReconciliationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	reconciliation := rg.Group("/reconciliation")
	{
		reconciliation.GET("/invoices", h.ListInvoices)
		reconciliation.GET("/movements", h.ListMovements)
		reconciliation.POST("/automatic", h.RunAutomatic)
		reconciliation.POST("/manual", h.ProposeManual)
		reconciliation.POST("/direct", h.DirectMatch)
		reconciliation.POST("/close", h.Close)
	}
}
