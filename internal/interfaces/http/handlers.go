package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/hireflowhq/hireflow/internal/application/port"
	"github.com/hireflowhq/hireflow/internal/application/service"
	"github.com/hireflowhq/hireflow/internal/domain/entity"
	"github.com/hireflowhq/hireflow/internal/domain/workflow"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	offerService       service.OfferService
	requisitionService service.RequisitionService
	logger             Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(offerService service.OfferService, requisitionService service.RequisitionService, logger Logger) *Handlers {
	return &Handlers{
		offerService:       offerService,
		requisitionService: requisitionService,
		logger:             logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// writeError maps domain errors onto HTTP status codes
func (h *Handlers) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, entity.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, entity.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, workflow.ErrInvalidTransition), errors.Is(err, workflow.ErrGuardFailed):
		status = http.StatusConflict
	}

	c.JSON(status, Response{
		Success: false,
		Error:   err.Error(),
	})
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    gin.H{"status": "healthy"},
	})
}

// CreateOfferRequest represents the offer creation payload
type CreateOfferRequest struct {
	RequisitionID int64                  `json:"requisition_id" binding:"required"`
	CandidateID   string                 `json:"candidate_id" binding:"required"`
	Grade         string                 `json:"grade" binding:"required"`
	Base          decimal.Decimal        `json:"base" binding:"required"`
	Allowances    map[string]interface{} `json:"allowances"`
	Benefits      map[string]interface{} `json:"benefits"`
	VariablePay   decimal.Decimal        `json:"variable_pay"`
	Currency      string                 `json:"currency"`
	Country       string                 `json:"country"`
	ExpiryDays    int                    `json:"expiry_days"`
}

// CreateOffer handles POST /api/v1/offers
func (h *Handlers) CreateOffer(c *gin.Context) {
	var req CreateOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body: " + err.Error()})
		return
	}

	offer, err := h.offerService.Create(c.Request.Context(), service.CreateOfferInput{
		RequisitionID: req.RequisitionID,
		CandidateID:   req.CandidateID,
		Grade:         req.Grade,
		Base:          req.Base,
		Allowances:    req.Allowances,
		Benefits:      req.Benefits,
		VariablePay:   req.VariablePay,
		Currency:      req.Currency,
		Country:       req.Country,
		ExpiryDays:    req.ExpiryDays,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: offer})
}

// ListOffers handles GET /api/v1/offers
func (h *Handlers) ListOffers(c *gin.Context) {
	views, err := h.offerService.List(c.Request.Context(), c.Query("status"), c.Query("candidate_id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: views})
}

// GetOffer handles GET /api/v1/offers/:offer_id
func (h *Handlers) GetOffer(c *gin.Context) {
	view, err := h.offerService.Get(c.Request.Context(), c.Param("offer_id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: view})
}

// SubmitOfferRequest represents the submission payload
type SubmitOfferRequest struct {
	Country string `json:"country" binding:"required"`
}

// SubmitOffer handles POST /api/v1/offers/:offer_id/submit
func (h *Handlers) SubmitOffer(c *gin.Context) {
	var req SubmitOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body: " + err.Error()})
		return
	}

	result, err := h.offerService.SubmitForApproval(c.Request.Context(), c.Param("offer_id"), req.Country)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: result})
}

// RecordApprovalRequest represents one role's verdict payload
type RecordApprovalRequest struct {
	Role    string `json:"role" binding:"required"`
	Action  string `json:"action" binding:"required"`
	Comment string `json:"comment"`
}

// RecordApproval handles POST /api/v1/offers/:offer_id/approval
func (h *Handlers) RecordApproval(c *gin.Context) {
	var req RecordApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body: " + err.Error()})
		return
	}

	actor := currentActor(c)
	offer, err := h.offerService.RecordApproval(c.Request.Context(),
		c.Param("offer_id"), req.Role, actor.ID, req.Action, req.Comment)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: offer})
}

// GenerateLetter handles POST /api/v1/offers/:offer_id/letter
func (h *Handlers) GenerateLetter(c *gin.Context) {
	if err := h.offerService.GenerateLetter(c.Request.Context(), c.Param("offer_id")); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, Response{Success: true, Data: gin.H{"queued": true}})
}

// CandidateActionRequest represents the candidate's resolution payload
type CandidateActionRequest struct {
	Action      string           `json:"action" binding:"required"`
	CounterBase *decimal.Decimal `json:"counter_base"`
	CounterNote string           `json:"counter_note"`
}

// CandidateAction handles POST /api/v1/offers/:offer_id/action
func (h *Handlers) CandidateAction(c *gin.Context) {
	var req CandidateActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body: " + err.Error()})
		return
	}

	offer, err := h.offerService.CandidateAction(c.Request.Context(),
		c.Param("offer_id"), req.Action, req.CounterBase, req.CounterNote)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: offer})
}

// CreateRequisitionRequest represents the requisition creation payload
type CreateRequisitionRequest struct {
	Position        string           `json:"position" binding:"required"`
	Grade           string           `json:"grade"`
	ExperienceYears int              `json:"experience_years"`
	EmploymentType  string           `json:"employment_type"`
	WorkMode        string           `json:"work_mode"`
	Priority        string           `json:"priority"`
	Status          string           `json:"status"`
	MinSalary       *decimal.Decimal `json:"min_salary"`
	MaxSalary       *decimal.Decimal `json:"max_salary"`
	Currency        string           `json:"currency"`
	PositionsCount  int              `json:"positions_count"`
	HiringManager   string           `json:"hiring_manager"`
	JobDescription  string           `json:"job_description"`
	CompanyID       int64            `json:"company_id"`
	CompanyName     string           `json:"company_name"`
}

// CreateRequisition handles POST /api/v1/requisitions
func (h *Handlers) CreateRequisition(c *gin.Context) {
	var req CreateRequisitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body: " + err.Error()})
		return
	}

	requisition, err := h.requisitionService.Create(c.Request.Context(), service.CreateRequisitionInput{
		Position:        req.Position,
		Grade:           req.Grade,
		ExperienceYears: req.ExperienceYears,
		EmploymentType:  req.EmploymentType,
		WorkMode:        req.WorkMode,
		Priority:        req.Priority,
		Status:          req.Status,
		MinSalary:       req.MinSalary,
		MaxSalary:       req.MaxSalary,
		Currency:        req.Currency,
		PositionsCount:  req.PositionsCount,
		HiringManager:   req.HiringManager,
		JobDescription:  req.JobDescription,
		CompanyID:       req.CompanyID,
		CompanyName:     req.CompanyName,
	}, currentActor(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: requisition})
}

// ListRequisitions handles GET /api/v1/requisitions
func (h *Handlers) ListRequisitions(c *gin.Context) {
	actor := currentActor(c)

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	reqs, err := h.requisitionService.List(c.Request.Context(), port.RequisitionFilter{
		Role:           actor.Role,
		UserID:         actor.ID,
		ApprovalStatus: c.DefaultQuery("approval_status", "approved"),
		Limit:          limit,
		Offset:         offset,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: reqs})
}

// GetRequisition handles GET /api/v1/requisitions/:id
func (h *Handlers) GetRequisition(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid requisition ID"})
		return
	}

	req, err := h.requisitionService.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: req})
}

// UpdateRequisitionRequest represents a partial requisition update payload.
// Absent fields are left untouched.
type UpdateRequisitionRequest struct {
	Position        *string          `json:"position"`
	Grade           *string          `json:"grade"`
	ExperienceYears *int             `json:"experience_years"`
	EmploymentType  *string          `json:"employment_type"`
	WorkMode        *string          `json:"work_mode"`
	Priority        *string          `json:"priority"`
	Status          *string          `json:"status"`
	MinSalary       *decimal.Decimal `json:"min_salary"`
	MaxSalary       *decimal.Decimal `json:"max_salary"`
	Currency        *string          `json:"currency"`
	PositionsCount  *int             `json:"positions_count"`
	HiringManager   *string          `json:"hiring_manager"`
	JobDescription  *string          `json:"job_description"`
}

// UpdateRequisition handles PUT /api/v1/requisitions/:id
func (h *Handlers) UpdateRequisition(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid requisition ID"})
		return
	}

	var req UpdateRequisitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body: " + err.Error()})
		return
	}

	requisition, err := h.requisitionService.Update(c.Request.Context(), id, service.UpdateRequisitionInput{
		Position:        req.Position,
		Grade:           req.Grade,
		ExperienceYears: req.ExperienceYears,
		EmploymentType:  req.EmploymentType,
		WorkMode:        req.WorkMode,
		Priority:        req.Priority,
		Status:          req.Status,
		MinSalary:       req.MinSalary,
		MaxSalary:       req.MaxSalary,
		Currency:        req.Currency,
		PositionsCount:  req.PositionsCount,
		HiringManager:   req.HiringManager,
		JobDescription:  req.JobDescription,
	}, currentActor(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: requisition})
}

// SetApprovalStatusRequest represents the approval status payload
type SetApprovalStatusRequest struct {
	ApprovalStatus string `json:"approval_status" binding:"required"`
}

// SetApprovalStatus handles PUT /api/v1/requisitions/:id/approval
func (h *Handlers) SetApprovalStatus(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid requisition ID"})
		return
	}

	var req SetApprovalStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body: " + err.Error()})
		return
	}

	requisition, err := h.requisitionService.SetApprovalStatus(c.Request.Context(), id,
		entity.ApprovalStatus(req.ApprovalStatus), currentActor(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: requisition})
}

// AssignRecruiterRequest represents the recruiter assignment payload
type AssignRecruiterRequest struct {
	RecruiterID int64 `json:"recruiter_id" binding:"required"`
}

// AssignRecruiter handles PUT /api/v1/requisitions/:id/assign
func (h *Handlers) AssignRecruiter(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid requisition ID"})
		return
	}

	var req AssignRecruiterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body: " + err.Error()})
		return
	}

	requisition, err := h.requisitionService.AssignRecruiter(c.Request.Context(), id, req.RecruiterID, currentActor(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: requisition})
}

// DeleteRequisition handles DELETE /api/v1/requisitions/:id
func (h *Handlers) DeleteRequisition(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid requisition ID"})
		return
	}

	if err := h.requisitionService.Delete(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true})
}

// GetActivityLog handles GET /api/v1/requisitions/:id/activity
func (h *Handlers) GetActivityLog(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid requisition ID"})
		return
	}

	entries, err := h.requisitionService.ActivityLog(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: entries})
}

// LogActivityRequest represents a caller-supplied audit entry
type LogActivityRequest struct {
	Action  string `json:"action" binding:"required"`
	Details string `json:"details"`
}

// LogActivity handles POST /api/v1/requisitions/:id/activity
func (h *Handlers) LogActivity(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid requisition ID"})
		return
	}

	var req LogActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body: " + err.Error()})
		return
	}

	entry, err := h.requisitionService.LogActivity(c.Request.Context(), id, currentActor(c), req.Action, req.Details)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: entry})
}

func parseID(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}
