package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/family-support/backend/internal/dispatch"
	"github.com/family-support/backend/internal/errs"
	"github.com/family-support/backend/internal/models"
	"github.com/family-support/backend/internal/outreach"
	"github.com/family-support/backend/internal/scoring"
	"github.com/family-support/backend/internal/service"
	"github.com/family-support/backend/internal/store"
)

type Handler struct {
	Intakes   *service.IntakeService
	Signals   *service.SignalService
	Bookings  *service.BookingService
	Referrals *service.ReferralService
	Outreach  *outreach.Service
	Queue     *dispatch.Queue
	Store     store.Store
	Validator *validator.Validate
	Logger    zerolog.Logger
}

func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		writeError(c, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "Store unavailable", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type CreateIntakeRequest struct {
	UserID               string `json:"userId" validate:"required"`
	ServiceType          string `json:"serviceType" validate:"required,oneof=GENERAL_CONSULTATION MEDIATION EMERGENCY_SUPPORT DOCUMENT_REVIEW"`
	HearingDate          string `json:"hearingDate,omitempty"`
	CourtName            string `json:"courtName,omitempty"`
	ContactMethod        string `json:"contactMethod,omitempty"`
	SafeguardingConcerns bool   `json:"safeguardingConcerns"`
	ChildrenInvolved     bool   `json:"childrenInvolved"`
	ChildrenCount        int    `json:"childrenCount,omitempty" validate:"min=0"`
	PreviousMediation    *bool  `json:"previousMediation,omitempty"`
	Archetype            string `json:"archetype,omitempty" validate:"omitempty,oneof=COURT_IMMINENT COMPLEX_CASE SELF_REP_LITIGANT"`
}

// @Summary Submit an intake
// @Description Scores the submission, persists the intake and triggers automation
// @Tags intakes
// @Accept json
// @Produce json
// @Param intake body CreateIntakeRequest true "intake submission"
// @Success 201 {object} service.IntakeResult
// @Failure 400 {object} map[string]any
// @Router /api/intakes [post]
func (h *Handler) IntakeCreate(c *gin.Context) {
	var req CreateIntakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	sub := scoring.IntakeSubmission{
		UserID:               req.UserID,
		ServiceType:          models.ServiceType(req.ServiceType),
		CourtName:            req.CourtName,
		ContactMethod:        req.ContactMethod,
		SafeguardingConcerns: req.SafeguardingConcerns,
		ChildrenInvolved:     req.ChildrenInvolved,
		ChildrenCount:        req.ChildrenCount,
		PreviousMediation:    req.PreviousMediation,
		ArchetypeHint:        models.Archetype(req.Archetype),
	}
	if req.HearingDate != "" {
		t, err := time.Parse(time.RFC3339, req.HearingDate)
		if err != nil {
			writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "hearingDate must be RFC3339", err.Error())
			return
		}
		sub.HearingDate = &t
	}

	result, err := h.Intakes.Create(c.Request.Context(), sub)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *Handler) IntakesList(c *gin.Context) {
	f := store.IntakeFilter{
		Status:      models.IntakeStatus(c.Query("status")),
		ServiceType: models.ServiceType(c.Query("serviceType")),
		MinUrgency:  queryInt(c, "minUrgency", 0),
		Page:        queryInt(c, "page", 1),
		Limit:       queryInt(c, "limit", 20),
	}
	intakes, total, err := h.Intakes.List(c.Request.Context(), f)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, listEnvelope(intakes, total, f.Page, f.Limit))
}

func (h *Handler) IntakeDetails(c *gin.Context) {
	intake, err := h.Intakes.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, intake)
}

type UpdateIntakeStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING QUALIFIED BOOKED CLOSED"`
}

func (h *Handler) IntakeUpdateStatus(c *gin.Context) {
	var req UpdateIntakeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}
	if err := h.Intakes.UpdateStatus(c.Request.Context(), c.Param("id"), models.IntakeStatus(req.Status)); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": req.Status})
}

func (h *Handler) IntakesUrgent(c *gin.Context) {
	intakes, err := h.Intakes.Urgent(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": intakes})
}

func (h *Handler) IntakeStats(c *gin.Context) {
	stats, err := h.Intakes.Stats(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

type IngestSignalRequest struct {
	PlatformSource string `json:"platformSource" validate:"required"`
	PlatformPostID string `json:"platformPostId" validate:"required"`
	PlatformURL    string `json:"platformUrl,omitempty"`
	AuthorUsername string `json:"authorUsername" validate:"required"`
	Content        string `json:"content" validate:"required"`
	PostedAt       string `json:"postedAt" validate:"required"`
}

// @Summary Ingest an external signal
// @Description Classifies observed content; persists MEDIUM/URGENT signals, dedups by content fingerprint
// @Tags signals
// @Accept json
// @Produce json
// @Param signal body IngestSignalRequest true "observed content"
// @Success 201 {object} service.IngestResult
// @Failure 400 {object} map[string]any
// @Router /api/signals [post]
func (h *Handler) SignalIngest(c *gin.Context) {
	var req IngestSignalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}
	postedAt, err := time.Parse(time.RFC3339, req.PostedAt)
	if err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "postedAt must be RFC3339", err.Error())
		return
	}

	result, err := h.Signals.Ingest(c.Request.Context(), service.SignalSubmission{
		PlatformSource: req.PlatformSource,
		PlatformPostID: req.PlatformPostID,
		PlatformURL:    req.PlatformURL,
		AuthorUsername: req.AuthorUsername,
		Content:        req.Content,
		PostedAt:       postedAt,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	status := http.StatusCreated
	if result.Signal == nil || result.IsDuplicate {
		status = http.StatusOK
	}
	c.JSON(status, result)
}

func (h *Handler) SignalsList(c *gin.Context) {
	f := store.SignalFilter{
		Status:         models.SignalStatus(c.Query("status")),
		DistressLevel:  models.DistressLevel(c.Query("distressLevel")),
		PlatformSource: c.Query("platformSource"),
		Page:           queryInt(c, "page", 1),
		Limit:          queryInt(c, "limit", 20),
	}
	signals, total, err := h.Signals.List(c.Request.Context(), f)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, listEnvelope(signals, total, f.Page, f.Limit))
}

func (h *Handler) SignalDetails(c *gin.Context) {
	signal, err := h.Signals.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, signal)
}

type UpdateSignalStatusRequest struct {
	Status     string `json:"status" validate:"required,oneof=DETECTED UNDER_REVIEW OUTREACH_SENT CONVERTED"`
	ReviewedBy string `json:"reviewedBy,omitempty"`
}

func (h *Handler) SignalUpdateStatus(c *gin.Context) {
	var req UpdateSignalStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}
	if err := h.Signals.UpdateStatus(c.Request.Context(), c.Param("id"), models.SignalStatus(req.Status), req.ReviewedBy); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": req.Status})
}

func (h *Handler) SignalStats(c *gin.Context) {
	stats, err := h.Signals.Stats(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

type GenerateDraftRequest struct {
	SignalID string `json:"signalId" validate:"required"`
}

func (h *Handler) OutreachGenerate(c *gin.Context) {
	var req GenerateDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}
	draft, err := h.Outreach.GenerateDraft(c.Request.Context(), req.SignalID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, draft)
}

type ReviewDraftRequest struct {
	Action          string `json:"action" validate:"required"`
	EditedContent   string `json:"editedContent,omitempty"`
	RejectionReason string `json:"rejectionReason,omitempty"`
	ReviewedBy      string `json:"reviewedBy" validate:"required"`
}

func (h *Handler) OutreachReview(c *gin.Context) {
	var req ReviewDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}
	draft, err := h.Outreach.ReviewDraft(c.Request.Context(), c.Param("id"), req.Action, req.EditedContent, req.RejectionReason, req.ReviewedBy)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}

type SendOutreachRequest struct {
	SentBy string `json:"sentBy" validate:"required"`
}

func (h *Handler) OutreachSend(c *gin.Context) {
	var req SendOutreachRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}
	action, err := h.Outreach.SendOutreach(c.Request.Context(), c.Param("id"), req.SentBy)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, action)
}

func (h *Handler) OutreachDraftsList(c *gin.Context) {
	f := store.DraftFilter{
		Status: models.DraftStatus(c.Query("status")),
		Page:   queryInt(c, "page", 1),
		Limit:  queryInt(c, "limit", 20),
	}
	drafts, total, err := h.Outreach.ListDrafts(c.Request.Context(), f)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, listEnvelope(drafts, total, f.Page, f.Limit))
}

func (h *Handler) OutreachStats(c *gin.Context) {
	stats, err := h.Outreach.Stats(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

type CreateBookingRequest struct {
	UserID          string `json:"userId" validate:"required"`
	IntakeID        string `json:"intakeId" validate:"required"`
	ServiceType     string `json:"serviceType" validate:"required,oneof=GENERAL_CONSULTATION MEDIATION EMERGENCY_SUPPORT DOCUMENT_REVIEW"`
	ScheduledAt     string `json:"scheduledAt" validate:"required"`
	DurationMinutes int    `json:"durationMinutes" validate:"required,min=15,max=240"`
	Notes           string `json:"notes,omitempty"`
}

func (h *Handler) BookingCreate(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}
	scheduledAt, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "scheduledAt must be RFC3339", err.Error())
		return
	}

	booking, err := h.Bookings.Create(c.Request.Context(), service.BookingSubmission{
		UserID:          req.UserID,
		IntakeID:        req.IntakeID,
		ServiceType:     models.ServiceType(req.ServiceType),
		ScheduledAt:     scheduledAt,
		DurationMinutes: req.DurationMinutes,
		Notes:           req.Notes,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, booking)
}

func (h *Handler) BookingsList(c *gin.Context) {
	f := store.BookingFilter{
		Status: models.BookingStatus(c.Query("status")),
		UserID: c.Query("userId"),
		Page:   queryInt(c, "page", 1),
		Limit:  queryInt(c, "limit", 20),
	}
	bookings, total, err := h.Bookings.List(c.Request.Context(), f)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, listEnvelope(bookings, total, f.Page, f.Limit))
}

type CreateReferralRequest struct {
	UserID           string `json:"userId" validate:"required"`
	ClientName       string `json:"clientName" validate:"required"`
	ClientEmail      string `json:"clientEmail,omitempty" validate:"omitempty,email"`
	ClientPhone      string `json:"clientPhone,omitempty"`
	ServiceRequested string `json:"serviceRequested" validate:"required"`
	Notes            string `json:"notes,omitempty"`
}

func (h *Handler) ReferralCreate(c *gin.Context) {
	var req CreateReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}
	referral, err := h.Referrals.Create(c.Request.Context(), service.ReferralSubmission{
		UserID:           req.UserID,
		ClientName:       req.ClientName,
		ClientEmail:      req.ClientEmail,
		ClientPhone:      req.ClientPhone,
		ServiceRequested: req.ServiceRequested,
		Notes:            req.Notes,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, referral)
}

func (h *Handler) ReferralsList(c *gin.Context) {
	f := store.ReferralFilter{
		UserID: c.Query("userId"),
		Page:   queryInt(c, "page", 1),
		Limit:  queryInt(c, "limit", 20),
	}
	referrals, total, err := h.Referrals.List(c.Request.Context(), f)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, listEnvelope(referrals, total, f.Page, f.Limit))
}

func (h *Handler) QueueStats(c *gin.Context) {
	pending, err := h.Queue.Pending(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pending": pending})
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

func writeServiceError(c *gin.Context, err error) {
	writeError(c, errs.HTTPStatus(err), errs.Code(err), err.Error(), nil)
}

func listEnvelope[T any](data []T, total, page, limit int) gin.H {
	if limit <= 0 {
		limit = 20
	}
	totalPages := (total + limit - 1) / limit
	return gin.H{
		"data": data,
		"meta": gin.H{
			"total":      total,
			"page":       page,
			"limit":      limit,
			"totalPages": totalPages,
		},
	}
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
