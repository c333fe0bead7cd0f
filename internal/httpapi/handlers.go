package httpapi

import (
	"errors"
	"net/http"
	"time"

	"healthconnect/internal/auth"
	"healthconnect/internal/consultation"
	"healthconnect/internal/payment"
	"healthconnect/internal/provider"
	"healthconnect/internal/rbac"
	"healthconnect/internal/reporting"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.

type Handlers struct {
	Auth          *auth.Manager
	Consultations *consultation.Service
	Payments      *payment.Service
	Reports       *reporting.Service
}

// identity extracts the authenticated caller. Requests without an identity
// were not passed through the auth middleware.
func identity(c *gin.Context) (consultation.Identity, bool) {
	uid, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return consultation.Identity{}, false
	}
	role, err := auth.Role(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return consultation.Identity{}, false
	}
	return consultation.Identity{UserID: uid, Role: rbac.Role(role)}, true
}

// writeError maps service errors onto the API error shape. Transition and
// permission failures carry enough detail for a client to explain the
// rejection; everything else is a bare error code.
func writeError(c *gin.Context, err error) {
	var te *consultation.TransitionError
	if errors.As(err, &te) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":          "invalid_status_transition",
			"message":        te.Error(),
			"current_status": te.Current,
			"target_status":  te.Target,
		})
		return
	}

	var pe *consultation.PermissionError
	if errors.As(err, &pe) {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":   "permission_denied",
			"message": pe.Error(),
		})
		return
	}

	switch {
	case errors.Is(err, consultation.ErrInvalidInput),
		errors.Is(err, consultation.ErrProviderUnavailable),
		errors.Is(err, payment.ErrInvalidArgument),
		errors.Is(err, reporting.ErrInvalidRequest):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": err.Error()})
	case errors.Is(err, consultation.ErrForbidden):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden", "message": err.Error()})
	case errors.Is(err, consultation.ErrNotFound),
		errors.Is(err, provider.ErrNotFound),
		errors.Is(err, payment.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "not_found"})
	case errors.Is(err, consultation.ErrStatusConflict),
		errors.Is(err, payment.ErrStatusConflict):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "conflict", "message": err.Error()})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal"})
	}
}

/* ===================== AUTH ===================== */

type loginRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// Login issues a JWT token pair.
//
// NOTE: This is a skeleton-only endpoint. Real systems must validate credentials.
func (h Handlers) Login(c *gin.Context) {
	if h.Auth == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "auth not configured"})
		return
	}
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.UserID == "" || !rbac.Known(rbac.Role(req.Role)) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "user_id and a known role required"})
		return
	}
	pair, err := h.Auth.IssuePair(time.Now(), req.UserID, req.Role)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": pair.AccessToken, "refresh_token": pair.RefreshToken})
}

/* ===================== CONSULTATIONS ===================== */

type createConsultationRequest struct {
	PatientID     string    `json:"patient_id,omitempty"`
	Type          string    `json:"consultation_type"`
	PreferredDate time.Time `json:"preferred_date"`
	Notes         string    `json:"notes,omitempty"`
}

func (h Handlers) CreateConsultation(c *gin.Context) {
	actor, ok := identity(c)
	if !ok {
		return
	}
	var req createConsultationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	out, err := h.Consultations.Create(c.Request.Context(), actor, consultation.CreateRequest{
		PatientID:     req.PatientID,
		Type:          consultation.Type(req.Type),
		PreferredDate: req.PreferredDate,
		Notes:         req.Notes,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h Handlers) GetConsultation(c *gin.Context) {
	actor, ok := identity(c)
	if !ok {
		return
	}
	out, err := h.Consultations.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) ListConsultations(c *gin.Context) {
	actor, ok := identity(c)
	if !ok {
		return
	}
	out, err := h.Consultations.List(c.Request.Context(), actor)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"consultations": out})
}

type assignRequest struct {
	ProviderID  string     `json:"provider_id"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	CostLeone   *int64     `json:"cost_leone,omitempty"`
}

func (h Handlers) AssignConsultation(c *gin.Context) {
	actor, ok := identity(c)
	if !ok {
		return
	}
	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	out, err := h.Consultations.Assign(c.Request.Context(), actor, c.Param("id"), consultation.AssignRequest{
		ProviderID:  req.ProviderID,
		ScheduledAt: req.ScheduledAt,
		CostLeone:   req.CostLeone,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

type confirmRequest struct {
	ProviderID string `json:"provider_id"`
	Confirmed  bool   `json:"confirmed"`
}

func (h Handlers) ConfirmConsultation(c *gin.Context) {
	actor, ok := identity(c)
	if !ok {
		return
	}
	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	out, err := h.Consultations.Confirm(c.Request.Context(), actor, c.Param("id"), consultation.ConfirmRequest{
		ProviderID: req.ProviderID,
		Confirmed:  req.Confirmed,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

type updateConsultationRequest struct {
	Status          *string    `json:"status,omitempty"`
	Notes           *string    `json:"notes,omitempty"`
	DurationMinutes *int       `json:"duration_minutes,omitempty"`
	ScheduledAt     *time.Time `json:"scheduled_at,omitempty"`
}

func (r updateConsultationRequest) status() *consultation.Status {
	if r.Status == nil {
		return nil
	}
	s := consultation.Status(*r.Status)
	return &s
}

func (h Handlers) DoctorUpdateConsultation(c *gin.Context) {
	actor, ok := identity(c)
	if !ok {
		return
	}
	var req updateConsultationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	out, err := h.Consultations.DoctorUpdate(c.Request.Context(), actor, c.Param("id"), consultation.DoctorUpdateRequest{
		Status:          req.status(),
		Notes:           req.Notes,
		DurationMinutes: req.DurationMinutes,
		ScheduledAt:     req.ScheduledAt,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) UpdateConsultation(c *gin.Context) {
	actor, ok := identity(c)
	if !ok {
		return
	}
	var req updateConsultationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	out, err := h.Consultations.Update(c.Request.Context(), actor, c.Param("id"), consultation.UpdateRequest{
		Status:          req.status(),
		Notes:           req.Notes,
		DurationMinutes: req.DurationMinutes,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

/* ===================== PAYMENTS ===================== */

// GetConsultationPayment returns the payment attached to a consultation.
// Access follows the consultation itself: whoever may read the consultation
// may read its payment.
func (h Handlers) GetConsultationPayment(c *gin.Context) {
	actor, ok := identity(c)
	if !ok {
		return
	}
	if h.Payments == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "payments not configured"})
		return
	}

	id := c.Param("id")
	if _, err := h.Consultations.Get(c.Request.Context(), actor, id); err != nil {
		writeError(c, err)
		return
	}

	p, err := h.Payments.GetByConsultation(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

type paymentWebhookRequest struct {
	ConsultationID string `json:"consultation_id"`
	ExternalRef    string `json:"external_ref"`
	Paid           bool   `json:"paid"`
	Reason         string `json:"reason,omitempty"`
}

// PaymentWebhook settles a payment from a gateway callback.
//
// NOTE: This endpoint should be protected by gateway signature validation in production.
func (h Handlers) PaymentWebhook(c *gin.Context) {
	if h.Payments == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "payments not configured"})
		return
	}
	var req paymentWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	p, err := h.Payments.RecordGatewayStatus(c.Request.Context(), req.ConsultationID, payment.GatewayResult{
		ExternalRef: req.ExternalRef,
		Paid:        req.Paid,
		Reason:      req.Reason,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

/* ===================== ADMIN REPORTS ===================== */

func (h Handlers) ConsultationsReport(c *gin.Context) {
	if h.Reports == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "reporting not configured"})
		return
	}
	r, ok := parseRange(c)
	if !ok {
		return
	}

	out, err := h.Reports.ConsultationsSummary(c.Request.Context(), reporting.ConsultationsSummaryRequest{
		Range:      r,
		ProviderID: c.Query("provider_id"),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) RevenueReport(c *gin.Context) {
	if h.Reports == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "reporting not configured"})
		return
	}
	r, ok := parseRange(c)
	if !ok {
		return
	}

	out, err := h.Reports.RevenueSummary(c.Request.Context(), reporting.RevenueSummaryRequest{Range: r})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func parseRange(c *gin.Context) (reporting.TimeRange, bool) {
	from, err := time.Parse(time.RFC3339, c.Query("from"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "from must be RFC3339"})
		return reporting.TimeRange{}, false
	}
	to, err := time.Parse(time.RFC3339, c.Query("to"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "to must be RFC3339"})
		return reporting.TimeRange{}, false
	}
	return reporting.TimeRange{From: from, To: to}, true
}
