package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"healthconnect/internal/audit"
	"healthconnect/internal/auth"
	"healthconnect/internal/consultation"
	"healthconnect/internal/notify"
	"healthconnect/internal/payment"
	"healthconnect/internal/provider"
	"healthconnect/internal/rbac"
	"healthconnect/internal/reporting"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testAPI struct {
	router        *gin.Engine
	consultations *consultation.MemoryRepo
	providers     *provider.MemoryRepo
	payments      *payment.MemoryRepo
}

// asIdentity injects the caller the way the auth middleware would.
func asIdentity(userID string, role rbac.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := auth.WithIdentity(c.Request.Context(), userID, string(role))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func newTestAPI(t *testing.T, userID string, role rbac.Role) *testAPI {
	t.Helper()

	consRepo := consultation.NewMemoryRepo()
	provRepo := provider.NewMemoryRepo()
	payRepo := payment.NewMemoryRepo()

	paySvc := payment.NewService(payRepo, nil)
	consSvc := consultation.NewService(consRepo, provRepo, notify.NewRecorder(), consultation.Options{
		Payments: paySvc,
		Audit:    audit.NewService(audit.NewMemoryRepo()),
	})

	h := Handlers{
		Consultations: consSvc,
		Payments:      paySvc,
		Reports:       reporting.NewService(reporting.NewMemoryRepo()),
	}

	r := gin.New()
	if userID != "" {
		r.Use(asIdentity(userID, role))
	}
	v1 := r.Group("/v1")
	{
		v1.POST("/consultations", h.CreateConsultation)
		v1.GET("/consultations", h.ListConsultations)
		v1.GET("/consultations/:id", h.GetConsultation)
		v1.POST("/consultations/:id/assign", h.AssignConsultation)
		v1.PATCH("/consultations/:id/confirm", h.ConfirmConsultation)
		v1.PATCH("/consultations/:id", h.UpdateConsultation)
		v1.GET("/consultations/:id/payment", h.GetConsultationPayment)
		v1.PATCH("/doctor/consultations/:id", h.DoctorUpdateConsultation)
	}
	r.POST("/webhooks/payments", h.PaymentWebhook)

	return &testAPI{router: r, consultations: consRepo, providers: provRepo, payments: payRepo}
}

func (a *testAPI) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func seedPending(t *testing.T, a *testAPI, id, patientID string) {
	t.Helper()
	_, err := a.consultations.Create(context.Background(), consultation.Consultation{
		ID:            id,
		PatientID:     patientID,
		Type:          consultation.TypeVideo,
		Status:        consultation.StatusPendingAdminReview,
		PreferredDate: time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func TestCreateConsultation_Patient(t *testing.T) {
	api := newTestAPI(t, "pat-1", rbac.RolePatient)

	w := api.do(t, http.MethodPost, "/v1/consultations", gin.H{
		"consultation_type": "video",
		"preferred_date":    "2026-03-10T14:00:00Z",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var out consultation.Consultation
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.PatientID != "pat-1" || out.Status != consultation.StatusPendingAdminReview || out.CostLeone != 15000 {
		t.Fatalf("unexpected consultation: %+v", out)
	}
}

func TestCreateConsultation_UnknownTypeRejected(t *testing.T) {
	api := newTestAPI(t, "pat-1", rbac.RolePatient)

	w := api.do(t, http.MethodPost, "/v1/consultations", gin.H{
		"consultation_type": "telepathy",
		"preferred_date":    "2026-03-10T14:00:00Z",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestEndpoints_RequireIdentity(t *testing.T) {
	api := newTestAPI(t, "", "")

	w := api.do(t, http.MethodGet, "/v1/consultations", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAssign_TransitionErrorShape(t *testing.T) {
	api := newTestAPI(t, "admin-1", rbac.RoleAdmin)
	api.providers.Put(provider.Provider{ID: "prov-1", UserID: "doc-1", Name: "Dr A", IsAvailable: true})
	seedPending(t, api, "cons-1", "pat-1")

	// First assign succeeds.
	w := api.do(t, http.MethodPost, "/v1/consultations/cons-1/assign", gin.H{"provider_id": "prov-1"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// Second assign must surface the transition rejection.
	w = api.do(t, http.MethodPost, "/v1/consultations/cons-1/assign", gin.H{"provider_id": "prov-1"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}

	var body struct {
		Error         string `json:"error"`
		CurrentStatus string `json:"current_status"`
		TargetStatus  string `json:"target_status"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != "invalid_status_transition" || body.CurrentStatus != "assigned" || body.TargetStatus != "assigned" {
		t.Fatalf("unexpected error body: %+v", body)
	}
}

func TestAssign_UnknownConsultation404(t *testing.T) {
	api := newTestAPI(t, "admin-1", rbac.RoleAdmin)
	api.providers.Put(provider.Provider{ID: "prov-1", UserID: "doc-1", IsAvailable: true})

	w := api.do(t, http.MethodPost, "/v1/consultations/ghost/assign", gin.H{"provider_id": "prov-1"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestConfirm_NonOwner403(t *testing.T) {
	api := newTestAPI(t, "pat-2", rbac.RolePatient)
	api.providers.Put(provider.Provider{ID: "prov-1", UserID: "doc-1", IsAvailable: true})
	seedPending(t, api, "cons-1", "pat-1")

	w := api.do(t, http.MethodPatch, "/v1/consultations/cons-1/confirm", gin.H{
		"provider_id": "prov-1",
		"confirmed":   true,
	})
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", w.Code, w.Body.String())
	}
}

func TestDoctorUpdate_ForeignConsultation404(t *testing.T) {
	api := newTestAPI(t, "doc-2", rbac.RoleDoctor)
	api.providers.Put(provider.Provider{ID: "prov-1", UserID: "doc-1", IsAvailable: true})
	api.providers.Put(provider.Provider{ID: "prov-2", UserID: "doc-2", IsAvailable: true})
	seedPending(t, api, "cons-1", "pat-1")
	prov := "prov-1"
	status := consultation.StatusAssigned
	if _, err := api.consultations.UpdateWhereStatus(context.Background(), "cons-1", consultation.StatusPendingAdminReview, consultation.Update{
		Status:     &status,
		ProviderID: &prov,
	}); err != nil {
		t.Fatalf("seed assign: %v", err)
	}

	w := api.do(t, http.MethodPatch, "/v1/doctor/consultations/cons-1", gin.H{"status": "scheduled"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestPaymentWebhook_SettlesPayment(t *testing.T) {
	api := newTestAPI(t, "admin-1", rbac.RoleAdmin)
	api.providers.Put(provider.Provider{ID: "prov-1", UserID: "doc-1", IsAvailable: true})
	seedPending(t, api, "cons-1", "pat-1")

	// Assign opens the pending payment.
	if w := api.do(t, http.MethodPost, "/v1/consultations/cons-1/assign", gin.H{"provider_id": "prov-1"}); w.Code != http.StatusOK {
		t.Fatalf("assign: %d: %s", w.Code, w.Body.String())
	}

	w := api.do(t, http.MethodPost, "/webhooks/payments", gin.H{
		"consultation_id": "cons-1",
		"external_ref":    "gw-1",
		"paid":            true,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var p payment.Payment
	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Status != payment.StatusPaid || p.ExternalRef != "gw-1" {
		t.Fatalf("unexpected payment: %+v", p)
	}

	// The payment is readable through the consultation.
	w = api.do(t, http.MethodGet, "/v1/consultations/cons-1/payment", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestPaymentWebhook_ConflictingOutcome409(t *testing.T) {
	api := newTestAPI(t, "admin-1", rbac.RoleAdmin)
	api.providers.Put(provider.Provider{ID: "prov-1", UserID: "doc-1", IsAvailable: true})
	seedPending(t, api, "cons-1", "pat-1")
	if w := api.do(t, http.MethodPost, "/v1/consultations/cons-1/assign", gin.H{"provider_id": "prov-1"}); w.Code != http.StatusOK {
		t.Fatalf("assign: %d", w.Code)
	}
	if w := api.do(t, http.MethodPost, "/webhooks/payments", gin.H{"consultation_id": "cons-1", "external_ref": "gw-1", "paid": true}); w.Code != http.StatusOK {
		t.Fatalf("first callback: %d", w.Code)
	}

	w := api.do(t, http.MethodPost, "/webhooks/payments", gin.H{"consultation_id": "cons-1", "external_ref": "gw-2", "paid": false})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
	}
}

func TestListConsultations_PatientScoped(t *testing.T) {
	api := newTestAPI(t, "pat-1", rbac.RolePatient)
	seedPending(t, api, "cons-1", "pat-1")
	seedPending(t, api, "cons-2", "pat-2")

	w := api.do(t, http.MethodGet, "/v1/consultations", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var body struct {
		Consultations []consultation.Consultation `json:"consultations"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Consultations) != 1 || body.Consultations[0].ID != "cons-1" {
		t.Fatalf("expected only own consultation, got %+v", body.Consultations)
	}
}

func TestReports_RejectBadRange(t *testing.T) {
	api := newTestAPI(t, "admin-1", rbac.RoleAdmin)
	h := Handlers{Reports: reporting.NewService(reporting.NewMemoryRepo())}
	api.router.GET("/v1/admin/reports/consultations", h.ConsultationsReport)

	w := api.do(t, http.MethodGet, "/v1/admin/reports/consultations?from=notatime&to=2026-04-01T00:00:00Z", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}

	w = api.do(t, http.MethodGet, fmt.Sprintf("/v1/admin/reports/consultations?from=%s&to=%s",
		"2026-03-01T00:00:00Z", "2026-04-01T00:00:00Z"), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}
