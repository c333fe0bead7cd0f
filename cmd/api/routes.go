package main

import (
	"database/sql"
	"net/http"
	"time"

	"healthconnect/internal/httpapi"
	"healthconnect/internal/rbac"
	"healthconnect/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers delegate to internal modules.
func registerRoutes(r *gin.Engine, h httpapi.Handlers, authMW gin.HandlerFunc, db *sql.DB, rdb *redis.Client) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		if err := utils.HealthCheck(c.Request.Context(), db, 2*time.Second); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "postgres": err.Error()})
			return
		}
		if err := rdb.Ping(c.Request.Context()).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "redis": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Gateway webhooks (public).
	// NOTE: This endpoint should be protected by gateway signature validation in production.
	r.POST("/webhooks/payments", h.PaymentWebhook)

	// Token issuance.
	r.POST("/v1/auth/login", h.Login)

	// protected API group
	v1 := r.Group("/v1")
	v1.Use(authMW)
	{
		consultations := v1.Group("/consultations")
		{
			consultations.POST("", rbac.RequireAnyRole(rbac.RolePatient, rbac.RoleAdmin), h.CreateConsultation)
			consultations.GET("", rbac.RequireAnyRole(rbac.RolePatient, rbac.RoleDoctor, rbac.RoleAdmin), h.ListConsultations)
			consultations.GET("/:id", rbac.RequireAnyRole(rbac.RolePatient, rbac.RoleDoctor, rbac.RoleAdmin), h.GetConsultation)
			consultations.GET("/:id/payment", rbac.RequireAnyRole(rbac.RolePatient, rbac.RoleDoctor, rbac.RoleAdmin), h.GetConsultationPayment)

			consultations.POST("/:id/assign", rbac.RequireAnyRole(rbac.RoleAdmin), h.AssignConsultation)
			consultations.PATCH("/:id/confirm", rbac.RequireAnyRole(rbac.RolePatient), h.ConfirmConsultation)
			consultations.PATCH("/:id", rbac.RequireAnyRole(rbac.RoleDoctor, rbac.RoleAdmin), h.UpdateConsultation)
		}

		doctor := v1.Group("/doctor")
		doctor.Use(rbac.RequireAnyRole(rbac.RoleDoctor))
		{
			doctor.PATCH("/consultations/:id", h.DoctorUpdateConsultation)
		}

		admin := v1.Group("/admin")
		admin.Use(rbac.RequireAnyRole(rbac.RoleAdmin))
		{
			admin.GET("/reports/consultations", h.ConsultationsReport)
			admin.GET("/reports/revenue", h.RevenueReport)
		}
	}
}
