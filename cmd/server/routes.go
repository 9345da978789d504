package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"paylink.backend/internal/interfaces/http/handlers"
	"paylink.backend/internal/interfaces/http/middleware"
)

type routeDeps struct {
	identityHandler   *handlers.IdentityHandler
	preferenceHandler *handlers.PreferenceHandler
	requestHandler    *handlers.PaymentRequestHandler
	paymentHandler    *handlers.PaymentHandler
	networkHandler    *handlers.NetworkHandler
	authMiddleware    gin.HandlerFunc
}

func applyCORSMiddleware(r *gin.Engine) {
	r.Use(func(c *gin.Context) {
		if origin := c.GetHeader("Origin"); origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, Idempotency-Key, X-Request-ID")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})
}

func registerHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "paylink-backend",
			"version": "0.1.0",
		})
	})
}

func registerMetricsRoute(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	{
		// Auth routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", d.identityHandler.Register)
			auth.POST("/login", d.identityHandler.Login)
		}

		// Identity routes (public lookup, protected wallet management)
		identities := v1.Group("/identities")
		{
			identities.POST("/me/wallets", d.authMiddleware, d.identityHandler.AddWallet)
			identities.GET("/:handle", d.identityHandler.Lookup)
		}

		// Settlement preference routes (protected)
		preferences := v1.Group("/preferences")
		preferences.Use(d.authMiddleware)
		{
			preferences.GET("", d.preferenceHandler.Get)
			preferences.PUT("", d.preferenceHandler.Update)
		}

		// Payment request routes (protected)
		paymentRequests := v1.Group("/payment-requests")
		paymentRequests.Use(d.authMiddleware)
		{
			paymentRequests.POST("", d.requestHandler.Create)
			paymentRequests.GET("", d.requestHandler.List)
			paymentRequests.GET("/:id", d.requestHandler.Get)
			paymentRequests.POST("/:id/deny", d.requestHandler.Deny)
		}

		// Payment routes (protected)
		payments := v1.Group("/payments")
		payments.Use(d.authMiddleware)
		{
			payments.POST("", middleware.IdempotencyMiddleware(), d.paymentHandler.Initiate)
			payments.GET("/:id", d.paymentHandler.Get)
			payments.POST("/:id/cancel", d.paymentHandler.Cancel)
		}

		// Network registry routes (public)
		networks := v1.Group("/networks")
		{
			networks.GET("", d.networkHandler.List)
			networks.GET("/resolve", d.networkHandler.Resolve)
			networks.GET("/:id/assets", d.networkHandler.ListAssets)
		}
	}
}
