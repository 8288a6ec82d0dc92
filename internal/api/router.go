package api

import (
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"silant-backend/internal/model"
	"silant-backend/internal/mw"
	"silant-backend/internal/service"
)

// Options configures the router.
type Options struct {
	PageSize           int
	MaxPageSize        int
	CORSAllowedOrigins []string
	// GuestRateLimit and GuestBurst throttle the anonymous search per client IP.
	GuestRateLimit float64
	GuestBurst     int
	// TrustedProxies lists the addresses or CIDRs whose X-Forwarded-For is
	// believed. Empty means the client IP is always the peer address.
	TrustedProxies []string
}

// NewRouter creates and configures a new Gin router.
func NewRouter(svc *service.Service, opts Options) (*gin.Engine, error) {
	r := gin.New()
	if err := r.SetTrustedProxies(opts.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	r.Use(gin.Recovery(), mw.RequestID(), mw.AccessLog())
	if len(opts.CORSAllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:  opts.CORSAllowedOrigins,
			AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:  []string{"Authorization", "Content-Type", mw.RequestIDHeader},
			ExposeHeaders: []string{mw.RequestIDHeader},
			MaxAge:        12 * time.Hour,
		}))
	}
	r.Use(mw.ErrorHandler())

	handler := NewHandler(svc, opts.PageSize, opts.MaxPageSize)

	// Guest search: 1 request per second with a burst of 5 unless configured.
	limit, burst := rate.Limit(opts.GuestRateLimit), opts.GuestBurst
	if limit <= 0 {
		limit = 1
	}
	if burst <= 0 {
		burst = 5
	}
	guestLimiter := mw.NewIPRateLimiter(limit, burst, 10*time.Minute)

	// API group
	api := r.Group("/api")
	{
		api.GET("/health", handler.Health)
		api.POST("/auth/token", handler.IssueToken)
		api.GET("/machines/search", mw.RateLimiter(guestLimiter), handler.SearchMachine)
	}

	authed := api.Group("", mw.Authenticate(svc))
	{
		authed.GET("/auth/me", handler.Me)

		authed.GET("/machines", handler.ListMachines)
		authed.POST("/machines", handler.CreateMachine)
		authed.GET("/machines/:id", handler.GetMachine)
		authed.PUT("/machines/:id", handler.UpdateMachine)
		authed.PATCH("/machines/:id", handler.UpdateMachine)
		authed.DELETE("/machines/:id", handler.DeleteMachine)

		authed.GET("/maintenances", handler.ListMaintenances)
		authed.POST("/maintenances", handler.CreateMaintenance)
		authed.GET("/maintenances/:id", handler.GetMaintenance)
		authed.PUT("/maintenances/:id", handler.UpdateMaintenance)
		authed.PATCH("/maintenances/:id", handler.UpdateMaintenance)
		authed.DELETE("/maintenances/:id", handler.DeleteMaintenance)

		authed.GET("/complaints", handler.ListComplaints)
		authed.POST("/complaints", handler.CreateComplaint)
		authed.GET("/complaints/:id", handler.GetComplaint)
		authed.PUT("/complaints/:id", handler.UpdateComplaint)
		authed.PATCH("/complaints/:id", handler.UpdateComplaint)
		authed.DELETE("/complaints/:id", handler.DeleteComplaint)

		for _, kind := range model.CatalogKinds() {
			authed.GET(catalogPath(kind), handler.ListCatalog(kind))
			authed.GET(catalogPath(kind)+"/:id", handler.GetCatalogEntry(kind))
		}
	}

	return r, nil
}
