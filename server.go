package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dheeraj1717/fleet-manager/config"
	"github.com/dheeraj1717/fleet-manager/handlers"
	"github.com/dheeraj1717/fleet-manager/middlewares"
	"github.com/dheeraj1717/fleet-manager/models"
	"github.com/dheeraj1717/fleet-manager/utils"
	"github.com/dheeraj1717/fleet-manager/workflow"
)

const defaultPort = "8080"

func main() {
	port := os.Getenv("API_PORT")
	if port == "" {
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	// Start listening before dependencies are ready; app routes return 503
	// until DB and Redis connect.
	r := gin.New()

	// Correlation IDs: generate once per request and attach to context.
	r.Use(func(c *gin.Context) {
		cid := c.GetHeader("x-correlation-id")
		if cid == "" {
			cid = uuid.NewString()
		}
		c.Request = c.Request.WithContext(utils.SetCorrelationIdInContext(c.Request.Context(), cid))
		c.Next()
	})
	r.Use(func(c *gin.Context) {
		if c.Request.URL.Path == "/healthz" {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		if config.GetDB() == nil || config.GetRedisDB() == nil {
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
		c.Next()
	})

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	corsConfig := cors.DefaultConfig()
	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
		if allowedOrigins == "" {
			corsConfig.AllowOrigins = []string{}
		} else {
			corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "PUT", "DELETE", "OPTIONS")
	corsConfig.AddAllowHeaders("Origin", "Content-Type", "Authorization")
	corsConfig.AddExposeHeaders("Content-Length")
	corsConfig.AllowCredentials = true
	r.Use(cors.New(corsConfig))

	r.Use(customErrorLogger(logger))
	r.Use(gin.Recovery())

	auth := r.Group("/auth")
	{
		auth.POST("/register", handlers.RegisterHandler())
		auth.POST("/login", handlers.LoginHandler())
		auth.POST("/refresh", handlers.RefreshHandler())
		auth.POST("/logout", handlers.LogoutHandler())
	}

	api := r.Group("/")
	api.Use(middlewares.AuthMiddleware())
	{
		api.POST("/clients", handlers.CreateClientHandler())
		api.GET("/clients", handlers.GetClientsHandler())
		api.GET("/clients/:id", handlers.GetClientHandler())
		api.PUT("/clients/:id", handlers.UpdateClientHandler())
		api.DELETE("/clients/:id", handlers.DeleteClientHandler())
		api.GET("/clients/:id/statement", handlers.GetClientStatementHandler())

		api.POST("/vehicle-types", handlers.CreateVehicleTypeHandler())
		api.GET("/vehicle-types", handlers.GetVehicleTypesHandler())
		api.PUT("/vehicle-types/:id", handlers.UpdateVehicleTypeHandler())
		api.DELETE("/vehicle-types/:id", handlers.DeleteVehicleTypeHandler())

		api.POST("/vehicles", handlers.CreateVehicleHandler())
		api.GET("/vehicles", handlers.GetVehiclesHandler())
		api.GET("/vehicles/:id", handlers.GetVehicleHandler())
		api.PUT("/vehicles/:id", handlers.UpdateVehicleHandler())
		api.DELETE("/vehicles/:id", handlers.DeleteVehicleHandler())

		api.POST("/drivers", handlers.CreateDriverHandler())
		api.GET("/drivers", handlers.GetDriversHandler())
		api.GET("/drivers/:id", handlers.GetDriverHandler())
		api.PUT("/drivers/:id", handlers.UpdateDriverHandler())
		api.DELETE("/drivers/:id", handlers.DeleteDriverHandler())

		api.POST("/fuel-entries", handlers.CreateFuelEntryHandler())
		api.GET("/fuel-entries", handlers.GetFuelEntriesHandler())
		api.PUT("/fuel-entries/:id", handlers.UpdateFuelEntryHandler())
		api.DELETE("/fuel-entries/:id", handlers.DeleteFuelEntryHandler())

		api.POST("/jobs", handlers.CreateJobHandler())
		api.GET("/jobs", handlers.GetJobsHandler())
		api.GET("/jobs/:id", handlers.GetJobHandler())
		api.PUT("/jobs/:id", handlers.UpdateJobHandler())
		api.DELETE("/jobs/:id", handlers.DeleteJobHandler())

		api.POST("/invoices/generate", handlers.GenerateInvoiceHandler())
		api.GET("/invoices", handlers.GetInvoicesHandler())
		api.GET("/invoices/:id", handlers.GetInvoiceHandler())
		api.GET("/invoices/:id/payments", handlers.GetInvoicePaymentsHandler())

		api.POST("/payments", handlers.RecordPaymentHandler())
		api.GET("/payments", handlers.GetPaymentsHandler())
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe()
	}()

	// Connect dependencies after the port is open.
	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()

	db := config.GetDB()
	sqlDB, _ := db.DB()
	defer func() {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	}()
	// AutoMigrate can run DDL that blocks tables; allow running migrations
	// as a separate job instead.
	if !strings.EqualFold(strings.TrimSpace(os.Getenv("SKIP_MIGRATIONS")), "true") {
		models.MigrateTable()
	} else {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
	}

	sweeperCtx, cancelSweeper := context.WithCancel(context.Background())
	defer cancelSweeper()
	go workflow.NewOverdueSweeper(logger).Run(sweeperCtx)

	logger.WithFields(logrus.Fields{
		"info": "Connection Established",
	}).Info("listening on port ", port)

	select {
	case <-sigCtx.Done():
		// graceful shutdown below
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	// Stop background workers before draining requests.
	cancelSweeper()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}

	if rdb := config.GetRedisDB(); rdb != nil {
		_ = rdb.Close()
	}
}

// customErrorLogger logs only requests that produced errors
func customErrorLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			logger.Error(c.Errors.String())
		}
	}
}

func splitAndTrim(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
