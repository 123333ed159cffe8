package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/avdeev-m/ticketline/api"
	"github.com/avdeev-m/ticketline/config"
	"github.com/avdeev-m/ticketline/internal/service/events"
	"github.com/avdeev-m/ticketline/internal/service/payments"
	"github.com/avdeev-m/ticketline/internal/service/tickets"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Run starts the HTTP server and blocks until the context is canceled
// or the server fails.
func Run(ctx context.Context, cfg *config.Config, paymentSvc payments.PaymentUseCase, ticketSvc tickets.TicketUseCase, eventSvc events.EventUseCase) error {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	apiGroup := router.Group("/api")
	api.NewPaymentHandler(paymentSvc).Register(apiGroup.Group("/payments"))
	api.NewTicketHandler(ticketSvc).Register(apiGroup.Group("/tickets"))
	api.NewEventHandler(eventSvc).Register(apiGroup.Group("/events"))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}
