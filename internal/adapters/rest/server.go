package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	core_port "github.com/James-Mirambel/Terratrade-sub001/internal/core/port"
)

// Server - REST API сервер торгового ядра.
type Server struct {
	httpServer *http.Server
	logger     core_port.LoggerPort
}

// NewServer создает новый экземпляр сервера.
func NewServer(
	port string,
	propertyHandler *PropertyHandler,
	offerHandler *OfferHandler,
	escrowHandler *EscrowHandler,
	baseLogger core_port.LoggerPort,
) *Server {
	r := chi.NewRouter()

	// Middleware
	r.Use(LoggerMiddleware(baseLogger))
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		// Аутентификацию выполняет API Gateway, здесь только читаем заголовки
		r.Use(AuthMiddleware)

		r.Route("/properties", func(r chi.Router) {
			r.Post("/", propertyHandler.SubmitProperty)
			r.Post("/{propertyID}/moderation", propertyHandler.ModerateProperty)
			r.Delete("/{propertyID}", propertyHandler.DeleteProperty)
			r.Get("/{propertyID}/offers", propertyHandler.ListPropertyOffers)
		})

		r.Route("/offers", func(r chi.Router) {
			r.Post("/", offerHandler.CreateOffer)
			r.Get("/my", offerHandler.ListMyOffers)
			r.Get("/{offerID}", offerHandler.GetOffer)
			r.Post("/{offerID}/response", offerHandler.RespondToOffer)
			r.Post("/{offerID}/counter", offerHandler.CreateCounterOffer)
			r.Post("/{offerID}/counter-response", offerHandler.RespondToCounterOffer)
			r.Post("/{offerID}/withdrawal", offerHandler.WithdrawOffer)
		})

		r.Route("/contracts", func(r chi.Router) {
			r.Get("/{contractID}", escrowHandler.GetContract)
			r.Post("/{contractID}/escrow", escrowHandler.CreateEscrowAccount)
		})

		r.Route("/escrow", func(r chi.Router) {
			r.Post("/{escrowID}/deposits", escrowHandler.DepositFunds)
			r.Post("/{escrowID}/releases", escrowHandler.ReleaseFunds)
			r.Post("/{escrowID}/disputes", escrowHandler.DisputeEscrow)
			r.Get("/{escrowID}/statement", escrowHandler.GetEscrowStatement)
		})
	})

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	return &Server{
		httpServer: srv,
		logger:     baseLogger,
	}
}

// Start запускает HTTP-сервер.
func (s *Server) Start() error {
	s.logger.Info("Starting REST API server", core_port.Fields{"address": s.httpServer.Addr})
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error("Could not start server", err, nil)
		return fmt.Errorf("could not start server: %w", err)
	}
	return nil
}

// Stop корректно останавливает сервер.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping REST API server...", nil)
	return s.httpServer.Shutdown(ctx)
}
