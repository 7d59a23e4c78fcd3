package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"shareit/internal/repository"
	"shareit/internal/service"

	"github.com/rs/zerolog"
)

// HTTPServer is the single HTTP+JSON boundary of the marketplace.
type HTTPServer struct {
	users    *service.Users
	items    *service.Items
	bookings *service.Bookings
	requests *service.Requests
	limiter  repository.RateLimiter
	mux      *http.ServeMux
	server   *http.Server
	logger   zerolog.Logger
}

func NewHTTPServer(
	port int,
	users *service.Users,
	items *service.Items,
	bookings *service.Bookings,
	requests *service.Requests,
	limiter repository.RateLimiter,
	logger *zerolog.Logger,
) *HTTPServer {
	srv := &HTTPServer{
		users:    users,
		items:    items,
		bookings: bookings,
		requests: requests,
		limiter:  limiter,
		mux:      http.NewServeMux(),
		logger:   logger.With().Str("component", "http").Logger(),
	}
	srv.routes()

	handler := requestIDMiddleware(srv.loggingMiddleware(srv.metricsMiddleware(srv.rateLimitMiddleware(srv.mux))))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

func (s *HTTPServer) routes() {
	s.mux.HandleFunc("POST /users", s.handleAddUser)
	s.mux.HandleFunc("PATCH /users/{userId}", s.handleUpdateUser)
	s.mux.HandleFunc("GET /users/{userId}", s.handleGetUser)
	s.mux.HandleFunc("DELETE /users/{userId}", s.handleDeleteUser)

	s.mux.HandleFunc("POST /items", s.handleAddItem)
	s.mux.HandleFunc("PATCH /items/{itemId}", s.handleUpdateItem)
	s.mux.HandleFunc("GET /items/{itemId}", s.handleGetItem)
	s.mux.HandleFunc("GET /items", s.handleListItems)
	s.mux.HandleFunc("GET /items/search", s.handleSearchItems)
	s.mux.HandleFunc("POST /items/{itemId}/comment", s.handleAddComment)

	s.mux.HandleFunc("POST /bookings", s.handleAddBooking)
	s.mux.HandleFunc("PATCH /bookings/{bookingId}", s.handleApproveBooking)
	s.mux.HandleFunc("GET /bookings/{bookingId}", s.handleGetBooking)
	s.mux.HandleFunc("GET /bookings", s.handleListBookingsByBooker)
	s.mux.HandleFunc("GET /bookings/owner", s.handleListBookingsByOwner)

	s.mux.HandleFunc("POST /requests", s.handleAddRequest)
	s.mux.HandleFunc("GET /requests", s.handleListRequestsByRequester)
	s.mux.HandleFunc("GET /requests/all", s.handleListAllRequests)
	s.mux.HandleFunc("GET /requests/{requestId}", s.handleGetRequest)

	s.mux.HandleFunc("GET /admin/bookings/export", s.handleExportBookings)
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler exposes the full middleware chain for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}
