package api

import (
	"net/http"
	"strconv"
	"time"

	"shareit/internal/metrics"
	"shareit/internal/service"
)

const stateAll = "ALL"

func (s *HTTPServer) handleAddBooking(w http.ResponseWriter, r *http.Request) {
	bookerID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	var req service.BookingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validBookingDates(w, req.Start, req.End) {
		return
	}

	detail, err := s.bookings.Add(r.Context(), bookerID, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// validBookingDates rejects malformed date ranges before the service layer
// sees them.
func validBookingDates(w http.ResponseWriter, start, end time.Time) bool {
	now := time.Now()
	switch {
	case start.IsZero() || end.IsZero():
		writeError(w, http.StatusBadRequest, "Error: booking dates are required.")
		return false
	case !end.After(start):
		writeError(w, http.StatusBadRequest, "Error: end date must be after start date.")
		return false
	case start.Before(now):
		writeError(w, http.StatusBadRequest, "Error: start date must not be in the past.")
		return false
	case !end.After(now):
		writeError(w, http.StatusBadRequest, "Error: end date must be in the future.")
		return false
	}
	return true
}

func (s *HTTPServer) handleApproveBooking(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	bookingID, ok := pathID(w, r, "bookingId")
	if !ok {
		return
	}
	approved, err := strconv.ParseBool(r.URL.Query().Get("approved"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Error: approved parameter is not valid.")
		return
	}

	detail, err := s.bookings.Approve(r.Context(), ownerID, bookingID, approved)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	metrics.IncBookingDecision(string(detail.Status))
	writeJSON(w, http.StatusOK, detail)
}

func (s *HTTPServer) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	bookingID, ok := pathID(w, r, "bookingId")
	if !ok {
		return
	}

	detail, err := s.bookings.Get(r.Context(), bookingID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *HTTPServer) handleListBookingsByBooker(w http.ResponseWriter, r *http.Request) {
	bookerID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	details, err := s.bookings.ListByBooker(r.Context(), bookerID, stateParam(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (s *HTTPServer) handleListBookingsByOwner(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	details, err := s.bookings.ListByOwner(r.Context(), ownerID, stateParam(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func stateParam(r *http.Request) string {
	if state := r.URL.Query().Get("state"); state != "" {
		return state
	}
	return stateAll
}
