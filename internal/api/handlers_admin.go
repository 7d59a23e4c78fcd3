package api

import (
	"fmt"
	"net/http"
	"time"

	"shareit/internal/export"
)

// handleExportBookings streams an XLSX report of every booking.
func (s *HTTPServer) handleExportBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := s.bookings.ListAll(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	fileName := fmt.Sprintf("bookings_%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))

	if err := export.Bookings(w, bookings); err != nil {
		s.logger.Error().Err(err).Msg("export failed")
	}
}
