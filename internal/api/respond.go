package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"shareit/internal/service"
)

// userHeader carries the caller's identity on endpoints that need one.
const userHeader = "X-Sharer-User-Id"

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

// writeServiceError translates the service error taxonomy into an HTTP
// status. This is the only place that mapping lives.
func writeServiceError(w http.ResponseWriter, err error) {
	switch service.KindOf(err) {
	case service.KindValidation:
		writeError(w, http.StatusBadRequest, err.Error())
	case service.KindForbidden:
		writeError(w, http.StatusForbidden, err.Error())
	case service.KindNotFound:
		writeError(w, http.StatusNotFound, err.Error())
	case service.KindConflict:
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// userID reads the caller id header. Absent or non-positive values are a
// request validation failure, reported before any service call.
func userID(r *http.Request) (int64, bool) {
	raw := r.Header.Get(userHeader)
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func requireUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := userID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Error: X-Sharer-User-Id header is required.")
		return 0, false
	}
	return id, true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Error: "+name+" is not valid.")
		return 0, false
	}
	return id, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}
