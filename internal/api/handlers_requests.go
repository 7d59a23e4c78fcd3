package api

import (
	"net/http"
)

func (s *HTTPServer) handleAddRequest(w http.ResponseWriter, r *http.Request) {
	requesterID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	var body struct {
		Description string `json:"description"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	request, err := s.requests.Add(r.Context(), requesterID, body.Description)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, request)
}

func (s *HTTPServer) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	requestID, ok := pathID(w, r, "requestId")
	if !ok {
		return
	}

	request, err := s.requests.Get(r.Context(), requestID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, request)
}

func (s *HTTPServer) handleListRequestsByRequester(w http.ResponseWriter, r *http.Request) {
	requesterID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	requests, err := s.requests.ListByRequester(r.Context(), requesterID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, requests)
}

func (s *HTTPServer) handleListAllRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := s.requests.ListAll(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, requests)
}
