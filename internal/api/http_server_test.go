package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"shareit/internal/database"
	"shareit/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := zerolog.Nop()
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	users := service.NewUsers(db, &logger)
	items := service.NewItems(db, &logger)
	bookings := service.NewBookings(db, nil, &logger)
	requests := service.NewRequests(db, &logger)

	srv := NewHTTPServer(0, users, items, bookings, requests, nil, &logger)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url string, userID int64, body any) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if userID > 0 {
		req.Header.Set(userHeader, fmt.Sprintf("%d", userID))
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(data) > 0 && data[0] == '{' {
		require.NoError(t, json.Unmarshal(data, &decoded))
	}
	return resp, decoded
}

func createUser(t *testing.T, ts *httptest.Server, name, email string) int64 {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, ts.URL+"/users", 0, map[string]any{"name": name, "email": email})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return int64(body["id"].(float64))
}

func createItem(t *testing.T, ts *httptest.Server, ownerID int64, name string, available bool) int64 {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, ts.URL+"/items", ownerID, map[string]any{
		"name": name, "description": "test item", "available": available,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return int64(body["id"].(float64))
}

func TestUserLifecycle(t *testing.T) {
	ts := setupTestServer(t)

	id := createUser(t, ts, "Jhon", "jhon@mail.ru")

	resp, body := doJSON(t, http.MethodGet, fmt.Sprintf("%s/users/%d", ts.URL, id), 0, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Jhon", body["name"])
	assert.Equal(t, "jhon@mail.ru", body["email"])

	resp, body = doJSON(t, http.MethodPatch, fmt.Sprintf("%s/users/%d", ts.URL, id), 0, map[string]any{"name": "John"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "John", body["name"])
	assert.Equal(t, "jhon@mail.ru", body["email"])

	resp, _ = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/users/%d", ts.URL, id), 0, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doJSON(t, http.MethodGet, fmt.Sprintf("%s/users/%d", ts.URL, id), 0, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Error: user is not found.", body["error"])
}

func TestGetUnknownUser(t *testing.T) {
	ts := setupTestServer(t)

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/users/9999", 0, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Error: user is not found.", body["error"])
}

func TestDuplicateEmailConflict(t *testing.T) {
	ts := setupTestServer(t)

	createUser(t, ts, "first", "same@mail.ru")
	resp, body := doJSON(t, http.MethodPost, ts.URL+"/users", 0, map[string]any{"name": "second", "email": "same@mail.ru"})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "Email already exists", body["error"])
}

func TestMissingUserHeader(t *testing.T) {
	ts := setupTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/items", 0, map[string]any{"name": "Drill", "available": true})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Non-positive header values are rejected the same way
	req, err := http.NewRequest(http.MethodGet, ts.URL+"/items", nil)
	require.NoError(t, err)
	req.Header.Set(userHeader, "-1")
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp2.StatusCode)
}

func TestBookingScenario(t *testing.T) {
	ts := setupTestServer(t)

	ownerID := createUser(t, ts, "Jhon", "jhon@mail.ru")
	itemID := createItem(t, ts, ownerID, "Drill", true)
	bookerID := createUser(t, ts, "Booker", "booker@mail.ru")

	now := time.Now()
	resp, body := doJSON(t, http.MethodPost, ts.URL+"/bookings", bookerID, map[string]any{
		"itemId": itemID,
		"start":  now.Add(24 * time.Hour).Format(time.RFC3339),
		"end":    now.Add(48 * time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "WAITING", body["status"])
	bookingID := int64(body["id"].(float64))

	resp, body = doJSON(t, http.MethodPatch,
		fmt.Sprintf("%s/bookings/%d?approved=true", ts.URL, bookingID), ownerID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "APPROVED", body["status"])

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/bookings?state=ALL", nil)
	require.NoError(t, err)
	req.Header.Set(userHeader, fmt.Sprintf("%d", bookerID))
	listResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer listResp.Body.Close()
	require.Equal(t, http.StatusOK, listResp.StatusCode)

	var list []map[string]any
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&list))
	require.Len(t, list, 1)
	assert.Equal(t, "APPROVED", list[0]["status"])
	assert.Equal(t, float64(bookingID), list[0]["id"])
}

func TestBookingDateValidation(t *testing.T) {
	ts := setupTestServer(t)

	ownerID := createUser(t, ts, "owner", "owner@mail.ru")
	itemID := createItem(t, ts, ownerID, "Drill", true)
	bookerID := createUser(t, ts, "booker", "booker@mail.ru")

	now := time.Now()
	cases := []struct {
		name       string
		start, end time.Time
	}{
		{"end before start", now.Add(48 * time.Hour), now.Add(24 * time.Hour)},
		{"end equals start", now.Add(24 * time.Hour), now.Add(24 * time.Hour)},
		{"start in the past", now.Add(-24 * time.Hour), now.Add(24 * time.Hour)},
		{"missing dates", time.Time{}, time.Time{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			payload := map[string]any{"itemId": itemID}
			if !tc.start.IsZero() {
				payload["start"] = tc.start.Format(time.RFC3339)
				payload["end"] = tc.end.Format(time.RFC3339)
			}
			resp, _ := doJSON(t, http.MethodPost, ts.URL+"/bookings", bookerID, payload)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestBookingUnavailableItem(t *testing.T) {
	ts := setupTestServer(t)

	ownerID := createUser(t, ts, "owner", "owner@mail.ru")
	itemID := createItem(t, ts, ownerID, "Broken", false)
	bookerID := createUser(t, ts, "booker", "booker@mail.ru")

	now := time.Now()
	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/bookings", bookerID, map[string]any{
		"itemId": itemID,
		"start":  now.Add(24 * time.Hour).Format(time.RFC3339),
		"end":    now.Add(48 * time.Hour).Format(time.RFC3339),
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBookingInvalidStateFilter(t *testing.T) {
	ts := setupTestServer(t)

	bookerID := createUser(t, ts, "booker", "booker@mail.ru")

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/bookings?state=banana", bookerID, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Error: state is not valid.", body["error"])
}

func TestApproveByNonOwnerForbidden(t *testing.T) {
	ts := setupTestServer(t)

	ownerID := createUser(t, ts, "owner", "owner@mail.ru")
	itemID := createItem(t, ts, ownerID, "Drill", true)
	bookerID := createUser(t, ts, "booker", "booker@mail.ru")

	now := time.Now()
	resp, body := doJSON(t, http.MethodPost, ts.URL+"/bookings", bookerID, map[string]any{
		"itemId": itemID,
		"start":  now.Add(24 * time.Hour).Format(time.RFC3339),
		"end":    now.Add(48 * time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	bookingID := int64(body["id"].(float64))

	resp, body = doJSON(t, http.MethodPatch,
		fmt.Sprintf("%s/bookings/%d?approved=true", ts.URL, bookingID), bookerID, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Error: owner item is incorrect.", body["error"])
}

func TestSearchItems(t *testing.T) {
	ts := setupTestServer(t)

	ownerID := createUser(t, ts, "owner", "owner@mail.ru")
	createItem(t, ts, ownerID, "Power Drill", true)

	resp, err := http.Get(ts.URL + "/items/search?text=drill")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	assert.Len(t, list, 1)

	// Empty text yields an empty array, not null
	resp2, err := http.Get(ts.URL + "/items/search?text=")
	require.NoError(t, err)
	defer resp2.Body.Close()
	data, err := io.ReadAll(resp2.Body)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(data))
}

func TestRequestRoundTrip(t *testing.T) {
	ts := setupTestServer(t)

	requesterID := createUser(t, ts, "requester", "requester@mail.ru")
	ownerID := createUser(t, ts, "owner", "owner@mail.ru")

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/requests", requesterID, map[string]any{"description": "need a drill"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	requestID := int64(body["id"].(float64))

	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/items", ownerID, map[string]any{
		"name": "Drill", "description": "answers the request", "available": true, "requestId": requestID,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doJSON(t, http.MethodGet, fmt.Sprintf("%s/requests/%d", ts.URL, requestID), 0, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items, ok := body["items"].([]any)
	require.True(t, ok)
	assert.Len(t, items, 1)
}

func TestRequestIDHeader(t *testing.T) {
	ts := setupTestServer(t)

	resp, err := http.Get(ts.URL + "/items/search?text=x")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.NotEmpty(t, resp.Header.Get(requestIDHeader))

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/items/search?text=x", nil)
	require.NoError(t, err)
	req.Header.Set(requestIDHeader, "fixed-id")
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, "fixed-id", resp2.Header.Get(requestIDHeader))
}

func TestExportBookings(t *testing.T) {
	ts := setupTestServer(t)

	ownerID := createUser(t, ts, "owner", "owner@mail.ru")
	itemID := createItem(t, ts, ownerID, "Drill", true)
	bookerID := createUser(t, ts, "booker", "booker@mail.ru")

	now := time.Now()
	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/bookings", bookerID, map[string]any{
		"itemId": itemID,
		"start":  now.Add(24 * time.Hour).Format(time.RFC3339),
		"end":    now.Add(48 * time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	exportResp, err := http.Get(ts.URL + "/admin/bookings/export")
	require.NoError(t, err)
	defer exportResp.Body.Close()
	require.Equal(t, http.StatusOK, exportResp.StatusCode)
	assert.Contains(t, exportResp.Header.Get("Content-Type"), "spreadsheetml")

	data, err := io.ReadAll(exportResp.Body)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
