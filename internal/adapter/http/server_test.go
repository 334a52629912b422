package adapthttp_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	adapthttp "tickets/internal/adapter/http"
	"tickets/internal/adapter/memory"
	"tickets/internal/app"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

func newTestServer(t *testing.T, adminToken string) (*httptest.Server, *memory.DB) {
	t.Helper()
	db := memory.New()
	srv := adapthttp.New(
		app.NewTransferService(db, db, 5),
		app.NewRankingService(db, db, db),
		app.NewRolloverService(db, db, zerolog.Nop()),
		adminToken,
	)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, db
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestTransferEndpoint(t *testing.T) {
	ts, _ := newTestServer(t, "")

	resp := postJSON(t, ts.URL+"/api/transfers", `{"giver":"alice","receiver":"bob","count":3}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d, want 200", resp.StatusCode)
	}
	var res app.TransferResult
	decode(t, resp, &res)
	if !res.Succeeded || res.SentAmount != 3 || res.RemainingQuota != 2 {
		t.Fatalf("got %+v", res)
	}

	// Over quota: clamped to what's left.
	resp = postJSON(t, ts.URL+"/api/transfers", `{"giver":"alice","receiver":"bob","count":4}`)
	decode(t, resp, &res)
	if !res.Succeeded || res.SentAmount != 2 || res.RemainingQuota != 0 {
		t.Fatalf("got %+v", res)
	}

	// Exhausted: still 200, just not succeeded.
	resp = postJSON(t, ts.URL+"/api/transfers", `{"giver":"alice","receiver":"bob","count":1}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d, want 200", resp.StatusCode)
	}
	decode(t, resp, &res)
	if res.Succeeded || res.SentAmount != 0 {
		t.Fatalf("got %+v", res)
	}
}

func TestTransferEndpoint_BadRequests(t *testing.T) {
	ts, _ := newTestServer(t, "")

	cases := []struct {
		name string
		body string
	}{
		{"malformed json", `{"giver":`},
		{"missing users", `{"count":3}`},
		{"zero count", `{"giver":"alice","receiver":"bob","count":0}`},
		{"negative count", `{"giver":"alice","receiver":"bob","count":-2}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := postJSON(t, ts.URL+"/api/transfers", tc.body)
			resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status: got %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestTransferEndpoint_MethodNotAllowed(t *testing.T) {
	ts, _ := newTestServer(t, "")

	resp, err := http.Get(ts.URL + "/api/transfers")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("status: got %d, want 405", resp.StatusCode)
	}
}

func TestQuotaEndpoint(t *testing.T) {
	ts, _ := newTestServer(t, "")

	postJSON(t, ts.URL+"/api/transfers", `{"giver":"alice","receiver":"bob","count":2}`).Body.Close()

	resp, err := http.Get(ts.URL + "/api/quota?user=alice")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	var body struct {
		User           string `json:"user"`
		RemainingQuota int64  `json:"remainingQuota"`
	}
	decode(t, resp, &body)
	if body.User != "alice" || body.RemainingQuota != 3 {
		t.Fatalf("got %+v", body)
	}

	resp, err = http.Get(ts.URL + "/api/quota")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing user: got %d, want 400", resp.StatusCode)
	}
}

func TestRankingEndpoints(t *testing.T) {
	ts, _ := newTestServer(t, "")

	postJSON(t, ts.URL+"/api/transfers", `{"giver":"alice","receiver":"bob","count":3}`).Body.Close()
	postJSON(t, ts.URL+"/api/transfers", `{"giver":"carol","receiver":"bob","count":1}`).Body.Close()

	resp, err := http.Get(ts.URL + "/api/rankings/today")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	var today app.TodayRanking
	decode(t, resp, &today)
	if len(today.SentTop) != 2 || today.SentTop[0].UserID != "alice" {
		t.Fatalf("today sent top: %+v", today.SentTop)
	}
	if len(today.ReceivedTop) != 1 || today.ReceivedTop[0].Total != 4 {
		t.Fatalf("today received top: %+v", today.ReceivedTop)
	}

	resp, err = http.Get(ts.URL + "/api/rankings/season?user=bob")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	var season app.SeasonRanking
	decode(t, resp, &season)
	if !season.Current || season.UserReceived != 4 {
		t.Fatalf("season ranking: %+v", season)
	}

	resp, err = http.Get(ts.URL + "/api/rankings/season?seasonId=999")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown season: got %d, want 404", resp.StatusCode)
	}
}

func TestMaintenanceEndpoints_AdminGuard(t *testing.T) {
	ts, _ := newTestServer(t, "hunter2")

	resp := postJSON(t, ts.URL+"/api/maintenance/daily-rollover", "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("no token: got %d, want 401", resp.StatusCode)
	}

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/maintenance/daily-rollover", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer wrong")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("wrong token: got %d, want 401", resp.StatusCode)
	}

	req, err = http.NewRequest(http.MethodPost, ts.URL+"/api/maintenance/daily-rollover", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer hunter2")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("valid token: got %d, want 200", resp.StatusCode)
	}
}

func TestCloseSeasonEndpoint(t *testing.T) {
	ts, db := newTestServer(t, "")

	postJSON(t, ts.URL+"/api/transfers", `{"giver":"alice","receiver":"bob","count":2}`).Body.Close()
	postJSON(t, ts.URL+"/api/maintenance/daily-rollover", "").Body.Close()

	resp := postJSON(t, ts.URL+"/api/maintenance/close-season", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d, want 200", resp.StatusCode)
	}
	var body struct {
		Closed struct {
			ID      int64   `json:"id"`
			EndDate *string `json:"endDate"`
		} `json:"closed"`
		Opened struct {
			ID      int64   `json:"id"`
			EndDate *string `json:"endDate"`
		} `json:"opened"`
	}
	decode(t, resp, &body)
	if body.Closed.EndDate == nil || body.Opened.EndDate != nil {
		t.Fatalf("got %+v", body)
	}
	if body.Opened.ID <= body.Closed.ID {
		t.Fatalf("opened id %d not after closed id %d", body.Opened.ID, body.Closed.ID)
	}

	sent, _, err := db.ArchivedUserTotals(context.Background(), body.Closed.ID, "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sent != 2 {
		t.Fatalf("archived sent: got %d, want 2", sent)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	ts, _ := newTestServer(t, "")

	resp, err := http.Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health: got %d, want 200", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("metrics: got %d, want 200", resp.StatusCode)
	}
}
