package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	gochi "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pilotprefs/internal/domain"
	domprofile "github.com/kailas-cloud/pilotprefs/internal/domain/profile"
	healthuc "github.com/kailas-cloud/pilotprefs/internal/usecase/health"
	prefuc "github.com/kailas-cloud/pilotprefs/internal/usecase/preference"
)

// --- Mocks ---

type mockPrefs struct {
	gotCaller domain.Caller
	gotReq    prefuc.Request
	gotAppID  string
	updateErr error
	profile   domprofile.Profile
	getErr    error
}

func (m *mockPrefs) Update(_ context.Context, caller domain.Caller, req prefuc.Request) (prefuc.Result, error) {
	m.gotCaller = caller
	m.gotReq = req
	if m.updateErr != nil {
		return prefuc.Result{}, m.updateErr
	}
	return prefuc.Result{Result: prefuc.SuccessMessage}, nil
}

func (m *mockPrefs) Get(_ context.Context, caller domain.Caller, appID string) (domprofile.Profile, error) {
	m.gotCaller = caller
	m.gotAppID = appID
	return m.profile, m.getErr
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(context.Context) healthuc.Report { return m.report }

func newTestRouter(prefs *mockPrefs, health *mockHealth) http.Handler {
	if health == nil {
		health = &mockHealth{report: healthuc.Report{Status: healthuc.Healthy}}
	}
	r := gochi.NewRouter()
	r.Use(CallerMiddleware(NewTrustedHeaderResolver("X-Caller-Id")))
	NewServer(prefs, health, zap.NewNop()).Register(r)
	return r
}

func post(t *testing.T, h http.Handler, path, body, caller string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if caller != "" {
		req.Header.Set("X-Caller-Id", caller)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) CallableError {
	t.Helper()
	var body callableErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body.Error
}

// --- Tests ---

func TestUpdatePilotKnowledge_Success(t *testing.T) {
	prefs := &mockPrefs{}
	rr := post(t, newTestRouter(prefs, nil), "/updatePilotKnowledge",
		`{"data":{"message":"wi-fi pool wi-fi","appId":"hotelApp"}}`, "u1")

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	if rr.Body.String() != `{"result":{"result":"User preferences updated successfully."}}`+"\n" {
		t.Errorf("body: got %s", rr.Body.String())
	}
	if prefs.gotCaller.UID != "u1" {
		t.Errorf("caller: got %+v", prefs.gotCaller)
	}
	if prefs.gotReq.Message != "wi-fi pool wi-fi" || prefs.gotReq.AppID != "hotelApp" {
		t.Errorf("request: got %+v", prefs.gotReq)
	}
}

func TestUpdatePilotKnowledge_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   int
		wantStatus string
		wantMsg    string
	}{
		{"unauthenticated", domain.ErrUnauthenticated, 401, StatusUnauthenticated, domain.ErrUnauthenticated.Error()},
		{"invalid", fmt.Errorf("%w: missing [Message]", domain.ErrInvalidArgument), 400, StatusInvalidArgument,
			domain.ErrInvalidArgument.Error()},
		{"rate limited", domain.ErrRateLimited, 429, StatusResourceExhausted, domain.ErrRateLimited.Error()},
		{"internal wrapping not found",
			fmt.Errorf("%w: update profile: %w", domain.ErrInternal, domain.ErrProfileNotFound),
			500, StatusInternal, "internal error"},
		{"unclassified", errors.New("dial tcp 10.0.0.1:6379: refused"), 500, StatusInternal, "internal error"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			prefs := &mockPrefs{updateErr: tc.err}
			rr := post(t, newTestRouter(prefs, nil), "/updatePilotKnowledge",
				`{"data":{"message":"pool","appId":"hotelApp"}}`, "u1")

			if rr.Code != tc.wantCode {
				t.Errorf("code: got %d, want %d", rr.Code, tc.wantCode)
			}
			ce := decodeError(t, rr)
			if ce.Status != tc.wantStatus {
				t.Errorf("status: got %s, want %s", ce.Status, tc.wantStatus)
			}
			if ce.Message != tc.wantMsg {
				t.Errorf("message: got %q, want %q", ce.Message, tc.wantMsg)
			}
		})
	}
}

func TestUpdatePilotKnowledge_NoCallerPassesZeroIdentity(t *testing.T) {
	prefs := &mockPrefs{updateErr: domain.ErrUnauthenticated}
	rr := post(t, newTestRouter(prefs, nil), "/updatePilotKnowledge",
		`{"data":{"message":"pool","appId":"hotelApp"}}`, "")

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("code: got %d, want 401", rr.Code)
	}
	if prefs.gotCaller.Authenticated() {
		t.Errorf("caller should be unauthenticated, got %+v", prefs.gotCaller)
	}
}

func TestUpdatePilotKnowledge_MalformedBody(t *testing.T) {
	rr := post(t, newTestRouter(&mockPrefs{}, nil), "/updatePilotKnowledge", `{"data":`, "u1")

	if rr.Code != http.StatusBadRequest {
		t.Errorf("code: got %d, want 400", rr.Code)
	}
	if ce := decodeError(t, rr); ce.Status != StatusInvalidArgument {
		t.Errorf("status: got %s", ce.Status)
	}
}

func TestUpdatePilotKnowledge_MethodNotAllowed(t *testing.T) {
	req := httptest.NewRequest("GET", "/updatePilotKnowledge", http.NoBody)
	rr := httptest.NewRecorder()
	newTestRouter(&mockPrefs{}, nil).ServeHTTP(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("code: got %d, want 405", rr.Code)
	}
}

func TestGetPilotProfile_Success(t *testing.T) {
	ref, _ := domprofile.NewRef("hotelApp", "u1")
	prefs := &mockPrefs{profile: domprofile.Profile{
		Ref:                 ref,
		PreferredLocations:  []string{"rome"},
		AmenitiesOfInterest: []string{"spa"},
	}}
	rr := post(t, newTestRouter(prefs, nil), "/getPilotProfile", `{"data":{"appId":"hotelApp"}}`, "u1")

	if rr.Code != http.StatusOK {
		t.Fatalf("code: got %d, want 200", rr.Code)
	}
	var body struct {
		Result profileResponse `json:"result"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Result.AppID != "hotelApp" ||
		len(body.Result.Preferences.PreferredLocations) != 1 ||
		body.Result.Preferences.AmenitiesOfInterest[0] != "spa" {
		t.Errorf("unexpected body: %+v", body.Result)
	}
	if prefs.gotAppID != "hotelApp" || prefs.gotCaller.UID != "u1" {
		t.Errorf("service args: app %q caller %+v", prefs.gotAppID, prefs.gotCaller)
	}
}

func TestGetPilotProfile_NotFound(t *testing.T) {
	prefs := &mockPrefs{getErr: domain.ErrProfileNotFound}
	rr := post(t, newTestRouter(prefs, nil), "/getPilotProfile", `{"data":{"appId":"hotelApp"}}`, "u1")

	if rr.Code != http.StatusNotFound {
		t.Errorf("code: got %d, want 404", rr.Code)
	}
	if ce := decodeError(t, rr); ce.Status != StatusNotFound {
		t.Errorf("status: got %s", ce.Status)
	}
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		status   healthuc.Status
		wantCode int
	}{
		{healthuc.Healthy, http.StatusOK},
		{healthuc.Degraded, http.StatusServiceUnavailable},
		{healthuc.Unhealthy, http.StatusServiceUnavailable},
	}
	for _, tc := range tests {
		t.Run(string(tc.status), func(t *testing.T) {
			h := &mockHealth{report: healthuc.Report{
				Status: tc.status,
				Checks: map[string]healthuc.CheckResult{"database": healthuc.CheckOK},
			}}
			req := httptest.NewRequest("GET", "/health", http.NoBody)
			rr := httptest.NewRecorder()
			newTestRouter(&mockPrefs{}, h).ServeHTTP(rr, req)

			if rr.Code != tc.wantCode {
				t.Errorf("code: got %d, want %d", rr.Code, tc.wantCode)
			}
			if !strings.Contains(rr.Body.String(), `"database":"ok"`) {
				t.Errorf("body: got %s", rr.Body.String())
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	req := httptest.NewRequest("GET", "/metrics", http.NoBody)
	rr := httptest.NewRecorder()
	newTestRouter(&mockPrefs{}, nil).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("code: got %d, want 200", rr.Code)
	}
	if rr.Body.Len() == 0 {
		t.Error("expected non-empty metrics body")
	}
}
