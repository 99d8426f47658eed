package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/heartview/spark-backend/internal/services"
)

func postJSON(handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decodeAuthResponse(t *testing.T, rec *httptest.ResponseRecorder) AuthResponse {
	t.Helper()
	var resp AuthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func TestSignin_MissingFields(t *testing.T) {
	// Validation must answer before any credential comparison.
	swapBackends(t, rejectAllCredentials{t}, nil, nil)

	for _, body := range []string{
		`{"username":"","password":"secret123"}`,
		`{"username":"admin","password":""}`,
		`{}`,
	} {
		rec := postJSON(Signin, body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, rec.Code)
		}
		resp := decodeAuthResponse(t, rec)
		if resp.Success {
			t.Errorf("body %s: success = true", body)
		}
		if resp.Message != "Username and password are required" {
			t.Errorf("body %s: message = %q", body, resp.Message)
		}
	}
}

func TestSignin_WrongPassword(t *testing.T) {
	const realPassword = "spark-admin-pw"
	swapBackends(t, services.StaticCredentials{"admin": realPassword}, nil, nil)

	rec := postJSON(Signin, `{"username":"admin","password":"nope"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}

	resp := decodeAuthResponse(t, rec)
	if resp.Success || resp.Token != "" {
		t.Errorf("wrong password produced success=%v token=%q", resp.Success, resp.Token)
	}
	if resp.Message != "Invalid username or password" {
		t.Errorf("message = %q; must not say which part was wrong", resp.Message)
	}
	if strings.Contains(rec.Body.String(), realPassword) {
		t.Error("response leaked the stored password")
	}
}

func TestSignin_Success(t *testing.T) {
	sessions := &fakeSessions{tokens: map[string]uuid.UUID{}}
	swapBackends(t, services.StaticCredentials{"admin": "spark-admin-pw"}, sessions, nil)

	rec := postJSON(Signin, `{"username":"admin","password":"spark-admin-pw"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}

	resp := decodeAuthResponse(t, rec)
	if !resp.Success {
		t.Error("success = false")
	}
	if resp.Token == "" {
		t.Error("token is empty")
	}
	if resp.Region != "" {
		t.Errorf("region = %q, want none for %q", resp.Region, "admin")
	}
	if !strings.Contains(resp.Message, "admin") {
		t.Errorf("welcome message %q does not mention username", resp.Message)
	}
}

func TestSignin_RegionInWelcome(t *testing.T) {
	sessions := &fakeSessions{tokens: map[string]uuid.UUID{}}
	swapBackends(t, services.StaticCredentials{"seoul_runner": "pw12345678"}, sessions, nil)

	rec := postJSON(Signin, `{"username":"seoul_runner","password":"pw12345678"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	resp := decodeAuthResponse(t, rec)
	if resp.Region != "seoul" {
		t.Errorf("region = %q, want seoul", resp.Region)
	}
}

func TestSignup_InvalidUsername(t *testing.T) {
	rec := postJSON(Signup, `{"username":"_bad","password":"longenough1"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSignup_ShortPassword(t *testing.T) {
	rec := postJSON(Signup, `{"username":"newuser","password":"short"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	resp := decodeAuthResponse(t, rec)
	if resp.Message != "Password must be at least 8 characters" {
		t.Errorf("message = %q", resp.Message)
	}
}

func TestSignout_WithoutToken(t *testing.T) {
	rec := postJSON(Signout, ``)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
