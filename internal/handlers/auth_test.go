package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Satianurag/green-ai-carbon-scheduler/internal/service"
)

func postJSON(t *testing.T, router http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSignUp(t *testing.T) {
	t.Parallel()

	auth := &mockAuth{signUpID: 42}
	router := newTestRouter(&service.Service{Authorization: auth})

	w := postJSON(t, router, "/auth/sign-up", `{"username":"grid-ops","password":"s3cret"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var out struct {
		ID int `json:"id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.ID != 42 {
		t.Errorf("id = %d, want 42", out.ID)
	}
	if auth.lastSignUpUsername != "grid-ops" || auth.lastSignUpPassword != "s3cret" {
		t.Errorf("credentials not forwarded: %q/%q", auth.lastSignUpUsername, auth.lastSignUpPassword)
	}
}

func TestSignUp_StorageErrorNotEchoed(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&service.Service{
		Authorization: &mockAuth{signUpErr: errors.New("UNIQUE constraint failed: users.username")},
	})

	w := postJSON(t, router, "/auth/sign-up", `{"username":"grid-ops","password":"s3cret"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	var out struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Error != errSignUpFailed {
		t.Errorf("error = %q, want the generic message %q", out.Error, errSignUpFailed)
	}
}

func TestSignIn(t *testing.T) {
	t.Parallel()

	auth := &mockAuth{genTokenToken: "jwt-abc"}
	router := newTestRouter(&service.Service{Authorization: auth})

	w := postJSON(t, router, "/auth/sign-in", `{"username":"grid-ops","password":"s3cret"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Token != "jwt-abc" {
		t.Errorf("token = %q, want %q", out.Token, "jwt-abc")
	}
}

func TestSignIn_BadCredentials(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&service.Service{
		Authorization: &mockAuth{genTokenErr: errors.New("no such user")},
	})

	w := postJSON(t, router, "/auth/sign-in", `{"username":"grid-ops","password":"wrong"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	var out struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Error != errInvalidCredentials {
		t.Errorf("error = %q, want %q", out.Error, errInvalidCredentials)
	}
}

func TestAuth_MissingFields(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&service.Service{Authorization: &mockAuth{}})

	for _, path := range []string{"/auth/sign-up", "/auth/sign-in"} {
		w := postJSON(t, router, path, `{"username":"grid-ops"}`)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", path, w.Code)
		}
	}
}
