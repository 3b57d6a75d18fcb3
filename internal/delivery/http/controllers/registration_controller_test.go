package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"eventregistration/internal/delivery/http/helpers"
	"eventregistration/internal/domain"
)

type mockRegistrationService struct {
	registerResult *domain.RegisterResult
	registerErr    error
	fetchReg       *domain.Registration
	fetchLock      domain.LockStatus
	fetchErr       error
	editToken      string
	editErr        error
	resendErr      error

	lastRegistered *domain.Registration
	lastUpdate     *domain.RegistrationUpdate
}

func (m *mockRegistrationService) Register(ctx context.Context, reg *domain.Registration) (*domain.RegisterResult, error) {
	m.lastRegistered = reg
	if m.registerErr != nil {
		return nil, m.registerErr
	}
	return m.registerResult, nil
}

func (m *mockRegistrationService) GetByToken(ctx context.Context, token string) (*domain.Registration, domain.LockStatus, error) {
	if m.fetchErr != nil {
		return nil, domain.LockStatus{}, m.fetchErr
	}
	return m.fetchReg, m.fetchLock, nil
}

func (m *mockRegistrationService) Edit(ctx context.Context, token string, upd *domain.RegistrationUpdate) (string, error) {
	m.lastUpdate = upd
	if m.editErr != nil {
		return "", m.editErr
	}
	return m.editToken, nil
}

func (m *mockRegistrationService) ResendEditLink(ctx context.Context, token string) error {
	return m.resendErr
}

func (m *mockRegistrationService) List(ctx context.Context, params domain.PaginationParams) ([]*domain.Registration, int, error) {
	return nil, 0, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) helpers.APIResponse {
	t.Helper()
	var resp helpers.APIResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	return resp
}

func TestRegistrationController_Register_Success(t *testing.T) {
	svc := &mockRegistrationService{
		registerResult: &domain.RegisterResult{
			Registration: &domain.Registration{ID: "r1"},
			EditToken:    strings.Repeat("ab", 32),
		},
	}
	ctrl := NewRegistrationController(testLogger(), svc)

	body := `{"full_name":"Ana Anić","email":"Ana@X.com","plus_one":false,"plus_one_full_name":"ignored"}`
	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(body))
	w := httptest.NewRecorder()

	ctrl.Register(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}
	resp := decodeResponse(t, w)
	if !resp.OK || resp.Error != nil {
		t.Fatalf("expected ok response, got %+v", resp)
	}

	// Email normalized, plus-one name dropped when plus_one is false.
	if svc.lastRegistered.Email != "ana@x.com" {
		t.Fatalf("expected normalized email, got %q", svc.lastRegistered.Email)
	}
	if svc.lastRegistered.PlusOneFullName != nil {
		t.Fatalf("expected plus_one_full_name nil, got %v", *svc.lastRegistered.PlusOneFullName)
	}

	data := resp.Data.(map[string]any)
	if tok, _ := data["edit_token"].(string); len(tok) != 64 {
		t.Fatalf("expected 64-char edit_token, got %q", tok)
	}
}

func TestRegistrationController_Register_TruthyCoercion(t *testing.T) {
	svc := &mockRegistrationService{
		registerResult: &domain.RegisterResult{Registration: &domain.Registration{}, EditToken: "t"},
	}
	ctrl := NewRegistrationController(testLogger(), svc)

	body := `{"full_name":"Ana Anić","email":"ana@x.com","plus_one":"Yes","plus_one_full_name":"  Ivo Ivić  "}`
	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(body))
	w := httptest.NewRecorder()

	ctrl.Register(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}
	if !svc.lastRegistered.PlusOne {
		t.Fatal("expected plus_one coerced to true")
	}
	if svc.lastRegistered.PlusOneFullName == nil || *svc.lastRegistered.PlusOneFullName != "Ivo Ivić" {
		t.Fatalf("expected trimmed plus-one name, got %v", svc.lastRegistered.PlusOneFullName)
	}
}

func TestRegistrationController_Register_LegacyGuests(t *testing.T) {
	svc := &mockRegistrationService{
		registerResult: &domain.RegisterResult{Registration: &domain.Registration{}, EditToken: "t"},
	}
	ctrl := NewRegistrationController(testLogger(), svc)

	body := `{"full_name":"Ana Anić","email":"ana@x.com","guests":"2","plus_one_full_name":"Ivo Ivić"}`
	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(body))
	w := httptest.NewRecorder()

	ctrl.Register(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}
	if !svc.lastRegistered.PlusOne {
		t.Fatal("expected legacy guests > 0 to map to plus_one")
	}
}

func TestRegistrationController_Register_ValidationIssues(t *testing.T) {
	svc := &mockRegistrationService{}
	ctrl := NewRegistrationController(testLogger(), svc)

	// Blank plus-one name with plus_one true, short full name, bad email:
	// all violations are returned at once, field-scoped.
	body := `{"full_name":"A","email":"not-an-email","plus_one":true,"plus_one_full_name":"  "}`
	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(body))
	w := httptest.NewRecorder()

	ctrl.Register(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
	resp := decodeResponse(t, w)
	if resp.Error == nil || resp.Error.Code != helpers.ErrCodeValidation {
		t.Fatalf("expected validation error, got %+v", resp.Error)
	}
	fields := make(map[string]bool)
	for _, issue := range resp.Error.Issues {
		fields[issue.Field] = true
	}
	for _, want := range []string{"full_name", "email", "plus_one_full_name"} {
		if !fields[want] {
			t.Fatalf("expected an issue scoped to %q, got %+v", want, resp.Error.Issues)
		}
	}
	if svc.lastRegistered != nil {
		t.Fatal("service must not be called on validation failure")
	}
}

func TestRegistrationController_Register_SingleWordPlusOneName(t *testing.T) {
	ctrl := NewRegistrationController(testLogger(), &mockRegistrationService{})

	body := `{"full_name":"Ana Anić","email":"ana@x.com","plus_one":true,"plus_one_full_name":"I"}`
	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(body))
	w := httptest.NewRecorder()

	ctrl.Register(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
	resp := decodeResponse(t, w)
	if len(resp.Error.Issues) != 1 || resp.Error.Issues[0].Field != "plus_one_full_name" {
		t.Fatalf("expected a single issue on plus_one_full_name, got %+v", resp.Error.Issues)
	}
}

func TestRegistrationController_Register_DuplicateEmail(t *testing.T) {
	svc := &mockRegistrationService{registerErr: domain.ErrDuplicateEmail}
	ctrl := NewRegistrationController(testLogger(), svc)

	body := `{"full_name":"Ana Anić","email":"ana@x.com"}`
	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(body))
	w := httptest.NewRecorder()

	ctrl.Register(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected status %d, got %d", http.StatusConflict, w.Code)
	}
	resp := decodeResponse(t, w)
	if resp.OK || resp.Error.Code != helpers.ErrCodeConflict {
		t.Fatalf("expected conflict error, got %+v", resp)
	}
}

func TestRegistrationController_Register_EmailWarning(t *testing.T) {
	svc := &mockRegistrationService{
		registerResult: &domain.RegisterResult{
			Registration: &domain.Registration{},
			EditToken:    "t",
			EmailWarning: "registration saved but the confirmation email could not be sent",
		},
	}
	ctrl := NewRegistrationController(testLogger(), svc)

	body := `{"full_name":"Ana Anić","email":"ana@x.com"}`
	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(body))
	w := httptest.NewRecorder()

	ctrl.Register(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	resp := decodeResponse(t, w)
	data := resp.Data.(map[string]any)
	if data["email_warning"] == "" {
		t.Fatal("expected email_warning in response data")
	}
}

func TestRegistrationController_Register_IgnoresUnknownFields(t *testing.T) {
	svc := &mockRegistrationService{
		registerResult: &domain.RegisterResult{Registration: &domain.Registration{}, EditToken: "t"},
	}
	ctrl := NewRegistrationController(testLogger(), svc)

	// Older form clients submit extra fields (honeypots, analytics ids);
	// registration accepts the payload and drops them.
	body := `{"full_name":"Ana Anić","email":"ana@x.com","website":"","utm_source":"newsletter"}`
	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(body))
	w := httptest.NewRecorder()

	ctrl.Register(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}
	if svc.lastRegistered == nil || svc.lastRegistered.Email != "ana@x.com" {
		t.Fatalf("expected registration despite unknown fields, got %+v", svc.lastRegistered)
	}
}

func TestRegistrationController_Fetch(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		svc        *mockRegistrationService
		wantStatus int
		wantCode   string
	}{
		{
			name:       "missing token",
			url:        "/registration",
			svc:        &mockRegistrationService{},
			wantStatus: http.StatusBadRequest,
			wantCode:   helpers.ErrCodeBadRequest,
		},
		{
			name:       "unknown token",
			url:        "/registration?token=deadbeef",
			svc:        &mockRegistrationService{fetchErr: domain.ErrNotFound},
			wantStatus: http.StatusNotFound,
			wantCode:   helpers.ErrCodeNotFound,
		},
		{
			name:       "expired token",
			url:        "/registration?token=deadbeef",
			svc:        &mockRegistrationService{fetchErr: domain.ErrTokenExpired},
			wantStatus: http.StatusGone,
			wantCode:   helpers.ErrCodeTokenExpired,
		},
		{
			name: "success while locked",
			url:  "/registration?token=deadbeef",
			svc: &mockRegistrationService{
				fetchReg:  &domain.Registration{ID: "r1", FullName: "Ana Anić", Email: "ana@x.com"},
				fetchLock: domain.LockStatus{Locked: true, LockReason: "Editing is locked 24h before the event."},
			},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewRegistrationController(testLogger(), tt.svc)
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			w := httptest.NewRecorder()

			ctrl.Fetch(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			resp := decodeResponse(t, w)
			if tt.wantCode != "" {
				if resp.Error == nil || resp.Error.Code != tt.wantCode {
					t.Fatalf("expected error code %q, got %+v", tt.wantCode, resp.Error)
				}
				return
			}
			data := resp.Data.(map[string]any)
			if data["locked"] != true {
				t.Fatalf("expected locked=true, got %v", data["locked"])
			}
			reg := data["registration"].(map[string]any)
			if reg["email"] != "ana@x.com" {
				t.Fatalf("expected registration in response, got %v", reg)
			}
			if _, leaked := reg["edit_token"]; leaked {
				t.Fatal("fetch response must not carry the edit token")
			}
		})
	}
}

func TestRegistrationController_Edit(t *testing.T) {
	body := `{"token":"0123456789abcdef","full_name":"Ana Anić","plus_one":true,"plus_one_full_name":"Ivo Ivić"}`

	t.Run("success returns new token", func(t *testing.T) {
		svc := &mockRegistrationService{editToken: "new-token"}
		ctrl := NewRegistrationController(testLogger(), svc)
		req := httptest.NewRequest(http.MethodPost, "/edit", strings.NewReader(body))
		w := httptest.NewRecorder()

		ctrl.Edit(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
		}
		resp := decodeResponse(t, w)
		data := resp.Data.(map[string]any)
		if data["new_token"] != "new-token" {
			t.Fatalf("expected new_token, got %v", data)
		}
		if !svc.lastUpdate.PlusOne || *svc.lastUpdate.PlusOneFullName != "Ivo Ivić" {
			t.Fatalf("expected plus-one update, got %+v", svc.lastUpdate)
		}
	})

	t.Run("locked", func(t *testing.T) {
		ctrl := NewRegistrationController(testLogger(), &mockRegistrationService{editErr: domain.ErrEditLocked})
		req := httptest.NewRequest(http.MethodPost, "/edit", strings.NewReader(body))
		w := httptest.NewRecorder()

		ctrl.Edit(w, req)

		if w.Code != http.StatusLocked {
			t.Fatalf("expected status %d, got %d", http.StatusLocked, w.Code)
		}
		resp := decodeResponse(t, w)
		if resp.Error.Code != helpers.ErrCodeLocked {
			t.Fatalf("expected locked error, got %+v", resp.Error)
		}
	})

	t.Run("expired", func(t *testing.T) {
		ctrl := NewRegistrationController(testLogger(), &mockRegistrationService{editErr: domain.ErrTokenExpired})
		req := httptest.NewRequest(http.MethodPost, "/edit", strings.NewReader(body))
		w := httptest.NewRecorder()

		ctrl.Edit(w, req)

		if w.Code != http.StatusGone {
			t.Fatalf("expected status %d, got %d", http.StatusGone, w.Code)
		}
	})

	t.Run("short token fails validation", func(t *testing.T) {
		ctrl := NewRegistrationController(testLogger(), &mockRegistrationService{})
		req := httptest.NewRequest(http.MethodPost, "/edit", strings.NewReader(`{"token":"short","full_name":"Ana Anić"}`))
		w := httptest.NewRecorder()

		ctrl.Edit(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		svc := &mockRegistrationService{editToken: "new-token"}
		ctrl := NewRegistrationController(testLogger(), svc)
		req := httptest.NewRequest(http.MethodPost, "/edit",
			strings.NewReader(`{"token":"0123456789abcdef","full_name":"Ana Anić","email":"ana@x.com"}`))
		w := httptest.NewRecorder()

		ctrl.Edit(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d: %s", http.StatusBadRequest, w.Code, w.Body.String())
		}
		if svc.lastUpdate != nil {
			t.Fatal("service must not be called when the payload has unknown fields")
		}
	})
}

func TestRegistrationController_Resend(t *testing.T) {
	body := `{"token":"0123456789abcdef"}`

	tests := []struct {
		name       string
		svc        *mockRegistrationService
		wantStatus int
	}{
		{"success", &mockRegistrationService{}, http.StatusOK},
		{"locked", &mockRegistrationService{resendErr: domain.ErrEditLocked}, http.StatusLocked},
		{"expired", &mockRegistrationService{resendErr: domain.ErrTokenExpired}, http.StatusGone},
		{"unknown", &mockRegistrationService{resendErr: domain.ErrNotFound}, http.StatusNotFound},
		{"sender not configured", &mockRegistrationService{resendErr: domain.ErrSenderNotConfigured}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewRegistrationController(testLogger(), tt.svc)
			req := httptest.NewRequest(http.MethodPost, "/resend-edit-link", strings.NewReader(body))
			w := httptest.NewRecorder()

			ctrl.Resend(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
		})
	}
}
