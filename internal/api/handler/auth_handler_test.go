package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/stonemarket/storefront/internal/api/middleware"
	"github.com/stonemarket/storefront/internal/core/domain"
)

type stubAuthService struct {
	signupFn  func(ctx context.Context, signup domain.Signup) (domain.Identity, error)
	loginFn   func(ctx context.Context, token string, creds domain.Credentials) (string, domain.Identity, error)
	loggedOut []string
}

func (s *stubAuthService) Signup(ctx context.Context, signup domain.Signup) (domain.Identity, error) {
	return s.signupFn(ctx, signup)
}

func (s *stubAuthService) Authenticate(context.Context, domain.Credentials) (domain.Identity, error) {
	return domain.Identity{}, errors.New("not used")
}

func (s *stubAuthService) StartSession(context.Context) (string, error) {
	return "fresh-anon", nil
}

func (s *stubAuthService) Resume(context.Context, string) (domain.Session, *domain.Identity, error) {
	return domain.Session{}, nil, domain.ErrNotFound
}

func (s *stubAuthService) CurrentIdentity(context.Context, string) *domain.Identity {
	return nil
}

func (s *stubAuthService) Login(ctx context.Context, token string, creds domain.Credentials) (string, domain.Identity, error) {
	return s.loginFn(ctx, token, creds)
}

func (s *stubAuthService) Logout(_ context.Context, token string) error {
	s.loggedOut = append(s.loggedOut, token)
	return nil
}

type recordingWriter struct {
	tokens []string
}

func (w *recordingWriter) Write(_ echo.Context, token string) error {
	w.tokens = append(w.tokens, token)
	return nil
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func TestAuthHandler_Signup_LogsIn(t *testing.T) {
	e := newTestEcho()
	id := uuid.New()
	stub := &stubAuthService{
		signupFn: func(_ context.Context, signup domain.Signup) (domain.Identity, error) {
			if signup.Email != "ann@example.com" || signup.Username != "ann" || signup.Password != "pw" {
				t.Fatalf("unexpected signup: %+v", signup)
			}
			return domain.Identity{ID: id, Email: signup.Email, Username: signup.Username, PasswordDigest: "digest"}, nil
		},
		loginFn: func(_ context.Context, token string, _ domain.Credentials) (string, domain.Identity, error) {
			if token != "anon" {
				t.Fatalf("expected current token to be rotated, got %q", token)
			}
			return "rotated", domain.Identity{ID: id, Email: "ann@example.com", Username: "ann", PasswordDigest: "digest"}, nil
		},
	}
	writer := &recordingWriter{}
	h := NewAuthHandler(stub, writer)

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/signup", `{"email":"ann@example.com","username":"ann","password":"pw"}`), rec)
	middleware.SetSession(c, "anon", nil)

	if err := h.Signup(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if len(writer.tokens) != 1 || writer.tokens[0] != "rotated" {
		t.Fatalf("expected cookie for rotated token, got %v", writer.tokens)
	}
	if strings.Contains(rec.Body.String(), "digest") {
		t.Fatalf("password digest leaked: %s", rec.Body.String())
	}
	var resp identityResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if !resp.Authenticated || resp.Identity == nil || resp.Identity.ID != id {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestAuthHandler_Signup_Validation(t *testing.T) {
	e := newTestEcho()
	h := NewAuthHandler(&stubAuthService{}, &recordingWriter{})

	c := e.NewContext(jsonRequest(http.MethodPost, "/api/signup", `{"email":"not-an-email","username":"ann"}`), httptest.NewRecorder())
	err := h.Signup(c)

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %v", err)
	}
	msg := he.Message.(string)
	if !strings.Contains(msg, "email must be a valid email") || !strings.Contains(msg, "password is required") {
		t.Fatalf("unexpected message: %q", msg)
	}
}

func TestAuthHandler_Signup_Duplicate(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		signupFn: func(context.Context, domain.Signup) (domain.Identity, error) {
			return domain.Identity{}, domain.ErrDuplicateEmail
		},
	}
	writer := &recordingWriter{}
	h := NewAuthHandler(stub, writer)

	c := e.NewContext(jsonRequest(http.MethodPost, "/api/signup", `{"email":"ann@example.com","username":"ann","password":"pw"}`), httptest.NewRecorder())
	if err := h.Signup(c); !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
	if len(writer.tokens) != 0 {
		t.Fatalf("no cookie expected on failed signup")
	}
}

func TestAuthHandler_Login_Failures(t *testing.T) {
	for _, failure := range []error{domain.ErrNotFound, domain.ErrUnauthorized} {
		e := newTestEcho()
		stub := &stubAuthService{
			loginFn: func(context.Context, string, domain.Credentials) (string, domain.Identity, error) {
				return "", domain.Identity{}, failure
			},
		}
		writer := &recordingWriter{}
		h := NewAuthHandler(stub, writer)

		c := e.NewContext(jsonRequest(http.MethodPost, "/api/login", `{"email":"ann@example.com","password":"x"}`), httptest.NewRecorder())
		middleware.SetSession(c, "anon", nil)
		err := h.Login(c)
		if !domain.IsCredentialError(err) {
			t.Fatalf("expected credential error, got %v", err)
		}
		if len(writer.tokens) != 0 || middleware.SessionToken(c) != "anon" {
			t.Fatalf("failed login must keep the current session")
		}
	}
}

func TestAuthHandler_Login_BadPayload(t *testing.T) {
	e := newTestEcho()
	h := NewAuthHandler(&stubAuthService{}, &recordingWriter{})

	c := e.NewContext(jsonRequest(http.MethodPost, "/api/login", `{`), httptest.NewRecorder())
	var he *echo.HTTPError
	if err := h.Login(c); !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestAuthHandler_LogoutIssuesAnonymousSession(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{}
	writer := &recordingWriter{}
	h := NewAuthHandler(stub, writer)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/api/logout", nil), rec)
	middleware.SetSession(c, "authed", &domain.Identity{ID: uuid.New()})

	if err := h.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if len(stub.loggedOut) != 1 || stub.loggedOut[0] != "authed" {
		t.Fatalf("expected old session to be logged out, got %v", stub.loggedOut)
	}
	if len(writer.tokens) != 1 || writer.tokens[0] != "fresh-anon" {
		t.Fatalf("expected fresh anonymous cookie, got %v", writer.tokens)
	}
	if middleware.Identity(c) != nil {
		t.Fatalf("identity must be cleared after logout")
	}
}

func TestAuthHandler_CheckIn(t *testing.T) {
	e := newTestEcho()
	h := NewAuthHandler(&stubAuthService{}, &recordingWriter{})

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/check-in", nil), rec)
	middleware.SetSession(c, "anon", nil)
	if err := h.CheckIn(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if strings.TrimSpace(rec.Body.String()) != `{"authenticated":false}` {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}
