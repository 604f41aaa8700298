package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

const testCSRFCookie = "csrf_token"

func runCSRF(t *testing.T, method, token, header string) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(method, "/v1/payments", nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: testCSRFCookie, Value: token})
	}
	if header != "" {
		req.Header.Set(CSRFHeader, header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := CSRF(testCSRFCookie)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec
}

func TestCSRF_SafeMethodsExempt(t *testing.T) {
	for _, method := range []string{http.MethodGet, http.MethodHead, http.MethodOptions} {
		if rec := runCSRF(t, method, "", ""); rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200 without tokens, got %d", method, rec.Code)
		}
	}
}

func TestCSRF_MissingHeader(t *testing.T) {
	rec := runCSRF(t, http.MethodPost, "token-value", "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "refresh_and_retry") {
		t.Fatalf("expected recovery action in body: %s", rec.Body.String())
	}
}

func TestCSRF_MissingCookie(t *testing.T) {
	if rec := runCSRF(t, http.MethodPost, "", "token-value"); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestCSRF_Mismatch(t *testing.T) {
	if rec := runCSRF(t, http.MethodPost, "token-a", "token-b"); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestCSRF_Match(t *testing.T) {
	if rec := runCSRF(t, http.MethodPost, "token-value", "token-value"); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
