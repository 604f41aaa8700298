package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/securebank/portal-api/internal/core/domain"
)

func runRBAC(t *testing.T, role string, allowed ...string) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/employee/payments", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if role != "" {
		c.Set(CtxRole, role)
	}

	handler := RBAC(allowed...)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec
}

func TestRBAC_AllowsListedRoles(t *testing.T) {
	for _, role := range []string{domain.RoleEmployee, domain.RoleAdmin} {
		if rec := runRBAC(t, role, domain.RoleEmployee, domain.RoleAdmin); rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", role, rec.Code)
		}
	}
}

func TestRBAC_RejectsOtherRoles(t *testing.T) {
	if rec := runRBAC(t, domain.RoleCustomer, domain.RoleEmployee, domain.RoleAdmin); rec.Code != http.StatusForbidden {
		t.Fatalf("customer: expected 403, got %d", rec.Code)
	}
}

func TestRBAC_RejectsMissingRole(t *testing.T) {
	if rec := runRBAC(t, "", domain.RoleEmployee); rec.Code != http.StatusForbidden {
		t.Fatalf("missing role: expected 403, got %d", rec.Code)
	}
}
