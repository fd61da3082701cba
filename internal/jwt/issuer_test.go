package jwt

import (
	"strings"
	"testing"
	"time"

	"github.com/dropDatabas3/shepherd/internal/domain"
)

var testSecret = []byte(strings.Repeat("s3cr3t-k", 8)) // 64 bytes

func testPrincipal() domain.Principal {
	return domain.Principal{
		UserID:              "7f9c0a1e-1111-2222-3333-444455556666",
		Role:                domain.RoleLeader,
		TenantID:            "tenant-a",
		LocalChurchID:       "church-manila",
		AccessibleChurchIDs: []string{"church-manila"},
	}
}

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	iss := NewIssuer("https://chms.example.com", testSecret)

	token, exp, err := iss.IssueAccess(testPrincipal())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if time.Until(exp) > 15*time.Minute+time.Second || time.Until(exp) < 14*time.Minute {
		t.Fatalf("exp out of expected window: %v", exp)
	}

	got, err := iss.VerifyAccess(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	want := testPrincipal()
	if got.UserID != want.UserID || got.Role != want.Role || got.TenantID != want.TenantID {
		t.Fatalf("principal mismatch: %+v", got)
	}
	if got.LocalChurchID != want.LocalChurchID {
		t.Fatalf("church mismatch: %q", got.LocalChurchID)
	}
	if len(got.AccessibleChurchIDs) != 1 || got.AccessibleChurchIDs[0] != "church-manila" {
		t.Fatalf("accessible churches = %v", got.AccessibleChurchIDs)
	}
}

func TestVerifyExpired(t *testing.T) {
	iss := NewIssuer("https://chms.example.com", testSecret)
	iss.AccessTTL = -2 * time.Minute // ya nacido vencido, fuera del leeway

	token, _, err := iss.IssueAccess(testPrincipal())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := iss.VerifyAccess(token); err != ErrExpired {
		t.Fatalf("err = %v, want ErrExpired", err)
	}
}

func TestVerifyTamperedAndForeign(t *testing.T) {
	iss := NewIssuer("https://chms.example.com", testSecret)
	token, _, _ := iss.IssueAccess(testPrincipal())

	// Firma con otro secreto.
	other := NewIssuer("https://chms.example.com", []byte(strings.Repeat("x", 64)))
	if _, err := other.VerifyAccess(token); err != ErrInvalid {
		t.Fatalf("foreign secret: err = %v, want ErrInvalid", err)
	}

	// Payload manipulado.
	parts := strings.Split(token, ".")
	tampered := parts[0] + "." + parts[1][:len(parts[1])-2] + "xx" + "." + parts[2]
	if _, err := iss.VerifyAccess(tampered); err != ErrInvalid {
		t.Fatalf("tampered: err = %v, want ErrInvalid", err)
	}

	// Issuer ajeno.
	foreign := NewIssuer("https://otra-app.example.com", testSecret)
	foreignToken, _, _ := foreign.IssueAccess(testPrincipal())
	if _, err := iss.VerifyAccess(foreignToken); err != ErrInvalid {
		t.Fatalf("foreign issuer: err = %v, want ErrInvalid", err)
	}

	if _, err := iss.VerifyAccess("garbage"); err != ErrInvalid {
		t.Fatalf("garbage: err = %v, want ErrInvalid", err)
	}
}

func TestVerifyUnknownRoleFailsClosed(t *testing.T) {
	iss := NewIssuer("https://chms.example.com", testSecret)
	p := testPrincipal()
	p.Role = domain.Role("ROOT")

	token, _, err := iss.IssueAccess(p)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := iss.VerifyAccess(token); err != ErrInvalid {
		t.Fatalf("unknown role: err = %v, want ErrInvalid", err)
	}
}

func TestSuperAdminClaims(t *testing.T) {
	iss := NewIssuer("https://chms.example.com", testSecret)
	super := domain.Principal{UserID: "u-root", Role: domain.RoleSuperAdmin}

	token, _, err := iss.IssueAccess(super)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	got, err := iss.VerifyAccess(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !got.IsSuperAdmin() || got.TenantID != "" {
		t.Fatalf("super admin projection broken: %+v", got)
	}
}
