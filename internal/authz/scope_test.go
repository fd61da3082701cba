package authz

import (
	"testing"

	"github.com/dropDatabas3/shepherd/internal/domain"
)

func leaderManila() domain.Principal {
	return domain.Principal{
		UserID:              "u-leader",
		Role:                domain.RoleLeader,
		TenantID:            "tenant-a",
		LocalChurchID:       "church-manila",
		AccessibleChurchIDs: []string{"church-manila"},
	}
}

func adminTenantA() domain.Principal {
	return domain.Principal{
		UserID:              "u-admin",
		Role:                domain.RoleAdmin,
		TenantID:            "tenant-a",
		LocalChurchID:       "church-manila",
		AccessibleChurchIDs: []string{"church-manila", "church-cebu"},
	}
}

func TestBuildScope_PinnedToOwnTenant(t *testing.T) {
	// El override del cliente que apunta a otro tenant se ignora, no se mergea.
	overrides := []string{"", "tenant-a", "tenant-b", "'; DROP TABLE users;--"}
	for _, ov := range overrides {
		s := BuildScope(leaderManila(), ov, ScopeTenant)
		if !s.Matches("tenant-a", "") {
			t.Fatalf("override %q: own tenant must match", ov)
		}
		if s.Matches("tenant-b", "") {
			t.Fatalf("override %q: foreign tenant leaked", ov)
		}
	}
}

func TestBuildScope_ChurchOverrideNeverWidens(t *testing.T) {
	s := BuildScope(leaderManila(), "church-cebu", ScopeChurch)
	if s.Matches("", "church-cebu") {
		t.Fatal("override outside accessible set must be ignored")
	}
	if !s.Matches("", "church-manila") {
		t.Fatal("own church must still match after ignored override")
	}
}

func TestBuildScope_ChurchOverrideNarrows(t *testing.T) {
	// Un ADMIN con dos iglesias puede pedir ver solo una.
	s := BuildScope(adminTenantA(), "church-cebu", ScopeChurch)
	if !s.Matches("", "church-cebu") {
		t.Fatal("requested church inside the accessible set must match")
	}
	if s.Matches("", "church-manila") {
		t.Fatal("narrowed scope must exclude the other accessible church")
	}
}

func TestBuildScope_DetachedPrincipalFailsClosed(t *testing.T) {
	p := domain.Principal{UserID: "u-orphan", Role: domain.RoleMember}
	for _, field := range []ScopeField{ScopeTenant, ScopeChurch} {
		s := BuildScope(p, "tenant-a", field)
		if !s.MatchesNothing() {
			t.Fatalf("detached principal must match nothing for %s", field)
		}
		if s.Matches("tenant-a", "church-manila") {
			t.Fatal("detached principal matched a row")
		}
		frag, args := s.SQL(1)
		if frag != "FALSE" || args != nil {
			t.Fatalf("SQL = %q %v, want FALSE", frag, args)
		}
	}
}

func TestBuildScope_SuperAdmin(t *testing.T) {
	super := domain.Principal{UserID: "u-root", Role: domain.RoleSuperAdmin}

	s := BuildScope(super, "", ScopeTenant)
	if !s.IsUnrestricted() {
		t.Fatal("super admin without override must be unrestricted")
	}
	if !s.Matches("tenant-a", "") || !s.Matches("tenant-b", "") {
		t.Fatal("unrestricted scope must match any tenant")
	}
	frag, _ := s.SQL(1)
	if frag != "TRUE" {
		t.Fatalf("SQL = %q, want TRUE", frag)
	}

	// Con override: se estrecha voluntariamente a un tenant.
	narrowed := BuildScope(super, "tenant-b", ScopeTenant)
	if narrowed.IsUnrestricted() {
		t.Fatal("override must narrow the super admin scope")
	}
	if !narrowed.Matches("tenant-b", "") || narrowed.Matches("tenant-a", "") {
		t.Fatal("narrowed super admin scope must match only the override")
	}
}

func TestBuildScope_MemberWithoutChurch(t *testing.T) {
	p := domain.Principal{UserID: "u-x", Role: domain.RoleMember, TenantID: "tenant-a"}
	s := BuildScope(p, "", ScopeChurch)
	if !s.MatchesNothing() {
		t.Fatal("member without church must match nothing on church-scoped entities")
	}
}

func TestScopeSQLFragments(t *testing.T) {
	single := BuildScope(leaderManila(), "", ScopeChurch)
	frag, args := single.SQL(3)
	if frag != "local_church_id = $3" {
		t.Fatalf("fragment = %q", frag)
	}
	if len(args) != 1 || args[0] != "church-manila" {
		t.Fatalf("args = %v", args)
	}

	multi := BuildScope(adminTenantA(), "", ScopeChurch)
	frag, args = multi.SQL(1)
	if frag != "local_church_id = ANY($1)" {
		t.Fatalf("fragment = %q", frag)
	}
	vals, ok := args[0].([]string)
	if !ok || len(vals) != 2 {
		t.Fatalf("args = %v", args)
	}
}

func TestScopeValuesReturnsCopy(t *testing.T) {
	s := BuildScope(leaderManila(), "", ScopeChurch)
	vals := s.Values()
	vals[0] = "mutated"
	if !s.Matches("", "church-manila") {
		t.Fatal("mutating Values() result must not affect the scope")
	}
}
