package authz

import (
	"testing"

	"github.com/dropDatabas3/shepherd/internal/domain"
)

func TestHasMinRole(t *testing.T) {
	cases := []struct {
		actual, required domain.Role
		want             bool
	}{
		{domain.RoleMember, domain.RoleAdmin, false},
		{domain.RoleSuperAdmin, domain.RolePastor, true},
		{domain.RoleVIP, domain.RoleLeader, true},
		{domain.RoleLeader, domain.RoleVIP, false},
		{domain.RoleAdmin, domain.RoleAdmin, true},
		{domain.RoleMember, domain.RoleMember, true},
		{domain.RolePastor, domain.RoleSuperAdmin, false},
		{domain.Role("ROOT"), domain.RoleMember, false},
		{domain.RoleSuperAdmin, domain.Role("ROOT"), false},
	}
	for _, c := range cases {
		if got := HasMinRole(c.actual, c.required); got != c.want {
			t.Fatalf("HasMinRole(%s, %s) = %v, want %v", c.actual, c.required, got, c.want)
		}
	}
}

func TestCanViewProfile_Total(t *testing.T) {
	// Toda combinación rol conocida x tier conocido debe decidirse sin pánico
	// y sin fallthrough a visible para PRIVATE.
	tiers := []domain.Visibility{
		domain.VisibilityPublic,
		domain.VisibilityMembers,
		domain.VisibilityLeaders,
		domain.VisibilityPrivate,
	}
	for _, role := range domain.Roles() {
		for _, tier := range tiers {
			got := CanViewProfile(role, tier, false)
			if tier == domain.VisibilityPrivate && !HasMinRole(role, domain.RoleAdmin) && got {
				t.Fatalf("%s must not see PRIVATE profiles", role)
			}
		}
	}
	if CanViewProfile(domain.RoleMember, domain.Visibility("SECRET"), false) {
		t.Fatal("unknown tier must resolve to not visible")
	}
}

func TestCanViewProfile_Tiers(t *testing.T) {
	if !CanViewProfile(domain.RoleMember, domain.VisibilityMembers, false) {
		t.Fatal("MEMBERS tier must be visible to members")
	}
	if CanViewProfile(domain.RoleMember, domain.VisibilityLeaders, false) {
		t.Fatal("LEADERS tier must not be visible to members")
	}
	if !CanViewProfile(domain.RoleVIP, domain.VisibilityLeaders, false) {
		t.Fatal("LEADERS tier must be visible to VIP (above LEADER)")
	}
	// ADMIN saltea tiers, incluso PRIVATE.
	if !CanViewProfile(domain.RoleAdmin, domain.VisibilityPrivate, false) {
		t.Fatal("ADMIN must be able to identify PRIVATE profiles")
	}
	// El dueño siempre se ve completo.
	if !CanViewProfile(domain.RoleMember, domain.VisibilityPrivate, true) {
		t.Fatal("owner must always see their own profile")
	}
}

func TestCanViewContactDetails_AllowContactGate(t *testing.T) {
	// allowContact=false esconde contacto para todos menos el dueño,
	// incluso ADMIN y SUPER_ADMIN.
	for _, role := range domain.Roles() {
		if CanViewContactDetails(role, domain.VisibilityPublic, false, false) {
			t.Fatalf("%s must not see contact fields when allowContact=false", role)
		}
	}
	if !CanViewContactDetails(domain.RoleMember, domain.VisibilityPrivate, false, true) {
		t.Fatal("owner sees their own contact fields regardless")
	}
}

func TestCanViewContactDetails_TierStillRequired(t *testing.T) {
	// allowContact solo no alcanza: el tier también tiene que pasar.
	if CanViewContactDetails(domain.RoleMember, domain.VisibilityLeaders, true, false) {
		t.Fatal("member must not see contact of a LEADERS-tier profile")
	}
	if !CanViewContactDetails(domain.RoleLeader, domain.VisibilityLeaders, true, false) {
		t.Fatal("leader must see contact of a LEADERS-tier profile with allowContact")
	}
	if !CanViewContactDetails(domain.RoleAdmin, domain.VisibilityPrivate, true, false) {
		t.Fatal("admin bypasses tiers when allowContact=true")
	}
}
