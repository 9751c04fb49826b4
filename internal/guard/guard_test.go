package guard

import (
	"testing"

	"github.com/hongminglow/wayfarer/internal/models"
)

func TestDecideContentTable(t *testing.T) {
	tests := []struct {
		role       models.Role
		mode       models.Role
		wantAllow  bool
		wantReason string
		dashboard  string
	}{
		{models.Traveler, models.Traveler, true, "", RouteTraveler},
		{models.Merchant, models.Traveler, true, "", RouteMerchant},
		{models.Merchant, models.Merchant, false, "switch to traveler mode", RouteMerchant},
		{models.Merchant, "", false, "switch to traveler mode", RouteMerchant},
		{models.Admin, models.Admin, false, "admins cannot post/react/comment", RouteAdmin},
		{models.Admin, models.Traveler, false, "admins cannot post/react/comment", RouteAdmin},
		{models.Admin, models.Merchant, false, "admins cannot post/react/comment", RouteAdmin},
	}
	for _, tt := range tests {
		for _, action := range []Action{Post, Comment, React, Create} {
			got := Decide(tt.role, tt.mode, action)
			if got.Allowed != tt.wantAllow || got.Reason != tt.wantReason {
				t.Errorf("Decide(%s, %s, %s) = %+v, want allowed=%v reason=%q",
					tt.role, tt.mode, action, got, tt.wantAllow, tt.wantReason)
			}
		}
		if route := DashboardRoute(tt.role); route != tt.dashboard {
			t.Errorf("DashboardRoute(%s) = %q, want %q", tt.role, route, tt.dashboard)
		}
	}
}

func TestDecideWithoutSession(t *testing.T) {
	got := Decide("", "", Post)
	if got.Allowed || got.Reason != ReasonLoginRequired {
		t.Fatalf("Decide without role = %+v", got)
	}
	got = Check(models.Identity{Role: models.Traveler}, false, Comment)
	if got.Allowed || got.Reason != ReasonLoginRequired {
		t.Fatalf("Check logged out = %+v", got)
	}
}

func TestModeAllowed(t *testing.T) {
	tests := []struct {
		role, mode models.Role
		want       bool
	}{
		{models.Merchant, models.Traveler, true},
		{models.Merchant, models.Merchant, true},
		{models.Traveler, models.Traveler, true},
		{models.Traveler, models.Merchant, false},
		{models.Admin, models.Traveler, false},
	}
	for _, tt := range tests {
		if got := ModeAllowed(tt.role, tt.mode); got != tt.want {
			t.Errorf("ModeAllowed(%s, %s) = %v, want %v", tt.role, tt.mode, got, tt.want)
		}
	}
}

func TestDecideManageServices(t *testing.T) {
	if !Decide(models.Admin, models.Admin, ManageServices).Allowed {
		t.Error("admin cannot manage services")
	}
	for _, role := range []models.Role{models.Traveler, models.Merchant} {
		got := Decide(role, role, ManageServices)
		if got.Allowed || got.Reason != ReasonAdminsOnly {
			t.Errorf("Decide(%s, manage) = %+v", role, got)
		}
	}
}

func TestServicesRoute(t *testing.T) {
	if got := ServicesRoute(models.Admin); got != "/admin/services" {
		t.Errorf("admin services route = %q", got)
	}
	if got := ServicesRoute(models.Traveler); got != "/services" {
		t.Errorf("traveler services route = %q", got)
	}
}

func TestNavLinks(t *testing.T) {
	routes := func(links []NavLink) map[string]bool {
		out := make(map[string]bool)
		for _, link := range links {
			out[link.Route] = true
		}
		return out
	}

	loggedOut := routes(NavLinks(models.Identity{}, false))
	if !loggedOut[RouteLogin] || loggedOut[RouteSettings] {
		t.Errorf("logged out links = %v", loggedOut)
	}

	admin := routes(NavLinks(models.Identity{Role: models.Admin, Mode: models.Admin}, true))
	if !admin[RouteAdmin] || !admin[RouteAdminServices] || admin[RouteChat] {
		t.Errorf("admin links = %v", admin)
	}

	actingMerchant := routes(NavLinks(models.Identity{Role: models.Merchant, Mode: models.Traveler}, true))
	if !actingMerchant[RouteMerchant] || !actingMerchant[RouteChat] {
		t.Errorf("merchant acting as traveler links = %v", actingMerchant)
	}
}
