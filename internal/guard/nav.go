package guard

import "github.com/hongminglow/wayfarer/internal/models"

// Route paths used by navigation.
const (
	RouteExplore       = "/explore"
	RouteCommunity     = "/community"
	RouteServices      = "/services"
	RouteAdminServices = "/admin/services"
	RouteChat          = "/chat"
	RouteSettings      = "/settings"
	RouteLogin         = "/login"
	RouteSignup        = "/signup"
	RouteLogout        = "/logout"
	RouteTraveler      = "/traveler"
	RouteMerchant      = "/merchant"
	RouteAdmin         = "/admin"
)

// NavLink is one entry in the navigation bar.
type NavLink struct {
	Label string
	Route string
}

// DashboardRoute returns the dashboard for role. The dashboard follows the
// account role, not the acting mode.
func DashboardRoute(role models.Role) string {
	switch role {
	case models.Admin:
		return RouteAdmin
	case models.Merchant:
		return RouteMerchant
	case models.Traveler:
		return RouteTraveler
	}
	return RouteLogin
}

// ServicesRoute returns where the services nav item points for role.
func ServicesRoute(role models.Role) string {
	if role == models.Admin {
		return RouteAdminServices
	}
	return RouteServices
}

// NavLinks lists the navigation entries visible to the identity.
func NavLinks(identity models.Identity, loggedIn bool) []NavLink {
	if !loggedIn {
		return []NavLink{
			{Label: "Explore", Route: RouteExplore},
			{Label: "Community", Route: RouteCommunity},
			{Label: "Services", Route: RouteServices},
			{Label: "Login", Route: RouteLogin},
			{Label: "Sign up", Route: RouteSignup},
		}
	}
	links := []NavLink{
		{Label: "Explore", Route: RouteExplore},
		{Label: "Community", Route: RouteCommunity},
		{Label: "Services", Route: ServicesRoute(identity.Role)},
	}
	if Check(identity, true, Chat).Allowed {
		links = append(links, NavLink{Label: "Chat", Route: RouteChat})
	}
	return append(links,
		NavLink{Label: "Dashboard", Route: DashboardRoute(identity.Role)},
		NavLink{Label: "Settings", Route: RouteSettings},
		NavLink{Label: "Logout", Route: RouteLogout},
	)
}

// Actions reports, for each gated action, whether it is enabled.
func Actions(identity models.Identity, loggedIn bool) map[Action]Decision {
	out := make(map[Action]Decision)
	for _, action := range []Action{Post, Comment, React, Create, Chat, ManageServices} {
		out[action] = Check(identity, loggedIn, action)
	}
	return out
}
