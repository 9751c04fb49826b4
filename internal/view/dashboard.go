package view

import (
	"context"
	"sync"

	"github.com/hongminglow/wayfarer/internal/guard"
	"github.com/hongminglow/wayfarer/internal/models"
	"github.com/hongminglow/wayfarer/internal/session"
)

// DashboardAPI is the backend surface the dashboards need.
type DashboardAPI interface {
	Dashboard(ctx context.Context, role models.Role) (models.Dashboard, error)
}

// DashboardSnapshot is everything the dashboard screen renders.
type DashboardSnapshot struct {
	Route     string
	Role      models.Role
	Mode      models.Role
	Nav       []guard.NavLink
	Dashboard State[models.Dashboard]
}

// Dashboard shows the landing summary for the account role.
type Dashboard struct {
	backend  DashboardAPI
	sessions *session.Context
	data     *Resource[models.Dashboard]

	mu   sync.Mutex
	role models.Role
}

// NewDashboard builds the dashboard controller.
func NewDashboard(ctx context.Context, backend DashboardAPI, sessions *session.Context) *Dashboard {
	return &Dashboard{
		backend:  backend,
		sessions: sessions,
		data:     NewResource[models.Dashboard](ctx),
	}
}

// Mount loads the dashboard for the current role. Logged out users get
// ErrNotLoggedIn and an empty snapshot.
func (d *Dashboard) Mount(ctx context.Context) error {
	identity, ok := d.sessions.Current()
	if !ok {
		d.mu.Lock()
		d.role = ""
		d.mu.Unlock()
		d.data.Reset()
		return session.ErrNotLoggedIn
	}
	d.mu.Lock()
	d.role = identity.Role
	d.mu.Unlock()
	return d.data.Load(ctx, func(ctx context.Context) (models.Dashboard, error) {
		return d.backend.Dashboard(ctx, identity.Role)
	})
}

// FollowSession remounts whenever the identity changes, until ctx is done.
func (d *Dashboard) FollowSession(ctx context.Context) {
	Follow(ctx, d.sessions, func(ctx context.Context, _ session.Event) {
		d.Mount(ctx)
	})
}

// Snapshot returns the current screen state.
func (d *Dashboard) Snapshot() DashboardSnapshot {
	identity, ok := d.sessions.Current()
	d.mu.Lock()
	role := d.role
	d.mu.Unlock()
	return DashboardSnapshot{
		Route:     guard.DashboardRoute(role),
		Role:      role,
		Mode:      identity.EffectiveMode(),
		Nav:       guard.NavLinks(identity, ok),
		Dashboard: d.data.Snapshot(),
	}
}

// Close discards any in-flight responses.
func (d *Dashboard) Close() {
	d.data.Close()
}
