package view

import (
	"context"
	"fmt"
	"sync"

	"github.com/hongminglow/wayfarer/internal/api"
	"github.com/hongminglow/wayfarer/internal/collection"
	"github.com/hongminglow/wayfarer/internal/guard"
	"github.com/hongminglow/wayfarer/internal/models"
	"github.com/hongminglow/wayfarer/internal/models/dto"
	"github.com/hongminglow/wayfarer/internal/session"
)

// ServicesAPI is the backend surface the services screen needs.
type ServicesAPI interface {
	Services(ctx context.Context, query api.ServiceQuery) ([]models.Service, error)
	CreateService(ctx context.Context, service models.Service) (models.Service, error)
	UpdateService(ctx context.Context, id int64, patch dto.ServicePatch) (models.Service, error)
	DeleteService(ctx context.Context, id int64) error
}

// ServicesSnapshot is everything the services screen renders.
type ServicesSnapshot struct {
	Query       api.ServiceQuery
	Filter      string
	Services    State[[]models.Service]
	Visible     []models.Service
	CanManage   bool
	ActionError string
}

// Services lists public services; admins can also manage them.
type Services struct {
	backend  ServicesAPI
	sessions *session.Context
	services *Resource[[]models.Service]

	mu          sync.Mutex
	query       api.ServiceQuery
	filter      string
	actionError string
}

// NewServices builds the services controller.
func NewServices(ctx context.Context, backend ServicesAPI, sessions *session.Context) *Services {
	return &Services{
		backend:  backend,
		sessions: sessions,
		services: NewResource[[]models.Service](ctx),
	}
}

// Mount loads the services for the current parameters.
func (s *Services) Mount(ctx context.Context) error {
	s.mu.Lock()
	query := s.query
	s.mu.Unlock()
	return s.services.Load(ctx, func(ctx context.Context) ([]models.Service, error) {
		return s.backend.Services(ctx, query)
	})
}

// SetQuery changes the server-side parameters and refetches.
func (s *Services) SetQuery(ctx context.Context, query api.ServiceQuery) error {
	s.mu.Lock()
	s.query = query
	s.mu.Unlock()
	return s.Mount(ctx)
}

// SetFilter changes the local text filter.
func (s *Services) SetFilter(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = text
}

// Create adds a service and appends it locally.
func (s *Services) Create(ctx context.Context, service models.Service) (models.Service, error) {
	if err := authorize(s.sessions, guard.ManageServices); err != nil {
		return models.Service{}, s.fail(err, "")
	}
	created, err := s.backend.CreateService(ctx, service)
	if err != nil {
		return models.Service{}, s.fail(err, "Could not create the service.")
	}
	s.services.Mutate(func(items *[]models.Service) {
		*items = collection.Upsert(*items, created)
	})
	return created, s.fail(nil, "")
}

// Update patches a service and replaces the local record with the server's.
func (s *Services) Update(ctx context.Context, id int64, patch dto.ServicePatch) (models.Service, error) {
	if err := authorize(s.sessions, guard.ManageServices); err != nil {
		return models.Service{}, s.fail(err, "")
	}
	updated, err := s.backend.UpdateService(ctx, id, patch)
	if err != nil {
		return models.Service{}, s.fail(err, "Could not update the service.")
	}
	if updated.ID == 0 {
		updated.ID = id
	}
	s.services.Mutate(func(items *[]models.Service) {
		*items, _ = collection.Merge(*items, id, func(existing *models.Service) { *existing = updated })
	})
	return updated, s.fail(nil, "")
}

// Delete removes a service after confirmation.
func (s *Services) Delete(ctx context.Context, id int64, confirm Confirm) error {
	if err := authorize(s.sessions, guard.ManageServices); err != nil {
		return s.fail(err, "")
	}
	name := fmt.Sprintf("service %d", id)
	if service, ok := collection.Find(s.services.Snapshot().Data, id); ok {
		name = service.Name
	}
	if !confirmed(confirm, fmt.Sprintf("Delete %s?", name)) {
		return s.fail(ErrCancelled, "")
	}
	if err := s.backend.DeleteService(ctx, id); err != nil {
		return s.fail(err, "Could not delete the service.")
	}
	s.services.Mutate(func(items *[]models.Service) {
		*items = collection.Remove(*items, id)
	})
	return s.fail(nil, "")
}

func (s *Services) fail(err error, fallback string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actionError = Describe(err, fallback)
	return err
}

// Snapshot returns the current screen state with the filter applied.
func (s *Services) Snapshot() ServicesSnapshot {
	s.mu.Lock()
	query, filter, actionError := s.query, s.filter, s.actionError
	s.mu.Unlock()

	identity, ok := s.sessions.Current()
	services := s.services.Snapshot()
	return ServicesSnapshot{
		Query:       query,
		Filter:      filter,
		Services:    services,
		Visible:     collection.Filter(services.Data, filter, serviceFields),
		CanManage:   guard.Check(identity, ok, guard.ManageServices).Allowed,
		ActionError: actionError,
	}
}

// Close discards any in-flight responses.
func (s *Services) Close() {
	s.services.Close()
}

func serviceFields(service models.Service) []string {
	return []string{service.Name, service.Area, string(service.Category), service.Address}
}
