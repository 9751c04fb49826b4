package session

import (
	"errors"
	"sync"

	"github.com/hongminglow/wayfarer/internal/guard"
	"github.com/hongminglow/wayfarer/internal/models"
)

// ErrNotLoggedIn is returned by operations that need a current identity.
var ErrNotLoggedIn = errors.New("session: not logged in")

// ErrModeNotAllowed is returned when an account tries to act in a mode its
// role does not permit.
var ErrModeNotAllowed = errors.New("session: mode not allowed for this role")

// Event is delivered to subscribers after every identity change.
type Event struct {
	Identity models.Identity
	LoggedIn bool
}

// Context is the single source of truth for the current identity. Writes
// persist through the Store before subscribers are notified, so any reader
// that observes an Event can also Load the same record.
type Context struct {
	mu      sync.RWMutex
	store   *Store
	current models.Identity
	active  bool
	subs    map[int]chan Event
	nextSub int
}

// NewContext seeds a Context from whatever the store currently holds.
func NewContext(store *Store) *Context {
	identity, ok := store.Load()
	return &Context{
		store:   store,
		current: identity,
		active:  ok,
		subs:    make(map[int]chan Event),
	}
}

// Current returns the identity and whether anyone is logged in.
func (c *Context) Current() (models.Identity, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current, c.active
}

// Token returns the access token, or "" when logged out.
func (c *Context) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.active {
		return ""
	}
	return c.current.Token
}

// Login stores identity as the current session. An empty mode defaults to
// the role.
func (c *Context) Login(identity models.Identity) error {
	if identity.Mode == "" {
		identity.Mode = identity.Role
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.store.Save(identity); err != nil {
		return err
	}
	c.current, c.active = identity, true
	c.notify()
	return nil
}

// Logout clears the session. Logging out while logged out is a no-op.
func (c *Context) Logout() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.store.Clear(); err != nil {
		return err
	}
	if !c.active {
		return nil
	}
	c.current, c.active = models.Identity{}, false
	c.notify()
	return nil
}

// Update applies fn to a copy of the current identity and saves the result
// in full.
func (c *Context) Update(fn func(*models.Identity)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return ErrNotLoggedIn
	}
	next := c.current
	fn(&next)
	if err := c.store.Save(next); err != nil {
		return err
	}
	c.current = next
	c.notify()
	return nil
}

// SwitchMode changes the acting capacity. Only merchants may act in a mode
// other than their role, and only as travelers. A non-empty token replaces
// the stored one, since the backend binds the mode to the token.
func (c *Context) SwitchMode(mode models.Role, token string) error {
	current, ok := c.Current()
	if !ok {
		return ErrNotLoggedIn
	}
	if !guard.ModeAllowed(current.Role, mode) {
		return ErrModeNotAllowed
	}
	return c.Update(func(identity *models.Identity) {
		identity.Mode = mode
		if token != "" {
			identity.Token = token
		}
	})
}

// Subscribe returns a channel that receives the latest identity after each
// change, and a cancel func that closes it. Slow readers only see the most
// recent event.
func (c *Context) Subscribe() (<-chan Event, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSub
	c.nextSub++
	ch := make(chan Event, 1)
	c.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			delete(c.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

// notify must be called with c.mu held for writing.
func (c *Context) notify() {
	event := Event{Identity: c.current, LoggedIn: c.active}
	for _, ch := range c.subs {
		select {
		case ch <- event:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- event
		}
	}
}
