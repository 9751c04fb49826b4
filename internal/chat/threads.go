// Package chat holds the two conversational controllers: direct message
// threads and the stateless FAQ assistant.
package chat

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/hongminglow/wayfarer/internal/collection"
	"github.com/hongminglow/wayfarer/internal/guard"
	"github.com/hongminglow/wayfarer/internal/models"
	"github.com/hongminglow/wayfarer/internal/session"
	"github.com/hongminglow/wayfarer/internal/view"
)

// ThreadsAPI is the backend surface direct chat needs.
type ThreadsAPI interface {
	Threads(ctx context.Context) ([]models.Thread, error)
	StartThread(ctx context.Context, username string) (models.Thread, error)
	Messages(ctx context.Context, threadID int64) ([]models.Message, error)
	SendMessage(ctx context.Context, threadID int64, text string) (models.Message, error)
	SearchUsers(ctx context.Context, query string) ([]models.UserSummary, error)
}

// State is the position of the thread view's state machine.
type State int

const (
	NoThread State = iota
	LoadingMessages
	Ready
)

func (s State) String() string {
	switch s {
	case LoadingMessages:
		return "loading messages"
	case Ready:
		return "ready"
	}
	return "no thread selected"
}

// Snapshot is everything the chat screen renders.
type Snapshot struct {
	Account     string
	Threads     view.State[[]models.Thread]
	State       State
	Selected    int64
	Messages    []models.Message
	Draft       string
	ActionError string
}

// Threads drives the thread list and the selected conversation.
type Threads struct {
	backend  ThreadsAPI
	sessions *session.Context
	threads  *view.Resource[[]models.Thread]
	messages *view.Resource[[]models.Message]

	mu          sync.Mutex
	account     string
	state       State
	selected    int64
	draft       string
	actionError string
}

// NewThreads builds the chat controller.
func NewThreads(ctx context.Context, backend ThreadsAPI, sessions *session.Context) *Threads {
	return &Threads{
		backend:  backend,
		sessions: sessions,
		threads:  view.NewResource[[]models.Thread](ctx),
		messages: view.NewResource[[]models.Message](ctx),
	}
}

// Mount loads the thread list.
func (t *Threads) Mount(ctx context.Context) error {
	if err := t.authorize(); err != nil {
		return err
	}
	identity, _ := t.sessions.Current()
	t.mu.Lock()
	t.account = identity.Username
	t.mu.Unlock()

	err := t.threads.Load(ctx, t.backend.Threads)
	switch {
	case errors.Is(err, view.ErrStale):
		return err
	case err != nil:
		return t.fail(err, "Could not load your chats.")
	}
	return t.fail(nil, "")
}

// FollowSession remounts whenever the identity changes, until ctx is done.
// A logout or a different account drops the selected conversation. The
// returned channel receives a value after each remount; it never closes.
func (t *Threads) FollowSession(ctx context.Context) <-chan struct{} {
	changed := make(chan struct{}, 1)
	view.Follow(ctx, t.sessions, func(ctx context.Context, event session.Event) {
		t.follow(ctx, event)
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	return changed
}

func (t *Threads) follow(ctx context.Context, event session.Event) {
	t.mu.Lock()
	switched := !event.LoggedIn || event.Identity.Username != t.account
	if switched {
		t.account = ""
		t.state = NoThread
		t.selected = 0
		t.draft = ""
	}
	t.mu.Unlock()
	if switched {
		t.threads.Reset()
		t.messages.Reset()
	}
	t.Mount(ctx)
}

// Select opens a thread and loads its messages. Selecting another thread
// while messages are loading discards the earlier response.
func (t *Threads) Select(ctx context.Context, threadID int64) error {
	t.mu.Lock()
	t.selected = threadID
	t.state = LoadingMessages
	t.mu.Unlock()

	err := t.messages.Load(ctx, func(ctx context.Context) ([]models.Message, error) {
		return t.backend.Messages(ctx, threadID)
	})
	if err == view.ErrStale {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.selected != threadID {
		return view.ErrStale
	}
	if err != nil {
		t.state = NoThread
		t.actionError = view.Describe(err, "Could not load messages.")
		return err
	}
	t.state = Ready
	t.actionError = ""
	return nil
}

// SetDraft records the message being typed.
func (t *Threads) SetDraft(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.draft = text
}

// Send posts the draft to the selected thread. The message is appended
// only after the server acknowledges it; on failure the draft is kept.
func (t *Threads) Send(ctx context.Context) (models.Message, error) {
	if err := t.authorize(); err != nil {
		return models.Message{}, err
	}
	t.mu.Lock()
	threadID, state, text := t.selected, t.state, strings.TrimSpace(t.draft)
	t.mu.Unlock()
	if state != Ready {
		return models.Message{}, t.fail(ErrNoThread, "Select a thread first.")
	}
	if text == "" {
		return models.Message{}, t.fail(view.ErrEmptyInput, "")
	}

	message, err := t.backend.SendMessage(ctx, threadID, text)
	if err != nil {
		return models.Message{}, t.fail(err, "Message not sent.")
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.selected == threadID {
		t.messages.Mutate(func(messages *[]models.Message) {
			*messages = collection.Upsert(*messages, message)
		})
	}
	t.threads.Mutate(func(threads *[]models.Thread) {
		*threads, _ = collection.Merge(*threads, threadID, func(thread *models.Thread) {
			thread.LastMessage = message.Text
		})
	})
	t.draft = ""
	t.actionError = ""
	return message, nil
}

// Search finds users to start a conversation with.
func (t *Threads) Search(ctx context.Context, query string) ([]models.UserSummary, error) {
	if err := t.authorize(); err != nil {
		return nil, err
	}
	users, err := t.backend.SearchUsers(ctx, query)
	if err != nil {
		return nil, t.fail(err, "Search failed.")
	}
	return users, nil
}

// StartWith selects the existing thread with username, or creates one and
// selects it.
func (t *Threads) StartWith(ctx context.Context, username string) (models.Thread, error) {
	if err := t.authorize(); err != nil {
		return models.Thread{}, err
	}
	if existing, ok := t.findByParticipant(username); ok {
		return existing, t.Select(ctx, existing.ID)
	}
	thread, err := t.backend.StartThread(ctx, username)
	if err != nil {
		return models.Thread{}, t.fail(err, "Could not start the chat.")
	}
	t.threads.Mutate(func(threads *[]models.Thread) {
		if _, ok := collection.Find(*threads, thread.ID); !ok {
			*threads = collection.Prepend(*threads, thread)
		}
	})
	return thread, t.Select(ctx, thread.ID)
}

func (t *Threads) findByParticipant(username string) (models.Thread, bool) {
	for _, thread := range t.threads.Snapshot().Data {
		for _, participant := range thread.Participants {
			if strings.EqualFold(participant, username) {
				return thread, true
			}
		}
	}
	return models.Thread{}, false
}

func (t *Threads) authorize() error {
	identity, ok := t.sessions.Current()
	decision := guard.Check(identity, ok, guard.Chat)
	if !decision.Allowed {
		return t.fail(&view.DeniedError{Action: guard.Chat, Reason: decision.Reason}, "")
	}
	return nil
}

func (t *Threads) fail(err error, fallback string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.actionError = view.Describe(err, fallback)
	return err
}

// Snapshot returns the current screen state.
func (t *Threads) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	snapshot := Snapshot{
		Account:     t.account,
		Threads:     t.threads.Snapshot(),
		State:       t.state,
		Selected:    t.selected,
		Draft:       t.draft,
		ActionError: t.actionError,
	}
	if t.state == Ready {
		snapshot.Messages = t.messages.Snapshot().Data
	}
	return snapshot
}

// Close discards any in-flight responses.
func (t *Threads) Close() {
	t.threads.Close()
	t.messages.Close()
}
