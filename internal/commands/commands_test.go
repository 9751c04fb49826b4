package commands

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/wayfarer/internal/cli"
	"github.com/hongminglow/wayfarer/internal/config"
	"github.com/hongminglow/wayfarer/internal/localstore"
	"github.com/hongminglow/wayfarer/internal/models"
	"github.com/hongminglow/wayfarer/internal/server"
	"github.com/hongminglow/wayfarer/internal/session"
	"github.com/hongminglow/wayfarer/internal/storage"
	"github.com/hongminglow/wayfarer/internal/storage/memory"
)

// backend runs the development server in-process with one merchant
// account, "mei", whose password is "lanterns".
type backend struct {
	url     string
	users   *memory.UserStore
	content *memory.ContentStore
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	users := memory.NewUserStore()
	content := memory.NewContentStore()
	content.Seed()

	hash, err := bcrypt.GenerateFromPassword([]byte("lanterns"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if _, err := users.CreateUser(context.Background(), models.User{
		Username:     "mei",
		Email:        "mei@example.com",
		Role:         models.Merchant,
		PasswordHash: string(hash),
	}); err != nil {
		t.Fatalf("create user: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := server.Router(config.Server{
		JWTSecret:   "e2e-secret",
		JWTIssuer:   "wayfarer-test",
		JWTTTL:      time.Hour,
		CORSOrigins: []string{"*"},
	}, users, content, logger)
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return &backend{url: ts.URL, users: users, content: content}
}

// run executes one wayfarer invocation against url, sharing local
// between invocations the way the on-disk store would.
func run(t *testing.T, url string, local localstore.Store, input string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app, err := NewApp(context.Background(), Options{
		Config: config.Client{APIURL: url, HTTPTimeout: 5 * time.Second},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Local:  local,
		In:     strings.NewReader(input),
		Out:    &out,
	})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	err = Root(app).Execute(args)
	return out.String(), err
}

func exitCode(err error) int {
	var exit *cli.ExitError
	if errors.As(err, &exit) {
		return exit.Code
	}
	return -1
}

func TestMerchantModeFlow(t *testing.T) {
	backend := newBackend(t)
	local := localstore.NewMemoryStore()

	out, err := run(t, backend.url, local, "lanterns\n", "login", "mei")
	if err != nil || !strings.Contains(out, "Logged in as mei (merchant).") {
		t.Fatalf("login: err = %v out = %q", err, out)
	}

	out, err = run(t, backend.url, local, "", "posts", "create", "Lantern", "sale", "--category", "price_alert", "--area", "Old Town")
	if exitCode(err) != 1 || !strings.Contains(out, "switch to traveler mode") {
		t.Fatalf("merchant-mode post: err = %v out = %q", err, out)
	}
	if posts, _ := backend.content.Posts(context.Background(), storage.PostFilter{}); len(posts) != 3 {
		t.Fatalf("blocked post reached the server: %d posts", len(posts))
	}

	before, _ := session.NewStore(local, nil).Load()
	out, err = run(t, backend.url, local, "", "mode", "traveler")
	if err != nil || !strings.Contains(out, "Now acting as traveler.") {
		t.Fatalf("mode: err = %v out = %q", err, out)
	}
	after, _ := session.NewStore(local, nil).Load()
	if after.Token == before.Token || after.Mode != models.Traveler {
		t.Fatalf("mode switch kept the merchant token: %+v", after)
	}
	out, err = run(t, backend.url, local, "", "posts", "create", "Lantern", "sale", "--category", "price_alert", "--area", "Old Town")
	if err != nil || !strings.Contains(out, "Published post #") {
		t.Fatalf("traveler-mode post: err = %v out = %q", err, out)
	}
	if posts, _ := backend.content.Posts(context.Background(), storage.PostFilter{}); len(posts) != 4 || posts[0].Title != "Lantern sale" {
		t.Fatalf("posts after publish = %+v", posts)
	}

	out, err = run(t, backend.url, local, "", "whoami")
	if err != nil || !strings.Contains(out, "traveler") || !strings.Contains(out, "Token expires") {
		t.Fatalf("whoami: err = %v out = %q", err, out)
	}
}

func TestSavedPlacesNeedConfirmation(t *testing.T) {
	backend := newBackend(t)
	local := localstore.NewMemoryStore()
	if _, err := run(t, backend.url, local, "lanterns\n", "login", "mei"); err != nil {
		t.Fatalf("login: %v", err)
	}

	out, err := run(t, backend.url, local, "", "places", "save", "2")
	if err != nil || !strings.Contains(out, "Saved place 2.") {
		t.Fatalf("save: err = %v out = %q", err, out)
	}

	out, err = run(t, backend.url, local, "n\n", "places", "unsave", "2")
	if err != nil || !strings.Contains(out, "Cancelled.") {
		t.Fatalf("declined unsave: err = %v out = %q", err, out)
	}
	if saved, _ := backend.content.SavedPlaces(context.Background(), 1); len(saved) != 1 {
		t.Fatalf("declined unsave removed the bookmark")
	}

	out, err = run(t, backend.url, local, "", "places", "unsave", "2", "--yes")
	if err != nil || !strings.Contains(out, "Removed place 2") {
		t.Fatalf("unsave: err = %v out = %q", err, out)
	}
	if saved, _ := backend.content.SavedPlaces(context.Background(), 1); len(saved) != 0 {
		t.Fatalf("bookmark still present after unsave")
	}
}

func TestLoggedOutCommands(t *testing.T) {
	backend := newBackend(t)
	local := localstore.NewMemoryStore()

	out, err := run(t, backend.url, local, "", "places", "--area", "Harbour")
	if err != nil || !strings.Contains(out, "Maritime Museum") || strings.Contains(out, "Night Market") {
		t.Fatalf("public places: err = %v out = %q", err, out)
	}

	out, err = run(t, backend.url, local, "", "whoami")
	if exitCode(err) != 1 || !strings.Contains(out, "Not logged in.") {
		t.Fatalf("whoami: err = %v out = %q", err, out)
	}

	out, err = run(t, backend.url, local, "", "ask", "where", "is", "an", "atm")
	if err != nil || !strings.Contains(out, "ATMs") {
		t.Fatalf("ask: err = %v out = %q", err, out)
	}
}

func TestBadLogin(t *testing.T) {
	backend := newBackend(t)
	local := localstore.NewMemoryStore()

	out, err := run(t, backend.url, local, "wrong\n", "login", "mei")
	if exitCode(err) != 1 || !strings.Contains(out, "Invalid credentials.") {
		t.Fatalf("bad login: err = %v out = %q", err, out)
	}
	if _, ok, _ := local.Get(session.Key); ok {
		t.Fatal("identity stored after a failed login")
	}
}
