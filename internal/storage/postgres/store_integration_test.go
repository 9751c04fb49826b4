package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"

	"github.com/hongminglow/wayfarer/internal/models"
	"github.com/hongminglow/wayfarer/internal/storage"
)

// TestUserStoreIntegration runs the store against a live database.
func TestUserStoreIntegration(t *testing.T) {
	if os.Getenv("RUN_AUTH_INTEGRATION") != "true" {
		t.Skip("set RUN_AUTH_INTEGRATION=true to run this integration test")
	}

	loadDotEnv()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()
	store, err := NewUserStore(ctx, dbURL)
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	defer store.Close()

	username := fmt.Sprintf("storetest_%d", time.Now().UnixNano())
	created, err := store.CreateUser(ctx, models.User{
		Username:     username,
		Email:        username + "@example.com",
		Role:         models.Merchant,
		PasswordHash: "not-a-real-hash",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	t.Cleanup(func() { store.DeleteUser(context.Background(), created.ID) })

	if _, err := store.CreateUser(ctx, models.User{Username: username, Email: "x" + created.Email, PasswordHash: "x"}); !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("duplicate create err = %v, want ErrAlreadyExists", err)
	}

	found, err := store.FindByUsernameOrEmail(ctx, created.Email)
	if err != nil || found.ID != created.ID || found.Role != models.Merchant {
		t.Fatalf("find by email = %+v, %v", found, err)
	}

	created.Bio = "Sells lanterns."
	updated, err := store.UpdateUser(ctx, created)
	if err != nil || updated.Bio != "Sells lanterns." {
		t.Fatalf("update = %+v, %v", updated, err)
	}

	results, err := store.SearchUsers(ctx, username[len(username)-6:], 5)
	if err != nil || len(results) == 0 {
		t.Fatalf("search = %+v, %v", results, err)
	}

	if err := store.DeleteUser(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.FindByID(ctx, created.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("find after delete err = %v, want ErrNotFound", err)
	}
}

func loadDotEnv() {
	paths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}
	for _, path := range paths {
		_ = godotenv.Overload(path)
	}
}
