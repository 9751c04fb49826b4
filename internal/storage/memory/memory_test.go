package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/hongminglow/wayfarer/internal/models"
	"github.com/hongminglow/wayfarer/internal/storage"
)

func TestUserStoreUniqueness(t *testing.T) {
	ctx := context.Background()
	store := NewUserStore()

	ana, err := store.CreateUser(ctx, models.User{Username: "ana", Email: "ana@example.com", Role: models.Traveler})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	tests := []models.User{
		{Username: "ANA", Email: "other@example.com"},
		{Username: "other", Email: "Ana@Example.com"},
	}
	for _, user := range tests {
		if _, err := store.CreateUser(ctx, user); !errors.Is(err, storage.ErrAlreadyExists) {
			t.Errorf("create %+v err = %v, want ErrAlreadyExists", user, err)
		}
	}

	found, err := store.FindByUsernameOrEmail(ctx, "ANA@example.com")
	if err != nil || found.ID != ana.ID {
		t.Fatalf("find = %+v, %v", found, err)
	}
	if err := store.DeleteUser(ctx, ana.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.FindByID(ctx, ana.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("find after delete err = %v", err)
	}
}

func TestReactionsReplacePerUser(t *testing.T) {
	ctx := context.Background()
	store := NewContentStore()
	store.Seed()

	store.React(ctx, 1, "ana", models.Like)
	store.React(ctx, 1, "ANA", models.Dislike)
	counts, err := store.React(ctx, 1, "bo", models.Like)
	if err != nil {
		t.Fatalf("react: %v", err)
	}
	if counts.LikesCount != 1 || counts.DislikesCount != 1 {
		t.Fatalf("counts = %+v, want 1 like 1 dislike", counts)
	}
	if _, err := store.React(ctx, 404, "ana", models.Like); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("react on missing post err = %v", err)
	}

	if err := store.ForgetUser(ctx, 7, "bo"); err != nil {
		t.Fatalf("forget: %v", err)
	}
	post, _ := store.Post(ctx, 1)
	if post.LikesCount != 0 || post.DislikesCount != 1 {
		t.Fatalf("after forget = %d/%d", post.LikesCount, post.DislikesCount)
	}
}

func TestPostsNewestFirstWithoutComments(t *testing.T) {
	ctx := context.Background()
	store := NewContentStore()
	store.Seed()

	posts, err := store.Posts(ctx, storage.PostFilter{})
	if err != nil {
		t.Fatalf("posts: %v", err)
	}
	if len(posts) != 3 || posts[0].ID != 3 {
		t.Fatalf("posts = %+v", posts)
	}
	for _, post := range posts {
		if post.Comments != nil {
			t.Errorf("post %d carries comments in the list", post.ID)
		}
	}
	harbour, _ := store.Posts(ctx, storage.PostFilter{Area: "harbour"})
	if len(harbour) != 2 {
		t.Fatalf("harbour posts = %d", len(harbour))
	}
}

func TestThreadsReuseAndMembership(t *testing.T) {
	ctx := context.Background()
	store := NewContentStore()

	first, _ := store.StartThread(ctx, "ana", "bo")
	second, _ := store.StartThread(ctx, "BO", "ana")
	if first.ID != second.ID {
		t.Fatalf("thread ids %d and %d, want the same", first.ID, second.ID)
	}

	if _, err := store.SendMessage(ctx, first.ID, models.Message{Sender: "cy", Text: "hi"}); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("outsider send err = %v", err)
	}
	sent, err := store.SendMessage(ctx, first.ID, models.Message{Sender: "bo", Text: "hello"})
	if err != nil || sent.ID == 0 {
		t.Fatalf("send = %+v, %v", sent, err)
	}

	threads, _ := store.Threads(ctx, "ana")
	if len(threads) != 1 || threads[0].LastMessage != "hello" {
		t.Fatalf("threads = %+v", threads)
	}
	if _, err := store.Messages(ctx, first.ID, "cy"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("outsider read err = %v", err)
	}
}

func TestSavedPlaces(t *testing.T) {
	ctx := context.Background()
	store := NewContentStore()
	store.Seed()

	first, err := store.SavePlace(ctx, 1, 3)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	again, _ := store.SavePlace(ctx, 1, 3)
	if again.ID != first.ID {
		t.Fatalf("second save created a new bookmark")
	}
	if _, err := store.SavePlace(ctx, 1, 99); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("save missing place err = %v", err)
	}
	saved, _ := store.SavedPlaces(ctx, 1)
	if len(saved) != 1 || saved[0].Place.Name != "Night Market" {
		t.Fatalf("saved = %+v", saved)
	}
	if others, _ := store.SavedPlaces(ctx, 2); len(others) != 0 {
		t.Fatalf("other user sees %d saved places", len(others))
	}
}
