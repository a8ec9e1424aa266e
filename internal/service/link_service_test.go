package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"branch-api/internal/domain"
	"branch-api/internal/repository"
)

func newTestLinkService(repo repository.UserRepository) *LinkService {
	return NewLinkService(zap.NewNop(), repo, NewMemoryProfileCache(time.Minute))
}

func registerTestUser(t *testing.T, repo *mockUserRepo, username string) domain.User {
	t.Helper()
	svc := newTestUserService(repo)
	user, err := svc.Register(context.Background(), RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "pw1",
	})
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	return user
}

func TestLinkService_AddLinkPreservesOrder(t *testing.T) {
	repo := newMockUserRepo()
	svc := newTestLinkService(repo)
	user := registerTestUser(t, repo, "alice")

	for _, title := range []string{"A", "B", "C"} {
		if _, err := svc.AddLink(context.Background(), user.ID, LinkInput{
			Title: title,
			URL:   "https://example.com/" + title,
		}); err != nil {
			t.Fatalf("add link %s: %v", title, err)
		}
	}

	stored, err := repo.GetByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if len(stored.Links) != 3 {
		t.Fatalf("expected 3 links, got %d", len(stored.Links))
	}
	for i, want := range []string{"A", "B", "C"} {
		if stored.Links[i].Title != want {
			t.Fatalf("expected link %d to be %q, got %q", i, want, stored.Links[i].Title)
		}
	}
}

func TestLinkService_AddLinkRequiresTitleAndURL(t *testing.T) {
	repo := newMockUserRepo()
	svc := newTestLinkService(repo)
	user := registerTestUser(t, repo, "alice")

	if _, err := svc.AddLink(context.Background(), user.ID, LinkInput{URL: "https://x.com"}); !errors.Is(err, ErrInvalidLink) {
		t.Fatalf("expected ErrInvalidLink without title, got %v", err)
	}
	if _, err := svc.AddLink(context.Background(), user.ID, LinkInput{Title: "X"}); !errors.Is(err, ErrInvalidLink) {
		t.Fatalf("expected ErrInvalidLink without url, got %v", err)
	}
}

func TestLinkService_UpdateLinkPartial(t *testing.T) {
	repo := newMockUserRepo()
	svc := newTestLinkService(repo)
	user := registerTestUser(t, repo, "alice")

	link, err := svc.AddLink(context.Background(), user.ID, LinkInput{
		Title: "Blog",
		URL:   "https://blog.example.com",
		Icon:  "📝",
	})
	if err != nil {
		t.Fatalf("add link: %v", err)
	}

	title := "My Blog"
	updated, err := svc.UpdateLink(context.Background(), user.ID, link.ID, LinkUpdateInput{Title: &title})
	if err != nil {
		t.Fatalf("update link: %v", err)
	}

	if updated.Title != "My Blog" {
		t.Fatalf("expected title updated, got %q", updated.Title)
	}
	if updated.URL != "https://blog.example.com" || updated.Icon != "📝" {
		t.Fatalf("expected url and icon untouched, got %+v", updated)
	}
	if updated.ID != link.ID {
		t.Fatalf("expected link id preserved")
	}
}

func TestLinkService_UpdateLinkOtherOwnerNotFound(t *testing.T) {
	repo := newMockUserRepo()
	svc := newTestLinkService(repo)
	alice := registerTestUser(t, repo, "alice")
	bob := registerTestUser(t, repo, "bob")

	link, err := svc.AddLink(context.Background(), alice.ID, LinkInput{
		Title: "Site",
		URL:   "https://alice.example.com",
	})
	if err != nil {
		t.Fatalf("add link: %v", err)
	}

	title := "hijacked"
	_, err = svc.UpdateLink(context.Background(), bob.ID, link.ID, LinkUpdateInput{Title: &title})
	if !errors.Is(err, ErrLinkNotFound) {
		t.Fatalf("expected ErrLinkNotFound for other owner, got %v", err)
	}

	// El enlace original queda intacto.
	stored, err := repo.GetByID(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("get alice: %v", err)
	}
	if stored.Links[0].Title != "Site" {
		t.Fatalf("expected original link unchanged, got %q", stored.Links[0].Title)
	}
}

func TestLinkService_DeleteLinkTwiceFails(t *testing.T) {
	repo := newMockUserRepo()
	svc := newTestLinkService(repo)
	user := registerTestUser(t, repo, "alice")

	link, err := svc.AddLink(context.Background(), user.ID, LinkInput{
		Title: "Site",
		URL:   "https://example.com",
	})
	if err != nil {
		t.Fatalf("add link: %v", err)
	}

	if err := svc.DeleteLink(context.Background(), user.ID, link.ID); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := svc.DeleteLink(context.Background(), user.ID, link.ID); !errors.Is(err, ErrLinkNotFound) {
		t.Fatalf("expected ErrLinkNotFound on second delete, got %v", err)
	}
}

func TestLinkService_DeleteLinkOtherOwnerNotFound(t *testing.T) {
	repo := newMockUserRepo()
	svc := newTestLinkService(repo)
	alice := registerTestUser(t, repo, "alice")
	bob := registerTestUser(t, repo, "bob")

	link, err := svc.AddLink(context.Background(), alice.ID, LinkInput{
		Title: "Site",
		URL:   "https://alice.example.com",
	})
	if err != nil {
		t.Fatalf("add link: %v", err)
	}

	if err := svc.DeleteLink(context.Background(), bob.ID, link.ID); !errors.Is(err, ErrLinkNotFound) {
		t.Fatalf("expected ErrLinkNotFound for other owner, got %v", err)
	}
}

func TestLinkService_MutationsInvalidateCache(t *testing.T) {
	repo := newMockUserRepo()
	cache := NewMemoryProfileCache(time.Minute)
	userSvc := NewUserService(zap.NewNop(), repo, cache)
	linkSvc := NewLinkService(zap.NewNop(), repo, cache)

	user, err := userSvc.Register(context.Background(), RegisterInput{
		Username: "alice", Email: "alice@x.com", Password: "pw1",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := userSvc.PublicProfile(context.Background(), "alice"); err != nil {
		t.Fatalf("prime cache: %v", err)
	}

	if _, err := linkSvc.AddLink(context.Background(), user.ID, LinkInput{
		Title: "A", URL: "https://a.example.com",
	}); err != nil {
		t.Fatalf("add link: %v", err)
	}

	profile, err := userSvc.PublicProfile(context.Background(), "alice")
	if err != nil {
		t.Fatalf("public profile: %v", err)
	}
	if len(profile.Links) != 1 {
		t.Fatalf("expected fresh profile with 1 link, got %d", len(profile.Links))
	}
}
