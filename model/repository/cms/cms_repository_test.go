package cms

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"bizdash/core/cache"
	entity "bizdash/model/entity"
	"bizdash/model/testdb"
)

func newRepo(t *testing.T) (*CMSRepository, *cache.Cache) {
	t.Helper()
	c := cache.NewCache()
	return NewCMSRepository(testdb.Open(t), c, slog.New(slog.NewTextHandler(io.Discard, nil))), c
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Hello World":           "hello-world",
		"  Çok Güzel Şişe  ":    "cok-guzel-sise",
		"İstanbul Öğle Yemeği!": "istanbul-ogle-yemegi",
		"Işık ve Ağaç":          "isik-ve-agac",
		"a -- b":                "a-b",
		"!!!":                   "",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestExcerpt(t *testing.T) {
	if got := Excerpt("<p>short</p>", 160); got != "short" {
		t.Errorf("Excerpt short = %q", got)
	}
	if got := Excerpt("one two three four", 9); got != "one two..." {
		t.Errorf("Excerpt cut = %q, want %q", got, "one two...")
	}
}

func TestCreatePage_UniqueSlug(t *testing.T) {
	ctx := context.Background()
	r, _ := newRepo(t)
	slugs := []string{}
	for i := 0; i < 3; i++ {
		p, err := r.CreatePage(ctx, PageInput{Title: "About Us"})
		if err != nil {
			t.Fatalf("CreatePage: %v", err)
		}
		slugs = append(slugs, p.Slug)
	}
	want := []string{"about-us", "about-us-1", "about-us-2"}
	for i := range want {
		if slugs[i] != want[i] {
			t.Errorf("slug[%d] = %q, want %q", i, slugs[i], want[i])
		}
	}

	p, _ := r.PageByID(ctx, 1)
	updated, err := r.UpdatePage(ctx, p.ID, PageInput{Title: "About Us", Status: entity.StatusPublished})
	if err != nil {
		t.Fatalf("UpdatePage: %v", err)
	}
	if updated.Slug != "about-us" {
		t.Errorf("update keeps own slug: got %q", updated.Slug)
	}
}

func TestCreatePage_UntitledSlugStaysUnique(t *testing.T) {
	ctx := context.Background()
	r, _ := newRepo(t)
	var slugs []string
	for _, title := range []string{"!!!", "???", "..."} {
		p, err := r.CreatePage(ctx, PageInput{Title: title})
		if err != nil {
			t.Fatalf("CreatePage(%q): %v", title, err)
		}
		slugs = append(slugs, p.Slug)
	}
	want := []string{"untitled", "untitled-1", "untitled-2"}
	for i := range want {
		if slugs[i] != want[i] {
			t.Errorf("slug[%d] = %q, want %q", i, slugs[i], want[i])
		}
	}

	post, err := r.CreatePost(ctx, PostInput{Title: "!!!"})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	if post.Slug != "untitled" {
		t.Errorf("post slug = %q, want untitled (pages and posts are separate tables)", post.Slug)
	}
}

func TestAllPages_CachedAndInvalidated(t *testing.T) {
	ctx := context.Background()
	r, c := newRepo(t)
	if _, err := r.CreatePage(ctx, PageInput{Title: "One"}); err != nil {
		t.Fatalf("CreatePage: %v", err)
	}
	pages, err := r.AllPages(ctx)
	if err != nil || len(pages) != 1 {
		t.Fatalf("AllPages = %d, %v", len(pages), err)
	}
	if _, ok := c.Get(pagesAllKey); !ok {
		t.Fatal("pages:all should be cached")
	}
	if _, err := r.CreatePage(ctx, PageInput{Title: "Two"}); err != nil {
		t.Fatalf("CreatePage: %v", err)
	}
	if _, ok := c.Get(pagesAllKey); ok {
		t.Fatal("pages:all should be invalidated by a write")
	}
	pages, _ = r.AllPages(ctx)
	if len(pages) != 2 {
		t.Errorf("AllPages after write = %d, want 2", len(pages))
	}
}

func TestPublishedPageBySlug(t *testing.T) {
	ctx := context.Background()
	r, _ := newRepo(t)
	r.CreatePage(ctx, PageInput{Title: "Draft"})
	r.CreatePage(ctx, PageInput{Title: "Live", Status: entity.StatusPublished})

	if _, err := r.PublishedPageBySlug(ctx, "draft"); !IsNotFound(err) {
		t.Errorf("draft page err = %v, want not found", err)
	}
	if p, err := r.PublishedPageBySlug(ctx, "live"); err != nil || p.Title != "Live" {
		t.Errorf("live page = %v, %v", p, err)
	}
}

func TestPosts_PublishStampsDate(t *testing.T) {
	ctx := context.Background()
	r, _ := newRepo(t)
	p, err := r.CreatePost(ctx, PostInput{Title: "Hello", Content: "<b>body</b>", Tags: []string{"go", "news"}})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	if p.PublishedAt != nil {
		t.Error("draft post should have no published_at")
	}
	if p.Excerpt != "body" {
		t.Errorf("Excerpt = %q, want body", p.Excerpt)
	}

	status, err := r.TogglePostStatus(ctx, p.ID)
	if err != nil || status != entity.StatusPublished {
		t.Fatalf("TogglePostStatus = %q, %v", status, err)
	}
	got, _ := r.PostByID(ctx, p.ID)
	if got.PublishedAt == nil {
		t.Error("published_at should be set on publish")
	}
	if len(got.Tags) != 2 || got.Tags[0] != "go" {
		t.Errorf("Tags = %v", got.Tags)
	}

	published, err := r.PublishedPosts(ctx, 6)
	if err != nil || len(published) != 1 {
		t.Errorf("PublishedPosts = %d, %v", len(published), err)
	}
	if _, err := r.PublishedPostBySlug(ctx, "hello"); err != nil {
		t.Errorf("PublishedPostBySlug: %v", err)
	}
}

func TestDeletePost_Missing(t *testing.T) {
	r, _ := newRepo(t)
	if err := r.DeletePost(context.Background(), 42); !IsNotFound(err) {
		t.Errorf("DeletePost missing = %v, want not found", err)
	}
}

func TestCounts(t *testing.T) {
	ctx := context.Background()
	r, _ := newRepo(t)
	r.CreatePage(ctx, PageInput{Title: "p"})
	r.CreatePost(ctx, PostInput{Title: "a"})
	r.CreatePost(ctx, PostInput{Title: "b"})
	r.CreateMedia(ctx, &entity.Media{Filename: "x.png", OriginalName: "x.png", Path: "/uploads/cms/x.png"})
	pages, posts, media, err := r.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if pages != 1 || posts != 2 || media != 1 {
		t.Errorf("Counts = %d %d %d, want 1 2 1", pages, posts, media)
	}
}
