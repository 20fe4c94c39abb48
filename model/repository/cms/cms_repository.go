package cms

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"bizdash/core/cache"
	entity "bizdash/model/entity"
)

const (
	listTTL = 2 * time.Minute

	untitledSlug = "untitled"

	pagesAllKey = "pages:all"
	postsAllKey = "posts:all"
)

// PageInput carries the editable page fields. An empty Slug is generated from Title.
type PageInput struct {
	Title           string
	Slug            string
	Content         string
	MetaTitle       string
	MetaDescription string
	Status          string
}

// PostInput carries the editable post fields. An empty Excerpt is derived from Content.
type PostInput struct {
	Title           string
	Slug            string
	Content         string
	Excerpt         string
	MetaTitle       string
	MetaDescription string
	Tags            []string
	Status          string
}

type CMSRepository struct {
	db     *gorm.DB
	cache  *cache.Cache
	logger *slog.Logger
	now    func() time.Time
}

// NewCMSRepository builds a repository; a nil logger falls back to slog.Default().
func NewCMSRepository(db *gorm.DB, c *cache.Cache, logger *slog.Logger) *CMSRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &CMSRepository{db: db, cache: c, logger: logger, now: time.Now}
}

// UniqueSlug returns Slugify(source), suffixed -1, -2, ... until no row of model other than
// excludeID uses it. Sources with no sluggable characters share the "untitled" base.
func (r *CMSRepository) UniqueSlug(ctx context.Context, model interface{}, source string, excludeID uint) (string, error) {
	base := Slugify(source)
	if base == "" {
		base = untitledSlug
	}
	slug := base
	for i := 1; ; i++ {
		var n int64
		q := r.db.WithContext(ctx).Model(model).Where("slug = ?", slug)
		if excludeID != 0 {
			q = q.Where("id <> ?", excludeID)
		}
		if err := q.Count(&n).Error; err != nil {
			return "", err
		}
		if n == 0 {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

func (r *CMSRepository) invalidate(prefix string) {
	n, err := r.cache.DeletePattern("^" + prefix + ":")
	if err != nil {
		r.logger.Warn("cms cache invalidation failed", "prefix", prefix, "error", err)
		return
	}
	r.logger.Debug("cms cache invalidated", "prefix", prefix, "count", n)
}

func normalizeStatus(s string) string {
	if s == entity.StatusPublished {
		return s
	}
	return entity.StatusDraft
}

// --- pages ---

func (r *CMSRepository) CreatePage(ctx context.Context, in PageInput) (*entity.Page, error) {
	source := in.Slug
	if source == "" {
		source = in.Title
	}
	slug, err := r.UniqueSlug(ctx, &entity.Page{}, source, 0)
	if err != nil {
		return nil, err
	}
	p := &entity.Page{
		Title:           in.Title,
		Slug:            slug,
		Content:         in.Content,
		MetaTitle:       in.MetaTitle,
		MetaDescription: in.MetaDescription,
		Status:          normalizeStatus(in.Status),
	}
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}
	r.invalidate("pages")
	return p, nil
}

// AllPages returns every page, newest first. The listing is cached for two minutes.
func (r *CMSRepository) AllPages(ctx context.Context) ([]entity.Page, error) {
	v, err := r.cache.Remember(pagesAllKey, listTTL, func() (interface{}, error) {
		var pages []entity.Page
		err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&pages).Error
		return pages, err
	})
	if err != nil {
		return nil, err
	}
	return v.([]entity.Page), nil
}

// PublishedPages filters AllPages to published ones.
func (r *CMSRepository) PublishedPages(ctx context.Context) ([]entity.Page, error) {
	all, err := r.AllPages(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]entity.Page, 0, len(all))
	for _, p := range all {
		if p.Status == entity.StatusPublished {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *CMSRepository) PageByID(ctx context.Context, id uint) (*entity.Page, error) {
	var p entity.Page
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// PublishedPageBySlug returns gorm.ErrRecordNotFound for drafts.
func (r *CMSRepository) PublishedPageBySlug(ctx context.Context, slug string) (*entity.Page, error) {
	var p entity.Page
	err := r.db.WithContext(ctx).Where("slug = ? AND status = ?", slug, entity.StatusPublished).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *CMSRepository) UpdatePage(ctx context.Context, id uint, in PageInput) (*entity.Page, error) {
	p, err := r.PageByID(ctx, id)
	if err != nil {
		return nil, err
	}
	source := in.Slug
	if source == "" {
		source = in.Title
	}
	slug, err := r.UniqueSlug(ctx, &entity.Page{}, source, id)
	if err != nil {
		return nil, err
	}
	p.Title = in.Title
	p.Slug = slug
	p.Content = in.Content
	p.MetaTitle = in.MetaTitle
	p.MetaDescription = in.MetaDescription
	p.Status = normalizeStatus(in.Status)
	if err := r.db.WithContext(ctx).Save(p).Error; err != nil {
		return nil, err
	}
	r.invalidate("pages")
	return p, nil
}

// TogglePageStatus flips draft/published and returns the new status.
func (r *CMSRepository) TogglePageStatus(ctx context.Context, id uint) (string, error) {
	p, err := r.PageByID(ctx, id)
	if err != nil {
		return "", err
	}
	next := entity.StatusPublished
	if p.Status == entity.StatusPublished {
		next = entity.StatusDraft
	}
	if err := r.db.WithContext(ctx).Model(p).Update("status", next).Error; err != nil {
		return "", err
	}
	r.invalidate("pages")
	return next, nil
}

func (r *CMSRepository) DeletePage(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&entity.Page{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	r.invalidate("pages")
	return nil
}

// --- posts ---

func (r *CMSRepository) CreatePost(ctx context.Context, in PostInput) (*entity.Post, error) {
	source := in.Slug
	if source == "" {
		source = in.Title
	}
	slug, err := r.UniqueSlug(ctx, &entity.Post{}, source, 0)
	if err != nil {
		return nil, err
	}
	p := &entity.Post{
		Title:           in.Title,
		Slug:            slug,
		Content:         in.Content,
		Excerpt:         in.Excerpt,
		MetaTitle:       in.MetaTitle,
		MetaDescription: in.MetaDescription,
		Tags:            in.Tags,
		Status:          normalizeStatus(in.Status),
	}
	if p.Excerpt == "" {
		p.Excerpt = Excerpt(in.Content, 160)
	}
	if p.Status == entity.StatusPublished {
		now := r.now()
		p.PublishedAt = &now
	}
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}
	r.invalidate("posts")
	return p, nil
}

// AllPosts returns every post, newest first. The listing is cached for two minutes.
func (r *CMSRepository) AllPosts(ctx context.Context) ([]entity.Post, error) {
	v, err := r.cache.Remember(postsAllKey, listTTL, func() (interface{}, error) {
		var posts []entity.Post
		err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&posts).Error
		return posts, err
	})
	if err != nil {
		return nil, err
	}
	return v.([]entity.Post), nil
}

// PublishedPosts returns published posts, most recently published first. limit <= 0 means all.
func (r *CMSRepository) PublishedPosts(ctx context.Context, limit int) ([]entity.Post, error) {
	q := r.db.WithContext(ctx).
		Where("status = ?", entity.StatusPublished).
		Order("published_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var posts []entity.Post
	if err := q.Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *CMSRepository) PostByID(ctx context.Context, id uint) (*entity.Post, error) {
	var p entity.Post
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *CMSRepository) PublishedPostBySlug(ctx context.Context, slug string) (*entity.Post, error) {
	var p entity.Post
	err := r.db.WithContext(ctx).Where("slug = ? AND status = ?", slug, entity.StatusPublished).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *CMSRepository) UpdatePost(ctx context.Context, id uint, in PostInput) (*entity.Post, error) {
	p, err := r.PostByID(ctx, id)
	if err != nil {
		return nil, err
	}
	source := in.Slug
	if source == "" {
		source = in.Title
	}
	slug, err := r.UniqueSlug(ctx, &entity.Post{}, source, id)
	if err != nil {
		return nil, err
	}
	wasPublished := p.Status == entity.StatusPublished
	p.Title = in.Title
	p.Slug = slug
	p.Content = in.Content
	p.Excerpt = in.Excerpt
	if p.Excerpt == "" {
		p.Excerpt = Excerpt(in.Content, 160)
	}
	p.MetaTitle = in.MetaTitle
	p.MetaDescription = in.MetaDescription
	p.Tags = in.Tags
	p.Status = normalizeStatus(in.Status)
	if p.Status == entity.StatusPublished && (!wasPublished || p.PublishedAt == nil) {
		now := r.now()
		p.PublishedAt = &now
	}
	if err := r.db.WithContext(ctx).Save(p).Error; err != nil {
		return nil, err
	}
	r.invalidate("posts")
	return p, nil
}

// TogglePostStatus flips draft/published, stamping published_at on first publish.
func (r *CMSRepository) TogglePostStatus(ctx context.Context, id uint) (string, error) {
	p, err := r.PostByID(ctx, id)
	if err != nil {
		return "", err
	}
	updates := map[string]interface{}{"status": entity.StatusPublished}
	if p.Status == entity.StatusPublished {
		updates["status"] = entity.StatusDraft
	} else if p.PublishedAt == nil {
		updates["published_at"] = r.now()
	}
	if err := r.db.WithContext(ctx).Model(p).Updates(updates).Error; err != nil {
		return "", err
	}
	r.invalidate("posts")
	return updates["status"].(string), nil
}

func (r *CMSRepository) DeletePost(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&entity.Post{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	r.invalidate("posts")
	return nil
}

// --- media ---

func (r *CMSRepository) CreateMedia(ctx context.Context, m *entity.Media) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *CMSRepository) AllMedia(ctx context.Context) ([]entity.Media, error) {
	var out []entity.Media
	err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&out).Error
	return out, err
}

func (r *CMSRepository) MediaByID(ctx context.Context, id uint) (*entity.Media, error) {
	var m entity.Media
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *CMSRepository) DeleteMedia(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&entity.Media{}, id).Error
}

// Counts returns the number of pages, posts and media rows.
func (r *CMSRepository) Counts(ctx context.Context) (pages, posts, media int64, err error) {
	db := r.db.WithContext(ctx)
	if err = db.Model(&entity.Page{}).Count(&pages).Error; err != nil {
		return
	}
	if err = db.Model(&entity.Post{}).Count(&posts).Error; err != nil {
		return
	}
	err = db.Model(&entity.Media{}).Count(&media).Error
	return
}

// IsNotFound reports whether err is a missing-row error.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
