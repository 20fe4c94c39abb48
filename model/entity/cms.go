package entity

import (
	"time"

	"gorm.io/datatypes"
)

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

type Page struct {
	ID              uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Title           string    `gorm:"column:title;type:varchar(255);not null" json:"title"`
	Slug            string    `gorm:"column:slug;type:varchar(255);not null;uniqueIndex" json:"slug"`
	Content         string    `gorm:"column:content;type:text" json:"content"`
	MetaTitle       string    `gorm:"column:meta_title;type:varchar(255)" json:"meta_title"`
	MetaDescription string    `gorm:"column:meta_description;type:text" json:"meta_description"`
	Status          string    `gorm:"column:status;type:varchar(16);default:draft" json:"status"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Page) TableName() string {
	return "cms_pages"
}

type Post struct {
	ID              uint                        `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Title           string                      `gorm:"column:title;type:varchar(255);not null" json:"title"`
	Slug            string                      `gorm:"column:slug;type:varchar(255);not null;uniqueIndex" json:"slug"`
	Content         string                      `gorm:"column:content;type:text" json:"content"`
	Excerpt         string                      `gorm:"column:excerpt;type:text" json:"excerpt"`
	MetaTitle       string                      `gorm:"column:meta_title;type:varchar(255)" json:"meta_title"`
	MetaDescription string                      `gorm:"column:meta_description;type:text" json:"meta_description"`
	Tags            datatypes.JSONSlice[string] `gorm:"column:tags" json:"tags"`
	Status          string                      `gorm:"column:status;type:varchar(16);default:draft" json:"status"`
	PublishedAt     *time.Time                  `gorm:"column:published_at" json:"published_at,omitempty"`
	CreatedAt       time.Time                   `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time                   `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Post) TableName() string {
	return "cms_posts"
}

type Media struct {
	ID           uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Filename     string    `gorm:"column:filename;type:varchar(255);not null" json:"filename"`
	OriginalName string    `gorm:"column:original_name;type:varchar(255);not null" json:"original_name"`
	MimeType     string    `gorm:"column:mime_type;type:varchar(128)" json:"mime_type"`
	Size         int64     `gorm:"column:size" json:"size"`
	Path         string    `gorm:"column:path;type:varchar(512);not null" json:"path"`
	ThumbPath    string    `gorm:"column:thumb_path;type:varchar(512)" json:"thumb_path"`
	AltText      string    `gorm:"column:alt_text;type:varchar(255)" json:"alt_text"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Media) TableName() string {
	return "cms_media"
}
