package models

import (
	"time"
)

// DisplayLevel controls whether an article shows up in the preview listing.
type DisplayLevel int

const (
	DisplayLevelDefault DisplayLevel = iota
	DisplayLevelFeatured
	DisplayLevelPinned
)

// Status is the visibility of an article. Deleting an article hides it.
type Status int

const (
	StatusVisible Status = iota
	StatusHidden
)

type Article struct {
	ID              int64        `json:"id" gorm:"primaryKey;autoIncrement"`
	Title           string       `json:"title" gorm:"not null;uniqueIndex:idx_articles_title"`
	Body            string       `json:"body" gorm:"type:text;not null"`
	PreviewText     string       `json:"previewText" gorm:"type:text"`
	PreviewImageURI string       `json:"previewImageUri" gorm:"column:preview_image_uri"`
	ImageURIs       URIList      `json:"imageUris" gorm:"column:image_uris;type:text"`
	CreateAt        time.Time    `json:"createAt" gorm:"not null;default:CURRENT_TIMESTAMP"`
	LastEditAt      time.Time    `json:"lastEditAt" gorm:"not null;default:CURRENT_TIMESTAMP"`
	DisplayLevel    DisplayLevel `json:"displayLevel" gorm:"not null;default:0;index:idx_articles_listing,priority:1"`
	Status          Status       `json:"status" gorm:"not null;default:0;index:idx_articles_listing,priority:2"`
	Language        string       `json:"language"`
}

func (Article) TableName() string {
	return "articles"
}

// ArticleView is what GET /api/Articles/:id returns.
type ArticleView struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Body            string    `json:"body"`
	PreviewText     string    `json:"previewText"`
	PreviewImageURI string    `json:"previewImageUri"`
	CreateAt        time.Time `json:"createAt"`
	LastEditAt      time.Time `json:"lastEditAt"`
	ImageURIs       []string  `json:"imageUris"`
	Status          Status    `json:"status"`
}

type ArticlePreview struct {
	Title           string    `json:"title"`
	ID              int64     `json:"id"`
	CreateAt        time.Time `json:"createAt"`
	PreviewImageURI string    `json:"previewImageUri"`
	PreviewText     string    `json:"previewText"`
}

type ArticlePostRequest struct {
	Title           string `json:"title" binding:"required"`
	Body            string `json:"body" binding:"required"`
	PreviewText     string `json:"previewText" binding:"required"`
	PreviewImageURI string `json:"previewImageUri" binding:"required"`
}

// ArticleEditRequest carries an edit. Absent or blank fields keep their stored value.
type ArticleEditRequest struct {
	Title           *string `json:"title" binding:"omitempty,max=50"`
	Body            *string `json:"body"`
	PreviewText     *string `json:"previewText" binding:"omitempty,max=100"`
	PreviewImageURI *string `json:"previewImageUri"`
}
