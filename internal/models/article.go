package models

import (
	"time"
)

// NewArticle creates a visible, default-level article with both timestamps set to now.
func NewArticle(now time.Time) *Article {
	return &Article{
		ImageURIs:    URIList{},
		CreateAt:     now,
		LastEditAt:   now,
		DisplayLevel: DisplayLevelDefault,
		Status:       StatusVisible,
	}
}

// IsListed reports whether the article belongs in the preview listing.
func (a *Article) IsListed() bool {
	return a.DisplayLevel == DisplayLevelDefault && a.Status == StatusVisible
}

func (a *Article) ToView() *ArticleView {
	uris := make([]string, len(a.ImageURIs))
	copy(uris, a.ImageURIs)

	return &ArticleView{
		ID:              a.ID,
		Title:           a.Title,
		Body:            a.Body,
		PreviewText:     a.PreviewText,
		PreviewImageURI: a.PreviewImageURI,
		CreateAt:        a.CreateAt,
		LastEditAt:      a.LastEditAt,
		ImageURIs:       uris,
		Status:          a.Status,
	}
}

func (a *Article) ToPreview() ArticlePreview {
	return ArticlePreview{
		Title:           a.Title,
		ID:              a.ID,
		CreateAt:        a.CreateAt,
		PreviewImageURI: a.PreviewImageURI,
		PreviewText:     a.PreviewText,
	}
}
