package models

import (
	"time"

	"github.com/lib/pq"
)

// Chapter status values.
const (
	ChapterDone   = "done"
	ChapterEmpty  = "empty"  // archive held no images
	ChapterFailed = "failed" // extraction or transcript write failed
)

// Chapter is one uploaded archive and its transcript.
type Chapter struct {
	ID          uint `gorm:"primaryKey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	UserID      uint   `gorm:"index;not null"`
	Title       string `gorm:"size:255;not null"`
	FileName    string `gorm:"size:255;not null"`
	Language    string `gorm:"size:32;not null"`
	Status      string `gorm:"size:16;index;not null"`
	Error       string `gorm:"size:512"`
	Images      int
	FailedPages int
	Markdown    string `gorm:"type:text" json:"-"`
	Pages       []Page `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:",omitempty"`
}

// Page stores the dialogue blocks of one chapter page in reading order.
type Page struct {
	ID        uint           `gorm:"primaryKey"`
	ChapterID uint           `gorm:"index;not null;uniqueIndex:idx_chapter_page"`
	Index     int            `gorm:"column:page_index;not null;uniqueIndex:idx_chapter_page"`
	Image     string         `gorm:"size:255"`
	Dialogues pq.StringArray `gorm:"type:text[]"`
	Error     string         `gorm:"size:512"`
}
