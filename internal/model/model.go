// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// BookStatus is the soft visibility state of a book.
type BookStatus string

const (
	BookDraft     BookStatus = "draft"
	BookPublished BookStatus = "published"
	BookArchived  BookStatus = "archived"
)

// Valid reports whether s is one of the enumerated statuses.
func (s BookStatus) Valid() bool {
	switch s {
	case BookDraft, BookPublished, BookArchived:
		return true
	}
	return false
}

// User represents an author account. The password hash never leaves the server.
type User struct {
	ID               uuid.UUID `json:"id"`
	Email            string    `json:"email"`
	Username         string    `json:"username"`
	Name             string    `json:"name"`
	Bio              string    `json:"bio"`
	AvatarURL        string    `json:"avatar_url"`
	SubscribersCount int       `json:"subscribers_count"`
	PasswordHash     []byte    `json:"-"`
	CreatedAt        time.Time `json:"created_at"`
}

// Book is a work owned by a single author.
type Book struct {
	ID            uuid.UUID  `json:"id"`
	AuthorID      uuid.UUID  `json:"author_id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Genre         string     `json:"genre"`
	Status        BookStatus `json:"status"`
	CoverURL      string     `json:"cover_url"`
	LikesCount    int        `json:"likes_count"`
	CommentsCount int        `json:"comments_count"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// BookWithAuthor is a book joined with its author's display fields.
type BookWithAuthor struct {
	Book
	AuthorUsername string `json:"author_username"`
	AuthorName     string `json:"author_name"`
}

// BookWithChapterCount is a book annotated with its number of chapters.
type BookWithChapterCount struct {
	Book
	ChapterCount int `json:"chapter_count"`
}

// Chapter is an ordered unit of content within a book. OrderIndex values
// within one book form a dense ascending sequence starting at 1.
type Chapter struct {
	ID         uuid.UUID `json:"id"`
	BookID     uuid.UUID `json:"book_id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	OrderIndex int       `json:"order_index"`
	WordCount  int       `json:"word_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Tokens collects an issued access token.
type Tokens struct {
	AccessToken string
	ExpiresAt   time.Time // access token expiry (for diagnostics)
}

// BookUpdate carries partial book changes; nil fields keep current values.
type BookUpdate struct {
	Title       *string
	Description *string
	Genre       *string
	Status      *BookStatus
	CoverURL    *string
}

// ChapterUpdate carries partial chapter changes; nil fields keep current
// values. WordCount is set by the service whenever Content is.
type ChapterUpdate struct {
	Title     *string
	Content   *string
	WordCount *int
}

// ChapterOrder assigns a new position to one chapter in a reorder batch.
type ChapterOrder struct {
	ID         uuid.UUID `json:"id"`
	OrderIndex int       `json:"order_index"`
}
