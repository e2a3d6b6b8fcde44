package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/NorrinRad01/narrative/internal/model"
)

// BookRepository provides author-scoped access to books.
type BookRepository interface {
	// Create inserts a new book.
	Create(ctx context.Context, b *model.Book) error

	// GetByID loads a book joined with its author's display fields.
	GetByID(ctx context.Context, id uuid.UUID) (*model.BookWithAuthor, error)

	// AuthorOf returns the owning author of a book, or errs.ErrNotFound.
	AuthorOf(ctx context.Context, id uuid.UUID) (uuid.UUID, error)

	// ListPublished returns published books, newest first, capped at limit.
	ListPublished(ctx context.Context, limit int) ([]model.BookWithAuthor, error)

	// ListByAuthor returns all books of one author with chapter counts,
	// newest first, regardless of status.
	ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]model.BookWithChapterCount, error)

	// Update applies partial changes and returns the updated book.
	Update(ctx context.Context, id uuid.UUID, upd model.BookUpdate) (*model.Book, error)

	// Delete removes the book and all its chapters in one transaction.
	Delete(ctx context.Context, id uuid.UUID) error
}
