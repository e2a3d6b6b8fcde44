package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/NorrinRad01/narrative/internal/model"
)

// ChapterRepository maintains the dense chapter ordering within each book.
type ChapterRepository interface {
	// ListByBook returns the book's chapters ordered by order_index.
	ListByBook(ctx context.Context, bookID uuid.UUID) ([]model.Chapter, error)

	// Create inserts a chapter at the end of the book (max order_index + 1).
	// The assigned order index is written back to c.
	Create(ctx context.Context, c *model.Chapter) error

	// GetByID loads a single chapter.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Chapter, error)

	// OwnerOf resolves the chapter's parent book and its owning author,
	// or errs.ErrNotFound when the chapter does not exist.
	OwnerOf(ctx context.Context, id uuid.UUID) (authorID, bookID uuid.UUID, err error)

	// Update applies partial changes and returns the updated chapter.
	Update(ctx context.Context, id uuid.UUID, upd model.ChapterUpdate) (*model.Chapter, error)

	// Delete removes the chapter and shifts greater order_index values down
	// by one so the remaining sequence stays dense.
	Delete(ctx context.Context, id uuid.UUID) error

	// Reorder applies a full new ordering for the book's chapters in one
	// transaction. The supplied set must cover the book's chapters exactly.
	Reorder(ctx context.Context, bookID uuid.UUID, orders []model.ChapterOrder) error
}
