package service

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid/v5"

	"github.com/NorrinRad01/narrative/internal/errs"
	"github.com/NorrinRad01/narrative/internal/model"
	"github.com/NorrinRad01/narrative/internal/repository"
)

// publishedLimit caps the public listing page size.
const publishedLimit = 50

// CreateBookInput carries a new book request.
type CreateBookInput struct {
	Title       string
	Description string
	Genre       string
	Status      model.BookStatus
	CoverURL    string
}

// BookService defines book operations. Every mutating operation performs an
// explicit ownership check before touching storage.
type BookService interface {
	// ListPublished returns published books, newest first, capped at a fixed page size.
	ListPublished(ctx context.Context) ([]model.BookWithAuthor, error)
	// ListMine returns all the caller's books with chapter counts, any status.
	ListMine(ctx context.Context, userID uuid.UUID) ([]model.BookWithChapterCount, error)
	// Create adds a book owned by userID.
	Create(ctx context.Context, userID uuid.UUID, in CreateBookInput) (*model.Book, error)
	// Get loads a book with its author's display fields.
	Get(ctx context.Context, id uuid.UUID) (*model.BookWithAuthor, error)
	// Update applies partial changes to an owned book.
	Update(ctx context.Context, id, userID uuid.UUID, upd model.BookUpdate) (*model.Book, error)
	// Delete removes an owned book and its chapters.
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

type BookServiceImpl struct {
	books repository.BookRepository
}

// NewBookService constructs BookService.
func NewBookService(books repository.BookRepository) *BookServiceImpl {
	return &BookServiceImpl{books: books}
}

// ListPublished returns the public listing.
func (s *BookServiceImpl) ListPublished(ctx context.Context) ([]model.BookWithAuthor, error) {
	return s.books.ListPublished(ctx, publishedLimit)
}

// ListMine returns the caller's books regardless of status.
func (s *BookServiceImpl) ListMine(ctx context.Context, userID uuid.UUID) ([]model.BookWithChapterCount, error) {
	if userID == uuid.Nil {
		return nil, errs.ErrUnauthorized
	}
	return s.books.ListByAuthor(ctx, userID)
}

// Create validates required fields and inserts the book.
func (s *BookServiceImpl) Create(ctx context.Context, userID uuid.UUID, in CreateBookInput) (*model.Book, error) {
	if userID == uuid.Nil {
		return nil, errs.ErrUnauthorized
	}
	if in.Title == "" {
		return nil, fmt.Errorf("%w: title is required", errs.ErrValidation)
	}
	if in.Genre == "" {
		return nil, fmt.Errorf("%w: genre is required", errs.ErrValidation)
	}
	if in.Status == "" {
		in.Status = model.BookDraft
	}
	if !in.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", errs.ErrValidation, in.Status)
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	b := &model.Book{
		ID:          id,
		AuthorID:    userID,
		Title:       in.Title,
		Description: in.Description,
		Genre:       in.Genre,
		Status:      in.Status,
		CoverURL:    in.CoverURL,
	}
	if err := s.books.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Get loads one book.
func (s *BookServiceImpl) Get(ctx context.Context, id uuid.UUID) (*model.BookWithAuthor, error) {
	return s.books.GetByID(ctx, id)
}

// Update applies partial changes after the ownership check.
func (s *BookServiceImpl) Update(ctx context.Context, id, userID uuid.UUID, upd model.BookUpdate) (*model.Book, error) {
	if err := s.requireOwner(ctx, id, userID); err != nil {
		return nil, err
	}
	if upd.Title != nil && *upd.Title == "" {
		return nil, fmt.Errorf("%w: title cannot be empty", errs.ErrValidation)
	}
	if upd.Genre != nil && *upd.Genre == "" {
		return nil, fmt.Errorf("%w: genre cannot be empty", errs.ErrValidation)
	}
	if upd.Status != nil && !upd.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", errs.ErrValidation, *upd.Status)
	}
	return s.books.Update(ctx, id, upd)
}

// Delete removes the book after the ownership check. Deleting a missing book
// is a consistent not-found on every path.
func (s *BookServiceImpl) Delete(ctx context.Context, id, userID uuid.UUID) error {
	if err := s.requireOwner(ctx, id, userID); err != nil {
		return err
	}
	return s.books.Delete(ctx, id)
}

// requireOwner is the single ownership predicate for book mutations:
// errs.ErrNotFound when the book is absent, errs.ErrForbidden on mismatch.
func (s *BookServiceImpl) requireOwner(ctx context.Context, bookID, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return errs.ErrUnauthorized
	}
	authorID, err := s.books.AuthorOf(ctx, bookID)
	if err != nil {
		return err
	}
	if authorID != userID {
		return errs.ErrForbidden
	}
	return nil
}
