package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/gofrs/uuid/v5"

	"github.com/NorrinRad01/narrative/internal/errs"
	"github.com/NorrinRad01/narrative/internal/model"
	"github.com/NorrinRad01/narrative/internal/repository"
)

// ChapterService defines chapter operations. Ownership resolves transitively
// through the parent book's author.
type ChapterService interface {
	// ListByBook returns the book's chapters in order. Public by design:
	// chapters of draft books stay readable without authentication.
	ListByBook(ctx context.Context, bookID uuid.UUID) ([]model.Chapter, error)
	// Create appends a chapter to an owned book.
	Create(ctx context.Context, bookID, userID uuid.UUID, title, content string) (*model.Chapter, error)
	// Update applies partial changes to a chapter of an owned book.
	Update(ctx context.Context, id, userID uuid.UUID, upd model.ChapterUpdate) (*model.Chapter, error)
	// Delete removes a chapter and keeps the remaining ordering dense.
	Delete(ctx context.Context, id, userID uuid.UUID) error
	// Reorder applies a full new ordering for an owned book's chapters.
	Reorder(ctx context.Context, bookID, userID uuid.UUID, orders []model.ChapterOrder) error
}

type ChapterServiceImpl struct {
	chapters repository.ChapterRepository
	books    repository.BookRepository
}

// NewChapterService constructs ChapterService.
func NewChapterService(chapters repository.ChapterRepository, books repository.BookRepository) *ChapterServiceImpl {
	return &ChapterServiceImpl{chapters: chapters, books: books}
}

// ListByBook returns the ordered chapters of a book.
func (s *ChapterServiceImpl) ListByBook(ctx context.Context, bookID uuid.UUID) ([]model.Chapter, error) {
	return s.chapters.ListByBook(ctx, bookID)
}

// Create validates the title, checks book ownership and appends the chapter.
func (s *ChapterServiceImpl) Create(ctx context.Context, bookID, userID uuid.UUID, title, content string) (*model.Chapter, error) {
	if err := s.requireBookOwner(ctx, bookID, userID); err != nil {
		return nil, err
	}
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", errs.ErrValidation)
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	c := &model.Chapter{
		ID:        id,
		BookID:    bookID,
		Title:     title,
		Content:   content,
		WordCount: countWords(content),
	}
	if err := s.chapters.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Update applies partial changes; word_count is recomputed only when content
// is supplied.
func (s *ChapterServiceImpl) Update(ctx context.Context, id, userID uuid.UUID, upd model.ChapterUpdate) (*model.Chapter, error) {
	if err := s.requireChapterOwner(ctx, id, userID); err != nil {
		return nil, err
	}
	if upd.Title != nil && *upd.Title == "" {
		return nil, fmt.Errorf("%w: title cannot be empty", errs.ErrValidation)
	}
	if upd.Content != nil {
		wc := countWords(*upd.Content)
		upd.WordCount = &wc
	}
	return s.chapters.Update(ctx, id, upd)
}

// Delete removes the chapter after the transitive ownership check.
func (s *ChapterServiceImpl) Delete(ctx context.Context, id, userID uuid.UUID) error {
	if err := s.requireChapterOwner(ctx, id, userID); err != nil {
		return err
	}
	return s.chapters.Delete(ctx, id)
}

// Reorder validates the new ordering is a dense permutation 1..N and applies
// it atomically.
func (s *ChapterServiceImpl) Reorder(ctx context.Context, bookID, userID uuid.UUID, orders []model.ChapterOrder) error {
	if err := s.requireBookOwner(ctx, bookID, userID); err != nil {
		return err
	}
	if len(orders) == 0 {
		return fmt.Errorf("%w: empty reorder", errs.ErrValidation)
	}
	seenID := make(map[uuid.UUID]bool, len(orders))
	seenIdx := make(map[int]bool, len(orders))
	for _, o := range orders {
		if o.ID == uuid.Nil {
			return fmt.Errorf("%w: empty chapter id", errs.ErrValidation)
		}
		if seenID[o.ID] {
			return fmt.Errorf("%w: duplicate chapter %s", errs.ErrValidation, o.ID)
		}
		seenID[o.ID] = true
		if o.OrderIndex < 1 || o.OrderIndex > len(orders) || seenIdx[o.OrderIndex] {
			return fmt.Errorf("%w: order_index values must be a permutation of 1..%d", errs.ErrValidation, len(orders))
		}
		seenIdx[o.OrderIndex] = true
	}
	return s.chapters.Reorder(ctx, bookID, orders)
}

func (s *ChapterServiceImpl) requireBookOwner(ctx context.Context, bookID, userID uuid.UUID) error {
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

func (s *ChapterServiceImpl) requireChapterOwner(ctx context.Context, chapterID, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return errs.ErrUnauthorized
	}
	authorID, _, err := s.chapters.OwnerOf(ctx, chapterID)
	if err != nil {
		return err
	}
	if authorID != userID {
		return errs.ErrForbidden
	}
	return nil
}

// countWords is the whitespace-delimited token count; empty content counts 0.
func countWords(content string) int {
	return len(strings.Fields(content))
}
