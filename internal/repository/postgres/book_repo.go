package postgres

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/NorrinRad01/narrative/internal/errs"
	"github.com/NorrinRad01/narrative/internal/model"
)

// BookRepo implements BookRepository using PostgreSQL.
type BookRepo struct{ db *DB }

// NewBookRepo constructs a book repository.
func NewBookRepo(db *DB) *BookRepo { return &BookRepo{db: db} }

const bookCols = `b.id, b.author_id, b.title, b.description, b.genre, b.status, b.cover_url, b.likes_count, b.comments_count, b.created_at, b.updated_at`

// Create inserts a new book row.
func (r *BookRepo) Create(ctx context.Context, b *model.Book) error {
	const q = `
INSERT INTO books (id, author_id, title, description, genre, status, cover_url)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING created_at, updated_at`
	row := r.db.Pool.QueryRow(ctx, q, b.ID, b.AuthorID, b.Title, b.Description, b.Genre, string(b.Status), b.CoverURL)
	return row.Scan(&b.CreatedAt, &b.UpdatedAt)
}

// GetByID selects a book joined with author display fields.
func (r *BookRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.BookWithAuthor, error) {
	const q = `
SELECT ` + bookCols + `, u.username, u.name
FROM books b
JOIN users u ON u.id = b.author_id
WHERE b.id=$1`
	row := r.db.Pool.QueryRow(ctx, q, id)
	var bw model.BookWithAuthor
	if err := scanBook(row, &bw.Book, &bw.AuthorUsername, &bw.AuthorName); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &bw, nil
}

// AuthorOf returns the author_id of a book.
func (r *BookRepo) AuthorOf(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	const q = `SELECT author_id FROM books WHERE id=$1`
	var authorID uuid.UUID
	if err := r.db.Pool.QueryRow(ctx, q, id).Scan(&authorID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, errs.ErrNotFound
		}
		return uuid.Nil, err
	}
	return authorID, nil
}

// ListPublished returns published books, newest first, capped at limit.
func (r *BookRepo) ListPublished(ctx context.Context, limit int) ([]model.BookWithAuthor, error) {
	const q = `
SELECT ` + bookCols + `, u.username, u.name
FROM books b
JOIN users u ON u.id = b.author_id
WHERE b.status='published'
ORDER BY b.created_at DESC
LIMIT $1`
	rows, err := r.db.Pool.Query(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.BookWithAuthor{}
	for rows.Next() {
		var bw model.BookWithAuthor
		if err := scanBook(rows, &bw.Book, &bw.AuthorUsername, &bw.AuthorName); err != nil {
			return nil, err
		}
		out = append(out, bw)
	}
	return out, rows.Err()
}

// ListByAuthor returns all the author's books with chapter counts, newest first.
func (r *BookRepo) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]model.BookWithChapterCount, error) {
	const q = `
SELECT ` + bookCols + `, (SELECT COUNT(*) FROM chapters c WHERE c.book_id = b.id) AS chapter_count
FROM books b
WHERE b.author_id=$1
ORDER BY b.created_at DESC`
	rows, err := r.db.Pool.Query(ctx, q, authorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.BookWithChapterCount{}
	for rows.Next() {
		var bc model.BookWithChapterCount
		if err := scanBook(rows, &bc.Book, &bc.ChapterCount); err != nil {
			return nil, err
		}
		out = append(out, bc)
	}
	return out, rows.Err()
}

// Update applies partial changes; nil fields keep current values.
func (r *BookRepo) Update(ctx context.Context, id uuid.UUID, upd model.BookUpdate) (*model.Book, error) {
	const q = `
UPDATE books SET
  title = COALESCE($2, title),
  description = COALESCE($3, description),
  genre = COALESCE($4, genre),
  status = COALESCE($5, status),
  cover_url = COALESCE($6, cover_url),
  updated_at = now()
WHERE id=$1
RETURNING id, author_id, title, description, genre, status, cover_url, likes_count, comments_count, created_at, updated_at`
	var status *string
	if upd.Status != nil {
		s := string(*upd.Status)
		status = &s
	}
	row := r.db.Pool.QueryRow(ctx, q, id, upd.Title, upd.Description, upd.Genre, status, upd.CoverURL)
	var b model.Book
	if err := scanBook(row, &b); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

// Delete removes the book's chapters and the book itself in one transaction.
func (r *BookRepo) Delete(ctx context.Context, id uuid.UUID) (err error) {
	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			err = e
		}
	}()

	if _, err = tx.Exec(ctx, `DELETE FROM chapters WHERE book_id=$1`, id); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM books WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// scanBook scans the bookCols columns plus any trailing extras.
func scanBook(row pgx.Row, b *model.Book, extra ...any) error {
	dest := []any{
		&b.ID, &b.AuthorID, &b.Title, &b.Description, &b.Genre, &b.Status,
		&b.CoverURL, &b.LikesCount, &b.CommentsCount, &b.CreatedAt, &b.UpdatedAt,
	}
	dest = append(dest, extra...)
	return row.Scan(dest...)
}
