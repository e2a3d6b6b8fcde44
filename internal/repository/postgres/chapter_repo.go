package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/NorrinRad01/narrative/internal/errs"
	"github.com/NorrinRad01/narrative/internal/model"
)

// ChapterRepo implements ChapterRepository using PostgreSQL.
type ChapterRepo struct{ db *DB }

// NewChapterRepo constructs a chapter repository.
func NewChapterRepo(db *DB) *ChapterRepo { return &ChapterRepo{db: db} }

const chapterCols = `id, book_id, title, content, order_index, word_count, created_at, updated_at`

// ListByBook returns the book's chapters ordered by order_index.
func (r *ChapterRepo) ListByBook(ctx context.Context, bookID uuid.UUID) ([]model.Chapter, error) {
	const q = `
SELECT ` + chapterCols + `
FROM chapters WHERE book_id=$1
ORDER BY order_index ASC`
	rows, err := r.db.Pool.Query(ctx, q, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Chapter{}
	for rows.Next() {
		var c model.Chapter
		if err := scanChapter(rows, &c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Create appends the chapter to the book: order_index = max existing + 1.
// The select and insert run in one transaction so two concurrent creates
// cannot claim the same position.
func (r *ChapterRepo) Create(ctx context.Context, c *model.Chapter) (err error) {
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

	const sel = `SELECT COALESCE(MAX(order_index), 0) FROM chapters WHERE book_id=$1`
	if err = tx.QueryRow(ctx, sel, c.BookID).Scan(&c.OrderIndex); err != nil {
		return err
	}
	c.OrderIndex++

	const ins = `
INSERT INTO chapters (id, book_id, title, content, order_index, word_count)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING created_at, updated_at`
	return tx.QueryRow(ctx, ins, c.ID, c.BookID, c.Title, c.Content, c.OrderIndex, c.WordCount).
		Scan(&c.CreatedAt, &c.UpdatedAt)
}

// GetByID loads a single chapter.
func (r *ChapterRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Chapter, error) {
	row := r.db.Pool.QueryRow(ctx, `SELECT `+chapterCols+` FROM chapters WHERE id=$1`, id)
	var c model.Chapter
	if err := scanChapter(row, &c); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// OwnerOf resolves the chapter's parent book and owning author.
func (r *ChapterRepo) OwnerOf(ctx context.Context, id uuid.UUID) (uuid.UUID, uuid.UUID, error) {
	const q = `
SELECT b.author_id, c.book_id
FROM chapters c
JOIN books b ON b.id = c.book_id
WHERE c.id=$1`
	var authorID, bookID uuid.UUID
	if err := r.db.Pool.QueryRow(ctx, q, id).Scan(&authorID, &bookID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, uuid.Nil, errs.ErrNotFound
		}
		return uuid.Nil, uuid.Nil, err
	}
	return authorID, bookID, nil
}

// Update applies partial changes; nil fields keep current values.
func (r *ChapterRepo) Update(ctx context.Context, id uuid.UUID, upd model.ChapterUpdate) (*model.Chapter, error) {
	const q = `
UPDATE chapters SET
  title = COALESCE($2, title),
  content = COALESCE($3, content),
  word_count = COALESCE($4, word_count),
  updated_at = now()
WHERE id=$1
RETURNING ` + chapterCols
	row := r.db.Pool.QueryRow(ctx, q, id, upd.Title, upd.Content, upd.WordCount)
	var c model.Chapter
	if err := scanChapter(row, &c); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// Delete removes the chapter and closes the gap it leaves: every chapter in
// the same book with a greater order_index is shifted down by one.
func (r *ChapterRepo) Delete(ctx context.Context, id uuid.UUID) (err error) {
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

	const sel = `SELECT book_id, order_index FROM chapters WHERE id=$1 FOR UPDATE`
	var bookID uuid.UUID
	var pos int
	if err = tx.QueryRow(ctx, sel, id).Scan(&bookID, &pos); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errs.ErrNotFound
		}
		return err
	}
	if _, err = tx.Exec(ctx, `DELETE FROM chapters WHERE id=$1`, id); err != nil {
		return err
	}
	const shift = `UPDATE chapters SET order_index = order_index - 1 WHERE book_id=$1 AND order_index > $2`
	_, err = tx.Exec(ctx, shift, bookID, pos)
	return err
}

// Reorder applies a caller-supplied ordering in one transaction. The supplied
// ids must be exactly the book's chapters; otherwise nothing is applied.
// The (book_id, order_index) unique constraint is deferred, so intermediate
// duplicates within the transaction are fine.
func (r *ChapterRepo) Reorder(ctx context.Context, bookID uuid.UUID, orders []model.ChapterOrder) (err error) {
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

	const sel = `SELECT id FROM chapters WHERE book_id=$1 FOR UPDATE`
	rows, err := tx.Query(ctx, sel, bookID)
	if err != nil {
		return err
	}
	existing := map[uuid.UUID]bool{}
	for rows.Next() {
		var id uuid.UUID
		if err = rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		existing[id] = true
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return err
	}

	if len(orders) != len(existing) {
		return fmt.Errorf("%w: reorder must cover all %d chapters", errs.ErrValidation, len(existing))
	}
	for _, o := range orders {
		if !existing[o.ID] {
			return fmt.Errorf("%w: chapter %s not in book", errs.ErrValidation, o.ID)
		}
	}

	const upd = `UPDATE chapters SET order_index=$2, updated_at=now() WHERE id=$1 AND book_id=$3`
	for _, o := range orders {
		if _, err = tx.Exec(ctx, upd, o.ID, o.OrderIndex, bookID); err != nil {
			return err
		}
	}
	return nil
}

func scanChapter(row pgx.Row, c *model.Chapter) error {
	return row.Scan(&c.ID, &c.BookID, &c.Title, &c.Content, &c.OrderIndex,
		&c.WordCount, &c.CreatedAt, &c.UpdatedAt)
}
