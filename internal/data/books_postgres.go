// internal/data/books_postgres.go
package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// queryTimeout bounds every statement issued by BookModel.
const queryTimeout = 3 * time.Second

// BookModel wraps a *sql.DB connection and provides methods for
// creating, reading, updating, and deleting book records in PostgreSQL.
type BookModel struct {
	DB *sql.DB // Shared database connection pool
}

// Insert adds a new book record to the database.
// After a successful insert, the database-assigned id is written back into book.
func (m BookModel) Insert(ctx context.Context, book *Book) error {
	query := `
		INSERT INTO books (title, author, genre, publication_date, availability, edition, summary)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	err := m.DB.QueryRowContext(ctx, query,
		book.Title,
		book.Author,
		book.Genre,
		book.PublicationDate.String(),
		book.Availability,
		book.Edition,
		book.Summary,
	).Scan(&book.ID)
	if err != nil {
		return fmt.Errorf("insert book: %w", err)
	}
	return nil
}

// Get retrieves a single book by its primary key.
// Returns ErrRecordNotFound if no book with the given id exists.
func (m BookModel) Get(ctx context.Context, id int64) (*Book, error) {
	if id < 1 {
		return nil, ErrRecordNotFound
	}

	query := `
		SELECT id, title, author, genre, publication_date, availability, edition, summary
		FROM books
		WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var book Book
	err := m.DB.QueryRowContext(ctx, query, id).Scan(bookColumns(&book)...)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, fmt.Errorf("get book %d: %w", id, err)
		}
	}
	return &book, nil
}

// List returns one page of books matching filter, ordered by title, and
// the number of matching books across all pages. The count and the page
// are read in a single read-only transaction so they agree with each other.
func (m BookModel) List(ctx context.Context, filter BookFilter, page Pagination) ([]*Book, int, error) {
	where := `
		WHERE ($1 = '' OR genre = $1)
		AND ($2 = '' OR author = $2)
		AND ($3 = '' OR availability = $3)`
	args := []any{filter.Genre, filter.Author, filter.Availability}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := m.DB.BeginTx(ctx, &sql.TxOptions{ReadOnly: true, Isolation: sql.LevelRepeatableRead})
	if err != nil {
		return nil, 0, fmt.Errorf("list books: begin: %w", err)
	}
	defer tx.Rollback()

	var total int
	if err := tx.QueryRowContext(ctx, `SELECT count(*) FROM books`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("list books: count: %w", err)
	}
	if err := page.Check(total); err != nil {
		return nil, total, err
	}

	query := `
		SELECT id, title, author, genre, publication_date, availability, edition, summary
		FROM books` + where + `
		ORDER BY title COLLATE "C" ASC, id ASC
		LIMIT $4 OFFSET $5`

	rows, err := tx.QueryContext(ctx, query, append(args, page.limit(), page.offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	books := []*Book{}
	for rows.Next() {
		var book Book
		if err := rows.Scan(bookColumns(&book)...); err != nil {
			return nil, 0, fmt.Errorf("list books: scan: %w", err)
		}
		books = append(books, &book)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list books: %w", err)
	}

	return books, total, tx.Commit()
}

// Update locks the row with SELECT ... FOR UPDATE, lets apply modify it and
// writes every field back in the same transaction, so concurrent partial
// updates of one book are serialised.
// Returns ErrRecordNotFound if the row does not exist.
func (m BookModel) Update(ctx context.Context, id int64, apply func(*Book) error) (*Book, error) {
	if id < 1 {
		return nil, ErrRecordNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := m.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("update book %d: begin: %w", id, err)
	}
	defer tx.Rollback()

	var book Book
	err = tx.QueryRowContext(ctx, `
		SELECT id, title, author, genre, publication_date, availability, edition, summary
		FROM books
		WHERE id = $1
		FOR UPDATE`, id).Scan(bookColumns(&book)...)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, fmt.Errorf("update book %d: lock: %w", id, err)
		}
	}

	if err := apply(&book); err != nil {
		return nil, err
	}
	book.ID = id

	query := `
		UPDATE books
		SET title = $1, author = $2, genre = $3, publication_date = $4,
		    availability = $5, edition = $6, summary = $7
		WHERE id = $8`

	result, err := tx.ExecContext(ctx, query,
		book.Title,
		book.Author,
		book.Genre,
		book.PublicationDate.String(),
		book.Availability,
		book.Edition,
		book.Summary,
		book.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update book %d: %w", id, err)
	}
	if err := requireRow(result); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("update book %d: commit: %w", id, err)
	}
	return &book, nil
}

// Delete removes the book with the given id from the database.
// Returns ErrRecordNotFound if no matching record exists.
func (m BookModel) Delete(ctx context.Context, id int64) error {
	if id < 1 {
		return ErrRecordNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := m.DB.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete book %d: %w", id, err)
	}
	return requireRow(result)
}

// Ping verifies the database is reachable.
func (m BookModel) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return m.DB.PingContext(ctx)
}

func bookColumns(book *Book) []any {
	return []any{
		&book.ID,
		&book.Title,
		&book.Author,
		&book.Genre,
		&book.PublicationDate.Time,
		&book.Availability,
		&book.Edition,
		&book.Summary,
	}
}

func requireRow(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}
