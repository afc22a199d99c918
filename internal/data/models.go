// internal/data/models.go
package data

import (
	"context"
	"database/sql"
	"errors"
)

var (
	// ErrRecordNotFound is returned when no book matches the requested id.
	ErrRecordNotFound = errors.New("record not found")
	// ErrInvalidPage is returned when the requested page is malformed or
	// lies beyond the last page of the result set.
	ErrInvalidPage = errors.New("invalid page")
)

// BookStore is the persistence contract for books. Implementations must be
// safe for concurrent use and make every write visible atomically.
type BookStore interface {
	Insert(ctx context.Context, book *Book) error
	Get(ctx context.Context, id int64) (*Book, error)
	List(ctx context.Context, filter BookFilter, page Pagination) ([]*Book, int, error)
	// Update loads the book with the given id, passes a copy to apply and
	// stores the result, all under a lock on that book. An error from apply
	// is returned unchanged and nothing is written.
	Update(ctx context.Context, id int64, apply func(*Book) error) (*Book, error)
	Delete(ctx context.Context, id int64) error
	Ping(ctx context.Context) error
}

// BookFilter holds the optional exact-match filters for listing books.
// Empty fields are ignored; the rest are combined with AND.
type BookFilter struct {
	Genre        string
	Author       string
	Availability string
}

// Models is a top-level container that groups all storage types together.
// It is passed around the application via applicationDependencies so every
// handler has access to storage without knowing which backend is in use.
type Models struct {
	Books BookStore
}

// NewModels constructs Models backed by the given PostgreSQL connection pool.
func NewModels(db *sql.DB) Models {
	return Models{
		Books: BookModel{DB: db},
	}
}

// NewMemoryModels constructs Models backed by process memory.
func NewMemoryModels() Models {
	return Models{
		Books: NewMemoryBookModel(),
	}
}
