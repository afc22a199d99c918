// internal/data/books_memory.go
package data

import (
	"cmp"
	"context"
	"slices"
	"sync"
)

// MemoryBookModel keeps books in process memory. It backs the "memory"
// storage mode and the handler tests.
type MemoryBookModel struct {
	mu     sync.RWMutex
	nextID int64
	books  map[int64]Book
}

func NewMemoryBookModel() *MemoryBookModel {
	return &MemoryBookModel{books: make(map[int64]Book)}
}

func (m *MemoryBookModel) Insert(_ context.Context, book *Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	book.ID = m.nextID
	m.books[book.ID] = *book
	return nil
}

func (m *MemoryBookModel) Get(_ context.Context, id int64) (*Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	book, ok := m.books[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return &book, nil
}

func (m *MemoryBookModel) List(_ context.Context, filter BookFilter, page Pagination) ([]*Book, int, error) {
	m.mu.RLock()
	matched := make([]Book, 0, len(m.books))
	for _, b := range m.books {
		if filter.matches(b) {
			matched = append(matched, b)
		}
	}
	m.mu.RUnlock()

	total := len(matched)
	if err := page.Check(total); err != nil {
		return nil, total, err
	}

	// Byte order, matching the "C" collation the SQL store sorts with.
	slices.SortFunc(matched, func(a, b Book) int {
		return cmp.Or(cmp.Compare(a.Title, b.Title), cmp.Compare(a.ID, b.ID))
	})

	start := min(page.offset(), total)
	end := min(start+page.limit(), total)

	books := make([]*Book, 0, end-start)
	for i := start; i < end; i++ {
		books = append(books, &matched[i])
	}
	return books, total, nil
}

func (m *MemoryBookModel) Update(_ context.Context, id int64, apply func(*Book) error) (*Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	book, ok := m.books[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	if err := apply(&book); err != nil {
		return nil, err
	}
	book.ID = id
	m.books[id] = book
	return &book, nil
}

func (m *MemoryBookModel) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.books[id]; !ok {
		return ErrRecordNotFound
	}
	delete(m.books, id)
	return nil
}

func (m *MemoryBookModel) Ping(context.Context) error { return nil }

func (f BookFilter) matches(b Book) bool {
	return (f.Genre == "" || b.Genre == f.Genre) &&
		(f.Author == "" || b.Author == f.Author) &&
		(f.Availability == "" || b.Availability == f.Availability)
}
