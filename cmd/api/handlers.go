// cmd/api/handlers.go
// This file contains all HTTP request handlers for the books resource.
// Each handler is a method on *applicationDependencies so it has access
// to the logger, storage, clock and event publisher.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/aoideee/library-catalog/internal/data"
	"github.com/aoideee/library-catalog/internal/events"
	"github.com/aoideee/library-catalog/internal/validator"
)

// errInvalidBook aborts a store update when the merged book fails validation.
var errInvalidBook = errors.New("invalid book")

// listBooksHandler handles GET /v1/books.
// Optional genre, author and availability query parameters filter by exact
// match; page and page_size select the page. Books are ordered by title.
func (app *applicationDependencies) listBooksHandler(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()

	filter := data.BookFilter{
		Genre:        app.readString(qs, "genre", ""),
		Author:       app.readString(qs, "author", ""),
		Availability: app.readString(qs, "availability", ""),
	}

	page, err := data.ParsePagination(qs)
	if err != nil {
		app.invalidPageResponse(w, r)
		return
	}

	books, total, err := app.models.Books.List(r.Context(), filter, page)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrInvalidPage):
			app.invalidPageResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	body := success("Books retrieved successfully")
	body["books"] = books
	body["pagination"] = data.CalculateMetadata(requestURL(r), page, total)

	err = app.writeJSON(w, http.StatusOK, body, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// showBookHandler handles GET /v1/books/:id.
func (app *applicationDependencies) showBookHandler(w http.ResponseWriter, r *http.Request) {
	book, ok := app.lookupBook(w, r)
	if !ok {
		return
	}

	body := success("Book details retrieved successfully")
	body["book"] = book

	err := app.writeJSON(w, http.StatusOK, body, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// createBookHandler handles POST /v1/books.
// Every field is required and validated; all violations are reported
// together and nothing is stored unless the whole book is valid.
func (app *applicationDependencies) createBookHandler(w http.ResponseWriter, r *http.Request) {
	var input data.BookInput

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	book := &data.Book{}
	v := validator.New()
	if data.ValidateBookInput(v, input, app.clock.Now(), book, false); !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	err = app.models.Books.Insert(r.Context(), book)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.publish(events.BookCreated, book.ID, book)

	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/v1/books/%d", book.ID))

	body := success("Book created successfully")
	body["book"] = book

	err = app.writeJSON(w, http.StatusCreated, body, headers)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// updateBookHandler handles PUT and PATCH /v1/books/:id.
// Both methods are partial: only the supplied fields are validated and
// applied, the rest of the stored book is left untouched.
func (app *applicationDependencies) updateBookHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.bookNotFoundResponse(w, r)
		return
	}

	var input data.BookInput
	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	// Validation runs inside the store's lock on the book so the supplied
	// fields are merged into the latest stored version.
	v := validator.New()
	book, err := app.models.Books.Update(r.Context(), id, func(book *data.Book) error {
		if data.ValidateBookInput(v, input, app.clock.Now(), book, true); !v.Valid() {
			return errInvalidBook
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, errInvalidBook):
			app.failedValidationResponse(w, r, v.Errors)
		case errors.Is(err, data.ErrRecordNotFound):
			app.bookNotFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	app.publish(events.BookUpdated, book.ID, book)

	body := success("Book updated successfully")
	body["book"] = book

	err = app.writeJSON(w, http.StatusOK, body, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// deleteBookHandler handles DELETE /v1/books/:id.
// A successful delete answers 204 with the rate-limit headers and no body.
func (app *applicationDependencies) deleteBookHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.bookNotFoundResponse(w, r)
		return
	}

	err = app.models.Books.Delete(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.bookNotFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	app.publish(events.BookDeleted, id, nil)

	w.WriteHeader(http.StatusNoContent)
}

// lookupBook resolves the :id parameter to a stored book. On failure it has
// already written the response and returns false.
func (app *applicationDependencies) lookupBook(w http.ResponseWriter, r *http.Request) (*data.Book, bool) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.bookNotFoundResponse(w, r)
		return nil, false
	}

	book, err := app.models.Books.Get(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.bookNotFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return nil, false
	}
	return book, true
}

// publish sends a book event in the background. Delivery failures are
// logged and never affect the response.
func (app *applicationDependencies) publish(eventType string, id int64, book *data.Book) {
	e := events.Event{
		Type:       eventType,
		BookID:     id,
		OccurredAt: app.clock.Now().UTC(),
	}
	if book != nil {
		snapshot := *book
		e.Book = &snapshot
	}

	app.background(func() {
		if err := app.events.Publish(context.Background(), e); err != nil {
			app.logger.Error("publish book event", "type", e.Type, "book_id", e.BookID, "error", err)
		}
	})
}
