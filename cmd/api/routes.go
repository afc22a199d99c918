// cmd/api/routes.go
package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// routes registers all HTTP endpoints and returns the configured router
// wrapped in the middleware chain.
//
// Middleware chain (outermost → innermost):
//
//	recoverPanic → requestID → logRequest → rateLimit → router
//
// Endpoints:
//
//	GET    /v1/healthcheck  – service status
//	GET    /v1/books        – list books (filtered, paginated)
//	POST   /v1/books        – create a new book
//	GET    /v1/books/:id    – retrieve a single book by ID
//	PUT    /v1/books/:id    – partially update an existing book
//	PATCH  /v1/books/:id    – partially update an existing book
//	DELETE /v1/books/:id    – delete a book by ID
func (app *applicationDependencies) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.notFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedResponse)

	router.HandlerFunc(http.MethodGet, "/v1/healthcheck", app.healthcheckHandler)

	router.HandlerFunc(http.MethodGet, "/v1/books", app.listBooksHandler)
	router.HandlerFunc(http.MethodPost, "/v1/books", app.createBookHandler)
	router.HandlerFunc(http.MethodGet, "/v1/books/:id", app.showBookHandler)
	router.HandlerFunc(http.MethodPut, "/v1/books/:id", app.updateBookHandler)
	router.HandlerFunc(http.MethodPatch, "/v1/books/:id", app.updateBookHandler)
	router.HandlerFunc(http.MethodDelete, "/v1/books/:id", app.deleteBookHandler)

	return app.recoverPanic(app.requestID(app.logRequest(app.rateLimit(router))))
}
