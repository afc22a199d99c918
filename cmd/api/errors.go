// cmd/api/errors.go
// This file contains all error-response helpers for the application.
// Every failure is sent as {"status": "failed", "message": ..., "headers": ...},
// with per-field messages under "errors" where they exist.
package main

import (
	"log/slog"
	"net/http"
)

// logError logs an internal error at ERROR level with the request method and URL for context.
func (app *applicationDependencies) logError(r *http.Request, err error) {
	app.logger.Error(err.Error(),
		slog.String("request_method", r.Method),
		slog.String("request_url", r.URL.String()),
		slog.String("request_id", requestIDFrom(r)),
	)
}

// errorResponse sends a failure envelope with the given status code, message
// and optional field errors.
func (app *applicationDependencies) errorResponse(w http.ResponseWriter, r *http.Request, status int, message string, fieldErrors map[string][]string) {
	data := failure(message)
	if len(fieldErrors) > 0 {
		data["errors"] = fieldErrors
	}
	err := app.writeJSON(w, status, data, nil)
	if err != nil {
		app.logError(r, err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// serverErrorResponse logs a 500-level error and sends a generic message to the client.
// Internal error details are never exposed to the client.
func (app *applicationDependencies) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)
	app.errorResponse(w, r, http.StatusInternalServerError, "the server encountered a problem and could not process your request", nil)
}

// notFoundResponse sends a 404 for unknown routes.
func (app *applicationDependencies) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusNotFound, "the requested resource could not be found", nil)
}

// bookNotFoundResponse sends a 404 for an id that does not resolve to a book.
func (app *applicationDependencies) bookNotFoundResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusNotFound, "Book not found", nil)
}

// invalidPageResponse sends a 404 for a page outside the result set.
func (app *applicationDependencies) invalidPageResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusNotFound, "Invalid page.", nil)
}

// methodNotAllowedResponse sends a 405 Method Not Allowed error.
func (app *applicationDependencies) methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	message := "the " + r.Method + " method is not supported for this resource"
	app.errorResponse(w, r, http.StatusMethodNotAllowed, message, nil)
}

// badRequestResponse sends a 400 for a request body that could not be read.
func (app *applicationDependencies) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusBadRequest, "Invalid data provided", map[string][]string{
		"body": {err.Error()},
	})
}

// failedValidationResponse sends a 400 containing every field-level
// validation error collected by a Validator.
func (app *applicationDependencies) failedValidationResponse(w http.ResponseWriter, r *http.Request, errors map[string][]string) {
	app.errorResponse(w, r, http.StatusBadRequest, "Invalid data provided", errors)
}

// rateLimitExceededResponse sends a 429 Too Many Requests error.
func (app *applicationDependencies) rateLimitExceededResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusTooManyRequests, "rate limit exceeded", nil)
}

// serviceUnavailableResponse sends a 503 when a dependency is unreachable.
func (app *applicationDependencies) serviceUnavailableResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)
	app.errorResponse(w, r, http.StatusServiceUnavailable, "the service is temporarily unavailable", nil)
}
