// cmd/api/healthcheck.go
package main

import (
	"net/http"
)

// healthcheckHandler handles GET /v1/healthcheck. It reports 503 when the
// book store cannot be reached.
func (app *applicationDependencies) healthcheckHandler(w http.ResponseWriter, r *http.Request) {
	if err := app.models.Books.Ping(r.Context()); err != nil {
		app.serviceUnavailableResponse(w, r, err)
		return
	}

	body := success("available")
	body["system_info"] = map[string]string{
		"environment": app.config.environment,
		"version":     appVersion,
		"storage":     app.config.storage,
	}

	err := app.writeJSON(w, http.StatusOK, body, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
