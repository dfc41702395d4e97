// Package http contains the chi HTTP handlers for the dashboard API. Each
// handler exposes a Routes method returning a chi.Router that the
// application mounts under /api.
package http
