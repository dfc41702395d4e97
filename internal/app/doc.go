// Package app assembles the dashboard server: it loads configuration,
// initializes logging, wires the data pipeline services and exposes the
// chi router behind an http.Server with graceful shutdown.
package app
