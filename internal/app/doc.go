// Package app wires the dashboard together: configuration, logging,
// OpenTelemetry, the dataset store, services, middleware, and the HTTP
// server with its embedded frontend.
package app
