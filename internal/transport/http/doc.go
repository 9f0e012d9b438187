// Package http contains the HTTP handlers for the dashboard API. Handlers
// translate between the service layer and the wire: JSON envelopes for data
// endpoints, PNG bodies for charts, attachments for exports, and RFC 7807
// problem documents for errors.
package http
