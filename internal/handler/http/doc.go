// Package http implements the HTTP transport of the pseudo-ledger core.
//
// It exposes route wiring, request handlers, and middleware. Authentication,
// request tracing, access logging and request metrics are handled here
// before requests are delegated to the service layer. Handlers never log
// real names or keys.
package http
