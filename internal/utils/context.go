// Package utils provides general-purpose helper utilities
// used across different parts of the application.
// Includes tools for working with context, type-safe keys,
// HTTP response writing, JWT token generation and validation,
// and id generation.
package utils

import (
	"context"
)

// contextKey is a private type for context keys.
// Using a dedicated type instead of a plain string prevents key collisions
// with other packages that may use string-based keys in the context.
type contextKey string

// String returns the string representation of the context key.
// Implements the fmt.Stringer interface.
func (c contextKey) String() string {
	return string(c)
}

// RequesterIDCtxKey is the key used to store the authenticated requester
// (the chat or web identity acting on a group) in the context.
//
// Example of writing a value to the context:
//
//	ctx := utils.WithRequesterID(ctx, "tg:1042")
var RequesterIDCtxKey = contextKey("requesterID")

// WithRequesterID returns a copy of ctx carrying requesterID.
func WithRequesterID(ctx context.Context, requesterID string) context.Context {
	return context.WithValue(ctx, RequesterIDCtxKey, requesterID)
}

// GetRequesterIDFromContext retrieves the requester identifier from the context.
//
// Returns the requester ID and an ok flag:
//   - ok == true : a non-empty string value is found
//   - ok == false: value is missing, empty or has an unexpected type
func GetRequesterIDFromContext(ctx context.Context) (string, bool) {
	requesterID, ok := ctx.Value(RequesterIDCtxKey).(string)
	return requesterID, ok && requesterID != ""
}
