package service

import "errors"

var (
	ErrTokenIsExpiredOrInvalid = errors.New("token is expired or invalid")
	ErrTokenCreationFailed     = errors.New("token creation failed")
	ErrVersionIsNotSpecified   = errors.New("application version is not specified")

	// ErrCacheInvalidation aborts a mutation whose in-transaction cache
	// invalidation failed.
	ErrCacheInvalidation = errors.New("cache invalidation failed")

	ErrStoreNotReady = errors.New("store is not ready")
)
