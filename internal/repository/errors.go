// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// inspecting driver-specific errors. ErrEmailExists signals a unique key
// violation on the accounts table, ErrConflict any other state that
// blocks a write.
package repository

import "errors"

// ErrEmailExists is returned when an insert would duplicate an account
// email. Handlers translate this into an HTTP 409 response.
var ErrEmailExists = errors.New("email already exists")

// ErrConflict is returned when a write cannot proceed because of
// conflicting state, such as creating a category that already exists.
// Handlers translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")
