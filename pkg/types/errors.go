package types

import (
	"errors"
	"strconv"
)

// Error categories. Callers wrap these with context and test with errors.Is.
var (
	ErrUsage        = errors.New("usage error")
	ErrIO           = errors.New("io error")
	ErrParse        = errors.New("parse error")
	ErrSchema       = errors.New("schema error")
	ErrDuplicateKey = errors.New("duplicate key")
	ErrUnmapped     = errors.New("unmapped rows")
	ErrNotFound     = errors.New("not found")
	ErrExists       = errors.New("file already exists")
)

// NotFoundError reports a user id with no annotated rows. Known lists the
// user ids that do have rows, for the caller to print.
type NotFoundError struct {
	UserID int
	Known  []int
}

func (e *NotFoundError) Error() string {
	return "user id " + strconv.Itoa(e.UserID) + " not found"
}

// Unwrap lets errors.Is match ErrNotFound.
func (e *NotFoundError) Unwrap() error { return ErrNotFound }
