package dberrors

import "errors"

var (
	ErrNotFound        = errors.New("kcvdb: not found")
	ErrClosed          = errors.New("kcvdb: closed")
	ErrInvalidArgument = errors.New("kcvdb: invalid argument")
)
