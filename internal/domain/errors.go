package domain

import "errors"

// Repository sentinels. Usecases translate them into apperror kinds.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrDuplicate    = errors.New("resource already exists")
	ErrStaleVersion = errors.New("resource was modified concurrently")
)
