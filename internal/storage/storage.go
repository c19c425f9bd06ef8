package storage

import "errors"

var (
	ErrWorkExists    = errors.New("work already exists")
	ErrWorkNotFound  = errors.New("work not found")
	ErrInvalidRating = errors.New("rating out of range")
)

var (
	ErrFileTooLarge    = errors.New("file size exceeds limit")
	ErrInvalidFileType = errors.New("invalid file type")
	ErrFileNotFound    = errors.New("file not found")
)
