package domain

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrNoImages            = errors.New("no images provided")
	ErrTooManyImages       = errors.New("too many images in one request")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrInvalidBatchSize    = errors.New("batch size must be at least 1")
	ErrInvalidPortfolio    = errors.New("portfolio payload is malformed")
	ErrRunNotFound         = errors.New("extraction run not found")
	ErrOCRUnavailable      = errors.New("no OCR provider is configured")
	ErrUnsupportedExport   = errors.New("unsupported export format")
	ErrUploadFailed        = errors.New("image upload to storage failed")
)
