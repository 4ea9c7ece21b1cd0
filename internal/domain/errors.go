package domain

import (
	"fmt"
)

type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches on Code so wrapped copies from WithError still compare
// equal to their sentinel under errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:       e.Code,
		Message:    e.Message,
		StatusCode: e.StatusCode,
		Err:        err,
	}
}

// Pre-defined errors
var (
	ErrInternal = &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		StatusCode: 500,
	}

	ErrNoImageSelected = &AppError{
		Code:       "NO_IMAGE_SELECTED",
		Message:    "No image selected",
		StatusCode: 400,
	}

	ErrEmptyFilename = &AppError{
		Code:       "EMPTY_FILENAME",
		Message:    "Uploaded file has an empty filename",
		StatusCode: 400,
	}

	ErrEmptyLabel = &AppError{
		Code:       "EMPTY_LABEL",
		Message:    "Label must not be empty",
		StatusCode: 400,
	}

	ErrInvalidImage = &AppError{
		Code:       "INVALID_IMAGE",
		Message:    "Invalid image format or corrupted file",
		StatusCode: 422,
	}

	ErrNoFaceDetected = &AppError{
		Code:       "NO_FACE_DETECTED",
		Message:    "No face detected in the image",
		StatusCode: 422,
	}

	ErrEmbeddingDim = &AppError{
		Code:       "EMBEDDING_DIMENSION_MISMATCH",
		Message:    "Embedding dimensionality does not match the gallery",
		StatusCode: 422,
	}

	// ErrGalleryEmpty is a flow signal rather than a failure: an empty
	// gallery cannot produce a known match, so every query classifies
	// as Unknown.
	ErrGalleryEmpty = &AppError{
		Code:       "GALLERY_EMPTY",
		Message:    "No reference faces registered",
		StatusCode: 404,
	}

	ErrStoreUnavailable = &AppError{
		Code:       "STORE_UNAVAILABLE",
		Message:    "Data store is unavailable",
		StatusCode: 503,
	}
)
