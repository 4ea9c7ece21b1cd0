package imgbed

import "errors"

var (
	ErrEmbedderUnavailable = errors.New("embedding service unavailable")
	ErrInvalidResponse     = errors.New("invalid response from embedding service")
	ErrEmptyEmbedding      = errors.New("embedding service returned an empty vector")
)
