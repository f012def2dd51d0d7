package service

import (
	"context"
	"io"
)

// StoredDocument describes where an uploaded document landed
type StoredDocument struct {
	Backend   string
	Key       string
	SizeBytes int64
	SHA256Hex string
}

// DocumentStorage persists raw contract documents. Keys are opaque to
// callers; the contract record carries backend + key for later reads.
type DocumentStorage interface {
	Save(ctx context.Context, reader io.Reader, originalFilename string) (*StoredDocument, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}
