package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/clausetrack/backend/config"
	"github.com/google/uuid"
)

// LocalStorage stores documents on the local filesystem under uuid keys
type LocalStorage struct {
	baseDir string
}

func NewLocalStorage(cfg *config.LocalConfig) (*LocalStorage, error) {
	if err := os.MkdirAll(cfg.BaseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStorage{baseDir: cfg.BaseDir}, nil
}

func (s *LocalStorage) Save(ctx context.Context, reader io.Reader, originalFilename string) (*StoredDocument, error) {
	ext := strings.ToLower(filepath.Ext(originalFilename))
	if len(ext) > 10 {
		ext = ext[:10] // guard weirdly long extensions
	}
	key := strings.ReplaceAll(uuid.New().String(), "-", "") + ext

	dest := filepath.Join(s.baseDir, key)
	out, err := os.Create(dest)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer out.Close()

	sha := sha256.New()
	size, err := io.Copy(io.MultiWriter(out, sha), reader)
	if err != nil {
		os.Remove(dest)
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	return &StoredDocument{
		Backend:   "local",
		Key:       key,
		SizeBytes: size,
		SHA256Hex: hex.EncodeToString(sha.Sum(nil)),
	}, nil
}

func (s *LocalStorage) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	// Keys are generated server-side, but refuse anything path-like anyway
	if strings.ContainsAny(key, "/\\") || strings.Contains(key, "..") {
		return nil, fmt.Errorf("invalid storage key: %q", key)
	}
	f, err := os.Open(filepath.Join(s.baseDir, key))
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	return f, nil
}
