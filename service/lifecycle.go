package service

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/clausetrack/backend/model"
	"gorm.io/gorm"
)

// AllowedExtensions are the upload file types accepted at the boundary
var AllowedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
}

// headSniffBytes is how much of the upload is inspected for binary content
// and encoding before it is streamed to storage.
const headSniffBytes = 64 * 1024

// Lifecycle owns contract creation and the processing state machine:
// uploaded -> processing -> processed | failed. All transitions go through
// conditional status updates so concurrent workers cannot double-complete a
// contract or resurrect a terminal one.
type Lifecycle struct {
	store    *ContractStore
	registry *Registry
	storage  DocumentStorage
	detector Detector
}

func NewLifecycle(store *ContractStore, registry *Registry, storage DocumentStorage, detector Detector) *Lifecycle {
	return &Lifecycle{
		store:    store,
		registry: registry,
		storage:  storage,
		detector: detector,
	}
}

// Submit validates and stores an uploaded document and creates its contract
// record in the uploaded status.
func (l *Lifecycle) Submit(ctx context.Context, filename string, content io.Reader) (*model.Contract, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return nil, validationError("filename is required")
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !AllowedExtensions[ext] {
		return nil, validationError("unsupported file type %q, allowed: .txt, .md, .markdown", ext)
	}

	head := make([]byte, headSniffBytes)
	n, err := io.ReadFull(content, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, err
	}
	head = head[:n]

	if len(head) == 0 {
		return nil, validationError("document is empty")
	}
	if err := checkTextContent(head, n == headSniffBytes); err != nil {
		return nil, err
	}

	stored, err := l.storage.Save(ctx, io.MultiReader(bytes.NewReader(head), content), filename)
	if err != nil {
		return nil, err
	}

	contract := &model.Contract{
		OriginalFilename: filename,
		StorageBackend:   stored.Backend,
		StorageKey:       stored.Key,
		SizeBytes:        stored.SizeBytes,
		SHA256Hex:        stored.SHA256Hex,
		ProcessingStatus: model.StatusUploaded,
	}
	if err := l.store.CreateContract(ctx, contract); err != nil {
		return nil, err
	}

	slog.Info("contract submitted",
		"contract_id", contract.ID,
		"filename", filename,
		"size_bytes", stored.SizeBytes,
	)
	return contract, nil
}

// checkTextContent rejects binary and non-UTF-8 uploads based on the sniffed
// head. When the head was truncated, up to 3 trailing bytes may belong to a
// rune that was cut mid-sequence, so they are excluded from the check.
func checkTextContent(head []byte, truncated bool) error {
	for _, b := range head {
		if b == 0 {
			return validationError("binary file rejected, upload UTF-8 text or markdown")
		}
	}

	check := head
	if truncated {
		for i := 0; i < 3 && len(check) > 0; i++ {
			if utf8.Valid(check) {
				break
			}
			check = check[:len(check)-1]
		}
	}
	if !utf8.Valid(check) {
		return validationError("invalid encoding, upload UTF-8 text or markdown")
	}
	return nil
}

// BeginProcessing moves a contract from uploaded to processing. The
// conditional update doubles as the idempotency guard: a contract already
// claimed by another worker fails with an invalid transition.
func (l *Lifecycle) BeginProcessing(ctx context.Context, id uint) error {
	matched, err := l.store.UpdateStatusIf(ctx, id, model.StatusUploaded, model.StatusProcessing, nil, nil)
	if err != nil {
		return err
	}
	if !matched {
		return l.transitionConflict(ctx, id, model.StatusUploaded)
	}
	return nil
}

// CompleteProcessing moves a contract from processing to processed and writes
// one detection row per clause type in the catalog, in a single transaction.
// Clause types absent from the detection set are recorded as not detected.
func (l *Lifecycle) CompleteProcessing(ctx context.Context, id uint, detectionSet map[uint]bool) error {
	types, err := l.registry.All(ctx)
	if err != nil {
		return err
	}
	detected := make(map[uint]bool, len(types))
	for _, ct := range types {
		detected[ct.ID] = detectionSet[ct.ID]
	}

	now := time.Now()
	err = l.store.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txStore := NewContractStore(tx)
		matched, err := txStore.UpdateStatusIf(ctx, id, model.StatusProcessing, model.StatusProcessed, &now, nil)
		if err != nil {
			return err
		}
		if !matched {
			return l.transitionConflict(ctx, id, model.StatusProcessing)
		}
		return txStore.PutDetections(ctx, id, detected)
	})
	return err
}

// FailProcessing moves a contract from processing to failed, recording the
// failure message. Failed is terminal; there is no retry in place.
func (l *Lifecycle) FailProcessing(ctx context.Context, id uint, message string) error {
	now := time.Now()
	matched, err := l.store.UpdateStatusIf(ctx, id, model.StatusProcessing, model.StatusFailed, &now, &message)
	if err != nil {
		return err
	}
	if !matched {
		return l.transitionConflict(ctx, id, model.StatusProcessing)
	}
	return nil
}

// Process runs the full detection pipeline for an uploaded contract. Any
// engine failure lands the contract in failed; the engine is never retried
// here.
func (l *Lifecycle) Process(ctx context.Context, id uint) error {
	if err := l.BeginProcessing(ctx, id); err != nil {
		return err
	}

	text, err := l.readDocument(ctx, id)
	if err != nil {
		slog.Error("failed to read stored document", "contract_id", id, "error", err)
		return l.FailProcessing(ctx, id, "failed to read stored document: "+err.Error())
	}

	detectionSet, err := l.detector.Detect(ctx, text)
	if err != nil {
		slog.Error("detection failed", "contract_id", id, "error", err)
		if failErr := l.FailProcessing(ctx, id, err.Error()); failErr != nil {
			return failErr
		}
		return detectionFailure("detection engine failed", err)
	}

	if err := l.CompleteProcessing(ctx, id, detectionSet); err != nil {
		return err
	}

	slog.Info("contract processed", "contract_id", id, "detected", len(detectionSet))
	return nil
}

func (l *Lifecycle) readDocument(ctx context.Context, id uint) (string, error) {
	contract, err := l.store.GetContract(ctx, id)
	if err != nil {
		return "", err
	}
	r, err := l.storage.Open(ctx, contract.StorageKey)
	if err != nil {
		return "", err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// transitionConflict turns a failed conditional update into the right error:
// not found when the contract doesn't exist, invalid transition otherwise.
func (l *Lifecycle) transitionConflict(ctx context.Context, id uint, required string) error {
	contract, err := l.store.GetContract(ctx, id)
	if err != nil {
		return err
	}
	return invalidTransitionError("contract %d is %s, expected %s", id, contract.ProcessingStatus, required)
}
