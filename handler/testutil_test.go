package handler

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/clausetrack/backend/config"
	"github.com/clausetrack/backend/model"
	"github.com/clausetrack/backend/service"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router *gin.Engine
	store  *service.ContractStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := service.Connect(&config.DatabaseConfig{
		Type: "sqlite",
		DSN:  filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("Failed to connect test database: %v", err)
	}

	store := service.NewContractStore(db)
	registry := service.NewRegistry(store)
	seeds := []config.ClauseTypeSeed{
		{Name: "Confidentiality", Patterns: []config.PatternSeed{
			{Pattern: "confidential"},
		}},
		{Name: "Indemnity", Patterns: []config.PatternSeed{
			{Pattern: "indemnif"},
		}},
		{Name: "Termination", Patterns: []config.PatternSeed{
			{Pattern: `terminat(e|ion)`, IsRegex: true},
		}},
	}
	if err := registry.Seed(context.Background(), seeds); err != nil {
		t.Fatalf("Failed to seed clause types: %v", err)
	}

	storage, err := service.NewLocalStorage(&config.LocalConfig{BaseDir: t.TempDir()})
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	scanner := service.NewScanner(registry)
	lifecycle := service.NewLifecycle(store, registry, storage, scanner)
	matrix := service.NewMatrixEngine(store, registry)

	contractHandler := NewContractHandler(lifecycle, matrix, store, 1<<20)
	clauseTypeHandler := NewClauseTypeHandler(registry)
	healthHandler := NewHealthHandler(store)

	router := gin.New()
	router.GET("/health", healthHandler.Health)
	router.GET("/health/db", healthHandler.HealthDB)
	api := router.Group("/api")
	{
		api.POST("/contracts", contractHandler.Upload)
		api.GET("/contracts", contractHandler.List)
		api.GET("/contracts/:id", contractHandler.Get)
		api.GET("/contracts/:id/status", contractHandler.GetStatus)
		api.PATCH("/contracts/:id/clauses/:clauseTypeId", contractHandler.SetOverride)
		api.GET("/clause-types", clauseTypeHandler.List)
		api.POST("/clause-types", clauseTypeHandler.Create)
	}

	return &testServer{router: router, store: store}
}

func (s *testServer) do(t *testing.T, method, path string, body []byte, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
		req.Header.Set("Content-Type", contentType)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func multipartFile(t *testing.T, filename, content string) ([]byte, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile failed: %v", err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	mw.Close()
	return buf.Bytes(), mw.FormDataContentType()
}

// waitForTerminal polls until async processing lands the contract in a
// terminal status
func (s *testServer) waitForTerminal(t *testing.T, id uint) *model.Contract {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		contract, err := s.store.GetContract(context.Background(), id)
		if err != nil {
			t.Fatalf("GetContract failed: %v", err)
		}
		if model.IsTerminal(contract.ProcessingStatus) {
			return contract
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("Contract %d never reached a terminal status", id)
	return nil
}
