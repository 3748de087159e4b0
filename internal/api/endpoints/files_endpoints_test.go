package endpoints

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"codestudio-backend/internal/api"
	"codestudio-backend/internal/config"
	"codestudio-backend/internal/queue"
	"codestudio-backend/internal/workspace"
)

// Each APIServer registers metrics labelled by listen address, so every test
// server needs a distinct one.
var testAddrCounter int64

func newTestServer(t *testing.T, deps api.Deps) (*api.APIServer, *queue.RequestQueueManager) {
	t.Helper()
	if deps.Config == nil {
		deps.Config = &config.Config{
			AllowedOrigins: []string{"*"},
		}
	}
	queueManager := queue.NewRequestQueueManager(10, 1)
	t.Cleanup(queueManager.Shutdown)
	addr := fmt.Sprintf(":%d", 20000+atomic.AddInt64(&testAddrCounter, 1))
	return api.NewAPIServer(addr, queueManager, deps), queueManager
}

func setupFilesHandler(t *testing.T) http.Handler {
	t.Helper()

	svc, err := workspace.New(t.TempDir())
	if err != nil {
		t.Fatalf("workspace: %v", err)
	}

	server, _ := newTestServer(t, api.Deps{Workspace: svc})
	filesEndpoints := NewFilesEndpoints(svc, nil)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/files/tree", server.MakeHTTPHandleFunc(filesEndpoints.Tree))
	mux.HandleFunc("/api/v1/files/file", server.MakeHTTPHandleFunc(filesEndpoints.File))
	mux.HandleFunc("/api/v1/files/folder", server.MakeHTTPHandleFunc(filesEndpoints.Folder))
	return mux
}

func TestFileWriteReadDelete(t *testing.T) {
	handler := setupFilesHandler(t)

	body, _ := json.Marshal(writeFileRequest{Path: "src/main.py", Content: "print('hi')"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/files/file", bytes.NewReader(body))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("write: expected 200, got %d: %s", res.Code, res.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/files/file?path=src/main.py", nil)
	res = httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("read: expected 200, got %d: %s", res.Code, res.Body.String())
	}
	var content fileContentResponse
	if err := json.Unmarshal(res.Body.Bytes(), &content); err != nil {
		t.Fatalf("decode read response: %v", err)
	}
	if content.Content != "print('hi')" {
		t.Fatalf("unexpected content %q", content.Content)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/files/file?path=src/main.py", nil)
	res = httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d: %s", res.Code, res.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/files/file?path=src/main.py", nil)
	res = httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusNotFound {
		t.Fatalf("read after delete: expected 404, got %d", res.Code)
	}
}

func TestFileTraversalRejected(t *testing.T) {
	handler := setupFilesHandler(t)

	body, _ := json.Marshal(writeFileRequest{Path: "../escape.txt", Content: "x"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/files/file", bytes.NewReader(body))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", res.Code, res.Body.String())
	}
}

func TestTreeEndpoint(t *testing.T) {
	handler := setupFilesHandler(t)

	for _, p := range []string{"main.go", "lib/util.go"} {
		body, _ := json.Marshal(writeFileRequest{Path: p, Content: "x"})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/files/file", bytes.NewReader(body))
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, req)
		if res.Code != http.StatusOK {
			t.Fatalf("write %s: got %d", p, res.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/files/tree", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("tree: expected 200, got %d: %s", res.Code, res.Body.String())
	}

	var tree workspace.Node
	if err := json.Unmarshal(res.Body.Bytes(), &tree); err != nil {
		t.Fatalf("decode tree: %v", err)
	}
	if len(tree.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(tree.Children))
	}
	// Folders sort before files.
	if tree.Children[0].Name != "lib" || tree.Children[1].Name != "main.go" {
		t.Fatalf("unexpected order: %s, %s", tree.Children[0].Name, tree.Children[1].Name)
	}
}

func TestMkdirEndpoint(t *testing.T) {
	handler := setupFilesHandler(t)

	body, _ := json.Marshal(mkdirRequest{Path: "pkg/sub"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/files/folder", bytes.NewReader(body))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusCreated {
		t.Fatalf("mkdir: expected 201, got %d: %s", res.Code, res.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/files/tree?path=pkg", nil)
	res = httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("tree after mkdir: expected 200, got %d", res.Code)
	}
}

func TestFileMethodNotAllowed(t *testing.T) {
	handler := setupFilesHandler(t)

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/files/tree", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", res.Code)
	}
}
