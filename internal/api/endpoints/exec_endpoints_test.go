package endpoints

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"

	"codestudio-backend/internal/api"
	"codestudio-backend/internal/exec"
)

func setupExecHandler(t *testing.T) http.Handler {
	t.Helper()

	runner := exec.NewRunner(5000)
	server, _ := newTestServer(t, api.Deps{Runner: runner})
	execEndpoints := NewExecEndpoints(runner)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/exec/run", server.MakeHTTPHandleFunc(execEndpoints.Run))
	mux.HandleFunc("/api/v1/exec/languages", server.MakeHTTPHandleFunc(execEndpoints.Languages))
	return mux
}

func TestExecRunEndpoint(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("bash not available on windows")
	}
	handler := setupExecHandler(t)

	body, _ := json.Marshal(runRequest{SourceCode: "echo hi", LanguageID: "bash"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/exec/run", bytes.NewReader(body))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	var result exec.Result
	if err := json.Unmarshal(res.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.Stdout != "hi\n" {
		t.Fatalf("unexpected stdout %q", result.Stdout)
	}
	if result.ExitCode != 0 || result.TimedOut {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestExecRunUnknownLanguage(t *testing.T) {
	handler := setupExecHandler(t)

	body, _ := json.Marshal(runRequest{SourceCode: "x", LanguageID: "cobol"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/exec/run", bytes.NewReader(body))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", res.Code, res.Body.String())
	}
}

func TestExecRunValidation(t *testing.T) {
	handler := setupExecHandler(t)

	body, _ := json.Marshal(runRequest{LanguageID: "bash"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/exec/run", bytes.NewReader(body))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing sourceCode, got %d", res.Code)
	}
}

func TestExecLanguagesEndpoint(t *testing.T) {
	handler := setupExecHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/exec/languages", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	var resp languagesResponse
	if err := json.Unmarshal(res.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Languages) == 0 {
		t.Fatal("expected at least one language")
	}
}
