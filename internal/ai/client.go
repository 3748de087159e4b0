package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultBaseURL = "http://localhost:11434"

// ErrUnreachable marks transport-level failures talking to the model
// runtime. Callers surface it differently from an error the runtime itself
// returned.
var ErrUnreachable = errors.New("model runtime unreachable")

// ErrNoModels is returned when the runtime is up but has no models pulled.
var ErrNoModels = errors.New("no models installed")

// APIError is a non-2xx answer from the runtime: the runtime is reachable
// but rejected the request.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("model runtime error (%d): %s", e.StatusCode, e.Message)
}

// Client talks to an Ollama-compatible local model runtime.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Minute,
		},
	}
}

type GenerateRequest struct {
	Prompt string
	Model  string
	System string
}

// Fragment is one streamed piece of a completion. The fragment with Done set
// carries no content and terminates the stream. Err is set at most once,
// immediately before the channel closes.
type Fragment struct {
	Content string `json:"content,omitempty"`
	Done    bool   `json:"done"`
	Err     error  `json:"-"`
}

type Model struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modifiedAt"`
}

type generateWireRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	System string `json:"system,omitempty"`
	Stream bool   `json:"stream"`
}

type generateWireResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Generate starts a streaming completion. The returned channel yields
// content fragments and closes after the done marker. A nil error means the
// stream started; request-level failures are returned immediately.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (<-chan Fragment, error) {
	body, err := json.Marshal(generateWireRequest{
		Model:  req.Model,
		Prompt: req.Prompt,
		System: req.System,
		Stream: true,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &APIError{StatusCode: resp.StatusCode, Message: string(bytes.TrimSpace(respBody))}
	}

	ch := make(chan Fragment)
	go c.streamResponse(ctx, resp.Body, ch)
	return ch, nil
}

func (c *Client) streamResponse(ctx context.Context, body io.ReadCloser, ch chan<- Fragment) {
	defer body.Close()
	defer close(ch)

	decoder := json.NewDecoder(body)
	for {
		var resp generateWireResponse
		if err := decoder.Decode(&resp); err != nil {
			if err == io.EOF {
				return
			}
			if ctx.Err() != nil {
				err = ctx.Err()
			}
			emit(ctx, ch, Fragment{Err: err})
			return
		}

		if resp.Response != "" {
			if !emit(ctx, ch, Fragment{Content: resp.Response}) {
				return
			}
		}
		if resp.Done {
			emit(ctx, ch, Fragment{Done: true})
			return
		}
	}
}

// emit hands a fragment to the consumer unless the context is gone. Every
// send must go through here: a consumer that stops reading after canceling
// would otherwise pin this goroutine and the response body forever.
func emit(ctx context.Context, ch chan<- Fragment, f Fragment) bool {
	select {
	case ch <- f:
		return true
	case <-ctx.Done():
		return false
	}
}

// ListModels fetches the models installed in the runtime.
func (c *Client) ListModels(ctx context.Context) ([]Model, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, &APIError{StatusCode: resp.StatusCode, Message: string(bytes.TrimSpace(respBody))}
	}

	var result struct {
		Models []struct {
			Name       string    `json:"name"`
			Size       int64     `json:"size"`
			ModifiedAt time.Time `json:"modified_at"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode model list: %w", err)
	}

	models := make([]Model, len(result.Models))
	for i, m := range result.Models {
		models[i] = Model{Name: m.Name, Size: m.Size, ModifiedAt: m.ModifiedAt}
	}
	return models, nil
}

// Ping probes runtime reachability with a short deadline.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, Message: resp.Status}
	}
	return nil
}
