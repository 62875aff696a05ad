// Package client is a Go SDK for the vibeNotes REST API together with a
// Thread type that keeps a locally ordered, optimistically updated view of a
// note's responses in sync with the server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"vibenotes-be/internal/dto"
	"vibenotes-be/internal/pkg/apperr"
)

// APIError is a non-2xx reply decoded from the server envelope.
type APIError struct {
	Status  int
	Kind    apperr.Kind
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("vibenotes api error (status %d, %s): %s", e.Status, e.Kind, e.Message)
}

// IsKind reports whether err is an *APIError of the given kind.
func IsKind(err error, kind apperr.Kind) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Kind    string          `json:"kind"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

func WithToken(token string) Option {
	return func(cl *Client) { cl.token = token }
}

// New builds a client for the API rooted at baseURL, e.g. http://localhost:3000/api.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Register creates an account and keeps the issued token.
func (c *Client) Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error) {
	var res dto.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", req, &res); err != nil {
		return nil, err
	}
	c.SetToken(res.Token)
	return &res, nil
}

// Login exchanges credentials for a token and keeps it for later calls.
func (c *Client) Login(ctx context.Context, username, password string) (*dto.AuthResponse, error) {
	var res dto.AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", dto.LoginRequest{Username: username, Password: password}, &res)
	if err != nil {
		return nil, err
	}
	c.SetToken(res.Token)
	return &res, nil
}

func (c *Client) CreateNote(ctx context.Context, req dto.CreateNoteRequest) (*dto.NoteResponse, error) {
	var note dto.NoteResponse
	if err := c.do(ctx, http.MethodPost, "/notes", req, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

func (c *Client) GetNote(ctx context.Context, noteID string) (*dto.NoteResponse, error) {
	var note dto.NoteResponse
	if err := c.do(ctx, http.MethodGet, notePath(noteID), nil, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

func (c *Client) AddResponse(ctx context.Context, noteID string, req dto.AddResponseRequest) (*dto.AddResponseResult, error) {
	var res dto.AddResponseResult
	if err := c.do(ctx, http.MethodPost, notePath(noteID)+"/response", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) PatchResponse(ctx context.Context, noteID string, req dto.PatchResponseRequest) (*dto.PatchResponseResult, error) {
	var res dto.PatchResponseResult
	if err := c.do(ctx, http.MethodPatch, notePath(noteID)+"/response", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func notePath(noteID string) string {
	return "/notes/" + url.PathEscape(noteID)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.bearer(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var env envelope
	decodeErr := json.Unmarshal(bodyBytes, &env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Kind: kindForStatus(resp.StatusCode)}
		if decodeErr == nil {
			if env.Kind != "" {
				apiErr.Kind = apperr.Kind(env.Kind)
			}
			apiErr.Message = env.Message
		} else {
			apiErr.Message = strings.TrimSpace(string(bodyBytes))
		}
		return apiErr
	}

	if decodeErr != nil {
		return fmt.Errorf("failed to decode response: %w", decodeErr)
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}

// kindForStatus is used when the body is not an envelope (proxies, fiber defaults).
func kindForStatus(status int) apperr.Kind {
	switch status {
	case http.StatusBadRequest:
		return apperr.KindValidation
	case http.StatusUnauthorized:
		return apperr.KindNotAuthenticated
	case http.StatusForbidden:
		return apperr.KindForbidden
	case http.StatusNotFound:
		return apperr.KindNotFound
	case http.StatusConflict:
		return apperr.KindConflict
	default:
		return apperr.KindInternal
	}
}
