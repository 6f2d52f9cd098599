package avatar

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultBaseURL    = "https://api.heygen.com"
	DefaultAvatarName = "Anna_public_3_20240108"

	TaskTypeTalk   = "talk"
	TaskTypeRepeat = "repeat"
	TaskModeSync   = "sync"
)

// ErrNotConfigured is returned when no HeyGen API key is set.
var ErrNotConfigured = errors.New("HeyGen API key is required")

// HeyGenClient proxies the HeyGen Streaming Avatar API so the browser never sees the key.
type HeyGenClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewHeyGenClient creates a new HeyGen streaming client
func NewHeyGenClient(apiKey, baseURL string) *HeyGenClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &HeyGenClient{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HeyGenClient) Enabled() bool {
	return c != nil && c.apiKey != ""
}

type Voice struct {
	Rate    float64 `json:"rate,omitempty"`
	Emotion string  `json:"emotion,omitempty"`
}

// SessionRequest configures a new streaming session.
type SessionRequest struct {
	Quality       string `json:"quality"`
	AvatarName    string `json:"avatar_name"`
	KnowledgeBase string `json:"knowledge_base,omitempty"`
	Voice         Voice  `json:"voice"`
	Language      string `json:"language"`
	Version       string `json:"version"`
}

// DefaultSessionRequest mirrors the widget's avatar: high quality, excited voice, English.
func DefaultSessionRequest() SessionRequest {
	return SessionRequest{
		Quality:    "high",
		AvatarName: DefaultAvatarName,
		Voice:      Voice{Rate: 1.5, Emotion: "Excited"},
		Language:   "en",
		Version:    "v2",
	}
}

// SessionInfo is what the browser needs to join the stream.
type SessionInfo struct {
	SessionID   string `json:"session_id"`
	URL         string `json:"url"`
	AccessToken string `json:"access_token"`
}

// TaskRequest makes the avatar speak.
type TaskRequest struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
	TaskType  string `json:"task_type"`
	TaskMode  string `json:"task_mode,omitempty"`
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// CreateToken issues a short-lived streaming token.
func (c *HeyGenClient) CreateToken(ctx context.Context) (string, error) {
	var data struct {
		Token string `json:"token"`
	}
	if err := c.post(ctx, "/v1/streaming.create_token", nil, &data); err != nil {
		return "", err
	}
	if data.Token == "" {
		return "", fmt.Errorf("heygen API returned an empty token")
	}
	return data.Token, nil
}

// NewSession allocates a streaming session.
func (c *HeyGenClient) NewSession(ctx context.Context, req SessionRequest) (*SessionInfo, error) {
	if req.AvatarName == "" {
		req.AvatarName = DefaultAvatarName
	}
	var info SessionInfo
	if err := c.post(ctx, "/v1/streaming.new", req, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// StartSession starts streaming for a session created by NewSession.
func (c *HeyGenClient) StartSession(ctx context.Context, sessionID string) error {
	return c.post(ctx, "/v1/streaming.start", sessionBody(sessionID), nil)
}

// Speak sends text for the avatar to say. Empty task type defaults to "talk".
func (c *HeyGenClient) Speak(ctx context.Context, task TaskRequest) error {
	if strings.TrimSpace(task.Text) == "" {
		return fmt.Errorf("text is required")
	}
	if task.TaskType == "" {
		task.TaskType = TaskTypeTalk
	}
	if task.TaskMode == "" {
		task.TaskMode = TaskModeSync
	}
	return c.post(ctx, "/v1/streaming.task", task, nil)
}

// Interrupt stops the current utterance.
func (c *HeyGenClient) Interrupt(ctx context.Context, sessionID string) error {
	return c.post(ctx, "/v1/streaming.interrupt", sessionBody(sessionID), nil)
}

// StopSession closes the stream and frees the HeyGen session.
func (c *HeyGenClient) StopSession(ctx context.Context, sessionID string) error {
	return c.post(ctx, "/v1/streaming.stop", sessionBody(sessionID), nil)
}

func sessionBody(id string) map[string]string {
	return map[string]string{"session_id": id}
}

func (c *HeyGenClient) post(ctx context.Context, path string, body, out interface{}) error {
	if !c.Enabled() {
		return ErrNotConfigured
	}

	var payload io.Reader = http.NoBody
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		payload = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, payload)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call heygen: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("heygen API error (status %d): %s", resp.StatusCode, string(respBody))
	}
	if out == nil {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return fmt.Errorf("heygen API error: %s", env.Message)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}
