package client

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

	"portfolio-chat/internal/models"
)

var ErrRoomNotFound = errors.New("room not found")

// APIError is a non-2xx answer from the chat server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("chat server returned %d: %s", e.Status, e.Message)
}

// Client talks to the chat HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New builds a Client for the server at baseURL.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SendMessageInput is the body of a sendMessage action.
type SendMessageInput struct {
	Content   string `json:"content"`
	Username  string `json:"username"`
	UserEmail string `json:"userEmail,omitempty"`
	RoomID    string `json:"roomId,omitempty"`
}

type chatAction struct {
	Version int    `json:"version"`
	Action  string `json:"action"`
	Data    any    `json:"data"`
}

// ListRooms returns the active rooms.
func (c *Client) ListRooms(ctx context.Context) ([]models.RoomSummary, error) {
	var rooms []models.RoomSummary
	if err := c.do(ctx, http.MethodGet, "/rooms", nil, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

// SendMessage posts a message to a room.
func (c *Client) SendMessage(ctx context.Context, in SendMessageInput) (models.Message, error) {
	var msg models.Message
	err := c.do(ctx, http.MethodPost, "/chat", chatAction{Version: 1, Action: "sendMessage", Data: in}, &msg)
	return msg, err
}

// GetMessages fetches one page of a room's messages, strictly after since
// when given.
func (c *Client) GetMessages(ctx context.Context, roomID string, since *time.Time) ([]models.Message, error) {
	data := map[string]string{"roomId": roomID}
	if since != nil {
		data["since"] = since.UTC().Format(time.RFC3339Nano)
	}

	var msgs []models.Message
	if err := c.do(ctx, http.MethodPost, "/chat", chatAction{Version: 1, Action: "getMessages", Data: data}, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var errBody struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		if resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: %s", ErrRoomNotFound, errBody.Error)
		}
		return &APIError{Status: resp.StatusCode, Message: errBody.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
