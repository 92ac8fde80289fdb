package groupme

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
	"time"

	"dugout/internal/models"
)

// ErrNotConfigured marks calls into the optional message-management
// surface when no access token/group ID pair was configured.
var ErrNotConfigured = errors.New("groupme: message management not configured")

type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("groupme API error (%d): %s", e.Status, e.Body)
}

// Client posts messages via the bot endpoint. List and delete need the
// optional access token and group ID; without them those calls return
// ErrNotConfigured rather than attempting the request.
type Client struct {
	host        string
	botID       string
	accessToken string
	groupID     string
	httpClient  *http.Client
}

func NewClient(httpClient *http.Client, host, botID, accessToken, groupID string) *Client {
	if host == "" {
		host = "https://api.groupme.com/v3"
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		host:        strings.TrimRight(host, "/"),
		botID:       botID,
		accessToken: accessToken,
		groupID:     groupID,
		httpClient:  httpClient,
	}
}

// CanManageMessages reports whether list/delete are usable.
func (c *Client) CanManageMessages() bool {
	return c.accessToken != "" && c.groupID != ""
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body []byte) (int, []byte, error) {
	fullURL := c.host + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, respBody, nil
}

// Send posts a message to the group through the bot endpoint.
func (c *Client) Send(ctx context.Context, text string) error {
	payload, err := json.Marshal(map[string]string{
		"bot_id": c.botID,
		"text":   text,
	})
	if err != nil {
		return err
	}
	status, body, err := c.do(ctx, http.MethodPost, "/bots/post", nil, payload)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return &APIError{Status: status, Body: string(body)}
	}
	return nil
}

type messagesEnvelope struct {
	Response struct {
		Messages []models.MessageInfo `json:"messages"`
	} `json:"response"`
}

// ListMessages returns the most recent group messages, newest first.
func (c *Client) ListMessages(ctx context.Context, limit int) ([]models.MessageInfo, error) {
	if !c.CanManageMessages() {
		return nil, ErrNotConfigured
	}
	query := url.Values{}
	query.Set("token", c.accessToken)
	query.Set("limit", fmt.Sprintf("%d", limit))
	path := fmt.Sprintf("/groups/%s/messages", url.PathEscape(c.groupID))
	status, body, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, &APIError{Status: status, Body: string(body)}
	}
	var env messagesEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("parse messages response: %w", err)
	}
	return env.Response.Messages, nil
}

// DeleteMessage removes one message from the group conversation.
func (c *Client) DeleteMessage(ctx context.Context, messageID string) error {
	if !c.CanManageMessages() {
		return ErrNotConfigured
	}
	query := url.Values{}
	query.Set("token", c.accessToken)
	path := fmt.Sprintf("/conversations/%s/messages/%s",
		url.PathEscape(c.groupID), url.PathEscape(messageID))
	status, body, err := c.do(ctx, http.MethodDelete, path, query, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK && status != http.StatusNoContent {
		return &APIError{Status: status, Body: string(body)}
	}
	return nil
}
