package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultAPIBase is the public Bot API endpoint.
const DefaultAPIBase = "https://api.telegram.org"

// ParseModeHTML selects Telegram's HTML entity parser.
const ParseModeHTML = "HTML"

// Update is the subset of a Bot API update the bot consumes.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message,omitempty"`
}

type Message struct {
	MessageID int64  `json:"message_id"`
	Chat      Chat   `json:"chat"`
	From      *User  `json:"from,omitempty"`
	Text      string `json:"text,omitempty"`
}

type Chat struct {
	ID int64 `json:"id"`
}

type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
}

// DisplayName returns the username, first name or "User".
func (u *User) DisplayName() string {
	switch {
	case u == nil:
		return "User"
	case u.Username != "":
		return u.Username
	case u.FirstName != "":
		return u.FirstName
	}
	return "User"
}

// APIError is a Bot API response with ok=false.
type APIError struct {
	Method      string
	Code        int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram %s: %d %s", e.Method, e.Code, e.Description)
}

// IsNotModified reports an edit that left the message unchanged.
func IsNotModified(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && strings.Contains(apiErr.Description, "message is not modified")
}

// isEntityError reports a message the HTML parser rejected.
func isEntityError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && strings.Contains(apiErr.Description, "can't parse entities")
}

type envelope struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	ErrorCode   int             `json:"error_code"`
	Description string          `json:"description"`
}

// API is a minimal Bot API client.
type API struct {
	client *resty.Client
	token  string
}

// NewAPI builds a client for token. A nil httpClient uses resty's default.
func NewAPI(token, baseURL string, httpClient *http.Client) *API {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultAPIBase
	}
	var client *resty.Client
	if httpClient != nil {
		client = resty.NewWithClient(httpClient)
	} else {
		client = resty.New()
	}
	client.SetBaseURL(strings.TrimRight(baseURL, "/") + "/bot" + token)
	client.SetHeader("Content-Type", "application/json")
	return &API{client: client, token: token}
}

// GetUpdates long-polls for updates after offset.
func (a *API) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error) {
	seconds := int(timeout / time.Second)
	ctx, cancel := context.WithTimeout(ctx, timeout+10*time.Second)
	defer cancel()
	var updates []Update
	err := a.call(ctx, "getUpdates", map[string]any{
		"offset":          offset,
		"timeout":         seconds,
		"allowed_updates": []string{"message"},
	}, &updates)
	return updates, err
}

// SendMessage posts text to a chat. parseMode may be empty.
func (a *API) SendMessage(ctx context.Context, chatID int64, text, parseMode string) (Message, error) {
	body := map[string]any{"chat_id": chatID, "text": text}
	if parseMode != "" {
		body["parse_mode"] = parseMode
	}
	var message Message
	err := a.call(ctx, "sendMessage", body, &message)
	return message, err
}

// EditMessageText replaces the text of an earlier message.
func (a *API) EditMessageText(ctx context.Context, chatID, messageID int64, text, parseMode string) error {
	body := map[string]any{"chat_id": chatID, "message_id": messageID, "text": text}
	if parseMode != "" {
		body["parse_mode"] = parseMode
	}
	return a.call(ctx, "editMessageText", body, nil)
}

func (a *API) call(ctx context.Context, method string, body any, out any) error {
	resp, err := a.client.R().
		SetContext(ctx).
		SetBody(body).
		Post("/" + method)
	if err != nil {
		return fmt.Errorf("telegram %s: %w", method, a.redact(err))
	}
	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return fmt.Errorf("telegram %s: decode response (status %d): %w", method, resp.StatusCode(), err)
	}
	if !env.OK {
		code := env.ErrorCode
		if code == 0 {
			code = resp.StatusCode()
		}
		return &APIError{Method: method, Code: code, Description: env.Description}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return fmt.Errorf("telegram %s: decode result: %w", method, err)
	}
	return nil
}

// redact keeps the bot token out of error messages, which embed the URL.
func (a *API) redact(err error) error {
	if a.token == "" {
		return err
	}
	return &redactedError{err: err, token: a.token}
}

// redactedError masks the token in Error and still unwraps to the cause.
type redactedError struct {
	err   error
	token string
}

func (e *redactedError) Error() string {
	return strings.ReplaceAll(e.err.Error(), e.token, "<token>")
}

func (e *redactedError) Unwrap() error { return e.err }
