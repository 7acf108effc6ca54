// Package chat drives the turn-based conversation with the backend
// assistant: bounded retry on transient failures, tool-call execution
// tracking for UI feedback, local persistence of the transcript, and a
// task-invalidation event when the assistant's tools mutate tasks.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/benvon/smart-todo-cli/internal/api"
	"github.com/benvon/smart-todo-cli/internal/events"
	"github.com/benvon/smart-todo-cli/internal/logger"
	"github.com/benvon/smart-todo-cli/internal/models"
	"github.com/benvon/smart-todo-cli/internal/session"
	"github.com/benvon/smart-todo-cli/internal/store"
)

const (
	// maxRetries is the number of additional attempts after the first.
	maxRetries = 2
	// retryDelay is the base delay unit; attempt N waits N * retryDelay.
	retryDelay = time.Second
	// maxInputLen caps user input, matching the backend's message limit.
	maxInputLen = 5000
	// defaultHistoryLimit is how many transcript messages are persisted.
	defaultHistoryLimit = 100
)

// taskMutatingTools are the assistant tools whose execution changes task
// state. A response containing at least one of them triggers exactly one
// task-invalidation event.
var taskMutatingTools = map[string]struct{}{
	"add_task":      {},
	"complete_task": {},
	"delete_task":   {},
	"update_task":   {},
}

// ToolExecution is the derived indicator shown while a send is in flight.
type ToolExecution struct {
	IsActive bool
	ToolName string
	Status   models.ToolCallStatus
}

// Controller drives a conversation for the current user. Only one send is
// expected to be in flight at a time; overlapping sends are not serialized
// and may interleave assistant messages (see package tests).
type Controller struct {
	client  *api.Client
	session *session.Store
	kv      store.Store
	bus     *events.Bus
	log     *zap.Logger

	// sleep is replaced in tests to observe retry delays.
	sleep func(ctx context.Context, d time.Duration) error

	mu             sync.Mutex
	messages       []models.Message
	conversationID int64
	toolExec       ToolExecution
	sending        bool
	lastErr        string
	historyLimit   int
}

// New creates a conversation controller and restores any persisted
// conversation id and transcript.
func New(client *api.Client, sess *session.Store, kv store.Store, bus *events.Bus, log *zap.Logger) *Controller {
	c := &Controller{
		client:       client,
		session:      sess,
		kv:           kv,
		bus:          bus,
		log:          log,
		sleep:        sleepContext,
		historyLimit: defaultHistoryLimit,
	}
	c.restore()
	return c
}

// SetHistoryLimit overrides how many messages are retained in persistence.
// Values below 1 keep the default.
func (c *Controller) SetHistoryLimit(n int) {
	if n < 1 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.historyLimit = n
}

// Messages returns a copy of the transcript.
func (c *Controller) Messages() []models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// ConversationID returns the active conversation id, or 0 if none.
func (c *Controller) ConversationID() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conversationID
}

// ToolExecution returns the current tool-execution indicator.
func (c *Controller) ToolExecution() ToolExecution {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.toolExec
}

// Sending reports whether a send is in flight.
func (c *Controller) Sending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sending
}

// Err returns the last user-facing error message, or "".
func (c *Controller) Err() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// ClearError resets the stored error message.
func (c *Controller) ClearError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastErr = ""
}

// SendMessage sends one user message to the assistant. The user message is
// appended to the transcript immediately and never rolled back. Transient
// failures (network, 5xx) are retried up to maxRetries times with linearly
// increasing delay; 400/401/403/429 stop immediately with a status-specific
// message. Empty input (after trimming) is rejected silently.
func (c *Controller) SendMessage(ctx context.Context, content string) error {
	user := c.session.User()
	if user == nil {
		return c.fail("You must be logged in to send messages.")
	}

	sanitized := sanitizeInput(content)
	if sanitized == "" {
		return nil
	}

	userMsg := models.Message{
		ID:        uuid.NewString(),
		Role:      models.MessageRoleUser,
		Content:   sanitized,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	c.mu.Lock()
	c.messages = append(c.messages, userMsg)
	c.lastErr = ""
	c.sending = true
	// Generic "thinking" indicator until the backend reports tool calls.
	c.toolExec = ToolExecution{IsActive: true, Status: models.ToolCallPending}
	convID := c.conversationID
	c.mu.Unlock()
	c.persistMessages()

	// The indicator clears on every exit path.
	defer c.finishSend()

	req := models.ChatRequest{Message: sanitized, ConversationID: convID}
	var lastDetail string
	for attempt := 0; ; attempt++ {
		var resp models.ChatResponse
		apiErr := c.client.Post(ctx, chatPath(user.ID), req, &resp)
		if apiErr == nil {
			c.handleResponse(&resp)
			return nil
		}

		switch apiErr.Status {
		case http.StatusUnauthorized:
			// The API client has already triggered the global logout.
			return c.fail("Session expired. Please log in again.")
		case http.StatusForbidden:
			return c.fail("Access denied. You do not have permission for this action.")
		case http.StatusBadRequest:
			return c.fail(orDefault(apiErr.Detail, "Invalid request. Please try again."))
		case http.StatusTooManyRequests:
			return c.fail("Too many requests. Please wait a moment before sending another message.")
		}
		if !apiErr.Temporary() {
			return c.fail(orDefault(apiErr.Detail, "An unexpected error occurred."))
		}

		if attempt >= maxRetries {
			detail := orDefault(apiErr.Detail, lastDetail)
			return c.fail(orDefault(detail, "Failed to send message. Please check your connection."))
		}
		lastDetail = apiErr.Detail

		delay := time.Duration(attempt+1) * retryDelay
		c.log.Debug("chat request failed, retrying",
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
			zap.String("error", logger.SanitizeErrorString(apiErr.Detail)))
		if err := c.sleep(ctx, delay); err != nil {
			return c.fail("Failed to send message. Please check your connection.")
		}
	}
}

// StartNewConversation clears the persisted conversation id and transcript
// and resets all in-memory state.
func (c *Controller) StartNewConversation() {
	if err := c.kv.Delete(store.KeyConversationID); err != nil {
		c.log.Warn("failed to clear persisted conversation id", zap.Error(err))
	}
	if err := c.kv.Delete(store.KeyChatMessages); err != nil {
		c.log.Warn("failed to clear persisted messages", zap.Error(err))
	}
	c.mu.Lock()
	c.messages = nil
	c.conversationID = 0
	c.lastErr = ""
	c.toolExec = ToolExecution{}
	c.mu.Unlock()
}

func (c *Controller) handleResponse(resp *models.ChatResponse) {
	c.mu.Lock()
	if resp.ConversationID != 0 && resp.ConversationID != c.conversationID {
		c.conversationID = resp.ConversationID
		if err := c.kv.Set(store.KeyConversationID, strconv.FormatInt(resp.ConversationID, 10)); err != nil {
			c.log.Warn("failed to persist conversation id", zap.Error(err))
		}
	}

	// Reflect whatever statuses the backend reported; completed calls end
	// up with an inactive indicator.
	if len(resp.ToolCalls) == 0 {
		c.toolExec = ToolExecution{}
	} else {
		for _, tc := range resp.ToolCalls {
			c.toolExec = ToolExecution{
				IsActive: tc.Status == models.ToolCallPending || tc.Status == models.ToolCallExecuting,
				ToolName: tc.ToolName,
				Status:   tc.Status,
			}
		}
	}

	assistantMsg := models.Message{
		ID:        uuid.NewString(),
		Role:      models.MessageRoleAssistant,
		Content:   resp.Response,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		ToolCalls: resp.ToolCalls,
	}
	c.messages = append(c.messages, assistantMsg)
	c.mu.Unlock()
	c.persistMessages()

	// At most one invalidation per response, regardless of how many
	// qualifying tool calls were returned.
	for _, tc := range resp.ToolCalls {
		if _, ok := taskMutatingTools[tc.ToolName]; ok {
			c.bus.Publish(events.TaskInvalidation{ToolName: tc.ToolName, Result: tc.Result})
			break
		}
	}
}

// restore loads the persisted conversation id and transcript. Corrupt
// persisted state is treated as absent.
func (c *Controller) restore() {
	if raw, err := c.kv.Get(store.KeyConversationID); err == nil {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
			c.conversationID = id
		}
	}
	if raw, err := c.kv.Get(store.KeyChatMessages); err == nil {
		var msgs []models.Message
		if err := json.Unmarshal([]byte(raw), &msgs); err != nil {
			c.log.Debug("discarding unreadable persisted transcript", zap.Error(err))
			return
		}
		c.messages = msgs
	}
}

// persistMessages writes the most recent historyLimit messages to the store.
func (c *Controller) persistMessages() {
	c.mu.Lock()
	limit := c.historyLimit
	msgs := c.messages
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	snapshot := make([]models.Message, len(msgs))
	copy(snapshot, msgs)
	c.mu.Unlock()

	raw, err := json.Marshal(snapshot)
	if err != nil {
		c.log.Warn("failed to encode transcript", zap.Error(err))
		return
	}
	if err := c.kv.Set(store.KeyChatMessages, string(raw)); err != nil {
		c.log.Warn("failed to persist transcript", zap.Error(err))
	}
}

func (c *Controller) finishSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sending = false
	if c.toolExec.IsActive {
		c.toolExec.IsActive = false
	}
}

func (c *Controller) fail(msg string) error {
	c.mu.Lock()
	c.lastErr = msg
	c.mu.Unlock()
	return errors.New(msg)
}

func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	if runes := []rune(s); len(runes) > maxInputLen {
		s = string(runes[:maxInputLen])
	}
	return s
}

func orDefault(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func chatPath(userID string) string {
	return fmt.Sprintf("/%s/chat", userID)
}

// FormatToolName renders a tool identifier for display: underscores become
// spaces and each word is capitalized ("add_task" -> "Add Task").
func FormatToolName(name string) string {
	words := strings.Split(strings.ReplaceAll(name, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		runes := []rune(w)
		words[i] = strings.ToUpper(string(runes[0])) + string(runes[1:])
	}
	return strings.Join(words, " ")
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
