// Package tasks maintains the authenticated user's task collection as an
// optimistically updated local projection of the remote store. Every
// mutation applies locally first and reverts entirely on failure; there is
// no partial reconciliation.
//
// Mutations are single-shot and unserialized: two overlapping mutations on
// the same task id are not coordinated, and the last response wins for
// list state.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/benvon/smart-todo-cli/internal/api"
	"github.com/benvon/smart-todo-cli/internal/models"
	"github.com/benvon/smart-todo-cli/internal/session"
	"github.com/benvon/smart-todo-cli/internal/validation"
)

// ErrNotLoggedIn is returned when an operation requires an authenticated user.
var ErrNotLoggedIn = errors.New("you must be logged in to manage tasks")

// Controller drives the task list for the current user.
type Controller struct {
	client  *api.Client
	session *session.Store
	log     *zap.Logger

	mu    sync.Mutex
	tasks []models.Task
}

// New creates a task list controller.
func New(client *api.Client, sess *session.Store, log *zap.Logger) *Controller {
	return &Controller{client: client, session: sess, log: log}
}

// Tasks returns a copy of the current local list.
func (c *Controller) Tasks() []models.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Task, len(c.tasks))
	copy(out, c.tasks)
	return out
}

// Fetch replaces the local list with server data. On failure the previous
// list is left untouched.
func (c *Controller) Fetch(ctx context.Context) error {
	user := c.session.User()
	if user == nil {
		return ErrNotLoggedIn
	}

	var fetched []models.Task
	if apiErr := c.client.Get(ctx, tasksPath(user.ID), &fetched); apiErr != nil {
		return errors.New(apiErr.Detail)
	}

	c.mu.Lock()
	c.tasks = fetched
	c.mu.Unlock()
	return nil
}

// Create prepends a synthetic task immediately, then issues the create
// request. On success the synthetic entry is replaced by the server's task;
// on failure it is removed.
func (c *Controller) Create(ctx context.Context, title, description string) (*models.Task, error) {
	user := c.session.User()
	if user == nil {
		return nil, ErrNotLoggedIn
	}

	payload := models.TaskCreate{Title: title}
	if description != "" {
		payload.Description = &description
	}
	if err := validation.Validate.Struct(payload); err != nil {
		return nil, errors.New(validation.Message(err))
	}

	// Temporary id; timestamps are unlikely to collide with server ids.
	tempID := time.Now().UnixMilli()
	optimistic := models.Task{
		ID:          tempID,
		Title:       title,
		Description: payload.Description,
		IsCompleted: false,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	c.mu.Lock()
	c.tasks = append([]models.Task{optimistic}, c.tasks...)
	c.mu.Unlock()

	var created models.Task
	if apiErr := c.client.Post(ctx, tasksPath(user.ID), payload, &created); apiErr != nil {
		c.removeByID(tempID)
		return nil, errors.New(apiErr.Detail)
	}

	c.mu.Lock()
	for i := range c.tasks {
		if c.tasks[i].ID == tempID {
			c.tasks[i] = created
			break
		}
	}
	c.mu.Unlock()
	return &created, nil
}

// Toggle flips a task's completion flag locally, then issues an update
// carrying only the completion field. On failure the flag is flipped back.
func (c *Controller) Toggle(ctx context.Context, id int64, completed bool) error {
	user := c.session.User()
	if user == nil {
		return ErrNotLoggedIn
	}

	c.setCompleted(id, completed)

	update := models.TaskUpdate{IsCompleted: &completed}
	if apiErr := c.client.Put(ctx, taskPath(user.ID, id), update, nil); apiErr != nil {
		c.setCompleted(id, !completed)
		return errors.New(apiErr.Detail)
	}
	return nil
}

// Edit applies a new title/description locally, then issues the update. On
// failure the previously held values are restored.
func (c *Controller) Edit(ctx context.Context, id int64, title, description string) error {
	user := c.session.User()
	if user == nil {
		return ErrNotLoggedIn
	}

	var desc *string
	if description != "" {
		desc = &description
	}

	// Capture current values before the optimistic write.
	var original *models.Task
	c.mu.Lock()
	for i := range c.tasks {
		if c.tasks[i].ID == id {
			captured := c.tasks[i]
			original = &captured
			c.tasks[i].Title = title
			c.tasks[i].Description = desc
			break
		}
	}
	c.mu.Unlock()

	update := models.TaskUpdate{Title: &title, Description: desc}
	if apiErr := c.client.Put(ctx, taskPath(user.ID, id), update, nil); apiErr != nil {
		if original != nil {
			c.mu.Lock()
			for i := range c.tasks {
				if c.tasks[i].ID == id {
					c.tasks[i] = *original
					break
				}
			}
			c.mu.Unlock()
		}
		return errors.New(apiErr.Detail)
	}
	return nil
}

// Delete removes the task locally, then issues the delete request. On
// failure the removed task is re-inserted at the end of the list.
func (c *Controller) Delete(ctx context.Context, id int64) error {
	user := c.session.User()
	if user == nil {
		return ErrNotLoggedIn
	}

	removed := c.removeByID(id)

	if apiErr := c.client.Delete(ctx, taskPath(user.ID, id), nil); apiErr != nil {
		if removed != nil {
			c.mu.Lock()
			c.tasks = append(c.tasks, *removed)
			c.mu.Unlock()
		}
		return errors.New(apiErr.Detail)
	}
	return nil
}

func (c *Controller) setCompleted(id int64, completed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.tasks {
		if c.tasks[i].ID == id {
			c.tasks[i].IsCompleted = completed
			return
		}
	}
	c.log.Debug("toggle target not in local list", zap.Int64("id", id))
}

// removeByID removes and returns the task with the given id, or nil.
func (c *Controller) removeByID(id int64) *models.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.tasks {
		if c.tasks[i].ID == id {
			removed := c.tasks[i]
			c.tasks = append(c.tasks[:i], c.tasks[i+1:]...)
			return &removed
		}
	}
	return nil
}

func tasksPath(userID string) string {
	return fmt.Sprintf("/users/%s/tasks", userID)
}

func taskPath(userID string, taskID int64) string {
	return fmt.Sprintf("/users/%s/tasks/%d", userID, taskID)
}
