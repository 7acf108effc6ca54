package models

// Task represents a todo item as the backend returns it. The local task
// list is a projection of server state; during an in-flight optimistic
// mutation a Task may carry a client-synthesized ID until the server
// confirms the change.
type Task struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	IsCompleted bool    `json:"is_completed"`
	CreatedAt   string  `json:"created_at"`
	UserID      *string `json:"user_id,omitempty"`
}

// TaskCreate is the request body for POST /users/{userId}/tasks.
type TaskCreate struct {
	Title       string  `json:"title" validate:"required,max=500"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=5000"`
}

// TaskUpdate is the request body for PUT /users/{userId}/tasks/{taskId}.
// Nil fields are omitted so the backend only touches fields that are present.
type TaskUpdate struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	IsCompleted *bool   `json:"is_completed,omitempty"`
}
