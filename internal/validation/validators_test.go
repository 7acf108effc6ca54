package validation

import (
	"errors"
	"testing"
)

type loginInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
}

func TestMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input loginInput
		want  string
	}{
		{
			name:  "missing email",
			input: loginInput{Password: "password123"},
			want:  "email is required",
		},
		{
			name:  "malformed email",
			input: loginInput{Email: "not-an-email", Password: "password123"},
			want:  "email address is not valid",
		},
		{
			name:  "short password",
			input: loginInput{Email: "a@example.com", Password: "short"},
			want:  "password must be at least 8 characters",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := Validate.Struct(tt.input)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if got := Message(err); got != tt.want {
				t.Errorf("Message() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMessageWithNonValidationError(t *testing.T) {
	t.Parallel()

	if got := Message(errors.New("boom")); got != "invalid input" {
		t.Errorf("Message() = %q, want %q", got, "invalid input")
	}
}

func TestValidInputPasses(t *testing.T) {
	t.Parallel()

	if err := Validate.Struct(loginInput{Email: "a@example.com", Password: "password123"}); err != nil {
		t.Errorf("Struct() error = %v, want nil", err)
	}
}
