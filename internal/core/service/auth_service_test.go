package service

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

func newTestAuthService(repo *stubUserRepo) *AuthService {
	svc := NewAuthService(repo, nopLogger)
	svc.cost = bcrypt.MinCost
	return svc
}

func intPtr(n int) *int { return &n }

func TestAuthService_Register_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo)

	user, err := svc.Register(context.Background(), ports.RegisterInput{
		Name:     "  A ",
		Email:    " a@x.com ",
		Password: "secret1",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.ID == "" {
		t.Fatalf("expected an id")
	}
	if user.Name != "A" || user.Email != "a@x.com" {
		t.Fatalf("expected trimmed fields, got %q %q", user.Name, user.Email)
	}
	if user.Age != 0 {
		t.Fatalf("expected default age 0, got %d", user.Age)
	}

	stored := repo.users[user.ID]
	if stored.PasswordHash == "secret1" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret1")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input ports.RegisterInput
		field string
	}{
		{"blank name", ports.RegisterInput{Name: " ", Email: "a@x.com", Password: "secret1"}, "name"},
		{"malformed email", ports.RegisterInput{Name: "A", Email: "not-an-email", Password: "secret1"}, "email"},
		{"short password", ports.RegisterInput{Name: "A", Email: "a@x.com", Password: "abc"}, "password"},
		{"password word", ports.RegisterInput{Name: "A", Email: "a@x.com", Password: "mypassword1"}, "password"},
		{"negative age", ports.RegisterInput{Name: "A", Email: "a@x.com", Password: "secret1", Age: intPtr(-1)}, "age"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newStubUserRepo()
			svc := newTestAuthService(repo)

			_, err := svc.Register(context.Background(), tt.input)
			var ve *domain.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Field != tt.field {
				t.Fatalf("expected field %q, got %q", tt.field, ve.Field)
			}
			if len(repo.users) != 0 {
				t.Fatalf("nothing should be stored on validation failure")
			}
		})
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo)

	in := ports.RegisterInput{Name: "A", Email: "a@x.com", Password: "secret1"}
	if _, err := svc.Register(context.Background(), in); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	_, err := svc.Register(context.Background(), in)
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	if !domain.IsValidation(err) {
		t.Fatalf("duplicate email must be a validation error")
	}
}

func TestAuthService_Authenticate(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo)

	registered, err := svc.Register(context.Background(), ports.RegisterInput{Name: "Carol", Email: "carol@example.com", Password: "s3cret!", Age: intPtr(30)})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	user, err := svc.Authenticate(context.Background(), "carol@example.com", "s3cret!")
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if user.ID != registered.ID {
		t.Fatalf("unexpected user: %+v", user)
	}

	if _, err := svc.Authenticate(context.Background(), "carol@example.com", "wrong-pass"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for bad password, got %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "ghost@example.com", "s3cret!"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "", ""); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for empty input, got %v", err)
	}
}
