package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

var userUpdateKeys = []string{"name", "email", "password", "age"}

// AccountService implements profile, avatar and account deletion use cases.
type AccountService struct {
	users  ports.UserRepository
	tasks  ports.TaskRepository
	tx     ports.Transactor
	cost   int
	logger zerolog.Logger
}

func NewAccountService(users ports.UserRepository, tasks ports.TaskRepository, tx ports.Transactor, logger zerolog.Logger) *AccountService {
	return &AccountService{
		users:  users,
		tasks:  tasks,
		tx:     tx,
		cost:   bcrypt.DefaultCost,
		logger: logger,
	}
}

// Update applies a partial profile update. Supplied fields go through the
// registration rules and a new password is hashed before it is stored.
func (s *AccountService) Update(ctx context.Context, user *domain.User, patch ports.Patch) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "AccountService.Update")
	defer span.End()

	if err := checkKeys(patch, userUpdateKeys...); err != nil {
		return nil, err
	}

	changes, err := s.profileChanges(patch)
	if err != nil {
		return nil, err
	}
	if changes.Empty() {
		return user, nil
	}

	updated, err := s.users.Update(ctx, user.ID, changes)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", user.ID).Msg("profile updated")
	return updated, nil
}

func (s *AccountService) profileChanges(patch ports.Patch) (domain.UserChanges, error) {
	var changes domain.UserChanges

	name, err := patchString(patch, "name")
	if err != nil {
		return changes, err
	}
	if name != nil {
		n, err := validateName(*name)
		if err != nil {
			return changes, err
		}
		changes.Name = &n
	}

	email, err := patchString(patch, "email")
	if err != nil {
		return changes, err
	}
	if email != nil {
		e, err := validateEmail(*email)
		if err != nil {
			return changes, err
		}
		changes.Email = &e
	}

	password, err := patchString(patch, "password")
	if err != nil {
		return changes, err
	}
	if password != nil {
		p, err := validatePassword(*password)
		if err != nil {
			return changes, err
		}
		hash, err := hashPassword(p, s.cost)
		if err != nil {
			return changes, err
		}
		changes.PasswordHash = &hash
	}

	age, err := patchInt(patch, "age")
	if err != nil {
		return changes, err
	}
	if age != nil {
		if err := validateAge(*age); err != nil {
			return changes, err
		}
		changes.Age = age
	}

	return changes, nil
}

// SetAvatar normalises data and stores it as the user's avatar.
func (s *AccountService) SetAvatar(ctx context.Context, user *domain.User, data []byte) error {
	ctx, span := tracer.Start(ctx, "AccountService.SetAvatar")
	defer span.End()

	avatar, err := normalizeAvatar(data)
	if err != nil {
		return err
	}
	if err := s.users.SetAvatar(ctx, user.ID, avatar); err != nil {
		return err
	}
	user.Avatar = avatar
	return nil
}

// ClearAvatar removes the user's avatar.
func (s *AccountService) ClearAvatar(ctx context.Context, user *domain.User) error {
	ctx, span := tracer.Start(ctx, "AccountService.ClearAvatar")
	defer span.End()

	if err := s.users.ClearAvatar(ctx, user.ID); err != nil {
		return err
	}
	user.Avatar = nil
	return nil
}

// Delete removes every task owned by user and then the user record, inside a
// single transaction.
func (s *AccountService) Delete(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "AccountService.Delete")
	defer span.End()

	var removed int64
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		n, err := s.tasks.DeleteByOwner(txCtx, user.ID)
		if err != nil {
			return fmt.Errorf("delete tasks: %w", err)
		}
		removed = n
		if err := s.users.Delete(txCtx, user.ID); err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("account deletion failed")
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Int64("tasks_removed", removed).Msg("account deleted")
	return user, nil
}

// Avatar returns the stored avatar of userID.
func (s *AccountService) Avatar(ctx context.Context, userID string) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "AccountService.Avatar")
	defer span.End()

	avatar, err := s.users.FindAvatar(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrAvatarNotFound
		}
		return nil, err
	}
	if len(avatar) == 0 {
		return nil, domain.ErrAvatarNotFound
	}
	return avatar, nil
}
