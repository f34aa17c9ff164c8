package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/spec-kit/user-management/internal/api/dto"
	"github.com/spec-kit/user-management/internal/auth"
	"github.com/spec-kit/user-management/internal/cache"
	"github.com/spec-kit/user-management/internal/config"
	"github.com/spec-kit/user-management/internal/domain"
	"github.com/spec-kit/user-management/internal/events"
	"github.com/spec-kit/user-management/internal/repository"
	apperrors "github.com/spec-kit/user-management/pkg/util"
)

const uniqueViolationCode = "23505"

// UserService owns the user lifecycle: uniqueness rules, not-found
// semantics, partial updates and the entity/DTO boundary.
type UserService struct {
	users      repository.UserRepository
	cache      *cache.UserCache
	dispatcher events.Dispatcher
	logger     *zap.Logger
	bcryptCost int
}

// UserDependencies encapsulates collaborators required by the service.
type UserDependencies struct {
	UserRepo   repository.UserRepository
	Cache      *cache.UserCache
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewUserService builds the service.
func NewUserService(cfg config.Config, deps UserDependencies) *UserService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		users:      deps.UserRepo,
		cache:      deps.Cache,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// CreateUser persists a new user after uniqueness checks. Client-supplied
// id and timestamps are ignored; the store assigns them.
func (s *UserService) CreateUser(ctx context.Context, req dto.UserRequest) (*dto.UserResponse, error) {
	s.logger.Info("creating user", zap.String("username", req.Username))

	if taken, err := s.users.ExistsByUsername(ctx, req.Username); err != nil {
		return nil, apperrors.MapError(err)
	} else if taken {
		return nil, apperrors.NewDuplicateUsername(req.Username)
	}

	if taken, err := s.users.ExistsByEmail(ctx, req.Email); err != nil {
		return nil, apperrors.MapError(err)
	} else if taken {
		return nil, apperrors.NewDuplicateEmail(req.Email)
	}

	hash, err := auth.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := req.ToEntity()
	user.PasswordHash = hash
	if err := s.users.Save(ctx, user); err != nil {
		// Two concurrent creates can both pass the exists checks; the
		// unique constraints are the backstop and the loser lands here.
		return nil, s.translateUniqueViolation(err, user.Username, user.Email)
	}

	s.logger.Info("user created", zap.Int64("id", user.ID))
	s.publish(ctx, events.Event{
		Type:   events.EventUserCreated,
		UserID: user.ID,
		Payload: events.UserCreatedPayload{
			Username: user.Username,
			Email:    user.Email,
			Status:   user.Status,
			Role:     user.Role,
		},
	})

	resp := dto.NewUserResponse(user)
	return &resp, nil
}

// GetUserByID returns the user or a not-found error.
func (s *UserService) GetUserByID(ctx context.Context, id int64) (*dto.UserResponse, error) {
	if cached, err := s.cache.Get(ctx, id); err == nil {
		resp := dto.NewUserResponse(cached)
		return &resp, nil
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUserNotFound(id)
		}
		return nil, apperrors.MapError(err)
	}

	s.cache.Set(ctx, user)
	resp := dto.NewUserResponse(user)
	return &resp, nil
}

// GetAllUsers lists every user, newest first.
func (s *UserService) GetAllUsers(ctx context.Context) ([]dto.UserResponse, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return dto.NewUserResponses(users), nil
}

// GetUsersByStatus lists users with the given status, newest first.
func (s *UserService) GetUsersByStatus(ctx context.Context, status domain.UserStatus) ([]dto.UserResponse, error) {
	users, err := s.users.ListByStatus(ctx, status)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return dto.NewUserResponses(users), nil
}

// UpdateUser applies partial-update semantics: username, email, first and
// last name and phone number always come from the request; password only
// when non-empty; status and role only when supplied.
func (s *UserService) UpdateUser(ctx context.Context, id int64, req dto.UserRequest) (*dto.UserResponse, error) {
	s.logger.Info("updating user", zap.Int64("id", id))

	existing, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUserNotFound(id)
		}
		return nil, apperrors.MapError(err)
	}

	// Self-conflicts are fine: only a changed value is checked.
	if req.Username != existing.Username {
		if taken, err := s.users.ExistsByUsername(ctx, req.Username); err != nil {
			return nil, apperrors.MapError(err)
		} else if taken {
			return nil, apperrors.NewDuplicateUsername(req.Username)
		}
	}
	if req.Email != existing.Email {
		if taken, err := s.users.ExistsByEmail(ctx, req.Email); err != nil {
			return nil, apperrors.MapError(err)
		} else if taken {
			return nil, apperrors.NewDuplicateEmail(req.Email)
		}
	}

	existing.Username = req.Username
	existing.Email = req.Email
	existing.FirstName = req.FirstName
	existing.LastName = req.LastName
	existing.PhoneNumber = req.PhoneNumber

	passwordChanged := false
	if req.Password != "" {
		hash, err := auth.HashPassword(req.Password, s.bcryptCost)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		existing.PasswordHash = hash
		passwordChanged = true
	}
	if req.Status != nil {
		existing.Status = *req.Status
	}
	if req.Role != nil {
		existing.Role = *req.Role
	}

	if err := s.users.Update(ctx, existing); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// The row vanished between the read and the write.
			return nil, apperrors.NewUserNotFound(id)
		}
		return nil, s.translateUniqueViolation(err, existing.Username, existing.Email)
	}

	s.cache.Invalidate(ctx, id)
	s.logger.Info("user updated", zap.Int64("id", id))
	s.publish(ctx, events.Event{
		Type:   events.EventUserUpdated,
		UserID: id,
		Payload: events.UserUpdatedPayload{
			Username:        existing.Username,
			Email:           existing.Email,
			PasswordChanged: passwordChanged,
		},
	})

	resp := dto.NewUserResponse(existing)
	return &resp, nil
}

// DeleteUser removes the user, reporting not-found when the id does not
// exist. The storage delete itself is idempotent, so losing a race with a
// concurrent delete leaves the end state unchanged.
func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	s.logger.Info("deleting user", zap.Int64("id", id))

	existing, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUserNotFound(id)
		}
		return apperrors.MapError(err)
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return apperrors.MapError(err)
	}

	s.cache.Invalidate(ctx, id)
	s.logger.Info("user deleted", zap.Int64("id", id))
	s.publish(ctx, events.Event{
		Type:    events.EventUserDeleted,
		UserID:  id,
		Payload: events.UserDeletedPayload{Username: existing.Username},
	})
	return nil
}

// GetUserCount returns the total number of users.
func (s *UserService) GetUserCount(ctx context.Context) (int64, error) {
	count, err := s.users.Count(ctx)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	return count, nil
}

// IsUsernameAvailable reports whether the username is free. Advisory only:
// nothing is reserved by asking.
func (s *UserService) IsUsernameAvailable(ctx context.Context, username string) (bool, error) {
	taken, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return false, apperrors.MapError(err)
	}
	return !taken, nil
}

// IsEmailAvailable reports whether the email is free.
func (s *UserService) IsEmailAvailable(ctx context.Context, email string) (bool, error) {
	taken, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return false, apperrors.MapError(err)
	}
	return !taken, nil
}

// translateUniqueViolation maps a Postgres 23505 on the users table to the
// matching duplicate error instead of leaking a storage failure.
func (s *UserService) translateUniqueViolation(err error, username, email string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		switch pgErr.ConstraintName {
		case "users_username_key":
			return apperrors.NewDuplicateUsername(username)
		case "users_email_key":
			return apperrors.NewDuplicateEmail(email)
		}
	}
	return apperrors.MapError(err)
}

func (s *UserService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event publish failed", zap.String("type", string(event.Type)), zap.Error(err))
	}
}
