package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/phrazzld/kanban-api/internal/platform/logger"
	"github.com/phrazzld/kanban-api/internal/service/auth"
	"github.com/phrazzld/kanban-api/internal/store"
)

// RegisterInput carries the fields of a new account.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	FullName string
}

// LoginResult is a successful login: the signed token and the user it
// was issued for.
type LoginResult struct {
	Token *auth.IssuedToken
	User  *domain.User
}

// UserService provides account operations.
type UserService interface {
	// Register creates an active user with the default role.
	// Returns store.ErrUsernameExists or store.ErrEmailExists on conflict.
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)

	// Login checks credentials and issues an access token. identifier may
	// be a username or an email address.
	Login(ctx context.Context, identifier, password string) (*LoginResult, error)

	// GetUser retrieves a user by their ID
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// GetUserByUsername retrieves a user by exact username.
	// Returns store.ErrUserNotFound if there is none.
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)

	// ListUsers returns a page of users ordered by creation time.
	ListUsers(ctx context.Context, page store.Page) ([]*domain.User, error)

	// UpdateUser applies patch to the user. Users may update themselves;
	// admins may update anyone and are the only ones allowed to change
	// role or is_active.
	UpdateUser(ctx context.Context, actor *domain.User, userID uuid.UUID, patch domain.UserPatch) (*domain.User, error)

	// ChangePassword replaces the password after checking the current one.
	// Only the account holder may do this.
	ChangePassword(ctx context.Context, actor *domain.User, userID uuid.UUID, current, next string) error

	// SetActive enables or disables an account. Disabling is the soft
	// delete used by the admin endpoints.
	SetActive(ctx context.Context, userID uuid.UUID, active bool) (*domain.User, error)

	// SetRole grants or revokes the admin role. Like SetActive it performs
	// no actor check; callers gate it.
	SetRole(ctx context.Context, userID uuid.UUID, role domain.Role) (*domain.User, error)
}

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	users  store.UserStore
	tx     store.TxRunner
	hasher auth.PasswordHasher
	tokens auth.JWTService
	logger *slog.Logger
}

var _ UserService = (*UserServiceImpl)(nil)

// NewUserService creates a new UserService
func NewUserService(
	users store.UserStore,
	tx store.TxRunner,
	hasher auth.PasswordHasher,
	tokens auth.JWTService,
	logger *slog.Logger,
) (*UserServiceImpl, error) {
	if users == nil {
		return nil, errors.New("user store cannot be nil")
	}
	if tx == nil {
		return nil, errors.New("transaction runner cannot be nil")
	}
	if hasher == nil {
		return nil, errors.New("password hasher cannot be nil")
	}
	if tokens == nil {
		return nil, errors.New("jwt service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserServiceImpl{
		users:  users,
		tx:     tx,
		hasher: hasher,
		tokens: tokens,
		logger: logger.With("component", "user_service"),
	}, nil
}

// Register implements UserService.
func (s *UserServiceImpl) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(input.Username, input.Email, input.Password, input.FullName)
	if err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(user.Password)
	if err != nil {
		return nil, wrapErr("user", "register", err)
	}
	user.HashedPassword = hash
	user.Password = ""

	err = s.tx.RunInTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return s.users.WithTx(tx).Create(ctx, user)
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			log.Debug("registration rejected: duplicate account",
				"username", user.Username,
				"error", err)
			return nil, err
		}
		log.Error("failed to save user to database",
			"error", err,
			"username", user.Username)
		return nil, wrapErr("user", "register", err)
	}

	log.Info("user registered",
		"user_id", user.ID,
		"username", user.Username)
	return user, nil
}

func (s *UserServiceImpl) lookup(ctx context.Context, identifier string) (*domain.User, error) {
	identifier = strings.TrimSpace(identifier)
	user, err := s.users.GetByUsername(ctx, identifier)
	if errors.Is(err, store.ErrUserNotFound) && strings.Contains(identifier, "@") {
		user, err = s.users.GetByEmail(ctx, identifier)
	}
	return user, err
}

// Login implements UserService.
func (s *UserServiceImpl) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.lookup(ctx, identifier)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Debug("login failed: unknown user")
			return nil, auth.ErrInvalidCredentials
		}
		return nil, wrapErr("user", "login", err)
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		log.Debug("login failed: password mismatch", "user_id", user.ID)
		return nil, auth.ErrInvalidCredentials
	}
	if !user.IsActive {
		log.Info("login refused for disabled account", "user_id", user.ID)
		return nil, auth.ErrInactiveUser
	}

	token, err := s.tokens.IssueToken(ctx, user)
	if err != nil {
		log.Error("failed to issue token", "error", err, "user_id", user.ID)
		return nil, wrapErr("user", "login", err)
	}

	log.Info("user logged in", "user_id", user.ID)
	return &LoginResult{Token: token, User: user}, nil
}

// GetUser implements UserService.
func (s *UserServiceImpl) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			logger.FromContextOrDefault(ctx, s.logger).Error("failed to retrieve user",
				"error", err,
				"user_id", userID)
		}
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return user, nil
}

// GetUserByUsername implements UserService.
func (s *UserServiceImpl) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, s.classify(ctx, "get by username", uuid.Nil, err)
	}
	return user, nil
}

// ListUsers implements UserService.
func (s *UserServiceImpl) ListUsers(ctx context.Context, page store.Page) ([]*domain.User, error) {
	users, err := s.users.List(ctx, page)
	if err != nil {
		return nil, wrapErr("user", "list", err)
	}
	return users, nil
}

// UpdateUser implements UserService.
func (s *UserServiceImpl) UpdateUser(
	ctx context.Context,
	actor *domain.User,
	userID uuid.UUID,
	patch domain.UserPatch,
) (*domain.User, error) {
	if !actor.IsAdmin() {
		if actor.ID != userID {
			return nil, ErrNotOwned
		}
		if patch.Role != nil || patch.IsActive != nil {
			return nil, ErrAdminRequired
		}
	}

	var user *domain.User
	err := s.tx.RunInTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.users.WithTx(tx)

		var err error
		user, err = txStore.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if patch.IsEmpty() {
			return nil
		}
		return txStore.Update(ctx, user, patch)
	})
	if err != nil {
		return nil, s.classify(ctx, "update", userID, err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("user updated",
		"user_id", userID,
		"actor_id", actor.ID)
	return user, nil
}

// ChangePassword implements UserService.
func (s *UserServiceImpl) ChangePassword(
	ctx context.Context,
	actor *domain.User,
	userID uuid.UUID,
	current, next string,
) error {
	if actor.ID != userID {
		return ErrNotOwned
	}
	if err := domain.ValidatePassword(next); err != nil {
		return err
	}

	err := s.tx.RunInTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.users.WithTx(tx)

		user, err := txStore.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if err := s.hasher.Compare(user.HashedPassword, current); err != nil {
			return domain.NewValidationError("current_password", "is incorrect", ErrIncorrectPassword)
		}
		hash, err := s.hasher.Hash(next)
		if err != nil {
			return err
		}
		return txStore.UpdatePassword(ctx, userID, hash)
	})
	if err != nil {
		return s.classify(ctx, "change password", userID, err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("user password changed", "user_id", userID)
	return nil
}

// SetActive implements UserService.
func (s *UserServiceImpl) SetActive(ctx context.Context, userID uuid.UUID, active bool) (*domain.User, error) {
	var user *domain.User
	err := s.tx.RunInTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.users.WithTx(tx)
		if err := txStore.SetActive(ctx, userID, active); err != nil {
			return err
		}
		var err error
		user, err = txStore.GetByID(ctx, userID)
		return err
	})
	if err != nil {
		return nil, s.classify(ctx, "set active", userID, err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("user activation changed",
		"user_id", userID,
		"is_active", active)
	return user, nil
}

// SetRole implements UserService.
func (s *UserServiceImpl) SetRole(ctx context.Context, userID uuid.UUID, role domain.Role) (*domain.User, error) {
	if !role.IsValid() {
		return nil, domain.NewValidationError("role", "must be one of user, admin", nil)
	}

	var user *domain.User
	err := s.tx.RunInTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.users.WithTx(tx)

		var err error
		if user, err = txStore.GetByID(ctx, userID); err != nil {
			return err
		}
		if user.Role == role {
			return nil
		}
		return txStore.Update(ctx, user, domain.UserPatch{Role: &role})
	})
	if err != nil {
		return nil, s.classify(ctx, "set role", userID, err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("user role changed",
		"user_id", userID,
		"role", role)
	return user, nil
}

// classify returns expected errors unchanged and wraps the rest after
// logging them.
func (s *UserServiceImpl) classify(ctx context.Context, operation string, userID uuid.UUID, err error) error {
	if isExpected(err) {
		return err
	}
	logger.FromContextOrDefault(ctx, s.logger).Error("user operation failed",
		"operation", operation,
		"error", err,
		"user_id", userID)
	return wrapErr("user", operation, err)
}

func isExpected(err error) bool {
	return errors.Is(err, store.ErrNotFound) ||
		errors.Is(err, store.ErrDuplicate) ||
		errors.Is(err, store.ErrInvalidEntity) ||
		errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, ErrNotOwned) ||
		errors.Is(err, ErrAdminRequired)
}
