package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	domain "user-directory/internal/domain/user"
	pkgerrors "user-directory/pkg/errors"
	"user-directory/pkg/logger"
)

// Repository defines the read-only data access the directory needs.
// Implementations report session failures as *errors.ConnectionError and
// statement failures as *errors.QueryError.
type Repository interface {
	List(ctx context.Context) ([]domain.User, error)              // All users ordered by ID
	GetByID(ctx context.Context, id int64) (*domain.User, error) // One user, *errors.NotFoundError if absent
}

// Service implements Usecase on top of a Repository.
type Service struct {
	repo         Repository
	log          *zap.Logger
	validate     *validator.Validate
	queryTimeout time.Duration
}

var _ Usecase = (*Service)(nil)

// New creates a new Service. A zero queryTimeout leaves the caller's deadline in charge.
func New(r Repository, log *zap.Logger, queryTimeout time.Duration) *Service {
	return &Service{repo: r, log: log, validate: validator.New(), queryTimeout: queryTimeout}
}

// formatValidationError converts validator.ValidationErrors into a ValidationError.
func formatValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	var messages []string
	field := ""
	for _, e := range validationErrors {
		field = e.Field()
		switch e.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", e.Field()))
		case "gt":
			messages = append(messages, fmt.Sprintf("%s must be greater than %s", e.Field(), e.Param()))
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid", e.Field()))
		}
	}
	return pkgerrors.NewValidationError(field, strings.Join(messages, ", "))
}

func (uc *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if uc.queryTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, uc.queryTimeout)
}

// ListUsers returns the current snapshot of the users table.
// An empty table is a successful, empty response.
func (uc *Service) ListUsers(ctx context.Context, _ ListUsersRequest) (*ListUsersResponse, error) {
	log := logger.WithContext(ctx, uc.log)

	ctx, cancel := uc.withTimeout(ctx)
	defer cancel()

	domainUsers, err := uc.repo.List(ctx)
	if err != nil {
		switch {
		case pkgerrors.IsConnection(err):
			log.Error("database unavailable while listing users", zap.Error(err))
		case pkgerrors.IsQuery(err):
			log.Error("user listing query failed", zap.Error(err))
		default:
			log.Error("failed to list users", zap.Error(err))
		}
		return nil, fmt.Errorf("list users: %w", err)
	}

	users := make([]User, len(domainUsers))
	for i, du := range domainUsers {
		users[i] = User{
			ID:    du.ID,
			Name:  du.Name,
			Email: du.Email,
		}
	}

	log.Debug("listed users", zap.Int("count", len(users)))
	return &ListUsersResponse{Users: users}, nil
}

// GetUser retrieves a user by ID after validating the request.
func (uc *Service) GetUser(ctx context.Context, in GetUserRequest) (*GetUserResponse, error) {
	log := logger.WithContext(ctx, uc.log)

	if err := uc.validate.Struct(in); err != nil {
		log.Warn("get user validation failed", zap.Int64("id", in.ID), zap.Error(err))
		return nil, formatValidationError(err)
	}

	ctx, cancel := uc.withTimeout(ctx)
	defer cancel()

	u, err := uc.repo.GetByID(ctx, in.ID)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			log.Debug("user not found", zap.Int64("id", in.ID))
		} else {
			log.Error("failed to get user", zap.Int64("id", in.ID), zap.Error(err))
		}
		return nil, fmt.Errorf("get user %d: %w", in.ID, err)
	}

	return &GetUserResponse{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
	}, nil
}
