package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/agrogas/agrogas-backend/internal/users"
	pkgAuth "github.com/agrogas/agrogas-backend/pkg/auth"
	"github.com/agrogas/agrogas-backend/pkg/config"
	"github.com/agrogas/agrogas-backend/pkg/db"
	"github.com/agrogas/agrogas-backend/pkg/db/models"
	"github.com/agrogas/agrogas-backend/pkg/enums"
	pkgerrors "github.com/agrogas/agrogas-backend/pkg/errors"
	"github.com/agrogas/agrogas-backend/pkg/security"
)

const (
	invalidCredentialsMessage = "invalid credentials"
	tokenTypeBearer           = "Bearer"
)

// Service defines the behavior needed by the auth controller.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*users.UserDTO, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	ListUsers(ctx context.Context) (*UsersResponse, error)
	RequestReset(ctx context.Context, req ResetRequest) (*ResetRequestResponse, error)
	ConfirmReset(ctx context.Context, req ResetConfirmRequest) error
}

type userRepository interface {
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
	FindByPhone(ctx context.Context, phone string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
}

// resetCodeStore holds pending reset codes; *redis.Client satisfies it.
type resetCodeStore interface {
	StoreResetCode(ctx context.Context, phone, code string, ttl time.Duration) error
	ResetCode(ctx context.Context, phone string) (string, bool, error)
	DeleteResetCode(ctx context.Context, phone string) error
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	UserRepo       userRepository
	ResetCodes     resetCodeStore
	JWTConfig      config.JWTConfig
	PasswordConfig config.PasswordConfig
	// EchoResetCode returns reset codes in the API response.
	EchoResetCode bool
	Now           func() time.Time
}

type service struct {
	users       userRepository
	resets      resetCodeStore
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
	echoReset   bool
	now         func() time.Time
}

// NewService constructs the auth service with the provided dependencies.
// ResetCodes may be nil, in which case password resets report a dependency error.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		users:       params.UserRepo,
		resets:      params.ResetCodes,
		jwtCfg:      params.JWTConfig,
		passwordCfg: params.PasswordConfig,
		echoReset:   params.EchoResetCode,
		now:         now,
	}, nil
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*users.UserDTO, error) {
	name := strings.TrimSpace(req.Name)
	phone := strings.TrimSpace(req.Phone)
	for _, f := range []struct{ field, value string }{
		{"name", name},
		{"role", strings.TrimSpace(req.Role)},
		{"phone", phone},
		{"password", strings.TrimSpace(req.Password)},
	} {
		if f.value == "" {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "missing field: %s", f.field).
				WithDetails(map[string]any{"field": f.field, "rule": "required"})
		}
	}
	role, err := enums.ParseUserRole(req.Role)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role").
			WithDetails(map[string]any{"field": "role", "rule": "oneof"})
	}

	if _, err := s.users.FindByPhone(ctx, phone); err == nil {
		return nil, duplicatePhone()
	} else if !db.IsNotFound(err) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check phone")
	}

	hash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user, err := s.users.Create(ctx, users.CreateUserDTO{
		Name:         name,
		Role:         role,
		Phone:        phone,
		Location:     trimmedOrNil(req.Location),
		PasswordHash: hash,
	})
	if err != nil {
		// a concurrent registration can still win the unique index
		if db.IsUniqueViolation(err, "") {
			return nil, duplicatePhone()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
	}
	return users.FromModel(user), nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.authenticate(ctx, req.Phone, req.Password)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update last login")
	}
	user.LastLoginAt = &now

	token, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}

	return &LoginResponse{
		AccessToken: token,
		TokenType:   tokenTypeBearer,
		ExpiresIn:   s.jwtCfg.ExpirationMinutes * 60,
		User:        users.FromModel(user),
	}, nil
}

func (s *service) ListUsers(ctx context.Context) (*UsersResponse, error) {
	rows, err := s.users.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list users")
	}
	out := make([]users.UserDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *users.FromModel(&rows[i]))
	}
	return &UsersResponse{Count: len(out), Users: out}, nil
}

func (s *service) authenticate(ctx context.Context, phone, password string) (*models.User, error) {
	input := strings.TrimSpace(phone)
	if input == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone and password required")
	}
	user, err := s.users.FindByPhone(ctx, input)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	valid, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	if security.NeedsRehash(user.PasswordHash, s.passwordCfg) {
		hash, err := security.HashPassword(password, s.passwordCfg)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rehash password")
		}
		if err := s.users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "upgrade password hash")
		}
		user.PasswordHash = hash
	}
	return user, nil
}

func duplicatePhone() error {
	return pkgerrors.New(pkgerrors.CodeAlreadyExists, "user with this phone already exists").
		WithDetails(map[string]any{"field": "phone", "rule": "unique"})
}

func trimmedOrNil(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
