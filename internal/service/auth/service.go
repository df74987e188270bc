package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/eggspire/monitor/internal/config"
	"github.com/eggspire/monitor/internal/domain/models"
	"github.com/eggspire/monitor/internal/repository/mysql"
)

// ErrInvalidCredentials covers both unknown accounts and wrong passwords
// so login responses never reveal which one failed.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ErrEmailTaken indicates a registration conflict.
var ErrEmailTaken = errors.New("user with this email already exists")

// ErrWrongPassword indicates a failed current-password check on change.
var ErrWrongPassword = errors.New("current password is incorrect")

// Users is the account storage the auth service needs. Implemented by the
// MySQL user repository.
type Users interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, userID int64) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, user *models.User) (int64, error)
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
	TouchLogin(ctx context.Context, userID int64) error
}

// Claims is the JWT payload issued on login.
type Claims struct {
	UserID int64  `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Service issues and verifies tokens and manages account credentials.
type Service struct {
	users  Users
	cfg    config.AuthConfig
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires the auth service.
func NewService(users Users, cfg config.AuthConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{users: users, cfg: cfg, logger: logger, now: time.Now}
}

// Login verifies credentials and returns the account plus a signed token.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mysql.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("load account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	if err := s.users.TouchLogin(ctx, user.UserID); err != nil {
		s.logger.Warn("failed to record login time", zap.Int64("user_id", user.UserID), zap.Error(err))
	}

	return user, token, nil
}

func (s *Service) issueToken(user *models.User) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: user.UserID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
}

// VerifyToken parses and validates a bearer token.
func (s *Service) VerifyToken(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	return claims, nil
}

// LoadUser resolves the account behind verified claims, rejecting
// deactivated users.
func (s *Service) LoadUser(ctx context.Context, claims *Claims) (*models.User, error) {
	return s.users.GetByID(ctx, claims.UserID)
}

// RegisterRequest carries the fields for creating an account.
type RegisterRequest struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Role     string  `json:"role"`
	Phone    *string `json:"phone"`
	Bio      *string `json:"bio"`
}

// Register creates a new account on behalf of an existing superadmin.
func (s *Service) Register(ctx context.Context, createdBy int64, req RegisterRequest) (*models.User, error) {
	taken, err := s.users.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	role := req.Role
	if role == "" {
		role = models.RoleAdmin
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         role,
		Phone:        req.Phone,
		Bio:          req.Bio,
		CreatedBy:    &createdBy,
	}

	id, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	return s.users.GetByID(ctx, id)
}

// ChangePassword swaps a user's password after verifying the current one.
func (s *Service) ChangePassword(ctx context.Context, userID int64, current, next string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("load account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return ErrWrongPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), s.cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return s.users.UpdatePassword(ctx, userID, string(hash))
}
