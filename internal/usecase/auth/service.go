package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/surendrasinghc80/chaicode-course-rag/errors"
	"github.com/surendrasinghc80/chaicode-course-rag/internal/adapter/repository"
	"github.com/surendrasinghc80/chaicode-course-rag/internal/domain/entities"
	"github.com/surendrasinghc80/chaicode-course-rag/pkg/jwt"
)

// Service handles signup, login and token refresh
type Service struct {
	userRepo   *repository.UserRepository
	jwtManager *jwt.Manager
	logger     *zap.Logger
}

// NewService creates a new auth service
func NewService(userRepo *repository.UserRepository, jwtManager *jwt.Manager, logger *zap.Logger) *Service {
	return &Service{
		userRepo:   userRepo,
		jwtManager: jwtManager,
		logger:     logger,
	}
}

// SignupRequest carries a new account registration
type SignupRequest struct {
	Username string  `json:"username" validate:"required,min=3,max=100"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8"`
	Age      *int    `json:"age,omitempty" validate:"omitempty,gte=1,lte=150"`
	City     *string `json:"city,omitempty"`
}

// LoginRequest carries a login attempt
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenPair is the issued access and refresh tokens
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// AuthResponse is the result of a successful signup or login
type AuthResponse struct {
	User   *entities.User `json:"user"`
	Tokens TokenPair      `json:"tokens"`
}

// Signup registers a new user account
func (s *Service) Signup(ctx context.Context, req *SignupRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, errors.ErrUserAlreadyExists(email)
	} else if err != entities.ErrUserNotFound {
		return nil, errors.ErrDatabase(err)
	}
	if _, err := s.userRepo.FindByUsername(ctx, req.Username); err == nil {
		return nil, errors.ErrUserAlreadyExists(req.Username)
	} else if err != entities.ErrUserNotFound {
		return nil, errors.ErrDatabase(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.ErrInternal(err)
	}

	user := entities.NewUser(req.Username, email, string(hash))
	user.Age = req.Age
	user.City = req.City

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, errors.ErrDatabase(err)
	}

	s.logger.Info("user registered",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
	)

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{User: user, Tokens: *tokens}, nil
}

// Login authenticates a user by email and password
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if err == entities.ErrUserNotFound {
			return nil, errors.ErrInvalidCredentials()
		}
		return nil, errors.ErrDatabase(err)
	}

	if !user.IsActive {
		return nil, errors.ErrAccountBlocked()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errors.ErrInvalidCredentials()
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn("failed to record login time", zap.Error(err))
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{User: user, Tokens: *tokens}, nil
}

// Refresh exchanges a valid refresh token for a new token pair
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	userID, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, errors.ErrInvalidRefreshToken()
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if err == entities.ErrUserNotFound {
			return nil, errors.ErrInvalidRefreshToken()
		}
		return nil, errors.ErrDatabase(err)
	}
	if !user.IsActive {
		return nil, errors.ErrAccountBlocked()
	}

	return s.issueTokens(user)
}

// GetProfile returns the user's account record
func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*entities.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if err == entities.ErrUserNotFound {
			return nil, errors.ErrUserNotFound()
		}
		return nil, errors.ErrDatabase(err)
	}
	return user, nil
}

func (s *Service) issueTokens(user *entities.User) (*TokenPair, error) {
	access, err := s.jwtManager.GenerateAccessToken(user.ID, user.Username, user.Email, string(user.Role))
	if err != nil {
		return nil, errors.ErrInternal(err)
	}
	refresh, err := s.jwtManager.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, errors.ErrInternal(err)
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.jwtManager.GetAccessExpiry().Seconds()),
	}, nil
}
