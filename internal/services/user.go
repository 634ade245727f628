package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"station-tracker-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const jwtExpDays = 365

// UserRepository is the storage contract the user service needs
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User, profile *models.UserProfile) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	GetProfile(ctx context.Context, userID string) (*models.UserProfile, error)
	UpdateProfile(ctx context.Context, profile *models.UserProfile) error
}

// UserService handles registration, authentication and profile access
type UserService struct {
	userRepo   UserRepository
	jwtSecret  string
	bcryptCost int
}

// NewUserService creates a new user service
func NewUserService(userRepo UserRepository, jwtSecret string, bcryptCost int) *UserService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserService{
		userRepo:   userRepo,
		jwtSecret:  jwtSecret,
		bcryptCost: bcryptCost,
	}
}

// Register creates a user and, eagerly, its profile with default
// preferences. Duplicate username or email surfaces as a field error.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	fieldErrs := models.FieldErrors{}

	taken, err := s.userRepo.UsernameExists(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if taken {
		fieldErrs["username"] = "a user with that username already exists"
	}

	taken, err = s.userRepo.EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		fieldErrs["email"] = "a user with that email already exists"
	}

	if len(fieldErrs) > 0 {
		return nil, fieldErrs
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &models.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
	}
	profile := &models.UserProfile{
		UserID:              user.ID,
		EnableNotifications: true,
		CreatedAt:           now,
	}

	if err := s.userRepo.CreateUser(ctx, user, profile); err != nil {
		// Two concurrent registrations can both pass the existence
		// checks; the unique constraints settle the race.
		if errors.Is(err, models.ErrDuplicateUser) {
			return nil, models.FieldErrors{"username": "a user with that username or email already exists"}
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Authenticate verifies a username/password pair and returns a signed
// token. Unknown usernames and wrong passwords are indistinguishable.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (string, error) {
	user, err := s.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return "", models.ErrInvalidCredentials
		}
		return "", fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", models.ErrInvalidCredentials
	}

	return s.generateJWT(user.ID)
}

// generateJWT generates a JWT token for a user
func (s *UserService) generateJWT(userID string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().AddDate(0, 0, jwtExpDays).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateJWT validates a JWT token and returns the user ID
func (s *UserService) ValidateJWT(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return "", fmt.Errorf("user_id not found in token")
	}

	return userID, nil
}

// GetProfile returns the caller's own profile
func (s *UserService) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	return s.userRepo.GetProfile(ctx, userID)
}

// ProfileUpdate carries the writable profile fields; nil means unchanged
type ProfileUpdate struct {
	PushToken           *string
	EnableNotifications *bool
}

// UpdateProfile applies a partial update to the caller's own profile
func (s *UserService) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*models.UserProfile, error) {
	profile, err := s.userRepo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.PushToken != nil {
		if *update.PushToken == "" {
			profile.PushToken = nil
		} else {
			profile.PushToken = update.PushToken
		}
	}
	if update.EnableNotifications != nil {
		profile.EnableNotifications = *update.EnableNotifications
	}

	if err := s.userRepo.UpdateProfile(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}
