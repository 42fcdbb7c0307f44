package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/habitquest/internal/config"
	"github.com/ahmetcoskunkizilkaya/habitquest/internal/dto"
	"github.com/ahmetcoskunkizilkaya/habitquest/internal/models"
	"github.com/ahmetcoskunkizilkaya/habitquest/internal/progression"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9_.]{3,30}$`)

type AuthService struct {
	db         *gorm.DB
	cfg        *config.Config
	deps       Deps
	moderation *ModerationService
}

func NewAuthService(d Deps, cfg *config.Config, moderation *ModerationService) *AuthService {
	d = d.withDefaults()
	return &AuthService{
		db:         d.DB,
		cfg:        cfg,
		deps:       d,
		moderation: moderation,
	}
}

func (s *AuthService) Register(req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if !usernamePattern.MatchString(username) {
		return nil, Detailed(ErrInvalidInput, "username must be 3-30 characters of a-z, 0-9, _ or .")
	}
	if !strings.Contains(email, "@") || len(email) > 255 {
		return nil, Detailed(ErrInvalidInput, "a valid email is required")
	}
	if len(req.Password) < 8 {
		return nil, Detailed(ErrInvalidInput, "password must be at least 8 characters")
	}
	if err := s.moderation.CheckText("username", username); err != nil {
		return nil, err
	}

	var usernameTaken, emailTaken int64
	if err := s.db.Model(&models.User{}).Where("username = ?", username).Count(&usernameTaken).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.User{}).Where("email = ?", email).Count(&emailTaken).Error; err != nil {
		return nil, err
	}
	switch {
	case usernameTaken > 0 && emailTaken > 0:
		return nil, ErrUsernameOrEmailTaken
	case usernameTaken > 0:
		return nil, ErrUsernameTaken
	case emailTaken > 0:
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:       uuid.New(),
		Username: username,
		Email:    email,
		Password: string(hash),
		Role:     "user",
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Stats").Create(&user).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		user.Stats = models.NewUserStats(user.ID)
		return tx.Create(&user.Stats).Error
	})
	if err != nil {
		return nil, err
	}

	slog.Info("user registered", "user_id", user.ID.String(), "action", "register")
	return s.generateTokenPair(&user)
}

// Login accepts a username or an email.
func (s *AuthService) Login(req *dto.LoginRequest) (*dto.AuthResponse, error) {
	identifier := strings.ToLower(strings.TrimSpace(req.Identifier))
	if identifier == "" || req.Password == "" {
		return nil, Detailed(ErrInvalidInput, "identifier and password are required")
	}

	var user models.User
	if err := s.db.Where("username = ? OR email = ?", identifier, identifier).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidPassword
	}

	return s.generateTokenPair(&user)
}

func (s *AuthService) Refresh(req *dto.RefreshRequest) (*dto.AuthResponse, error) {
	tokenHash := hashToken(req.RefreshToken)

	var stored models.RefreshToken
	if err := s.db.Where("token_hash = ? AND revoked = ?", tokenHash, false).First(&stored).Error; err != nil {
		return nil, ErrInvalidToken
	}

	if err := s.db.Model(&stored).Update("revoked", true).Error; err != nil {
		return nil, err
	}
	if time.Now().After(stored.ExpiresAt) {
		return nil, ErrInvalidToken
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", stored.UserID).Error; err != nil {
		return nil, Detailed(ErrAuthenticationFailed, "account no longer exists")
	}

	return s.generateTokenPair(&user)
}

func (s *AuthService) Logout(req *dto.LogoutRequest) error {
	tokenHash := hashToken(req.RefreshToken)
	return s.db.Model(&models.RefreshToken{}).
		Where("token_hash = ?", tokenHash).
		Update("revoked", true).Error
}

// Profile returns the user together with progression stats.
func (s *AuthService) Profile(userID uuid.UUID) (*dto.ProfileResponse, error) {
	user, err := loadUser(s.db, userID)
	if err != nil {
		return nil, err
	}
	return &dto.ProfileResponse{
		User:        userResponse(user),
		Stats:       user.Stats,
		RequiredXP:  progression.RequiredXP(user.Stats.Level),
		StreakAlive: progression.IsStreakAlive(&user.Stats, s.deps.Clock.Current()),
	}, nil
}

// DeleteAccount wipes the user and everything they own or appear in.
func (s *AuthService) DeleteAccount(userID uuid.UUID, password string) error {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return ErrUserNotFound
	}

	if password == "" {
		return Detailed(ErrInvalidInput, "password is required")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return ErrInvalidPassword
	}

	unlock := s.deps.Locker.Lock(userID)
	defer unlock()

	var missionIDs []uuid.UUID
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Mission{}).Where("user_id = ?", userID).Pluck("id", &missionIDs).Error; err != nil {
			return err
		}

		var logIDs []uuid.UUID
		if err := tx.Model(&models.ProgressLog{}).Where("user_id = ?", userID).Pluck("id", &logIDs).Error; err != nil {
			return err
		}
		if len(logIDs) > 0 {
			if err := tx.Where("log_id IN ?", logIDs).Delete(&models.ProgressEvent{}).Error; err != nil {
				return err
			}
		}

		steps := []struct {
			model interface{}
			where string
			args  []interface{}
		}{
			{&models.ProgressLog{}, "user_id = ?", []interface{}{userID}},
			{&models.Mission{}, "user_id = ?", []interface{}{userID}},
			{&models.Achievement{}, "user_id = ?", []interface{}{userID}},
			{&models.Friend{}, "user_id = ? OR friend_id = ?", []interface{}{userID, userID}},
			{&models.FriendRequest{}, "from_friend_id = ? OR to_friend_id = ?", []interface{}{userID, userID}},
			{&models.MissionRequest{}, "from_friend_id = ? OR to_friend_id = ?", []interface{}{userID, userID}},
			{&models.Notification{}, "receiver_id = ? OR sender_friend_id = ?", []interface{}{userID, userID}},
			{&models.RefreshToken{}, "user_id = ?", []interface{}{userID}},
			{&models.Block{}, "blocker_id = ? OR blocked_id = ?", []interface{}{userID, userID}},
			{&models.UserStats{}, "user_id = ?", []interface{}{userID}},
		}
		for _, step := range steps {
			if err := tx.Where(step.where, step.args...).Delete(step.model).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	for _, id := range missionIDs {
		s.deps.Scheduler.Cancel(id)
	}
	slog.Info("account deleted", "user_id", userID.String(), "action", "delete_account")
	return nil
}

func userResponse(u *models.User) dto.UserResponse {
	return dto.UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Avatar:   u.Avatar,
	}
}

func (s *AuthService) generateTokenPair(user *models.User) (*dto.AuthResponse, error) {
	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.generateRefreshToken(user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         userResponse(user),
	}, nil
}

func (s *AuthService) generateAccessToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":      user.ID.String(),
		"email":    user.Email,
		"username": user.Username,
		"iat":      time.Now().Unix(),
		"exp":      time.Now().Add(s.cfg.JWTAccessExpiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *AuthService) generateRefreshToken(user *models.User) (string, error) {
	rawBytes := make([]byte, 32)
	if _, err := rand.Read(rawBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	rawToken := base64.URLEncoding.EncodeToString(rawBytes)

	record := models.RefreshToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: hashToken(rawToken),
		ExpiresAt: time.Now().Add(s.cfg.JWTRefreshExpiry),
	}

	if err := s.db.Create(&record).Error; err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}

	return rawToken, nil
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", h)
}
