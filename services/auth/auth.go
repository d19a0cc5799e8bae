// Package auth handles signup, login and profile lookups.
package auth

import (
	"context"
	"coursetrack/apperr"
	"coursetrack/models"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken         = apperr.Conflict("Email is already registered!")
	ErrInvalidCredentials = apperr.Unauthorized("Invalid credentials!")
	ErrUserNotFound       = apperr.NotFound("User not found!")
	ErrSelfDemotion       = apperr.Validation("You cannot remove your own admin access!")
)

// TokenIssuer signs an access token for a user.
type TokenIssuer func(user *models.User) (string, error)

type Service struct {
	db         *gorm.DB
	saltRound  int
	isAdmin    func(email string) bool
	issueToken TokenIssuer
}

func New(db *gorm.DB, saltRound int, isAdmin func(string) bool, issueToken TokenIssuer) *Service {
	if isAdmin == nil {
		isAdmin = func(string) bool { return false }
	}
	return &Service{db: db, saltRound: saltRound, isAdmin: isAdmin, issueToken: issueToken}
}

func (s *Service) Signup(ctx context.Context, name, email, password string) (*models.User, error) {
	db := s.db.WithContext(ctx)
	email = strings.ToLower(strings.TrimSpace(email))

	// Check if email already exists
	var n int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&n).Error; err != nil {
		return nil, apperr.Wrap(err, "Failed to process your request!")
	}
	if n > 0 {
		return nil, ErrEmailTaken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.saltRound)
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to process your request!")
	}

	user := models.User{
		Name:     strings.TrimSpace(name),
		Email:    email,
		Password: string(hashedPassword),
		IsAdmin:  s.isAdmin(email),
	}
	if err := db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, apperr.Wrap(err, "Failed to Signup user!")
	}
	return &user, nil
}

// Client describes where a login came from.
type Client struct {
	IP     string
	Device string
}

// Login checks the credentials and returns the user with a signed token.
// Each successful login is added to the user's login history.
func (s *Service) Login(ctx context.Context, email, password string, client Client) (*models.User, string, error) {
	db := s.db.WithContext(ctx)
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", apperr.Wrap(err, "Failed to process your request!")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(&user)
	if err != nil {
		return nil, "", apperr.Wrap(err, "Failed to generate token!")
	}

	now := time.Now()
	user.LastLogin = &now
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Update("last_login", now).Error; err != nil {
			return err
		}
		return tx.Create(&models.LoginHistory{
			UserID:     user.ID,
			IPAddress:  client.IP,
			Device:     truncate(client.Device, 255),
			LoggedInAt: now,
		}).Error
	})
	if err != nil {
		return nil, "", apperr.Wrap(err, "Failed to update last login!")
	}
	return &user, token, nil
}

// LoginHistory returns one page of the user's logins, newest first, and the total count.
func (s *Service) LoginHistory(ctx context.Context, userID uint, page, limit int) ([]models.LoginHistory, int64, error) {
	db := s.db.WithContext(ctx)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	var total int64
	if err := db.Model(&models.LoginHistory{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, apperr.Wrap(err, "Failed to fetch login history!")
	}
	history := []models.LoginHistory{}
	if err := db.Where("user_id = ?", userID).
		Order("logged_in_at desc, id desc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&history).Error; err != nil {
		return nil, 0, apperr.Wrap(err, "Failed to fetch login history!")
	}
	return history, total, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func (s *Service) Profile(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, apperr.Wrap(err, "Failed to fetch user!")
	}
	return &user, nil
}

// ListUsers pages through users, optionally filtered by a name or email fragment.
func (s *Service) ListUsers(ctx context.Context, search string, page, limit int) ([]models.User, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.User{})
	if search = strings.ToLower(strings.TrimSpace(search)); search != "" {
		like := "%" + search + "%"
		q = q.Where("LOWER(name) LIKE ? OR email LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperr.Wrap(err, "Failed to fetch user list!")
	}
	users := []models.User{}
	if err := q.Order("id asc").Offset((page - 1) * limit).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, apperr.Wrap(err, "Failed to fetch user list!")
	}
	return users, total, nil
}

// SetAdmin grants or revokes the admin flag. Admins cannot demote themselves.
func (s *Service) SetAdmin(ctx context.Context, actorID, userID uint, isAdmin bool) (*models.User, error) {
	if actorID == userID && !isAdmin {
		return nil, ErrSelfDemotion
	}
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(user).Update("is_admin", isAdmin).Error; err != nil {
		return nil, apperr.Wrap(err, "Failed to update user!")
	}
	user.IsAdmin = isAdmin
	return user, nil
}
