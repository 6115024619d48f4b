package service

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/lunara-app/backend/internal/middleware"
	"github.com/lunara-app/backend/internal/models"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

type AuthService struct {
	db        *gorm.DB
	jwtSecret string
	email     *EmailService
}

func NewAuthService(db *gorm.DB, jwtSecret string, email *EmailService) *AuthService {
	return &AuthService{
		db:        db,
		jwtSecret: jwtSecret,
		email:     email,
	}
}

// Register creates a user together with a default profile and reminder
// settings in one transaction, then issues a session token.
func (s *AuthService) Register(name, email, password string, age int) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	user := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Age:          age,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.User
		if err := tx.Where("email = ?", email).First(&existing).Error; err == nil {
			return ErrUserExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := tx.Create(&user).Error; err != nil {
			// a concurrent registration can race past the lookup and hit
			// the unique email index
			if isUniqueViolation(err) {
				return ErrUserExists
			}
			return err
		}

		profile := models.UserProfile{
			UserID:       user.ID,
			CycleLength:  models.DefaultCycleLength,
			PeriodLength: models.DefaultPeriodLength,
			Timezone:     "UTC",
		}
		if err := tx.Create(&profile).Error; err != nil {
			return err
		}

		for _, typ := range []string{models.ReminderPeriod, models.ReminderLog} {
			setting := models.ReminderSetting{
				UserID:    user.ID,
				Type:      typ,
				Enabled:   true,
				TimeOfDay: "20:00",
				Frequency: "daily",
			}
			if err := tx.Create(&setting).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	if s.email != nil {
		if err := s.sendVerification(&user); err != nil {
			// Registration succeeded; verification mail can be re-requested.
			s.email.logger.Warn("failed to send verification email")
		}
	}

	return s.generateToken(user.ID)
}

func (s *AuthService) Login(email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.generateToken(user.ID)
}

// VerifyEmail consumes a verification token and marks the user verified.
func (s *AuthService) VerifyEmail(token string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var v models.EmailVerification
		if err := tx.Where("token = ?", token).First(&v).Error; err != nil {
			return ErrInvalidToken
		}
		if time.Now().After(v.ExpiresAt) {
			return ErrInvalidToken
		}
		if err := tx.Model(&models.User{}).Where("id = ?", v.UserID).
			Update("email_verified", true).Error; err != nil {
			return err
		}
		return tx.Delete(&v).Error
	})
}

func (s *AuthService) sendVerification(user *models.User) error {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return err
	}
	v := models.EmailVerification{
		UserID:    user.ID,
		Token:     hex.EncodeToString(buf),
		ExpiresAt: time.Now().Add(48 * time.Hour),
	}
	if err := s.db.Create(&v).Error; err != nil {
		return err
	}
	return s.email.SendVerificationEmail(user, v.Token)
}

func (s *AuthService) generateToken(userID uuid.UUID) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID.String(),
		"exp":     time.Now().Add(time.Hour * 24 * 7).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *AuthService) ValidateToken(tokenString string) (*middleware.TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		userIDStr, ok := claims["user_id"].(string)
		if !ok {
			return nil, ErrInvalidToken
		}
		userID, err := uuid.Parse(userIDStr)
		if err != nil {
			return nil, ErrInvalidToken
		}
		return &middleware.TokenClaims{UserID: userID}, nil
	}

	return nil, ErrInvalidToken
}
