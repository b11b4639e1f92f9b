package service

import (
	"errors"
	"strconv"

	"ajopay/config"
	"ajopay/internal/auth"
	"ajopay/internal/domain"
	"ajopay/internal/models"
	"ajopay/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailExists  = errors.New("email already registered")
	ErrPhoneExists  = errors.New("phone number already registered")
	ErrInvalidCreds = errors.New("invalid email or password")
)

type AuthService struct {
	cfg      *config.Config
	userRepo *repository.UserRepository
}

func NewAuthService(cfg *config.Config, userRepo *repository.UserRepository) *AuthService {
	return &AuthService{cfg: cfg, userRepo: userRepo}
}

func (s *AuthService) Register(fullName, email, phone, password, role string) (*models.User, string, string, error) {
	if _, err := s.userRepo.GetByEmail(email); err == nil {
		return nil, "", "", ErrEmailExists
	}
	var phonePtr *string
	if phone != "" {
		if _, err := s.userRepo.GetByPhone(phone); err == nil {
			return nil, "", "", ErrPhoneExists
		}
		phonePtr = &phone
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", "", err
	}
	u := &models.User{
		FullName:     fullName,
		Email:        email,
		Phone:        phonePtr,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.userRepo.Create(u); err != nil {
		return nil, "", "", err
	}
	access, refresh, err := s.tokenPair(u)
	if err != nil {
		return nil, "", "", err
	}
	return u, access, refresh, nil
}

func (s *AuthService) Login(email, password string) (*models.User, string, string, error) {
	u, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, "", "", ErrInvalidCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, "", "", ErrInvalidCreds
	}
	access, refresh, err := s.tokenPair(u)
	if err != nil {
		return nil, "", "", err
	}
	return u, access, refresh, nil
}

// LoginWithGoogle links or creates an account from a verified Google
// identity. Role is applied only on first creation.
func (s *AuthService) LoginWithGoogle(googleID, email, name, avatarURL, role string) (*models.User, string, string, bool, error) {
	created := false
	u, err := s.userRepo.GetByGoogleID(googleID)
	if err != nil {
		// Link by email when the user signed up with a password first.
		u, err = s.userRepo.GetByEmail(email)
		if err == nil {
			u.GoogleID = &googleID
			if u.AvatarURL == "" {
				u.AvatarURL = avatarURL
			}
			if err := s.userRepo.Update(u); err != nil {
				return nil, "", "", false, err
			}
		} else {
			if role != domain.RoleAgent {
				role = domain.RoleCustomer
			}
			u = &models.User{
				FullName:  name,
				Email:     email,
				GoogleID:  &googleID,
				AvatarURL: avatarURL,
				Role:      role,
			}
			if err := s.userRepo.Create(u); err != nil {
				return nil, "", "", false, err
			}
			created = true
		}
	}
	access, refresh, err := s.tokenPair(u)
	if err != nil {
		return nil, "", "", false, err
	}
	return u, access, refresh, created, nil
}

func (s *AuthService) ChangePassword(userID uint, current, next string) error {
	u, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)) != nil {
		return ErrInvalidCreds
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return s.userRepo.Update(u)
}

func (s *AuthService) RefreshToken(refreshToken string) (string, string, error) {
	claims, err := auth.ParseRefreshToken(&s.cfg.JWT, refreshToken)
	if err != nil {
		return "", "", err
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return "", "", auth.ErrInvalidToken
	}
	u, err := s.userRepo.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", auth.ErrInvalidToken
		}
		return "", "", err
	}
	return s.tokenPair(u)
}

func (s *AuthService) tokenPair(u *models.User) (string, string, error) {
	access, err := auth.GenerateAccessToken(&s.cfg.JWT, u.ID, u.Email, u.Role)
	if err != nil {
		return "", "", err
	}
	refresh, err := auth.GenerateRefreshToken(&s.cfg.JWT, u.ID)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}
