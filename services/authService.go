package services

import (
	"MediBook/models"
	"MediBook/repositories"
	"MediBook/utils"
	"context"
	"errors"
	"fmt"
	"os"
)

// Auth failures surfaced to the handler layer.
var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrInvalidPromoCode    = errors.New("invalid promo code")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)

// RegistrationConflictError reports which unique field collided during
// registration.
type RegistrationConflictError struct {
	Field string
}

func (e *RegistrationConflictError) Error() string {
	return fmt.Sprintf("a doctor with this %s already exists", e.Field)
}

// LoginResponse carries the token pair and the signed-in doctor's
// public identity.
type LoginResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	DoctorID     uint   `json:"doctorId"`
	Name         string `json:"name"`
	RegNo        string `json:"regNo"`
	Email        string `json:"email"`
}

// AuthService handles doctor registration, login and token refresh.
type AuthService struct {
	doctors repositories.DoctorRepository
}

func NewAuthService(doctors repositories.DoctorRepository) *AuthService {
	return &AuthService{doctors: doctors}
}

// Register creates a doctor account. Registration is gated behind a
// promo code and rejects any email, registration number or phone
// already in use. The password is stored as a bcrypt hash only.
func (s *AuthService) Register(ctx context.Context, doctor *models.Doctor, promoCode string) error {
	if err := utils.ValidateRegistration(*doctor); err != nil {
		return err
	}
	if promoCode != os.Getenv("PROMO_CODE") {
		return ErrInvalidPromoCode
	}

	conflict, err := s.doctors.FindRegistrationConflict(ctx, doctor.Email, doctor.RegNo, doctor.Phone)
	if err != nil {
		return err
	}
	if conflict != "" {
		return &RegistrationConflictError{Field: conflict}
	}

	hash, err := utils.HashPassword(doctor.Password)
	if err != nil {
		return err
	}
	doctor.Password = hash

	return s.doctors.Create(ctx, doctor)
}

// Login verifies the credentials and issues a token pair. The refresh
// token is persisted so it can be revoked by overwriting.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	doctor, err := s.doctors.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrDoctorNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !utils.CheckPassword(doctor.Password, password) {
		return nil, ErrInvalidCredentials
	}

	accessToken, refreshToken, err := utils.GenerateTokens(doctor.ID, doctor.RegNo)
	if err != nil {
		return nil, err
	}
	if err := s.doctors.UpdateRefreshToken(ctx, doctor.ID, refreshToken); err != nil {
		return nil, err
	}

	return &LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		DoctorID:     doctor.ID,
		Name:         doctor.Name,
		RegNo:        doctor.RegNo,
		Email:        doctor.Email,
	}, nil
}

// Refresh exchanges a valid, still-stored refresh token for a new
// access token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := utils.ValidateToken(refreshToken)
	if err != nil {
		return "", ErrInvalidRefreshToken
	}
	doctorID, err := claims.DoctorIDValue()
	if err != nil {
		return "", ErrInvalidRefreshToken
	}

	doctor, err := s.doctors.GetByID(ctx, doctorID)
	if err != nil {
		if errors.Is(err, repositories.ErrDoctorNotFound) {
			return "", ErrInvalidRefreshToken
		}
		return "", err
	}
	if doctor.RefreshToken != refreshToken {
		return "", ErrInvalidRefreshToken
	}

	return utils.GenerateAccessToken(doctor.ID, doctor.RegNo)
}
