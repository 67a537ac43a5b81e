package utils

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/o1egl/paseto"
)

const (
	// Set expiration times for access and refresh tokens.
	AccessTokenExpiry  = 24 * time.Hour
	RefreshTokenExpiry = 7 * 24 * time.Hour
)

// TokenClaims struct represents the data in the token (DoctorID, RegNo, Expiry).
type TokenClaims struct {
	DoctorID string    `json:"doctorId"`
	RegNo    string    `json:"regNo"`
	Expiry   time.Time `json:"expiry"`
}

// DoctorIDValue parses the claim's doctor id back to its numeric form.
func (c *TokenClaims) DoctorIDValue() (uint, error) {
	id, err := strconv.ParseUint(c.DoctorID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid doctor id in token: %w", err)
	}
	return uint(id), nil
}

// GetSymmetricKey retrieves the symmetric key from the environment variable.
// Ensures it has the correct length (32 bytes).
func GetSymmetricKey() []byte {
	key := os.Getenv("SYMMETRIC_KEY")
	if len(key) != 32 {
		log.Fatalf("SYMMETRIC_KEY must be 32 bytes long. Current length: %d", len(key))
	}
	return []byte(key)
}

// GenerateTokens generates both the access token and refresh token for the given doctor.
func GenerateTokens(doctorID uint, regNo string) (accessToken, refreshToken string, err error) {
	accessToken, err = generatePASEToken(doctorID, regNo, AccessTokenExpiry)
	if err != nil {
		log.Printf("Error generating access token: %v", err)
		return "", "", err
	}

	refreshToken, err = generatePASEToken(doctorID, regNo, RefreshTokenExpiry)
	if err != nil {
		log.Printf("Error generating refresh token: %v", err)
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

// GenerateAccessToken generates only the access token for a doctor.
func GenerateAccessToken(doctorID uint, regNo string) (string, error) {
	token, err := generatePASEToken(doctorID, regNo, AccessTokenExpiry)
	if err != nil {
		log.Printf("Error generating access token: %v", err)
		return "", err
	}
	return token, nil
}

// generatePASEToken generates a PASETO token for the given doctor and expiry duration.
func generatePASEToken(doctorID uint, regNo string, expiry time.Duration) (string, error) {
	claims := TokenClaims{
		DoctorID: strconv.FormatUint(uint64(doctorID), 10),
		RegNo:    regNo,
		Expiry:   time.Now().Add(expiry),
	}

	symmetricKey := GetSymmetricKey()
	token, err := paseto.NewV2().Encrypt(symmetricKey, claims, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return token, nil
}

// ValidateToken validates the given token string and checks for expiry.
func ValidateToken(tokenString string) (*TokenClaims, error) {
	claims, err := parseToken(tokenString)
	if err != nil {
		log.Printf("Token parsing failed: %v", err)
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if time.Now().After(claims.Expiry) {
		return nil, errors.New("token expired")
	}

	return claims, nil
}

// parseToken decrypts the token and extracts claims from it.
func parseToken(tokenString string) (*TokenClaims, error) {
	var claims TokenClaims
	symmetricKey := GetSymmetricKey()

	err := paseto.NewV2().Decrypt(tokenString, symmetricKey, &claims, nil)
	if err != nil {
		log.Printf("Token decryption failed: %v", err)
		return nil, fmt.Errorf("failed to decrypt token: %w", err)
	}

	return &claims, nil
}
