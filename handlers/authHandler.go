package handlers

import (
	"MediBook/middlewares"
	"MediBook/models"
	"MediBook/services"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// AuthHandler serves doctor registration, login and token refresh.
type AuthHandler struct {
	service *services.AuthService
}

func NewAuthHandler(service *services.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

type registerRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	RegNo     string `json:"regNo"`
	Phone     string `json:"phone"`
	Password  string `json:"password"`
	PromoCode string `json:"promoCode"`
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doctor := &models.Doctor{
		Name:     req.Name,
		Email:    req.Email,
		RegNo:    req.RegNo,
		Phone:    req.Phone,
		Password: req.Password,
	}
	if err := h.service.Register(c.Request.Context(), doctor, req.PromoCode); err != nil {
		var conflict *services.RegistrationConflictError
		switch {
		case errors.Is(err, services.ErrInvalidPromoCode):
			c.JSON(http.StatusForbidden, gin.H{"error": "Invalid promo code"})
		case errors.As(err, &conflict):
			c.JSON(http.StatusConflict, gin.H{"error": conflict.Error(), "field": conflict.Field})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful",
		"regNo":   doctor.RegNo,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		middlewares.HttpError(c, "Login failed", http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Refresh handles POST /auth/refresh.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	accessToken, err := h.service.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, services.ErrInvalidRefreshToken) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
			return
		}
		middlewares.HttpError(c, "Token refresh failed", http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"accessToken": accessToken})
}
