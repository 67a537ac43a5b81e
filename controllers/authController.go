package controllers

import (
	"MediBook/handlers"

	"github.com/gin-gonic/gin"
)

// AuthController registers the doctor authentication routes.
type AuthController struct {
	handler *handlers.AuthHandler
}

func NewAuthController(handler *handlers.AuthHandler) *AuthController {
	return &AuthController{handler: handler}
}

func (ac *AuthController) RegisterRoutes(router *gin.Engine) {
	auth := router.Group("/auth")
	auth.POST("/register", ac.handler.Register)
	auth.POST("/login", ac.handler.Login)
	auth.POST("/refresh", ac.handler.Refresh)
}
