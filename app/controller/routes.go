package controller

import (
	"github.com/vibast-solutions/ms-go-mood-journal/app/middleware"

	"github.com/labstack/echo/v4"
)

type Controllers struct {
	Auth    *AuthController
	Profile *ProfileController
	Mood    *MoodController
	Health  *HealthController
}

func RegisterRoutes(e *echo.Echo, c Controllers, authMiddleware *middleware.AuthMiddleware) {
	e.GET("/healthz", c.Health.Health)

	auth := e.Group("/auth")
	auth.POST("/register", c.Auth.Register)
	auth.GET("/verify/:token", c.Auth.VerifyEmail)
	auth.POST("/login", c.Auth.Login)
	auth.POST("/forgot-password", c.Auth.ForgotPassword)
	auth.POST("/reset-password/:token", c.Auth.ResetPassword)
	auth.POST("/resend-verification", c.Auth.ResendVerification)

	authProtected := auth.Group("")
	authProtected.Use(authMiddleware.RequireSession)
	authProtected.POST("/logout", c.Auth.Logout)
	authProtected.POST("/change-password", c.Auth.ChangePassword)

	api := e.Group("/api")
	api.Use(authMiddleware.RequireSession)
	api.GET("/me", c.Profile.Show)
	api.PUT("/me", c.Profile.Update)
	api.GET("/dashboard", c.Mood.Dashboard)
	api.GET("/stats", c.Mood.Stats)
	api.GET("/moods", c.Mood.List)
	api.POST("/moods", c.Mood.Create)
	api.GET("/moods/:id", c.Mood.Show)
	api.PUT("/moods/:id", c.Mood.Update)
	api.DELETE("/moods/:id", c.Mood.Delete)
}
