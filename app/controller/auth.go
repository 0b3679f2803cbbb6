package controller

import (
	"errors"
	"net/http"
	"time"

	dto "github.com/vibast-solutions/ms-go-mood-journal/app/dto/http"
	"github.com/vibast-solutions/ms-go-mood-journal/app/middleware"
	"github.com/vibast-solutions/ms-go-mood-journal/app/service"
	"github.com/vibast-solutions/ms-go-mood-journal/app/types"
	"github.com/vibast-solutions/ms-go-mood-journal/config"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type AuthController struct {
	accounts *service.AccountService
	session  config.SessionConfig
}

func NewAuthController(accounts *service.AccountService, session config.SessionConfig) *AuthController {
	return &AuthController{accounts: accounts, session: session}
}

func (c *AuthController) Register(ctx echo.Context) error {
	req, err := types.NewRegisterRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind register request")
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
	}

	if err = req.Validate(); err != nil {
		logrus.WithField("username", req.Username).Debug("Register validation failed")
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	}

	logrus.WithField("username", req.Username).Info("Register request received")
	result, err := c.accounts.Register(ctx.Request().Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			logrus.WithField("username", req.Username).Debug("Register rejected")
			return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: validationMessage(err)})
		}
		if errors.Is(err, service.ErrConflict) {
			logrus.WithField("username", req.Username).Warn("Register failed: " + err.Error())
			return ctx.JSON(http.StatusConflict, dto.ErrorResponse{Error: err.Error()})
		}
		logrus.WithError(err).WithField("username", req.Username).Error("Register failed")
		return internalError(ctx)
	}

	logrus.WithFields(logrus.Fields{
		"user_id":      result.User.ID,
		"email_queued": result.EmailQueued,
	}).Info("User registered")

	return ctx.JSON(http.StatusCreated, dto.RegisterResponse{
		User:    dto.NewUserResponse(result.User),
		Message: "Registration successful. Check your email to verify your account.",
	})
}

func (c *AuthController) VerifyEmail(ctx echo.Context) error {
	req, _ := types.NewVerifyEmailRequestFromContext(ctx)
	if err := req.Validate(); err != nil {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error(), Hint: dto.HintResend})
	}

	outcome, err := c.accounts.VerifyEmail(ctx.Request().Context(), req.Token)
	if err != nil {
		if errors.Is(err, service.ErrInvalidToken) || errors.Is(err, service.ErrTokenExpired) {
			logrus.WithError(err).Warn("Email verification failed")
			return tokenError(ctx, err, dto.HintResend)
		}
		logrus.WithError(err).Error("Email verification failed")
		return internalError(ctx)
	}

	message := "Email verified. You can now log in."
	if outcome == service.VerifyOutcomeAlreadyVerified {
		message = "Email already verified. You can log in."
	}
	logrus.WithField("outcome", outcome).Info("Email verification handled")
	return ctx.JSON(http.StatusOK, dto.VerifyResponse{Status: string(outcome), Message: message})
}

func (c *AuthController) Login(ctx echo.Context) error {
	req, err := types.NewLoginRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind login request")
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
	}

	if err = req.Validate(); err != nil {
		logrus.Debug("Login validation failed")
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	}

	logrus.WithField("username", req.Username).Info("Login request received")
	result, err := c.accounts.Login(ctx.Request().Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			logrus.WithField("username", req.Username).Warn("Login failed: invalid credentials")
			return ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "invalid username or password"})
		}
		if errors.Is(err, service.ErrAccountNotVerified) {
			logrus.WithField("username", req.Username).Warn("Login failed: account not verified")
			return ctx.JSON(http.StatusForbidden, dto.ErrorResponse{Error: err.Error(), Hint: dto.HintResend})
		}
		if errors.Is(err, service.ErrValidation) {
			return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: validationMessage(err)})
		}
		logrus.WithError(err).WithField("username", req.Username).Error("Login failed")
		return internalError(ctx)
	}

	ctx.SetCookie(c.sessionCookie(result.SessionToken, result.ExpiresAt))
	logrus.WithField("user_id", result.User.ID).Info("Login successful")
	return ctx.JSON(http.StatusOK, dto.LoginResponse{
		User:         dto.NewUserResponse(result.User),
		SessionToken: result.SessionToken,
		ExpiresAt:    result.ExpiresAt,
		Redirect:     result.Redirect,
	})
}

func (c *AuthController) Logout(ctx echo.Context) error {
	tokenString, _ := ctx.Get(middleware.SessionTokenKey).(string)
	userID, err := currentUserID(ctx)
	if err != nil {
		logrus.Warn("Logout failed: missing user_id in context")
		return unauthorized(ctx)
	}

	if err = c.accounts.Logout(ctx.Request().Context(), tokenString); err != nil {
		logrus.WithError(err).WithField("user_id", userID).Error("Logout failed")
		return internalError(ctx)
	}

	ctx.SetCookie(c.clearedCookie())
	logrus.WithField("user_id", userID).Info("Logout successful")
	return ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "Logged out."})
}

func (c *AuthController) ForgotPassword(ctx echo.Context) error {
	req, err := types.NewEmailRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind forgot password request")
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
	}

	if err = req.Validate(); err != nil {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	}

	message, err := c.accounts.ForgotPassword(ctx.Request().Context(), req.Email)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: validationMessage(err)})
		}
		logrus.WithError(err).Error("Forgot password failed")
		return internalError(ctx)
	}

	logrus.Info("Forgot password request handled")
	return ctx.JSON(http.StatusOK, dto.MessageResponse{Message: message})
}

func (c *AuthController) ResetPassword(ctx echo.Context) error {
	req, err := types.NewResetPasswordRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind reset password request")
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
	}

	err = c.accounts.ResetPassword(ctx.Request().Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidToken) || errors.Is(err, service.ErrTokenExpired) {
			logrus.WithError(err).Warn("Reset password failed")
			return tokenError(ctx, err, dto.HintForgot)
		}
		if errors.Is(err, service.ErrValidation) {
			return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: validationMessage(err)})
		}
		logrus.WithError(err).Error("Reset password failed")
		return internalError(ctx)
	}

	logrus.Info("Password reset")
	return ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "Password updated. You can now log in."})
}

func (c *AuthController) ResendVerification(ctx echo.Context) error {
	req, err := types.NewEmailRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind resend verification request")
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
	}

	if err = req.Validate(); err != nil {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	}

	message, err := c.accounts.ResendVerification(ctx.Request().Context(), req.Email)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: validationMessage(err)})
		}
		logrus.WithError(err).Error("Resend verification failed")
		return internalError(ctx)
	}

	logrus.Info("Resend verification request handled")
	return ctx.JSON(http.StatusOK, dto.MessageResponse{Message: message})
}

func (c *AuthController) ChangePassword(ctx echo.Context) error {
	req, err := types.NewChangePasswordRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind change password request")
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
	}

	if err = req.Validate(); err != nil {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	}

	userID, err := currentUserID(ctx)
	if err != nil {
		logrus.Warn("Change password failed: missing user_id in context")
		return unauthorized(ctx)
	}

	logrus.WithField("user_id", userID).Info("Change password request received")
	if err = c.accounts.ChangePassword(ctx.Request().Context(), userID, req); err != nil {
		if errors.Is(err, service.ErrPasswordMismatch) {
			logrus.WithField("user_id", userID).Warn("Change password failed: wrong current password")
			return ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: err.Error()})
		}
		if errors.Is(err, service.ErrValidation) {
			return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: validationMessage(err)})
		}
		if errors.Is(err, service.ErrInvalidSession) {
			return unauthorized(ctx)
		}
		logrus.WithError(err).WithField("user_id", userID).Error("Change password failed")
		return internalError(ctx)
	}

	logrus.WithField("user_id", userID).Info("Password changed")
	return ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "Password changed."})
}

func (c *AuthController) sessionCookie(value string, expiresAt time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     c.session.CookieName,
		Value:    value,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   c.session.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (c *AuthController) clearedCookie() *http.Cookie {
	return &http.Cookie{
		Name:     c.session.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.session.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}
