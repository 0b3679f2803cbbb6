package controller

import (
	"errors"
	"net/http"

	dto "github.com/vibast-solutions/ms-go-mood-journal/app/dto/http"
	"github.com/vibast-solutions/ms-go-mood-journal/app/service"
	"github.com/vibast-solutions/ms-go-mood-journal/app/types"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type ProfileController struct {
	accounts *service.AccountService
}

func NewProfileController(accounts *service.AccountService) *ProfileController {
	return &ProfileController{accounts: accounts}
}

func (c *ProfileController) Show(ctx echo.Context) error {
	userID, err := currentUserID(ctx)
	if err != nil {
		return unauthorized(ctx)
	}

	user, err := c.accounts.Profile(ctx.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
		}
		logrus.WithError(err).WithField("user_id", userID).Error("Load profile failed")
		return internalError(ctx)
	}

	return ctx.JSON(http.StatusOK, dto.NewUserResponse(user))
}

func (c *ProfileController) Update(ctx echo.Context) error {
	req, err := types.NewUpdateProfileRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind profile request")
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
	}

	if err = req.Validate(); err != nil {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	}

	userID, err := currentUserID(ctx)
	if err != nil {
		return unauthorized(ctx)
	}

	user, err := c.accounts.UpdateProfile(ctx.Request().Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: validationMessage(err)})
		case errors.Is(err, service.ErrConflict):
			logrus.WithField("user_id", userID).Warn("Profile update failed: " + err.Error())
			return ctx.JSON(http.StatusConflict, dto.ErrorResponse{Error: err.Error()})
		case errors.Is(err, service.ErrUserNotFound):
			return ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
		}
		logrus.WithError(err).WithField("user_id", userID).Error("Profile update failed")
		return internalError(ctx)
	}

	logrus.WithField("user_id", userID).Info("Profile updated")
	return ctx.JSON(http.StatusOK, dto.NewUserResponse(user))
}
