package controller

import (
	"errors"
	"net/http"
	"strings"

	dto "github.com/vibast-solutions/ms-go-mood-journal/app/dto/http"
	"github.com/vibast-solutions/ms-go-mood-journal/app/middleware"
	"github.com/vibast-solutions/ms-go-mood-journal/app/service"

	"github.com/labstack/echo/v4"
)

var errMissingIdentity = errors.New("missing user_id in context")

func currentUserID(ctx echo.Context) (string, error) {
	userID, ok := ctx.Get(middleware.UserIDKey).(string)
	if !ok || userID == "" {
		return "", errMissingIdentity
	}
	return userID, nil
}

// validationMessage strips the sentinel prefix so clients see only the detail.
func validationMessage(err error) string {
	return strings.TrimPrefix(err.Error(), service.ErrValidation.Error()+": ")
}

func tokenError(ctx echo.Context, err error, hint string) error {
	msg := "this link is invalid"
	if errors.Is(err, service.ErrTokenExpired) {
		msg = "this link has expired"
	}
	return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: msg, Hint: hint})
}

func internalError(ctx echo.Context) error {
	return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
}

func unauthorized(ctx echo.Context) error {
	return ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthorized"})
}
