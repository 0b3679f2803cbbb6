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

type MoodController struct {
	moods    *service.MoodService
	accounts *service.AccountService
}

func NewMoodController(moods *service.MoodService, accounts *service.AccountService) *MoodController {
	return &MoodController{moods: moods, accounts: accounts}
}

func (c *MoodController) List(ctx echo.Context) error {
	req, err := types.NewMoodListRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind mood list query")
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid query parameters"})
	}

	if err = req.Validate(); err != nil {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	}

	journal, err := c.journal(ctx)
	if err != nil {
		return unauthorized(ctx)
	}

	entries, err := journal.List(ctx.Request().Context(), req.Filter())
	if err != nil {
		logrus.WithError(err).Error("List moods failed")
		return internalError(ctx)
	}

	return ctx.JSON(http.StatusOK, dto.MoodListResponse{Entries: entries, Count: len(entries)})
}

func (c *MoodController) Create(ctx echo.Context) error {
	req, err := types.NewMoodRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind mood request")
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
	}

	journal, err := c.journal(ctx)
	if err != nil {
		return unauthorized(ctx)
	}

	entry, err := journal.Create(ctx.Request().Context(), req)
	if err != nil {
		return c.moodError(ctx, err, "Create mood failed")
	}

	logrus.WithField("mood_id", entry.ID).Info("Mood entry created")
	return ctx.JSON(http.StatusCreated, entry)
}

func (c *MoodController) Show(ctx echo.Context) error {
	journal, err := c.journal(ctx)
	if err != nil {
		return unauthorized(ctx)
	}

	entry, err := journal.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return c.moodError(ctx, err, "Load mood failed")
	}

	return ctx.JSON(http.StatusOK, entry)
}

func (c *MoodController) Update(ctx echo.Context) error {
	req, err := types.NewMoodRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind mood request")
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
	}

	journal, err := c.journal(ctx)
	if err != nil {
		return unauthorized(ctx)
	}

	entry, err := journal.Update(ctx.Request().Context(), ctx.Param("id"), req)
	if err != nil {
		return c.moodError(ctx, err, "Update mood failed")
	}

	logrus.WithField("mood_id", entry.ID).Info("Mood entry updated")
	return ctx.JSON(http.StatusOK, entry)
}

func (c *MoodController) Delete(ctx echo.Context) error {
	journal, err := c.journal(ctx)
	if err != nil {
		return unauthorized(ctx)
	}

	id := ctx.Param("id")
	if err = journal.Delete(ctx.Request().Context(), id); err != nil {
		return c.moodError(ctx, err, "Delete mood failed")
	}

	logrus.WithField("mood_id", id).Info("Mood entry deleted")
	return ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "Mood entry deleted."})
}

func (c *MoodController) Stats(ctx echo.Context) error {
	journal, err := c.journal(ctx)
	if err != nil {
		return unauthorized(ctx)
	}

	stats, err := journal.Stats(ctx.Request().Context())
	if err != nil {
		logrus.WithError(err).Error("Mood stats failed")
		return internalError(ctx)
	}

	return ctx.JSON(http.StatusOK, stats)
}

func (c *MoodController) Dashboard(ctx echo.Context) error {
	userID, err := currentUserID(ctx)
	if err != nil {
		return unauthorized(ctx)
	}

	user, err := c.accounts.Profile(ctx.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return unauthorized(ctx)
		}
		logrus.WithError(err).WithField("user_id", userID).Error("Dashboard failed")
		return internalError(ctx)
	}

	journal, err := c.moods.For(userID)
	if err != nil {
		return unauthorized(ctx)
	}

	dashboard, err := journal.Dashboard(ctx.Request().Context())
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID).Error("Dashboard failed")
		return internalError(ctx)
	}

	return ctx.JSON(http.StatusOK, dto.DashboardResponse{
		User:   dto.NewUserResponse(user),
		Recent: dashboard.Recent,
		Stats:  dashboard.Stats,
	})
}

func (c *MoodController) journal(ctx echo.Context) (*service.Journal, error) {
	userID, err := currentUserID(ctx)
	if err != nil {
		logrus.Warn("Mood request without user_id in context")
		return nil, err
	}
	return c.moods.For(userID)
}

func (c *MoodController) moodError(ctx echo.Context, err error, logMsg string) error {
	switch {
	case errors.Is(err, service.ErrValidation):
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: validationMessage(err)})
	case errors.Is(err, service.ErrMoodNotFound):
		return ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
	}
	logrus.WithError(err).Error(logMsg)
	return internalError(ctx)
}
