package types

import (
	"strings"

	"github.com/vibast-solutions/ms-go-mood-journal/app/entity"

	"github.com/labstack/echo/v4"
)

type MoodRequest struct {
	Date    string `json:"date" form:"date" validate:"required,datetime=2006-01-02"`
	Time    string `json:"time" form:"time" validate:"required,datetime=15:04"`
	Color   string `json:"color" form:"color" validate:"required,oneof=red yellow green blue"`
	Trigger string `json:"trigger" form:"trigger" validate:"max=200"`
	Emotion string `json:"emotion" form:"emotion" validate:"max=100"`
	Detail  string `json:"detail" form:"detail" validate:"max=5000"`
}

func NewMoodRequestFromContext(ctx echo.Context) (*MoodRequest, error) {
	var body MoodRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	return &body, nil
}

// Validate trims the free-text fields before checking them.
func (r *MoodRequest) Validate() error {
	r.Date = strings.TrimSpace(r.Date)
	r.Time = strings.TrimSpace(r.Time)
	r.Color = strings.ToLower(strings.TrimSpace(r.Color))
	r.Trigger = strings.TrimSpace(r.Trigger)
	r.Emotion = strings.TrimSpace(r.Emotion)
	r.Detail = strings.TrimSpace(r.Detail)

	return validateStruct(r)
}

type MoodListRequest struct {
	Color string `json:"color" query:"color" validate:"omitempty,oneof=red yellow green blue"`
	From  string `json:"from" query:"from" validate:"omitempty,datetime=2006-01-02"`
	To    string `json:"to" query:"to" validate:"omitempty,datetime=2006-01-02"`
	Limit int    `json:"limit" query:"limit" validate:"omitempty,min=1,max=500"`
}

func NewMoodListRequestFromContext(ctx echo.Context) (*MoodListRequest, error) {
	var query MoodListRequest
	if err := (&echo.DefaultBinder{}).BindQueryParams(ctx, &query); err != nil {
		return nil, err
	}

	return &query, nil
}

func (r *MoodListRequest) Validate() error {
	return validateStruct(r)
}

func (r *MoodListRequest) Filter() entity.MoodFilter {
	return entity.MoodFilter{
		Color: r.Color,
		From:  r.From,
		To:    r.To,
		Limit: r.Limit,
	}
}
