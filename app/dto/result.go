package dto

import (
	"time"

	"github.com/vibast-solutions/ms-go-mood-journal/app/entity"
)

type RegisterResult struct {
	User        *entity.User
	EmailQueued bool
}

type LoginResult struct {
	User         *entity.User
	SessionToken string
	ExpiresAt    time.Time
	Redirect     string
}

type CountEntry struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

type MoodStats struct {
	Total         int            `json:"total"`
	ByColor       map[string]int `json:"by_color"`
	TopEmotions   []CountEntry   `json:"top_emotions"`
	TopTriggers   []CountEntry   `json:"top_triggers"`
	LastSevenDays int            `json:"last_seven_days"`
	LastEntryAt   *time.Time     `json:"last_entry_at"`
}

type Dashboard struct {
	Recent []*entity.MoodEntry `json:"recent"`
	Stats  *MoodStats          `json:"stats"`
}
