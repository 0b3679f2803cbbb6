package entity

import "time"

const (
	ColorRed    = "red"
	ColorYellow = "yellow"
	ColorGreen  = "green"
	ColorBlue   = "blue"
)

// MoodColors is the fixed set of color categories, in display order.
var MoodColors = []string{ColorRed, ColorYellow, ColorGreen, ColorBlue}

type MoodEntry struct {
	ID        string     `json:"id" bson:"_id"`
	OwnerID   string     `json:"owner_id" bson:"owner_id"`
	Date      string     `json:"date" bson:"date"`
	Time      string     `json:"time" bson:"time"`
	Color     string     `json:"color" bson:"color"`
	Trigger   string     `json:"trigger" bson:"trigger"`
	Emotion   string     `json:"emotion" bson:"emotion"`
	Detail    string     `json:"detail" bson:"detail"`
	CreatedAt time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt *time.Time `json:"updated_at" bson:"updated_at"`
}

type MoodFilter struct {
	Color string
	From  string
	To    string
	Limit int
}

// Matches reports whether e passes the filter. Dates compare lexically, which
// is correct for the YYYY-MM-DD layout.
func (f MoodFilter) Matches(e *MoodEntry) bool {
	if f.Color != "" && e.Color != f.Color {
		return false
	}
	if f.From != "" && e.Date < f.From {
		return false
	}
	if f.To != "" && e.Date > f.To {
		return false
	}
	return true
}
