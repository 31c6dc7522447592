package domain

import "time"

type Interaction struct {
	UserID     string    `json:"user_id"`
	CourseID   int64     `json:"course_id"`
	Rating     int       `json:"rating"`
	IsFavorite bool      `json:"is_favorite"`
	Timestamp  time.Time `json:"timestamp"`
}

// Liked reports whether the interaction signals a positive preference.
func (i Interaction) Liked() bool {
	return i.Rating >= 4 || i.IsFavorite
}
