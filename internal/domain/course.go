package domain

import (
	"strconv"
	"strings"
	"time"
)

type Course struct {
	ID              int64     `json:"course_id"`
	Title           string    `json:"course_title"`
	CleanTitle      string    `json:"clean_title"`
	Subject         string    `json:"subject"`
	Level           string    `json:"level"`
	Price           float64   `json:"price"`
	IsPaid          bool      `json:"is_paid"`
	NumSubscribers  int64     `json:"num_subscribers"`
	NumReviews      int64     `json:"num_reviews"`
	NumLectures     int64     `json:"num_lectures"`
	ContentDuration float64   `json:"content_duration"`
	PublishedAt     time.Time `json:"published_timestamp"`
	URL             string    `json:"url"`
}

// ParsePrice normalizes the textual price variants found in raw catalog
// data. "Free", "FREE", "True", "$0" and empty values all become 0.
func ParsePrice(raw string) float64 {
	s := strings.TrimSpace(raw)
	switch strings.ToLower(s) {
	case "", "free", "true", "false":
		return 0
	}
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// ParsePaid reads an explicit is_paid flag, falling back to the price when
// the flag is missing or unrecognised.
func ParsePaid(raw string, price float64) bool {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "TRUE", "1", "YES":
		return true
	case "FALSE", "0", "NO":
		return false
	}
	return price > 0
}

// ParsePublished parses the catalog's published timestamp. Only the date
// part is significant; a zero time is returned for unparseable input.
func ParsePublished(raw string) time.Time {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}
	}
	if i := strings.IndexByte(s, 'T'); i >= 0 {
		s = s[:i]
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}
	}
	return t
}
