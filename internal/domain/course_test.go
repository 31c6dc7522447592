package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"Free", 0},
		{"FREE", 0},
		{"True", 0},
		{"$0", 0},
		{"", 0},
		{"20", 20},
		{"$19.99", 19.99},
		{"1,200", 1200},
		{"abc", 0},
		{"-5", 0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, ParsePrice(tt.raw), 1e-9, "raw=%q", tt.raw)
	}
}

func TestParsePaid(t *testing.T) {
	assert.True(t, ParsePaid("TRUE", 0))
	assert.True(t, ParsePaid("True", 0))
	assert.False(t, ParsePaid("False", 50))
	assert.True(t, ParsePaid("", 20))
	assert.False(t, ParsePaid("", 0))
}

func TestParsePublished(t *testing.T) {
	got := ParsePublished("2017-01-18T20:58:58Z")
	assert.Equal(t, time.Date(2017, 1, 18, 0, 0, 0, 0, time.UTC), got)

	assert.True(t, ParsePublished("not a date").IsZero())
	assert.True(t, ParsePublished("").IsZero())
}

func TestProfilePreferencesDefaults(t *testing.T) {
	p := &UserProfile{Email: "a@example.com"}
	prefs := p.Preferences()

	assert.Equal(t, LevelAll, prefs.Level)
	assert.Equal(t, CourseTypeAll, prefs.CourseType)
	assert.Equal(t, DefaultDuration, prefs.Duration)
	assert.Equal(t, DefaultPopular, prefs.Popularity)
	assert.Empty(t, prefs.Topics)
}

func TestInteractionLiked(t *testing.T) {
	assert.True(t, Interaction{Rating: 4}.Liked())
	assert.True(t, Interaction{Rating: 1, IsFavorite: true}.Liked())
	assert.False(t, Interaction{Rating: 3}.Liked())
}
