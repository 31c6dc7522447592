package domain

const (
	LevelAll        = "All Levels"
	LevelNoPref     = "No preference"
	CourseTypeAll   = "All"
	CourseTypeFree  = "Free"
	CourseTypePaid  = "Paid"
	DefaultDuration = "Any"
	DefaultPopular  = "Medium"
)

// UserProfile is the stored preference profile owned by the profile store.
type UserProfile struct {
	Email                string   `json:"email" bson:"email"`
	Name                 string   `json:"name,omitempty" bson:"name,omitempty"`
	UserID               string   `json:"user_id,omitempty" bson:"user_id,omitempty"`
	PreferredTopics      []string `json:"preferred_topics" bson:"preferred_topics"`
	SkillLevel           string   `json:"skill_level" bson:"skill_level"`
	CourseType           string   `json:"course_type" bson:"course_type"`
	PreferredDuration    string   `json:"preferred_duration" bson:"preferred_duration"`
	PopularityImportance string   `json:"popularity_importance" bson:"popularity_importance"`
	Favorites            []string `json:"favorites" bson:"favorites"`
}

// Preferences returns the profile's filter inputs with the stored defaults
// applied for empty fields.
func (p *UserProfile) Preferences() Preferences {
	prefs := Preferences{
		Topics:     append([]string(nil), p.PreferredTopics...),
		Level:      p.SkillLevel,
		CourseType: p.CourseType,
		Duration:   p.PreferredDuration,
		Popularity: p.PopularityImportance,
	}
	if prefs.Level == "" {
		prefs.Level = LevelAll
	}
	if prefs.CourseType == "" {
		prefs.CourseType = CourseTypeAll
	}
	if prefs.Duration == "" {
		prefs.Duration = DefaultDuration
	}
	if prefs.Popularity == "" {
		prefs.Popularity = DefaultPopular
	}
	return prefs
}

// Preferences is the user-facing view of a profile's filter settings.
type Preferences struct {
	Topics     []string `json:"topics"`
	Level      string   `json:"level"`
	CourseType string   `json:"course_type"`
	Duration   string   `json:"duration"`
	Popularity string   `json:"popularity"`
}

// ProfileUpdate carries the fields of a partial profile update. Nil fields
// are left untouched.
type ProfileUpdate struct {
	PreferredTopics      []string
	SkillLevel           *string
	CourseType           *string
	PreferredDuration    *string
	PopularityImportance *string
	Favorites            []string
}
