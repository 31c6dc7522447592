package handler

import (
	"net/http"
	"strings"

	"github.com/actuallystonmai/course-recommender/internal/domain"
	"github.com/actuallystonmai/course-recommender/internal/service"
)

type preferencesRequest struct {
	Email      string   `json:"email" validate:"required,email"`
	Topics     []string `json:"topics" validate:"max=50,dive,max=100"`
	Level      string   `json:"level" validate:"max=50"`
	CourseType string   `json:"course_type" validate:"omitempty,oneof=All Free Paid"`
	Duration   string   `json:"duration" validate:"max=50"`
	Popularity string   `json:"popularity" validate:"max=50"`
}

type favoriteRequest struct {
	Email      string `json:"email" validate:"required,email"`
	CourseID   int64  `json:"course_id" validate:"required,gt=0"`
	IsFavorite bool   `json:"is_favorite"`
}

type interactionRequest struct {
	UserID     string `json:"user_id" validate:"required,max=100"`
	CourseID   int64  `json:"course_id" validate:"required,gt=0"`
	Rating     int    `json:"rating" validate:"gte=0,lte=5"`
	IsFavorite bool   `json:"is_favorite"`
}

type emailParam struct {
	Email string `json:"email" validate:"required,email"`
}

func emailFromQuery(r *http.Request) (string, error) {
	p := emailParam{Email: strings.TrimSpace(r.URL.Query().Get("email"))}
	if err := validateStruct(&p); err != nil {
		return "", err
	}
	return p.Email, nil
}

// GET /user/preferences?email=
func (h *Handler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	email, err := emailFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
		return
	}

	view, err := h.service.Preferences(r.Context(), email)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// POST /user/preferences
func (h *Handler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var req preferencesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
		return
	}

	view, err := h.service.UpdatePreferences(r.Context(), req.Email, service.PreferencesInput{
		Topics:     req.Topics,
		Level:      req.Level,
		CourseType: req.CourseType,
		Duration:   req.Duration,
		Popularity: req.Popularity,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// GET /user/favorites?email=
func (h *Handler) GetFavorites(w http.ResponseWriter, r *http.Request) {
	email, err := emailFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
		return
	}

	courses, err := h.service.Favorites(r.Context(), email)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, FavoritesResponse{Email: email, Favorites: courses})
}

// POST /user/favorites
func (h *Handler) SetFavorite(w http.ResponseWriter, r *http.Request) {
	var req favoriteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
		return
	}

	if err := h.service.SetFavorite(r.Context(), req.Email, req.CourseID, req.IsFavorite); err != nil {
		writeServiceError(w, r, err)
		return
	}
	msg := "added to favorites"
	if !req.IsFavorite {
		msg = "removed from favorites"
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "success", Message: msg})
}

// POST /interactions
func (h *Handler) AddInteraction(w http.ResponseWriter, r *http.Request) {
	var req interactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
		return
	}

	err := h.service.AddInteraction(r.Context(), domain.Interaction{
		UserID:     req.UserID,
		CourseID:   req.CourseID,
		Rating:     req.Rating,
		IsFavorite: req.IsFavorite,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, StatusResponse{Status: "success"})
}
