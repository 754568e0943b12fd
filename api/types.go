package api

import (
	"time"

	"github.com/rpupo63/portfolio-cms-backend/models"
)

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	projectHandler projectHandler
	authHandler    authHandler
	healthHandler  healthHandler
}

// ErrorResponse represents an error response from the API
type ErrorResponse struct {
	Error   string `json:"error" example:"missing required field"`
	Message string `json:"message,omitempty" example:"An unexpected error occurred"`
	Status  string `json:"status" example:"error"`
	Field   string `json:"field,omitempty" example:"title"`
	Details string `json:"details,omitempty" example:"Missing required field: title"`
	Cause   string `json:"cause,omitempty" example:"Underlying error cause"`
}

// MessageResponse is returned by write endpoints that have nothing else to report
type MessageResponse struct {
	Message string `json:"message"`
}

// CreatedResponse is returned when a project is created
type CreatedResponse struct {
	ID      uint   `json:"id"`
	Message string `json:"message"`
}

// PublicProject is the shape served to site visitors
type PublicProject struct {
	ID           uint     `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Category     string   `json:"category"`
	Features     []string `json:"features"`
	LiveURL      *string  `json:"live_url"`
	ImageURL     *string  `json:"image_url"`
	ImageAlt     *string  `json:"image_alt"`
	DisplayOrder int      `json:"display_order"`
}

// AdminProject adds the bookkeeping columns the admin page needs
type AdminProject struct {
	PublicProject
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newPublicProject(p *models.Project) PublicProject {
	return PublicProject{
		ID:           p.ID,
		Title:        p.Title,
		Description:  p.Description,
		Category:     p.Category,
		Features:     p.FeatureValues(),
		LiveURL:      p.LiveURL,
		ImageURL:     p.ImageURL,
		ImageAlt:     p.ImageAlt,
		DisplayOrder: p.DisplayOrder,
	}
}

func newAdminProject(p *models.Project) AdminProject {
	return AdminProject{
		PublicProject: newPublicProject(p),
		IsActive:      p.IsActive,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// UserResponse identifies the logged in admin
type UserResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

type VerifyResponse struct {
	Valid bool         `json:"valid"`
	User  UserResponse `json:"user"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type HealthResponse struct {
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	Environment string `json:"environment"`
	Uptime      string `json:"uptime"`
}
