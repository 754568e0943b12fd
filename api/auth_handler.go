package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rpupo63/portfolio-cms-backend/auth"
	"github.com/rpupo63/portfolio-cms-backend/database"
	"github.com/rpupo63/portfolio-cms-backend/errs"
	"github.com/rpupo63/portfolio-cms-backend/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const maxJSONBodySize = 1 << 20

type authHandler struct {
	responder     Responder
	logger        zerolog.Logger
	adminUserRepo *database.AdminUserRepo
	tokens        *auth.TokenManager
	metrics       *httpMetrics
	now           func() time.Time
}

func newAuthHandler(adminUserRepo *database.AdminUserRepo, tokens *auth.TokenManager, metrics *httpMetrics) authHandler {
	logger := log.With().Str("handlerName", "authHandler").Logger()

	return authHandler{
		responder:     NewResponder(logger),
		logger:        logger,
		adminUserRepo: adminUserRepo,
		tokens:        tokens,
		metrics:       metrics,
		now:           time.Now,
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return errs.NewInvalidJSONError(err)
	}
	return nil
}

// login exchanges admin credentials for a session token
// @Summary Login
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Admin credentials"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} ErrorResponse "Bad Request - Missing username or password"
// @Failure 401 {object} ErrorResponse "Unauthorized - Invalid credentials"
// @Router /api/auth/login [post]
func (h authHandler) login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		req.Username = strings.TrimSpace(req.Username)
		if req.Username == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("username"))
			return
		}
		if req.Password == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("password"))
			return
		}

		user, err := h.checkCredentials(r.Context(), req.Username, req.Password)
		if errs.IsInvalidCredentialsError(err) {
			h.metrics.login(false)
			h.logger.Warn().Str("username", req.Username).Msg("failed login attempt")
		}
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.adminUserRepo.TouchLastLogin(r.Context(), user.ID, h.now()); err != nil {
			h.logger.Warn().Err(err).Uint("userID", user.ID).Msg("failed to record last login")
		}

		token, expiresAt, err := h.tokens.Issue(user.ID, user.Username)
		if err != nil {
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("failed to issue token", err))
			return
		}

		h.metrics.login(true)
		h.responder.WriteJSON(w, LoginResponse{
			Token:     token,
			ExpiresAt: expiresAt.UTC(),
			User:      userResponse(user),
		})
	}
}

// checkCredentials returns the admin matching username whose stored hash
// accepts password
func (h authHandler) checkCredentials(ctx context.Context, username, password string) (*models.AdminUser, error) {
	user, err := h.adminUserRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, wrapDatabaseError("find admin user", "admin user", err)
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, password) {
		return nil, errs.NewInvalidCredentialsError()
	}
	return user, nil
}

// verify confirms the bearer token still belongs to an existing admin
// @Summary Verify token
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} VerifyResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/auth/verify [post]
func (h authHandler) verify() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Authentication handled by middleware

		user, err := h.currentUser(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, VerifyResponse{Valid: true, User: userResponse(user)})
	}
}

// changePassword replaces the admin password after checking the current one
// @Summary Change password
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param passwords body ChangePasswordRequest true "Current and new password"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/auth/change-password [post]
func (h authHandler) changePassword() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Authentication handled by middleware

		var req ChangePasswordRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if req.CurrentPassword == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("currentPassword"))
			return
		}
		if req.NewPassword == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("newPassword"))
			return
		}
		if err := auth.ValidateNewPassword(req.NewPassword); err != nil {
			h.responder.WriteError(w, errs.NewInvalidFieldError("newPassword", err.Error()))
			return
		}

		user, err := h.currentUser(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if !auth.CheckPassword(user.PasswordHash, req.CurrentPassword) {
			h.responder.WriteError(w, errs.NewUnauthorizedError("current password is incorrect"))
			return
		}

		hash, err := auth.HashPassword(req.NewPassword)
		if err != nil {
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("failed to hash password", err))
			return
		}
		if err := h.adminUserRepo.UpdatePasswordHash(r.Context(), user.ID, hash); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update password", "admin user", err))
			return
		}

		h.logger.Info().Uint("userID", user.ID).Msg("admin password changed")
		h.responder.WriteJSON(w, MessageResponse{Message: "Password changed successfully"})
	}
}

// currentUser loads the admin named by the request's token claims
func (h authHandler) currentUser(r *http.Request) (*models.AdminUser, error) {
	claims, err := ctxGetClaims(r.Context())
	if err != nil {
		return nil, errs.NewInvalidTokenError()
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, errs.NewInvalidTokenError()
	}

	user, err := h.adminUserRepo.FindByID(r.Context(), userID)
	if err != nil {
		return nil, wrapDatabaseError("find admin user", "admin user", err)
	}
	if user == nil {
		return nil, errs.NewUserNotFoundError()
	}
	return user, nil
}

func userResponse(user *models.AdminUser) UserResponse {
	return UserResponse{ID: user.ID, Username: user.Username}
}
