package api

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rpupo63/portfolio-cms-backend/database"
	"github.com/rpupo63/portfolio-cms-backend/errs"
	"github.com/rpupo63/portfolio-cms-backend/models"
	"github.com/rpupo63/portfolio-cms-backend/storage"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// room for the text fields of a multipart form on top of the image itself
	formFieldAllowance = 1 << 20
	multipartMemory    = 8 << 20
)

type projectHandler struct {
	responder   Responder
	logger      zerolog.Logger
	projectRepo *database.ProjectRepo
	images      storage.ImageStore
	maxFileSize int64
	metrics     *httpMetrics
	now         func() time.Time
}

func newProjectHandler(projectRepo *database.ProjectRepo, images storage.ImageStore, maxFileSize int64, metrics *httpMetrics) projectHandler {
	logger := log.With().Str("handlerName", "projectHandler").Logger()

	return projectHandler{
		responder:   NewResponder(logger),
		logger:      logger,
		projectRepo: projectRepo,
		images:      images,
		maxFileSize: maxFileSize,
		metrics:     metrics,
		now:         time.Now,
	}
}

// projectForm is the validated content of a create or update form
type projectForm struct {
	title        string
	description  string
	category     string
	features     []string
	liveURL      *string
	imageAlt     *string
	displayOrder int
	isActive     bool
	image        *multipart.FileHeader
}

// getPublicProjects lists the active projects
// @Summary Get public projects
// @Tags Projects
// @Produce json
// @Success 200 {array} PublicProject
// @Failure 500 {object} ErrorResponse
// @Router /api/projects [get]
func (h projectHandler) getPublicProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projects, err := h.projectRepo.FindActive(r.Context())
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find active projects", "projects", err))
			return
		}

		response := make([]PublicProject, 0, len(projects))
		for _, project := range projects {
			response = append(response, newPublicProject(project))
		}

		h.responder.WriteJSON(w, response)
	}
}

// getAdminProjects lists every project including inactive ones
// @Summary Get all projects
// @Tags Projects
// @Produce json
// @Security BearerAuth
// @Success 200 {array} AdminProject
// @Failure 401 {object} ErrorResponse
// @Router /api/projects/admin [get]
func (h projectHandler) getAdminProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Authentication handled by middleware

		projects, err := h.projectRepo.FindAll(r.Context())
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find projects", "projects", err))
			return
		}

		response := make([]AdminProject, 0, len(projects))
		for _, project := range projects {
			response = append(response, newAdminProject(project))
		}

		h.responder.WriteJSON(w, response)
	}
}

// getProject retrieves a specific project by ID
// @Summary Get project
// @Tags Projects
// @Produce json
// @Param projectID path int true "Project ID"
// @Success 200 {object} AdminProject
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid projectID"
// @Failure 404 {object} ErrorResponse "Not Found - Project not found"
// @Router /api/projects/{projectID} [get]
func (h projectHandler) getProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := projectIDParam(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project, err := h.projectRepo.FindByID(r.Context(), projectID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find project", "project", err))
			return
		}

		if project == nil {
			h.responder.WriteError(w, errs.NewNotFound("project"))
			return
		}

		h.responder.WriteJSON(w, newAdminProject(project))
	}
}

// createProject creates a new project from a multipart or url-encoded form
// @Summary Create project
// @Tags Projects
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Success 201 {object} CreatedResponse
// @Failure 400 {object} ErrorResponse "Bad Request - Missing or invalid field, file too large"
// @Failure 401 {object} ErrorResponse
// @Router /api/projects [post]
func (h projectHandler) createProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Authentication handled by middleware

		form, err := h.parseProjectForm(w, r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		imageURL, err := h.storeImage(r.Context(), form.image)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project := models.Project{
			Title:        form.title,
			Description:  form.description,
			Category:     form.category,
			Features:     models.NewProjectFeatures(form.features),
			LiveURL:      form.liveURL,
			ImageURL:     imageURL,
			ImageAlt:     form.imageAlt,
			DisplayOrder: form.displayOrder,
			IsActive:     true,
		}

		if err := h.projectRepo.Add(r.Context(), &project); err != nil {
			h.discardImage(imageURL)
			h.responder.WriteError(w, wrapDatabaseError("create project", "project", err))
			return
		}

		h.metrics.projectWrite("create")
		h.logger.Info().Uint("projectID", project.ID).Msg("project created")
		h.responder.WriteJSONWithStatus(w, http.StatusCreated, CreatedResponse{
			ID:      project.ID,
			Message: "Project created successfully",
		})
	}
}

// updateProject replaces every field of a project. The image only changes when
// a new one is uploaded.
// @Summary Update project
// @Tags Projects
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param projectID path int true "Project ID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/projects/{projectID} [put]
func (h projectHandler) updateProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Authentication handled by middleware

		projectID, err := projectIDParam(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		form, err := h.parseProjectForm(w, r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		existing, err := h.projectRepo.FindByID(r.Context(), projectID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find project", "project", err))
			return
		}

		imageURL, err := h.storeImage(r.Context(), form.image)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		found, err := h.projectRepo.Update(r.Context(), projectID, database.ProjectChanges{
			Title:        form.title,
			Description:  form.description,
			Category:     form.category,
			Features:     form.features,
			LiveURL:      form.liveURL,
			ImageAlt:     form.imageAlt,
			ImageURL:     imageURL,
			DisplayOrder: form.displayOrder,
			IsActive:     form.isActive,
		})
		if err != nil {
			h.discardImage(imageURL)
			h.responder.WriteError(w, wrapDatabaseError("update project", "project", err))
			return
		}

		if !found {
			// nothing references the new upload
			h.discardImage(imageURL)
			h.logger.Warn().Uint("projectID", projectID).Msg("update matched no project")
		} else {
			h.metrics.projectWrite("update")
			if imageURL != nil && existing != nil && existing.ImageURL != nil && *existing.ImageURL != *imageURL {
				h.discardImage(existing.ImageURL)
			}
		}

		h.responder.WriteJSON(w, MessageResponse{Message: "Project updated successfully"})
	}
}

// deleteProject removes a project and the image it owns
// @Summary Delete project
// @Tags Projects
// @Produce json
// @Security BearerAuth
// @Param projectID path int true "Project ID"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} ErrorResponse "Not Found - Project not found"
// @Router /api/projects/{projectID} [delete]
func (h projectHandler) deleteProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Authentication handled by middleware

		projectID, err := projectIDParam(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project, err := h.projectRepo.FindByID(r.Context(), projectID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find project", "project", err))
			return
		}
		if project == nil {
			h.responder.WriteError(w, errs.NewNotFound("project"))
			return
		}

		if err := h.projectRepo.Delete(r.Context(), projectID); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete project", "project", err))
			return
		}

		h.discardImage(project.ImageURL)
		h.metrics.projectWrite("delete")
		h.logger.Info().Uint("projectID", projectID).Msg("project deleted")
		h.responder.WriteJSON(w, MessageResponse{Message: "Project deleted successfully"})
	}
}

func projectIDParam(r *http.Request) (uint, error) {
	projectIDStr := chi.URLParam(r, "projectID")
	if projectIDStr == "" {
		return 0, errs.NewMissingRequiredFieldError("id")
	}

	projectID, err := strconv.ParseUint(projectIDStr, 10, 64)
	if err != nil || projectID == 0 {
		return 0, errs.NewInvalidFieldError("id", "must be a positive integer")
	}
	return uint(projectID), nil
}

func (h projectHandler) parseProjectForm(w http.ResponseWriter, r *http.Request) (*projectForm, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize+formFieldAllowance)

	// ParseMultipartForm hides url-encoded read errors behind ErrNotMultipart
	if err := r.ParseForm(); err != nil {
		return nil, h.formError(err)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return nil, h.formError(err)
	}

	form := &projectForm{
		title:       strings.TrimSpace(r.PostFormValue("title")),
		description: strings.TrimSpace(r.PostFormValue("description")),
		category:    strings.TrimSpace(r.PostFormValue("category")),
		features:    parseFeatures(r.PostForm["features"]),
		liveURL:     optionalField(r.PostFormValue("live_url")),
		imageAlt:    optionalField(r.PostFormValue("image_alt")),
		isActive:    r.PostFormValue("is_active") == "true",
	}

	switch {
	case form.title == "":
		return nil, errs.NewMissingRequiredFieldError("title")
	case form.description == "":
		return nil, errs.NewMissingRequiredFieldError("description")
	case form.category == "":
		return nil, errs.NewMissingRequiredFieldError("category")
	case len(form.features) == 0:
		return nil, errs.NewMissingRequiredFieldError("features")
	}

	if raw := strings.TrimSpace(r.PostFormValue("display_order")); raw != "" {
		displayOrder, err := strconv.Atoi(raw)
		if err != nil {
			return nil, errs.NewInvalidFieldError("display_order", "must be an integer")
		}
		form.displayOrder = displayOrder
	}

	if r.MultipartForm != nil {
		if files := r.MultipartForm.File["image"]; len(files) > 0 {
			if files[0].Size > h.maxFileSize {
				return nil, errs.NewMaxBodySizeExceededError(h.maxFileSize)
			}
			form.image = files[0]
		}
	}

	return form, nil
}

func (h projectHandler) formError(err error) error {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return errs.NewMaxBodySizeExceededError(h.maxFileSize)
	}
	return errs.NewMalformedPayloadError("form", err)
}

// parseFeatures reads repeated `features` fields as one feature each and a
// single field as a comma separated list
func parseFeatures(values []string) []string {
	if len(values) == 1 {
		values = strings.Split(values[0], ",")
	}

	features := make([]string, 0, len(values))
	for _, value := range values {
		if value = strings.TrimSpace(value); value != "" {
			features = append(features, value)
		}
	}
	return features
}

func optionalField(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

// storeImage saves an uploaded image and returns its URL. Files that are not
// one of the accepted image types are skipped and yield a nil URL.
func (h projectHandler) storeImage(ctx context.Context, header *multipart.FileHeader) (*string, error) {
	if header == nil {
		return nil, nil
	}
	if !storage.AllowedImage(header.Filename) {
		h.logger.Info().Str("filename", header.Filename).Msg("skipping upload with unsupported extension")
		return nil, nil
	}

	file, err := header.Open()
	if err != nil {
		return nil, errs.NewMalformedPayloadError("image", err)
	}
	defer file.Close()

	url, err := h.images.Save(ctx, storage.UniqueName(header.Filename, h.now()), file)
	if err != nil {
		return nil, errs.NewInternalErrorWithCause("failed to store image", err)
	}
	return &url, nil
}

// discardImage removes an image the store owns. Failures are logged only, the
// request outcome does not depend on them.
func (h projectHandler) discardImage(url *string) {
	if url == nil || !h.images.Owns(*url) {
		return
	}
	if err := h.images.Delete(context.Background(), *url); err != nil {
		h.logger.Warn().Err(err).Str("imageURL", *url).Msg("failed to delete image")
	}
}
