package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"taskdeck/internal/handlers/dto"
	"taskdeck/internal/logger"
	"taskdeck/internal/middleware"

	"go.uber.org/zap"
)

type ProjectHandler struct {
	ProjectService ProjectService
}

func NewProjectHandler(projectService ProjectService) *ProjectHandler {
	return &ProjectHandler{ProjectService: projectService}
}

func (h *ProjectHandler) GetProjects(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	owner := middleware.GetOwnerID(r.Context())
	if owner == "" {
		responseWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	projects, err := h.ProjectService.ListProjects(r.Context(), owner)
	if err != nil {
		logger.Error("HTTP: service error", err, zap.String("operation", "list_projects"))
		responseWithError(w, http.StatusInternalServerError, "failed to fetch projects")
		return
	}

	logger.Info("HTTP_OUT: projects listed",
		zap.Int("count", len(projects)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, projects)
}

func (h *ProjectHandler) PostProject(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	owner := middleware.GetOwnerID(r.Context())
	if owner == "" {
		responseWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var request dto.CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: failed to read JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	defer r.Body.Close()

	project, err := h.ProjectService.CreateProject(r.Context(), owner, request.Name, request.Description)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: service error", err,
			zap.String("operation", "create_project"),
			zap.Duration("ms", time.Since(start)))
		responseWithError(w, http.StatusInternalServerError, "failed to create project")
		return
	}

	logger.Info("HTTP_OUT: project created",
		zap.String("project_id", project.ID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithJSON(w, http.StatusCreated, project)
}

func (h *ProjectHandler) PatchProjectByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	owner := middleware.GetOwnerID(r.Context())
	if owner == "" {
		responseWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var request dto.UpdateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: failed to read JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	defer r.Body.Close()

	project, err := h.ProjectService.UpdateProject(r.Context(), owner, id, request.ToPatch())
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: service error", err, zap.String("operation", "update_project"))
		responseWithError(w, http.StatusInternalServerError, "failed to update project")
		return
	}

	logger.Info("HTTP_OUT: project updated",
		zap.String("project_id", project.ID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) DeleteProjectByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	owner := middleware.GetOwnerID(r.Context())
	if owner == "" {
		responseWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.ProjectService.DeleteProject(r.Context(), owner, id); err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: service error", err, zap.String("operation", "delete_project"))
		responseWithError(w, http.StatusInternalServerError, "failed to delete project")
		return
	}

	logger.Info("HTTP_OUT: project deleted",
		zap.String("project_id", id.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusNoContent))

	w.WriteHeader(http.StatusNoContent)
}
