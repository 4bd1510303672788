package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"taskdeck/internal/handlers/dto"
	"taskdeck/internal/logger"
	"taskdeck/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TaskHandler struct {
	TaskService TaskService
}

func NewTaskHandler(taskService TaskService) *TaskHandler {
	return &TaskHandler{TaskService: taskService}
}

func (h *TaskHandler) GetTasks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	owner := middleware.GetOwnerID(r.Context())
	if owner == "" {
		responseWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	tasks, err := h.TaskService.ListTasks(r.Context(), owner)
	if err != nil {
		logger.Error("HTTP: service error", err, zap.String("operation", "list_tasks"))
		responseWithError(w, http.StatusInternalServerError, "failed to fetch tasks")
		return
	}

	logger.Info("HTTP_OUT: tasks listed",
		zap.Int("count", len(tasks)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) PostTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	owner := middleware.GetOwnerID(r.Context())
	if owner == "" {
		responseWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var request dto.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: failed to read JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	defer r.Body.Close()

	task, err := h.TaskService.CreateTask(r.Context(), owner, request.ToInput())
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: service error", err,
			zap.String("operation", "create_task"),
			zap.Duration("ms", time.Since(start)))
		responseWithError(w, http.StatusInternalServerError, "failed to create task")
		return
	}

	logger.Info("HTTP_OUT: task created",
		zap.String("task_id", task.ID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) PatchTaskByID(w http.ResponseWriter, r *http.Request) {
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

	var request dto.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: failed to read JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	defer r.Body.Close()

	patch, err := request.ToPatch()
	if err != nil {
		logger.Warn("HTTP: invalid patch", zap.Error(err))
		responseWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	task, err := h.TaskService.UpdateTask(r.Context(), owner, id, patch)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: service error", err, zap.String("operation", "update_task"))
		responseWithError(w, http.StatusInternalServerError, "failed to update task")
		return
	}

	logger.Info("HTTP_OUT: task updated",
		zap.String("task_id", task.ID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) DeleteTaskByID(w http.ResponseWriter, r *http.Request) {
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

	if err := h.TaskService.DeleteTask(r.Context(), owner, id); err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: service error", err, zap.String("operation", "delete_task"))
		responseWithError(w, http.StatusInternalServerError, "failed to delete task")
		return
	}

	logger.Info("HTTP_OUT: task deleted",
		zap.String("task_id", id.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusNoContent))

	w.WriteHeader(http.StatusNoContent)
}

func (h *TaskHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: health check")

	if err := h.TaskService.HealthCheck(r.Context()); err != nil {
		responseWithJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "down"})
		return
	}
	responseWithJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idParam := chi.URLParam(r, "id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		logger.Warn("HTTP: failed to parse id",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "invalid id: "+err.Error())
		return uuid.Nil, false
	}
	if id == uuid.Nil {
		logger.Warn("HTTP: nil id", zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "id must not be empty")
		return uuid.Nil, false
	}
	return id, true
}
