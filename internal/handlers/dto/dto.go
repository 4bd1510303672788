package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"taskdeck/internal/models"
	"taskdeck/internal/service"

	"github.com/google/uuid"
)

type CreateTaskRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Priority    models.Priority `json:"priority"`
	DueDate     *time.Time      `json:"dueDate,omitempty"`
	ProjectID   *uuid.UUID      `json:"projectId,omitempty"`
}

func (r CreateTaskRequest) ToInput() service.CreateTaskInput {
	return service.CreateTaskInput{
		Title:       r.Title,
		Description: r.Description,
		Priority:    r.Priority,
		DueDate:     r.DueDate,
		ProjectID:   r.ProjectID,
	}
}

// UpdateTaskRequest keeps dueDate and projectId raw so an explicit null
// (clear the field) stays distinguishable from an absent key.
type UpdateTaskRequest struct {
	Title       *string          `json:"title,omitempty"`
	Description *string          `json:"description,omitempty"`
	Status      *models.Status   `json:"status,omitempty"`
	Priority    *models.Priority `json:"priority,omitempty"`
	DueDate     json.RawMessage  `json:"dueDate,omitempty"`
	ProjectID   json.RawMessage  `json:"projectId,omitempty"`
}

var jsonNull = []byte("null")

func (r UpdateTaskRequest) ToPatch() (service.TaskPatch, error) {
	patch := service.TaskPatch{
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
		Priority:    r.Priority,
	}

	if len(r.DueDate) > 0 {
		patch.SetDueDate = true
		if !bytes.Equal(r.DueDate, jsonNull) {
			var due time.Time
			if err := json.Unmarshal(r.DueDate, &due); err != nil {
				return patch, fmt.Errorf("parsing dueDate: %w", err)
			}
			patch.DueDate = &due
		}
	}

	if len(r.ProjectID) > 0 {
		patch.SetProjectID = true
		if !bytes.Equal(r.ProjectID, jsonNull) {
			var projectID uuid.UUID
			if err := json.Unmarshal(r.ProjectID, &projectID); err != nil {
				return patch, fmt.Errorf("parsing projectId: %w", err)
			}
			patch.ProjectID = &projectID
		}
	}

	return patch, nil
}

type CreateProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type UpdateProjectRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

func (r UpdateProjectRequest) ToPatch() service.ProjectPatch {
	return service.ProjectPatch{
		Name:        r.Name,
		Description: r.Description,
	}
}
