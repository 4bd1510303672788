// Package client is the typed consumer of the taskdeck HTTP API. The sync
// store drives it through the syncstore.API interface; nothing here caches.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"taskdeck/internal/models"
	"taskdeck/internal/syncstore"

	"github.com/google/uuid"
)

type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) ListTasks(ctx context.Context) ([]*models.Task, error) {
	var tasks []*models.Task
	if err := c.do(ctx, http.MethodGet, "/tasks", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) CreateTask(ctx context.Context, input syncstore.CreateTaskInput) (*models.Task, error) {
	body := map[string]any{
		"title":       input.Title,
		"description": input.Description,
	}
	if input.Priority != "" {
		body["priority"] = input.Priority
	}
	if input.DueDate != nil {
		body["dueDate"] = input.DueDate
	}
	if input.ProjectID != nil {
		body["projectId"] = input.ProjectID
	}

	var task models.Task
	if err := c.do(ctx, http.MethodPost, "/tasks", body, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) UpdateTask(ctx context.Context, id uuid.UUID, patch syncstore.TaskPatch) (*models.Task, error) {
	body := taskPatchBody(patch)

	var task models.Task
	if err := c.do(ctx, http.MethodPatch, "/tasks/"+id.String(), body, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) DeleteTask(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/tasks/"+id.String(), nil, nil)
}

func (c *Client) ListProjects(ctx context.Context) ([]*models.Project, error) {
	var projects []*models.Project
	if err := c.do(ctx, http.MethodGet, "/projects", nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (c *Client) CreateProject(ctx context.Context, input syncstore.CreateProjectInput) (*models.Project, error) {
	body := map[string]any{
		"name":        input.Name,
		"description": input.Description,
	}

	var project models.Project
	if err := c.do(ctx, http.MethodPost, "/projects", body, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (c *Client) UpdateProject(ctx context.Context, id uuid.UUID, patch syncstore.ProjectPatch) (*models.Project, error) {
	body := map[string]any{}
	if patch.Name != nil {
		body["name"] = *patch.Name
	}
	if patch.Description != nil {
		body["description"] = *patch.Description
	}

	var project models.Project
	if err := c.do(ctx, http.MethodPatch, "/projects/"+id.String(), body, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (c *Client) DeleteProject(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/projects/"+id.String(), nil, nil)
}

// taskPatchBody keeps absent fields out of the body and writes explicit nulls
// for cleared ones, so the server's PATCH merge sees exactly the intent.
func taskPatchBody(patch syncstore.TaskPatch) map[string]any {
	body := map[string]any{}
	if patch.Title != nil {
		body["title"] = *patch.Title
	}
	if patch.Description != nil {
		body["description"] = *patch.Description
	}
	if patch.Status != nil {
		body["status"] = *patch.Status
	}
	if patch.Priority != nil {
		body["priority"] = *patch.Priority
	}
	if patch.DueDate != nil {
		body["dueDate"] = *patch.DueDate
	} else if patch.ClearDueDate {
		body["dueDate"] = nil
	}
	if patch.ProjectID != nil {
		body["projectId"] = *patch.ProjectID
	} else if patch.ClearProjectID {
		body["projectId"] = nil
	}
	return body
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{
			Status:  resp.StatusCode,
			Message: errorMessage(resp),
		}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

func errorMessage(resp *http.Response) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return resp.Status
	}
	if payload.Message != "" {
		return payload.Message
	}
	if payload.Error != "" {
		return payload.Error
	}
	return resp.Status
}
