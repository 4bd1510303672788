package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"taskdeck/internal/client"
	"taskdeck/internal/models"
	"taskdeck/internal/syncstore"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_SendsBearerToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]*models.Task{})
	}))
	defer server.Close()

	c := client.New(server.URL, "the-token")
	_, err := c.ListTasks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer the-token", gotAuth)
}

func TestClient_CreateTaskBody(t *testing.T) {
	var gotBody map[string]any
	created := models.Task{ID: uuid.New(), Title: "Buy milk", Status: models.StatusTodo, Priority: models.PriorityHigh}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/tasks", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(created)
	}))
	defer server.Close()

	c := client.New(server.URL, "t")
	task, err := c.CreateTask(context.Background(), syncstore.CreateTaskInput{
		Title:    "Buy milk",
		Priority: models.PriorityHigh,
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, task.ID)

	assert.Equal(t, "Buy milk", gotBody["title"])
	assert.Equal(t, "HIGH", gotBody["priority"])
	_, hasDue := gotBody["dueDate"]
	assert.False(t, hasDue, "unset optional fields stay out of the body")
}

func TestClient_PatchNullVersusAbsent(t *testing.T) {
	var gotRaw map[string]json.RawMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotRaw))
		json.NewEncoder(w).Encode(models.Task{ID: uuid.New(), Status: models.StatusTodo, Priority: models.PriorityMedium})
	}))
	defer server.Close()

	c := client.New(server.URL, "t")

	// cleared due date goes over the wire as an explicit null
	_, err := c.UpdateTask(context.Background(), uuid.New(), syncstore.TaskPatch{ClearDueDate: true})
	require.NoError(t, err)
	raw, present := gotRaw["dueDate"]
	require.True(t, present)
	assert.Equal(t, "null", string(raw))
	_, present = gotRaw["projectId"]
	assert.False(t, present, "untouched field absent entirely")

	// set due date is a timestamp, not a null
	due := time.Now().Add(time.Hour)
	_, err = c.UpdateTask(context.Background(), uuid.New(), syncstore.TaskPatch{DueDate: &due})
	require.NoError(t, err)
	raw, present = gotRaw["dueDate"]
	require.True(t, present)
	assert.NotEqual(t, "null", string(raw))
}

func TestClient_ErrorMapping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tasks":
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]any{"error": "authorization header required"})
		default:
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]any{"error": "NOT_FOUND", "message": "task not found"})
		}
	}))
	defer server.Close()

	c := client.New(server.URL, "")

	_, err := c.ListTasks(context.Background())
	require.Error(t, err)
	assert.True(t, client.IsUnauthorized(err))
	assert.False(t, client.IsNotFound(err))

	err = c.DeleteTask(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, client.IsNotFound(err))

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "task not found", apiErr.Message, "message field preferred over the code")
}

func TestClient_DeleteNoContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	c := client.New(server.URL, "t")
	assert.NoError(t, c.DeleteTask(context.Background(), uuid.New()))
}
