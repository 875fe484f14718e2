package v1

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"trackguide/internal/models"
	"trackguide/internal/services"
)

func TestHandleCreateTask(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)

	tests := []struct {
		name       string
		body       string
		svc        *fakeTaskService
		wantStatus int
	}{
		{
			name: "created",
			body: `{"name":"Read","category":"learning"}`,
			svc: &fakeTaskService{createResult: &models.Task{
				ID: 1, UserID: testUserID, Name: "Read", Category: "learning",
				IsActive: true, CreatedAt: now, UpdatedAt: now,
			}},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "missing name",
			body:       `{"category":"learning"}`,
			svc:        &fakeTaskService{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "name too long",
			body:       `{"name":"` + longString(101) + `"}`,
			svc:        &fakeTaskService{},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(tt.svc, nil, nil)
			w := performRequest(router, http.MethodPost, "/api/v1/tasks", tt.body)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus == http.StatusBadRequest && tt.svc.createParams != nil {
				t.Error("service should not be called on invalid input")
			}
		})
	}
}

func TestHandleCreateTaskScopesToUser(t *testing.T) {
	svc := &fakeTaskService{createResult: &models.Task{ID: 1, Name: "Run", IsActive: true}}
	router := newTestRouter(svc, nil, nil)

	performRequest(router, http.MethodPost, "/api/v1/tasks", `{"name":"Run"}`)

	if svc.createParams == nil {
		t.Fatal("service was not called")
	}
	if svc.createParams.UserID != testUserID {
		t.Errorf("UserID = %q, want the authenticated user", svc.createParams.UserID)
	}
}

func TestHandleGetTasks(t *testing.T) {
	svc := &fakeTaskService{activeTasks: []*models.Task{
		{ID: 2, Name: "Read", IsActive: true},
		{ID: 1, Name: "Run", IsActive: true},
	}}
	router := newTestRouter(svc, nil, nil)

	w := performRequest(router, http.MethodGet, "/api/v1/tasks", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var response []getTaskResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(response) != 2 {
		t.Fatalf("len(response) = %d, want 2", len(response))
	}
	if response[0].Name != "Read" || response[1].Name != "Run" {
		t.Errorf("order = %q, %q; want Read, Run", response[0].Name, response[1].Name)
	}
}

func TestHandleGetTask(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		svc := &fakeTaskService{getResult: &models.Task{ID: 5, Name: "Read", IsActive: false}}
		router := newTestRouter(svc, nil, nil)

		w := performRequest(router, http.MethodGet, "/api/v1/tasks/5", "")

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
		}
		if svc.gotTaskID != 5 {
			t.Errorf("task id = %d, want 5", svc.gotTaskID)
		}

		var response getTaskResponse
		if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if response.IsActive {
			t.Error("inactive task should keep is_active=false in the response")
		}
	})

	t.Run("not found", func(t *testing.T) {
		svc := &fakeTaskService{err: services.ErrTaskNotFound}
		router := newTestRouter(svc, nil, nil)

		w := performRequest(router, http.MethodGet, "/api/v1/tasks/5", "")

		if w.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", w.Code)
		}
	})
}

func TestHandleUpdateTask(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		body       string
		svc        *fakeTaskService
		wantStatus int
	}{
		{
			name:       "updated",
			path:       "/api/v1/tasks/7",
			body:       `{"name":"Read more"}`,
			svc:        &fakeTaskService{updateResult: &models.Task{ID: 7, Name: "Read more", IsActive: true}},
			wantStatus: http.StatusOK,
		},
		{
			name:       "not found",
			path:       "/api/v1/tasks/404",
			body:       `{"name":"x"}`,
			svc:        &fakeTaskService{err: services.ErrTaskNotFound},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "bad id",
			path:       "/api/v1/tasks/abc",
			body:       `{"name":"x"}`,
			svc:        &fakeTaskService{},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(tt.svc, nil, nil)
			w := performRequest(router, http.MethodPut, tt.path, tt.body)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestHandleDeleteTask(t *testing.T) {
	t.Run("soft delete", func(t *testing.T) {
		svc := &fakeTaskService{}
		router := newTestRouter(svc, nil, nil)

		w := performRequest(router, http.MethodDelete, "/api/v1/tasks/3", "")

		if w.Code != http.StatusNoContent {
			t.Fatalf("status = %d, want 204", w.Code)
		}
		if len(svc.deactivatedIDs) != 1 || svc.deactivatedIDs[0] != 3 {
			t.Errorf("deactivated ids = %v, want [3]", svc.deactivatedIDs)
		}
	})

	t.Run("not found", func(t *testing.T) {
		svc := &fakeTaskService{err: services.ErrTaskNotFound}
		router := newTestRouter(svc, nil, nil)

		w := performRequest(router, http.MethodDelete, "/api/v1/tasks/3", "")

		if w.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", w.Code)
		}
	})
}

func longString(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = 'a'
	}
	return string(b)
}
