package v1

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"trackguide/internal/models"
	"trackguide/internal/services"
)

func TestHandleUpsertProgressValidation(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		svc        *fakeProgressService
		wantStatus int
	}{
		{
			name:       "missing task id",
			body:       `{"date":"2024-03-10","completed":true}`,
			svc:        &fakeProgressService{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing date",
			body:       `{"task_id":1,"completed":true}`,
			svc:        &fakeProgressService{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed date",
			body:       `{"task_id":1,"date":"10/03/2024"}`,
			svc:        &fakeProgressService{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "notes too long",
			body:       `{"task_id":1,"date":"2024-03-10","notes":"` + longString(201) + `"}`,
			svc:        &fakeProgressService{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown task",
			body:       `{"task_id":99,"date":"2024-03-10"}`,
			svc:        &fakeProgressService{err: services.ErrTaskNotFound},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(nil, tt.svc, nil)
			w := performRequest(router, http.MethodPost, "/api/v1/progress", tt.body)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus == http.StatusBadRequest && tt.svc.upsertParams != nil {
				t.Error("service should not be called on invalid input")
			}
		})
	}
}

func TestHandleUpsertProgress(t *testing.T) {
	day := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
	svc := &fakeProgressService{upsertResult: &models.ProgressEntry{
		ID: 5, UserID: testUserID, TaskID: 1, Day: day,
		Completed: true, TaskName: "Read", TaskCategory: "learning",
	}}
	router := newTestRouter(nil, svc, nil)

	// Time-of-day in the request must not matter; the recorder keys
	// on the calendar date alone.
	w := performRequest(router, http.MethodPost, "/api/v1/progress",
		`{"task_id":1,"date":"2024-03-10T15:22:00Z","completed":true}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}
	if svc.upsertParams == nil {
		t.Fatal("service was not called")
	}
	if svc.upsertParams.UserID != testUserID {
		t.Errorf("UserID = %q, want the authenticated user", svc.upsertParams.UserID)
	}
	if !svc.upsertParams.Completed {
		t.Error("Completed not forwarded")
	}

	var response getProgressResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.TaskName != "Read" || response.TaskCategory != "learning" {
		t.Errorf("joined task fields = %q/%q, want Read/learning", response.TaskName, response.TaskCategory)
	}
	if !response.Date.Equal(day) {
		t.Errorf("Date = %v, want normalized %v", response.Date, day)
	}
}

func TestHandleGetProgressWindow(t *testing.T) {
	t.Run("both bounds", func(t *testing.T) {
		svc := &fakeProgressService{}
		router := newTestRouter(nil, svc, nil)

		w := performRequest(router, http.MethodGet,
			"/api/v1/progress?start_date=2024-03-01&end_date=2024-03-31", "")

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		if svc.rangeParams == nil {
			t.Fatal("service was not called")
		}
		if svc.rangeParams.StartDate.IsZero() || svc.rangeParams.EndDate.IsZero() {
			t.Error("window bounds not forwarded")
		}
	})

	t.Run("no bounds returns everything", func(t *testing.T) {
		svc := &fakeProgressService{rangeResult: []*models.ProgressEntry{
			{ID: 1, TaskID: 1, Day: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)},
			{ID: 2, TaskID: 1, Day: time.Date(2024, time.March, 2, 0, 0, 0, 0, time.UTC)},
		}}
		router := newTestRouter(nil, svc, nil)

		w := performRequest(router, http.MethodGet, "/api/v1/progress", "")

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		if !svc.rangeParams.StartDate.IsZero() || !svc.rangeParams.EndDate.IsZero() {
			t.Error("unexpected window bounds")
		}

		var response []getProgressResponse
		if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(response) != 2 {
			t.Errorf("len(response) = %d, want 2", len(response))
		}
	})

	t.Run("malformed start date", func(t *testing.T) {
		router := newTestRouter(nil, &fakeProgressService{}, nil)

		w := performRequest(router, http.MethodGet, "/api/v1/progress?start_date=bogus", "")

		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}
	})
}

func TestHandleMonthlyReport(t *testing.T) {
	t.Run("month out of range", func(t *testing.T) {
		for _, month := range []string{"0", "13", "abc"} {
			svc := &fakeReportService{}
			router := newTestRouter(nil, nil, svc)

			w := performRequest(router, http.MethodGet, "/api/v1/progress/report/2024/"+month, "")

			if w.Code != http.StatusBadRequest {
				t.Errorf("month %q: status = %d, want 400", month, w.Code)
			}
			if svc.month != 0 {
				t.Errorf("month %q: service should not be called", month)
			}
		}
	})

	t.Run("report payload field names", func(t *testing.T) {
		svc := &fakeReportService{result: &services.MonthlyReport{
			Month: "2024-03",
			Summary: services.ReportSummary{
				TotalTasks:            1,
				TotalEntries:          3,
				CompletedEntries:      2,
				OverallCompletionRate: 66.67,
			},
			TaskStats: []services.TaskStats{{
				TaskName:       "Read",
				Category:       "learning",
				TotalDays:      3,
				CompletedDays:  2,
				CompletionRate: 66.67,
				Dates: []services.DateStat{{
					Date:      time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
					Completed: true,
				}},
			}},
		}}
		router := newTestRouter(nil, nil, svc)

		w := performRequest(router, http.MethodGet, "/api/v1/progress/report/2024/3", "")

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
		}
		if svc.userID != testUserID || svc.year != 2024 || svc.month != 3 {
			t.Errorf("service called with (%q, %d, %d)", svc.userID, svc.year, svc.month)
		}

		// The payload's field names are a compatibility contract.
		var payload map[string]json.RawMessage
		if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		for _, key := range []string{"month", "summary", "taskStats"} {
			if _, ok := payload[key]; !ok {
				t.Errorf("missing top-level field %q", key)
			}
		}

		var summary map[string]json.RawMessage
		if err := json.Unmarshal(payload["summary"], &summary); err != nil {
			t.Fatalf("failed to decode summary: %v", err)
		}
		for _, key := range []string{"totalTasks", "totalEntries", "completedEntries", "overallCompletionRate"} {
			if _, ok := summary[key]; !ok {
				t.Errorf("missing summary field %q", key)
			}
		}

		var stats []map[string]json.RawMessage
		if err := json.Unmarshal(payload["taskStats"], &stats); err != nil {
			t.Fatalf("failed to decode taskStats: %v", err)
		}
		for _, key := range []string{"taskName", "category", "totalDays", "completedDays", "completionRate", "dates"} {
			if _, ok := stats[0][key]; !ok {
				t.Errorf("missing taskStats field %q", key)
			}
		}
	})
}
