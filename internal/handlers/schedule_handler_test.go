package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vigilancia/guard-roster-backend/internal/database"
	"github.com/vigilancia/guard-roster-backend/internal/middleware"
	"github.com/vigilancia/guard-roster-backend/internal/models"
	"github.com/vigilancia/guard-roster-backend/internal/services"
	"github.com/vigilancia/guard-roster-backend/pkg/jwt"
)

// Minimal in-memory stores backing the handler tests.

type memGuardStore struct {
	guards map[uuid.UUID]models.Guard
}

func (m *memGuardStore) Add(guard *models.Guard) error {
	m.guards[guard.ID] = *guard
	return nil
}

func (m *memGuardStore) Get(id uuid.UUID) (*models.Guard, error) {
	guard, ok := m.guards[id]
	if !ok {
		return nil, fmt.Errorf("guard %s: %w", id, database.ErrNotFound)
	}
	return &guard, nil
}

func (m *memGuardStore) GetByUsername(username string) (*models.Guard, error) {
	for _, guard := range m.guards {
		if guard.Username == username {
			g := guard
			return &g, nil
		}
	}
	return nil, fmt.Errorf("guard %q: %w", username, database.ErrNotFound)
}

func (m *memGuardStore) GetAll() ([]models.Guard, error) {
	out := make([]models.Guard, 0, len(m.guards))
	for _, guard := range m.guards {
		out = append(out, guard)
	}
	return out, nil
}

func (m *memGuardStore) Put(guard *models.Guard) error {
	m.guards[guard.ID] = *guard
	return nil
}

func (m *memGuardStore) Delete(id uuid.UUID) error {
	delete(m.guards, id)
	return nil
}

type memScheduleStore struct {
	schedules map[string]models.Schedule
}

func (m *memScheduleStore) Get(id string) (*models.Schedule, error) {
	schedule, ok := m.schedules[id]
	if !ok {
		return nil, fmt.Errorf("schedule %s: %w", id, database.ErrNotFound)
	}
	return &schedule, nil
}

func (m *memScheduleStore) GetAll() ([]models.Schedule, error) {
	out := make([]models.Schedule, 0, len(m.schedules))
	for _, schedule := range m.schedules {
		out = append(out, schedule)
	}
	return out, nil
}

func (m *memScheduleStore) Put(schedule *models.Schedule) error {
	m.schedules[schedule.ID] = *schedule
	return nil
}

func (m *memScheduleStore) Delete(id string) error {
	if _, ok := m.schedules[id]; !ok {
		return fmt.Errorf("schedule %s: %w", id, database.ErrNotFound)
	}
	delete(m.schedules, id)
	return nil
}

func (m *memScheduleStore) DeleteByGuard(guardID uuid.UUID) error {
	for id, schedule := range m.schedules {
		if schedule.GuardID == guardID {
			delete(m.schedules, id)
		}
	}
	return nil
}

type scheduleFixture struct {
	router    *gin.Engine
	jwt       *jwt.Service
	guards    *memGuardStore
	schedules *memScheduleStore
}

func newScheduleHandlerFixture(t *testing.T) *scheduleFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	guards := &memGuardStore{guards: map[uuid.UUID]models.Guard{}}
	schedules := &memScheduleStore{schedules: map[string]models.Schedule{}}

	jwtService := jwt.NewService("test-access-secret", "test-refresh-secret", time.Hour, 24*time.Hour)
	scheduleService := services.NewScheduleService(schedules, guards, logger)
	overviewService := services.NewOverviewService(schedules, &noopAbsenceStore{}, logger)
	auditService := services.NewAuditService(nil, false)

	handler := NewScheduleHandler(scheduleService, overviewService, auditService, logger)

	router := gin.New()
	authed := router.Group("", middleware.AuthMiddleware(jwtService))
	authed.POST("/schedules", handler.Submit)
	admin := router.Group("", middleware.AuthMiddleware(jwtService), middleware.RequireRole(jwt.RoleAdmin))
	admin.POST("/schedules/:id/approve", handler.Approve)
	admin.DELETE("/schedules/:id", handler.Reject)
	admin.GET("/overview/:year/:month", handler.Overview)

	return &scheduleFixture{router: router, jwt: jwtService, guards: guards, schedules: schedules}
}

type noopAbsenceStore struct{}

func (noopAbsenceStore) Add(*models.Absence) error          { return nil }
func (noopAbsenceStore) Get(string) (*models.Absence, error) { return nil, database.ErrNotFound }
func (noopAbsenceStore) GetAll() ([]models.Absence, error)  { return nil, nil }
func (noopAbsenceStore) Put(*models.Absence) error          { return nil }
func (noopAbsenceStore) Delete(string) error                { return nil }
func (noopAbsenceStore) DeleteByGuard(uuid.UUID) error      { return nil }

func (f *scheduleFixture) guardToken(t *testing.T, guard *models.Guard) string {
	t.Helper()
	token, err := f.jwt.GenerateAccessToken(guard.ID.String(), guard.Username, guard.Name, jwt.RoleGuard)
	require.NoError(t, err)
	return token
}

func (f *scheduleFixture) adminToken(t *testing.T) string {
	t.Helper()
	token, err := f.jwt.GenerateAccessToken("admin", "admin", "Administrator", jwt.RoleAdmin)
	require.NoError(t, err)
	return token
}

func (f *scheduleFixture) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestScheduleSubmitEndpoint(t *testing.T) {
	f := newScheduleHandlerFixture(t)

	ana := &models.Guard{ID: uuid.New(), Name: "Ana Pérez", Username: "apérez", Active: true}
	require.NoError(t, f.guards.Add(ana))
	token := f.guardToken(t, ana)

	t.Run("Created", func(t *testing.T) {
		w := f.do("POST", "/schedules", token, gin.H{
			"month":  5,
			"year":   2025,
			"shifts": gin.H{"2025-06-03": "shift1"},
		})

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), models.ScheduleID(ana.ID, 2025, 5))
		assert.Contains(t, w.Body.String(), `"status":"pending"`)
	})

	t.Run("Validation maps to 400", func(t *testing.T) {
		w := f.do("POST", "/schedules", token, gin.H{
			"month":  5,
			"year":   2025,
			"shifts": gin.H{"2025-07-03": "shift1"},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		w := f.do("POST", "/schedules", "", gin.H{})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestScheduleApproveEndpoint(t *testing.T) {
	f := newScheduleHandlerFixture(t)

	ana := &models.Guard{ID: uuid.New(), Name: "Ana Pérez", Username: "apérez", Active: true}
	luis := &models.Guard{ID: uuid.New(), Name: "Luis Gómez", Username: "lgómez", Active: true}
	require.NoError(t, f.guards.Add(ana))
	require.NoError(t, f.guards.Add(luis))

	submit := func(guard *models.Guard) string {
		w := f.do("POST", "/schedules", f.guardToken(t, guard), gin.H{
			"month":  5,
			"year":   2025,
			"shifts": gin.H{"2025-06-03": "shift1"},
		})
		require.Equal(t, http.StatusCreated, w.Code)
		return models.ScheduleID(guard.ID, 2025, 5)
	}

	anaID := submit(ana)
	luisID := submit(luis)
	admin := f.adminToken(t)

	t.Run("Guards cannot approve", func(t *testing.T) {
		w := f.do("POST", "/schedules/"+anaID+"/approve", f.guardToken(t, ana), nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Approve", func(t *testing.T) {
		w := f.do("POST", "/schedules/"+anaID+"/approve", admin, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"approved"`)
	})

	t.Run("Conflicting approval maps to 409", func(t *testing.T) {
		w := f.do("POST", "/schedules/"+luisID+"/approve", admin, nil)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "Ana Pérez")
	})

	t.Run("Unknown schedule maps to 404", func(t *testing.T) {
		w := f.do("POST", "/schedules/schedule_missing/approve", admin, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Reject deletes", func(t *testing.T) {
		w := f.do("DELETE", "/schedules/"+luisID, admin, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		_, err := f.schedules.Get(luisID)
		assert.Error(t, err)
	})
}

func TestOverviewEndpoint(t *testing.T) {
	f := newScheduleHandlerFixture(t)
	admin := f.adminToken(t)

	t.Run("Success", func(t *testing.T) {
		w := f.do("GET", "/overview/2025/5", admin, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"month":5`)
	})

	t.Run("Invalid month param", func(t *testing.T) {
		w := f.do("GET", "/overview/2025/x", admin, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
