package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/avdeev-m/ticketline/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockEventUseCase struct {
	mock.Mock
}

func (m *MockEventUseCase) List(ctx context.Context) ([]domain.Event, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Event), args.Error(1)
}

func (m *MockEventUseCase) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Event), args.Error(1)
}

func TestEventHandler_list(t *testing.T) {
	mockService := &MockEventUseCase{}
	handler := NewEventHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/events", nil)

	events := []domain.Event{
		{ID: "event-1", Title: "Go Conference", StartDate: time.Now().Add(24 * time.Hour), Status: domain.EventStatusPublished},
		{ID: "event-2", Title: "Rust Meetup", StartDate: time.Now().Add(48 * time.Hour), Status: domain.EventStatusPublished},
	}
	mockService.On("List", c.Request.Context()).Return(events, nil)

	handler.list(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response []eventResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(t, response, 2)
	assert.Equal(t, "event-1", response[0].ID)

	mockService.AssertExpectations(t)
}

func TestEventHandler_get(t *testing.T) {
	mockService := &MockEventUseCase{}
	handler := NewEventHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "id", Value: "event-1"}}
	c.Request = httptest.NewRequest("GET", "/events/event-1", nil)

	event := &domain.Event{ID: "event-1", Title: "Go Conference", AvailableTickets: 42}
	mockService.On("GetByID", c.Request.Context(), "event-1").Return(event, nil)

	handler.get(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response eventResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 42, response.AvailableTickets)
}

func TestEventHandler_get_NotFound(t *testing.T) {
	mockService := &MockEventUseCase{}
	handler := NewEventHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "id", Value: "missing"}}
	c.Request = httptest.NewRequest("GET", "/events/missing", nil)

	mockService.On("GetByID", c.Request.Context(), "missing").Return(nil, domain.ErrNotFound)

	handler.get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
