package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/navikt/meetingsview/internal/models"
	"github.com/navikt/meetingsview/internal/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockViewService is a mock implementation of ViewServicer
type MockViewService struct {
	mock.Mock
}

func (m *MockViewService) Mount(ctx context.Context) (*view.MeetingsView, error) {
	args := m.Called(ctx)
	v, _ := args.Get(0).(*view.MeetingsView)
	return v, args.Error(1)
}

func (m *MockViewService) State(ctx context.Context, id string) (*models.ViewState, error) {
	args := m.Called(ctx, id)
	state, _ := args.Get(0).(*models.ViewState)
	return state, args.Error(1)
}

func (m *MockViewService) Unmount(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func TestNewSSEManager(t *testing.T) {
	mockService := new(MockViewService)

	sseManager := NewSSEManager(mockService, time.Minute, nil)
	defer sseManager.Shutdown()

	assert.NotNil(t, sseManager)
	assert.NotNil(t, sseManager.server)
	assert.True(t, sseManager.server.AutoReplay)
	assert.False(t, sseManager.server.AutoStream)
	assert.Equal(t, mockService, sseManager.views)
}

func TestSSEServeHTTP_CORSPreflight(t *testing.T) {
	sseManager := NewSSEManager(new(MockViewService), time.Minute, nil)
	defer sseManager.Shutdown()

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodOptions, "/events", nil)

	sseManager.ServeHTTP(recorder, request)

	assert.Equal(t, "*", recorder.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Content-Type", recorder.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "GET, OPTIONS", recorder.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestSSEServeHTTP_RejectsPost(t *testing.T) {
	sseManager := NewSSEManager(new(MockViewService), time.Minute, nil)
	defer sseManager.Shutdown()

	recorder := httptest.NewRecorder()
	sseManager.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/events?stream=x", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, recorder.Code)
}

func TestTrackCreatesStream(t *testing.T) {
	mockService := new(MockViewService)
	sseManager := NewSSEManager(mockService, time.Minute, nil)
	defer sseManager.Shutdown()

	sseManager.Track("view-1")

	assert.True(t, sseManager.server.StreamExists("view-1"))
	sseManager.mu.Lock()
	assert.Contains(t, sseManager.pending, "view-1")
	sseManager.mu.Unlock()

	// Publishing to an unknown stream is ignored
	sseManager.NotifyPopulated("other")
	sseManager.NotifyPopulated("view-1")
	mockService.AssertNotCalled(t, "Unmount", mock.Anything, mock.Anything)
}

func TestSubscribeTimeoutUnmountsView(t *testing.T) {
	mockService := new(MockViewService)
	unmounted := make(chan struct{})
	mockService.On("Unmount", mock.Anything, "view-1").Return(nil).Run(func(mock.Arguments) {
		close(unmounted)
	}).Once()

	sseManager := NewSSEManager(mockService, 20*time.Millisecond, nil)
	defer sseManager.Shutdown()

	sseManager.Track("view-1")

	select {
	case <-unmounted:
	case <-time.After(2 * time.Second):
		t.Fatal("view was not unmounted")
	}

	assert.Eventually(t, func() bool {
		return !sseManager.server.StreamExists("view-1")
	}, time.Second, 10*time.Millisecond)
	mockService.AssertExpectations(t)
}

func TestShutdownStopsPendingTimers(t *testing.T) {
	mockService := new(MockViewService)
	sseManager := NewSSEManager(mockService, 20*time.Millisecond, nil)

	sseManager.Track("view-1")
	sseManager.Shutdown()

	time.Sleep(60 * time.Millisecond)
	mockService.AssertNotCalled(t, "Unmount", mock.Anything, mock.Anything)
}
