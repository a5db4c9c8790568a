package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"awareness_bell/internal/models"
	"awareness_bell/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(_ context.Context, username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(_ context.Context, username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockBell struct {
	running     bool
	startErr    error
	stopErr     error
	startCalled int
	stopCalled  int
}

func (m *mockBell) Start(context.Context) (service.Ack, error) {
	m.startCalled++
	if m.startErr != nil {
		return "", m.startErr
	}
	if m.running {
		return service.AckAlreadyInState, nil
	}
	m.running = true
	return service.AckTransitioned, nil
}

func (m *mockBell) Stop(context.Context) (service.Ack, error) {
	m.stopCalled++
	if m.stopErr != nil {
		return "", m.stopErr
	}
	if !m.running {
		return service.AckAlreadyInState, nil
	}
	m.running = false
	return service.AckTransitioned, nil
}

type mockMonitoring struct {
	state models.BellState
	err   error
}

func (m *mockMonitoring) GetState(context.Context) (models.BellState, error) {
	return m.state, m.err
}

type mockEventLog struct {
	resp     []models.BellEvent
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
}

func (m *mockEventLog) List(_ context.Context, f service.LogFilter) ([]models.BellEvent, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	return m.resp, m.err
}

type mockQuotes struct {
	quote     string
	pickErr   error
	count     int
	reloadErr error
	reloads   int
}

func (m *mockQuotes) PickRandom() (string, error) { return m.quote, m.pickErr }
func (m *mockQuotes) Len() int                    { return m.count }
func (m *mockQuotes) Reload() (int, error) {
	m.reloads++
	return m.count, m.reloadErr
}

// mockFeed hands out one channel the test can push into.
type mockFeed struct {
	mu       sync.Mutex
	ch       chan models.Notification
	canceled bool
}

func newMockFeed() *mockFeed { return &mockFeed{ch: make(chan models.Notification, 4)} }

func (m *mockFeed) Subscribe() (<-chan models.Notification, func()) {
	return m.ch, func() {
		m.mu.Lock()
		m.canceled = true
		m.mu.Unlock()
	}
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

func withAuth(req *http.Request) *http.Request {
	for k, vv := range authHeader("valid") {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	return req
}
