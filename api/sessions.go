package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Domenick1991/flightbooking/internal/monitoring"
	"github.com/Domenick1991/flightbooking/internal/session"
	"github.com/Domenick1991/flightbooking/pkg/logger"
)

const DefaultSessionIdleTTL = 30 * time.Minute

// SessionHandler keeps HTTP clients' sessions in memory, addressed by token.
// Each session runs the same commands as a TCP connection. HTTP has no
// disconnect, so a session unused for idleTTL is dropped as if it had quit.
type SessionHandler struct {
	newSession func() *session.Session
	idleTTL    time.Duration
	now        func() time.Time

	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

type sessionEntry struct {
	mu      sync.Mutex
	session *session.Session
	// lastUsed is guarded by SessionHandler.mu.
	lastUsed time.Time
}

type SessionOption func(*SessionHandler)

func WithIdleTTL(ttl time.Duration) SessionOption {
	return func(h *SessionHandler) {
		if ttl > 0 {
			h.idleTTL = ttl
		}
	}
}

func WithSessionClock(now func() time.Time) SessionOption {
	return func(h *SessionHandler) {
		h.now = now
	}
}

type commandRequest struct {
	Command string `json:"command" binding:"required"`
}

type commandResponse struct {
	Reply  string `json:"reply"`
	Closed bool   `json:"closed"`
}

func NewSessionHandler(newSession func() *session.Session, opts ...SessionOption) *SessionHandler {
	h := &SessionHandler{
		newSession: newSession,
		idleTTL:    DefaultSessionIdleTTL,
		now:        time.Now,
		sessions:   make(map[string]*sessionEntry),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *SessionHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.open)
	router.POST("/:token/commands", h.command)
	router.DELETE("/:token", h.close)
}

func (h *SessionHandler) open(c *gin.Context) {
	token := uuid.NewString()

	h.mu.Lock()
	h.sessions[token] = &sessionEntry{session: h.newSession(), lastUsed: h.now()}
	h.mu.Unlock()

	monitoring.SessionOpened()
	c.JSON(http.StatusCreated, gin.H{"token": token})
}

func (h *SessionHandler) command(c *gin.Context) {
	token := c.Param("token")
	entry := h.lookup(token)
	if entry == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown session"})
		return
	}

	var req commandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := logger.WithLogger(c.Request.Context(), logger.Default().With("session", token))

	entry.mu.Lock()
	reply, quit := entry.session.Execute(ctx, req.Command)
	entry.mu.Unlock()

	if quit {
		h.remove(token)
	}
	c.JSON(http.StatusOK, commandResponse{Reply: reply, Closed: quit})
}

func (h *SessionHandler) close(c *gin.Context) {
	if !h.remove(c.Param("token")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown session"})
		return
	}
	c.Status(http.StatusNoContent)
}

// lookup returns the live session for token and marks it used. An idle
// session is evicted and reported as unknown.
func (h *SessionHandler) lookup(token string) *sessionEntry {
	h.mu.Lock()
	defer h.mu.Unlock()

	entry, ok := h.sessions[token]
	if !ok {
		return nil
	}
	now := h.now()
	if now.Sub(entry.lastUsed) > h.idleTTL {
		delete(h.sessions, token)
		monitoring.SessionClosed()
		return nil
	}
	entry.lastUsed = now
	return entry
}

// Sweep drops every session idle for longer than the TTL and returns how many
// were dropped.
func (h *SessionHandler) Sweep() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now()
	n := 0
	for token, entry := range h.sessions {
		if now.Sub(entry.lastUsed) > h.idleTTL {
			delete(h.sessions, token)
			monitoring.SessionClosed()
			n++
		}
	}
	return n
}

// RunJanitor sweeps idle sessions every interval until ctx is done.
func (h *SessionHandler) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := h.Sweep(); n > 0 {
				logger.Debug(ctx, "idle sessions dropped", "count", n)
			}
		}
	}
}

func (h *SessionHandler) remove(token string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.sessions[token]; !ok {
		return false
	}
	delete(h.sessions, token)
	monitoring.SessionClosed()
	return true
}
