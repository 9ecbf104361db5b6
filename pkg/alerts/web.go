package alerts

import (
	"sync"

	"github.com/gin-gonic/gin"
)

// CapturedRequest is a RequestProvider fed by gin middleware. It holds the
// most recently started request for the duration of its handler chain, so
// log records emitted while serving that request can carry request context.
//
// The capture is best-effort: under concurrent traffic the slot may hold a
// sibling request. That matches the purpose of alert enrichment, which is
// diagnostic colour rather than an audit trail.
type CapturedRequest struct {
	mu   sync.RWMutex
	info *RequestInfo
}

// TryGet implements RequestProvider.
func (c *CapturedRequest) TryGet() (*RequestInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.info == nil {
		return nil, false
	}
	return c.info, true
}

// Middleware returns gin middleware that records each request into the
// capture slot while its handlers run.
func (c *CapturedRequest) Middleware() gin.HandlerFunc {
	return func(g *gin.Context) {
		c.set(RequestInfoFromGin(g))
		defer c.clear()
		g.Next()
	}
}

func (c *CapturedRequest) set(info *RequestInfo) {
	c.mu.Lock()
	c.info = info
	c.mu.Unlock()
}

func (c *CapturedRequest) clear() {
	c.mu.Lock()
	c.info = nil
	c.mu.Unlock()
}

// RequestInfoFromGin builds a RequestInfo from a gin request context. The
// route pattern (e.g. "/users/:id") serves as the endpoint name.
func RequestInfoFromGin(g *gin.Context) *RequestInfo {
	// Best effort; an unparseable body just leaves the form empty.
	_ = g.Request.ParseForm()

	return &RequestInfo{
		URL:      g.Request.URL.String(),
		Method:   g.Request.Method,
		Endpoint: g.FullPath(),
		Form:     g.Request.PostForm,
	}
}
