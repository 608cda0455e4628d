package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// ActionRequest is the envelope of the action endpoints. Version is 0
// (absent) or 1.
type ActionRequest struct {
	Version int             `json:"version"`
	Action  string          `json:"action"`
	Token   string          `json:"token,omitempty"`
	Data    json.RawMessage `json:"data"`
}

const maxActionVersion = 1

// bindAction parses the envelope, answering 400 itself on failure. The body
// is read through ShouldBindBodyWith so middleware may have read it before.
func bindAction(c *gin.Context) (ActionRequest, bool) {
	var req ActionRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return req, false
	}
	if req.Version < 0 || req.Version > maxActionVersion {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported version"})
		return req, false
	}
	if req.Action == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "action is required"})
		return req, false
	}
	return req, true
}

// bindData decodes the action payload into dst. A missing payload leaves dst
// untouched.
func bindData(c *gin.Context, req ActionRequest, dst any) bool {
	if len(req.Data) == 0 || string(req.Data) == "null" {
		return true
	}
	if err := json.Unmarshal(req.Data, dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid data"})
		return false
	}
	return true
}

// parseSince parses an RFC 3339 cursor; empty means none.
func parseSince(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
