package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return resp
}

func TestEnvelope(t *testing.T) {
	tests := []struct {
		name        string
		write       func(c *gin.Context)
		wantStatus  int
		wantSuccess bool
	}{
		{"ok", func(c *gin.Context) { OK(c, gin.H{"a": 1}) }, http.StatusOK, true},
		{"created", func(c *gin.Context) { Created(c, nil) }, http.StatusCreated, true},
		{"bad request", func(c *gin.Context) { BadRequest(c, 10001, "bad") }, http.StatusBadRequest, false},
		{"unauthorized", func(c *gin.Context) { Unauthorized(c, 10002, "no") }, http.StatusUnauthorized, false},
		{"forbidden", func(c *gin.Context) { Forbidden(c, 10003, "no") }, http.StatusForbidden, false},
		{"not found", func(c *gin.Context) { NotFound(c, 10004, "none") }, http.StatusNotFound, false},
		{"conflict", func(c *gin.Context) { Conflict(c, 10009, "dup") }, http.StatusConflict, false},
		{"internal", InternalError, http.StatusInternalServerError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			tt.write(c)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if resp := decode(t, w); resp.Success != tt.wantSuccess {
				t.Errorf("expected success=%v, got %v", tt.wantSuccess, resp.Success)
			}
		})
	}
}

func TestInternalError_DoesNotLeak(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	InternalError(c)

	resp := decode(t, w)
	if resp.Message != "Server error" || resp.Data != nil {
		t.Errorf("unexpected internal error body: %+v", resp)
	}
}
