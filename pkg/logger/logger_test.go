package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"

	"github.com/MRsanjuedit/FPMS-Backend/config"
)

func TestNewLogger_InvalidLevel(t *testing.T) {
	if _, err := NewLogger(&config.LogConfig{Level: "loud", Format: "json"}); err == nil {
		t.Error("expected an error for an unknown level")
	}
}

func TestNewLogger_Console(t *testing.T) {
	l, err := NewLogger(&config.LogConfig{Level: "debug", Format: "console"})
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	if !l.Core().Enabled(zapcore.DebugLevel) {
		t.Error("expected debug level to be enabled")
	}
}

func TestGormLogger_Trace(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), "info", 10*time.Millisecond)
	ctx := context.Background()
	fc := func() (string, int64) { return "SELECT 1", 1 }

	// record not found is an expected outcome, not an error
	gl.Trace(ctx, time.Now(), fc, gorm.ErrRecordNotFound)
	if logs.Len() != 0 {
		t.Fatalf("expected no log for ErrRecordNotFound, got %d", logs.Len())
	}

	gl.Trace(ctx, time.Now(), fc, errors.New("boom"))
	if logs.FilterMessage("sql error").Len() != 1 {
		t.Error("expected one sql error entry")
	}

	gl.Trace(ctx, time.Now().Add(-time.Second), fc, nil)
	if logs.FilterMessage("slow sql").Len() != 1 {
		t.Error("expected one slow sql entry")
	}

	// fast statements are not logged below debug
	gl.Trace(ctx, time.Now(), fc, nil)
	if logs.FilterMessage("sql").Len() != 0 {
		t.Error("did not expect statement logging at info")
	}
}
