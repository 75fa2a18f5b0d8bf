package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/MRsanjuedit/FPMS-Backend/config"
)

// EvidenceStore accepts an evidence file and returns a stable URL for it.
type EvidenceStore interface {
	Put(ctx context.Context, name, contentType string, r io.Reader) (string, error)
	// Delete removes an object written by Put; a missing object is not an error.
	Delete(ctx context.Context, name string) error
	Close() error
}

// New builds the store selected by cfg.Driver.
func New(ctx context.Context, cfg *config.EvidenceConfig) (EvidenceStore, error) {
	switch cfg.Driver {
	case "gcs":
		return NewGCSStore(ctx, cfg.Bucket, cfg.CredentialsFile)
	case "local", "":
		return NewLocalStore(cfg.Dir, cfg.PublicBaseURL)
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", cfg.Driver)
	}
}

// ObjectName evidence/<owner>/<random><ext>; the original file name only
// contributes a sanitized extension.
func ObjectName(ownerID, original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	if len(ext) > 10 || strings.ContainsAny(ext, `/\ `) {
		ext = ""
	}
	owner := sanitize(ownerID)
	if owner == "" {
		owner = "anonymous"
	}
	return path.Join("evidence", owner, uuid.NewString()+ext)
}

func sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
