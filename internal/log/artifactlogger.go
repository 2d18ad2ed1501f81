package log

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"sync"
	"time"
)

// ArtifactLogger records every generated file with optional file output.
type ArtifactLogger interface {
	Log(path, kind string, data []byte)
}

// artifactLogger implements ArtifactLogger with thread-safe log.
type artifactLogger struct {
	w   io.Writer
	mu  sync.Mutex
	now func() time.Time
}

// NewArtifact creates a new ArtifactLogger. If writer is nil, returns a no-op logger.
func NewArtifact(w io.Writer) ArtifactLogger {
	return &artifactLogger{w: w, now: time.Now}
}

// Log emits a single line per artifact: timestamp, kind, size, sha256 and path.
func (a *artifactLogger) Log(path, kind string, data []byte) {
	if a.w == nil {
		return
	}
	sum := sha256.Sum256(data)
	line := fmt.Sprintf("%s %s %d bytes sha256:%s %s\n",
		a.now().Format("2006/01/02 15:04:05"),
		kind,
		len(data),
		hex.EncodeToString(sum[:]),
		path)

	a.mu.Lock()
	_, _ = a.w.Write([]byte(line))
	a.mu.Unlock()
}
