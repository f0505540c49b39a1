package logging

import (
	"strings"
	"sync"
)

// captureDepth is how many recent lines the capture ring keeps.
const captureDepth = 100

// CaptureWriter keeps the most recent log lines in memory so the API
// can expose them without touching the log files.
type CaptureWriter struct {
	mu    sync.Mutex
	lines []string
	next  int
	full  bool
}

// GlobalLogCapture receives a copy of every server log line.
var GlobalLogCapture = NewCaptureWriter(captureDepth)

// NewCaptureWriter creates a CaptureWriter holding up to depth lines.
func NewCaptureWriter(depth int) *CaptureWriter {
	if depth <= 0 {
		depth = 1
	}
	return &CaptureWriter{lines: make([]string, depth)}
}

// Write implements io.Writer. Each call is one handler record; trailing
// newlines are stripped.
func (c *CaptureWriter) Write(p []byte) (int, error) {
	line := strings.TrimRight(string(p), "\n")
	if line == "" {
		return len(p), nil
	}

	c.mu.Lock()
	c.lines[c.next] = line
	c.next = (c.next + 1) % len(c.lines)
	if c.next == 0 {
		c.full = true
	}
	c.mu.Unlock()
	return len(p), nil
}

// LastLine returns the most recent captured line, empty when nothing
// has been logged yet.
func (c *CaptureWriter) LastLine() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.next - 1
	if idx < 0 {
		if !c.full {
			return ""
		}
		idx = len(c.lines) - 1
	}
	return c.lines[idx]
}

// Recent returns up to n captured lines, oldest first.
func (c *CaptureWriter) Recent(n int) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	size := c.next
	if c.full {
		size = len(c.lines)
	}
	if n <= 0 || n > size {
		n = size
	}

	out := make([]string, 0, n)
	start := c.next - n
	if start < 0 {
		start += len(c.lines)
	}
	for i := 0; i < n; i++ {
		out = append(out, c.lines[(start+i)%len(c.lines)])
	}
	return out
}
