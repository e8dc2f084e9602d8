package log

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

var (
	sampleInt      = 3
	sampleBytes    = []byte("123")
	sampleList     = []int64{10, 0, -10}
	sampleDuration = time.Second
	sampleTime     = time.Unix(12345678, 0)

	errSample = errors.New("some error")
)

func doLogs() {
	// Some sample logs from existing code.
	Infof("added %d keys to census %x", sampleInt, sampleBytes)
	Debugw("census published", "root", "abc123", "size", sampleInt)
	Errorf("cannot store census reference: %v", errSample)
	Warnw("various types",
		"list", sampleList,
		"duration", sampleDuration,
		"time", sampleTime,
	)
	Error(errSample)
}

func TestErrorOutput(t *testing.T) {
	var buf bytes.Buffer
	Init("debug", "stderr", &buf)

	Infof("census %x loaded", sampleBytes)
	Debugw("serving proof", "index", sampleInt)
	if buf.Len() != 0 {
		t.Errorf("errorOutput received non-error entries: %q", buf.String())
	}

	Errorf("cannot rebuild census tree: %v", errSample)
	if !strings.Contains(buf.String(), "cannot rebuild census tree") {
		t.Errorf("errorOutput missing the error entry, got %q", buf.String())
	}

	before := buf.Len()
	Warnf("nullifier seen twice")
	if buf.Len() != before {
		t.Errorf("errorOutput received a warning entry: %q", buf.String())
	}
}

func TestCheckInvalidChars(t *testing.T) {
	t.Cleanup(func() { panicOnInvalidChars = false })

	v := []byte{'h', 'e', 'l', 'l', 'o', 0xff, 'w', 'o', 'r', 'l', 'd'}
	panicOnInvalidChars = false
	Init("debug", "stderr", nil)
	Debugf("%s", v)
	// should not panic since env var is false. if it panics, test will fail

	// now enable panic and try again: should recover() and never reach t.Errorf()
	panicOnInvalidChars = true
	Init("debug", "stderr", nil)
	defer func() { recover() }()
	Debugf("%s", v)
	t.Errorf("Debugf(%s) should have panicked because of invalid char", v)
}

func BenchmarkLogger(b *testing.B) {
	logTestWriter = io.Discard // to not grow a buffer
	Init("debug", logTestWriterName, nil)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		doLogs()
	}
}
