package prompt

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReadLine(t *testing.T) {
	tests := []struct {
		name     string
		input    io.Reader
		fallback string
		want     string
		wantOK   bool
	}{
		{
			name:     "line arrives in time",
			input:    strings.NewReader("custom-name\n"),
			fallback: "clean_json",
			want:     "custom-name",
			wantOK:   true,
		},
		{
			name:     "surrounding whitespace trimmed",
			input:    strings.NewReader("  spaced  \n"),
			fallback: "clean_json",
			want:     "spaced",
			wantOK:   true,
		},
		{
			name:     "empty line accepts the fallback",
			input:    strings.NewReader("\n"),
			fallback: "clean_json",
			want:     "clean_json",
			wantOK:   true,
		},
		{
			name:     "eof without newline keeps the text",
			input:    strings.NewReader("partial"),
			fallback: "clean_json",
			want:     "partial",
			wantOK:   true,
		},
		{
			name:     "immediate eof falls back",
			input:    strings.NewReader(""),
			fallback: "clean_json",
			want:     "clean_json",
			wantOK:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ReadLine(tt.input, time.Second, tt.fallback)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestReadLineTimeout(t *testing.T) {
	// A pipe with no writer blocks forever; the reader goroutine is
	// abandoned when the timeout fires.
	r, w := io.Pipe()
	t.Cleanup(func() { w.Close(); r.Close() })

	start := time.Now()
	got, ok := ReadLine(r, 20*time.Millisecond, "clean_json")

	assert.Equal(t, "clean_json", got)
	assert.False(t, ok, "timeout should report ok=false")
	assert.Less(t, time.Since(start), time.Second, "should return promptly after the timeout")
}

func TestReadLineSlowInputStillWins(t *testing.T) {
	r, w := io.Pipe()
	go func() {
		time.Sleep(10 * time.Millisecond)
		io.WriteString(w, "late-but-ok\n")
		w.Close()
	}()

	got, ok := ReadLine(r, time.Second, "clean_json")
	assert.Equal(t, "late-but-ok", got)
	assert.True(t, ok)
}
