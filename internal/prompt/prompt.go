// Package prompt reads interactive input with a bounded wait.
package prompt

import (
	"bufio"
	"io"
	"strings"
	"time"
)

// ReadLine reads one line from r, waiting at most timeout. It returns the
// trimmed line and true when a non-empty line arrives in time; otherwise
// it returns fallback, with false indicating the timeout fired. An empty
// line counts as accepting the fallback.
//
// The reader goroutine is abandoned on timeout; a blocking stdin read has
// no portable cancellation.
func ReadLine(r io.Reader, timeout time.Duration, fallback string) (string, bool) {
	ch := make(chan string, 1)
	go func() {
		// ReadString returns whatever arrived before EOF along with the
		// error, so a final unterminated line still counts.
		line, _ := bufio.NewReader(r).ReadString('\n')
		ch <- strings.TrimSpace(line)
	}()

	select {
	case line := <-ch:
		if line == "" {
			return fallback, true
		}
		return line, true
	case <-time.After(timeout):
		return fallback, false
	}
}
