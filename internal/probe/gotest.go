package probe

import (
	"bufio"
	"bytes"
	"encoding/json"
	"strings"
)

// testEvent is the subset of a `go test -json` event we read.
type testEvent struct {
	Action  string
	Package string
	Test    string
}

// ParseTestFailures returns the names of failed tests in the order they
// first failed. A parent whose subtest failed is dropped in favor of the
// subtest. Lines that are not JSON events are ignored.
func ParseTestFailures(output []byte) []string {
	var failed []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(bytes.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 || line[0] != '{' {
			continue
		}
		var ev testEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			continue
		}
		if ev.Action != "fail" || ev.Test == "" || seen[ev.Test] {
			continue
		}
		seen[ev.Test] = true
		failed = append(failed, ev.Test)
	}

	out := failed[:0:0]
	for _, name := range failed {
		if !hasFailedChild(name, failed) {
			out = append(out, name)
		}
	}
	return out
}

func hasFailedChild(name string, failed []string) bool {
	prefix := name + "/"
	for _, other := range failed {
		if strings.HasPrefix(other, prefix) {
			return true
		}
	}
	return false
}
