package failctl

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Environment variables read by FromEnv.
const (
	EnvForceFail  = "ARITHPROBE_FORCE_FAIL"
	EnvMarkerPath = "ARITHPROBE_FAIL_MARKER"
)

// MarkerOff disables the marker check when used as EnvMarkerPath.
const MarkerOff = "off"

// DefaultMarkerName is the file name of the shared marker.
const DefaultMarkerName = "arithprobe_fail_marker"

// DefaultMarkerPath returns the shared marker location in the temp dir.
func DefaultMarkerPath() string {
	return filepath.Join(os.TempDir(), DefaultMarkerName)
}

// FromEnv builds the Control for the current process.
func FromEnv() Control {
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Control from an arbitrary env lookup.
func FromLookup(lookup func(string) (string, bool)) Control {
	return Control{ForceFail: BuildForced, MarkerPath: DefaultMarkerPath()}.Override(lookup)
}

// Override applies the environment on top of c. An unparsable force value
// is ignored, and a false one cannot undo the failtest build variant.
func (c Control) Override(lookup func(string) (string, bool)) Control {
	if raw, ok := lookup(EnvForceFail); ok {
		if v, err := strconv.ParseBool(strings.TrimSpace(raw)); err == nil {
			c.ForceFail = v || BuildForced
		}
	}

	if raw, ok := lookup(EnvMarkerPath); ok {
		switch raw = strings.TrimSpace(raw); raw {
		case "":
		case MarkerOff:
			c.MarkerPath = ""
		default:
			c.MarkerPath = raw
		}
	}

	return c
}

// Env renders c as environment assignments for a child process.
func (c Control) Env() []string {
	force := "0"
	if c.ForceFail {
		force = "1"
	}
	marker := c.MarkerPath
	if marker == "" {
		marker = MarkerOff
	}
	return []string{
		EnvForceFail + "=" + force,
		EnvMarkerPath + "=" + marker,
	}
}
