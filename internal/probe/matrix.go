package probe

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

//go:embed schema.cue
var schemaCUE string

//go:embed probes.cue
var builtinCUE []byte

// Group partitions probes the way the CLI selects them.
type Group string

// Probe groups.
const (
	GroupBuilder    Group = "builder"
	GroupTestRunner Group = "test-runner"
)

// Kind picks the toolchain command. KindCommand runs the probe's own
// command line instead of go build or go test.
type Kind string

// Probe kinds.
const (
	KindBuild   Kind = "build"
	KindTest    Kind = "test"
	KindCommand Kind = "command"
)

// Outcome is the pass/fail result of a toolchain run.
type Outcome string

// Outcomes.
const (
	Pass Outcome = "pass"
	Fail Outcome = "fail"
)

// DefaultPackage is built or tested when a probe names no package.
const DefaultPackage = "./internal/arith"

// Probe is one expected toolchain outcome.
type Probe struct {
	Name        string   `json:"name"`
	Group       Group    `json:"group"`
	Kind        Kind     `json:"kind"`
	Package     string   `json:"package,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Command     []string `json:"command,omitempty"`
	Dir         string   `json:"dir,omitempty"`
	ForceFail   bool     `json:"force_fail"`
	Marker      bool     `json:"marker"`
	Expect      Outcome  `json:"expect"`
	Description string   `json:"description,omitempty"`
}

// LoadError is a matrix problem, positioned in the CUE source when known.
type LoadError struct {
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	return e.Message
}

// Builtin returns the embedded probe matrix.
func Builtin() ([]Probe, error) {
	return Load(builtinCUE, "probes.cue")
}

// LoadFile reads a matrix that replaces the built-in one.
func LoadFile(path string) ([]Probe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read probe matrix: %w", err)
	}
	return Load(data, path)
}

// Load compiles a matrix against the probe schema and returns its probes
// sorted by name. A probe without a package uses the runner's default. Dir
// is relative to the runner's working directory.
func Load(data []byte, filename string) ([]Probe, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("probe schema: %w", err)
	}

	matrix := ctx.CompileBytes(data, cue.Filename(filename))
	if err := matrix.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	v := schema.Unify(matrix)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	probesVal := v.LookupPath(cue.ParsePath("probes"))
	if !probesVal.Exists() {
		return nil, &LoadError{Message: "no probes defined", Pos: matrix.Pos()}
	}

	iter, err := probesVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var probes []Probe
	for iter.Next() {
		var p Probe
		if err := iter.Value().Decode(&p); err != nil {
			return nil, &LoadError{
				Message: fmt.Sprintf("probe %s: %v", iter.Selector(), err),
				Pos:     iter.Value().Pos(),
			}
		}
		if msg := checkKind(p); msg != "" {
			return nil, &LoadError{
				Message: fmt.Sprintf("probe %s: %s", p.Name, msg),
				Pos:     iter.Value().Pos(),
			}
		}
		probes = append(probes, p)
	}

	if len(probes) == 0 {
		return nil, &LoadError{Message: "no probes defined", Pos: probesVal.Pos()}
	}

	sort.Slice(probes, func(i, j int) bool { return probes[i].Name < probes[j].Name })
	return probes, nil
}

// checkKind enforces the fields that depend on kind.
func checkKind(p Probe) string {
	if p.Kind == KindCommand {
		switch {
		case len(p.Command) == 0:
			return "kind command needs a command"
		case p.Package != "" || len(p.Tags) > 0:
			return "package and tags do not apply to kind command"
		}
		return ""
	}
	if len(p.Command) > 0 {
		return fmt.Sprintf("command is only allowed with kind command, not %s", p.Kind)
	}
	return ""
}

// formatCUEError keeps the first error and its position.
func formatCUEError(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &LoadError{Message: first.Error(), Pos: positions[0]}
	}
	return &LoadError{Message: first.Error()}
}
