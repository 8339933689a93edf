//go:build failbuild

package arith

// Building with -tags failbuild must not compile.
var brokenBuild int = "failbuild requested"
