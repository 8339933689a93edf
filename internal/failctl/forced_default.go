//go:build !failtest

package failctl

// BuildForced is true only in binaries built with -tags failtest.
const BuildForced = false
