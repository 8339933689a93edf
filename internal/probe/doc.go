// Package probe drives the build and test toolchain against the arithmetic
// package and checks that each run passes or fails as expected.
//
// Probes are declared in CUE. The embedded matrix covers a clean build, a
// build broken by the failbuild tag, a custom build command that depends on
// its working directory, a clean test run and the three ways of forcing the
// parity case to fail: the force flag, the marker file and the failtest
// build tag.
//
// Every probe runs in its own temp directory with an explicit environment:
// the force flag is always set to 1 or 0 and the marker path points inside
// the temp directory, so a marker left in the shared location never leaks
// into a probe.
package probe
