// Package failctl decides whether the odd-parity test case should pass or be
// forced to fail.
//
// The decision is a single branch evaluated once per test run:
//
//	Unconfigured -> FlagForced      (force flag set: fail unconditionally)
//	Unconfigured -> MarkerChecked   (marker present: expect IsEven(3) == true, which fails)
//	                                (marker absent:  expect IsEven(3) == false, which passes)
//
// The force flag and the marker path are explicit fields on Control. Inside a
// go test process they arrive through the environment (see FromEnv) or the
// failtest build tag; the probe runner sets them per child process so the
// shared default marker is never consulted by its probes.
//
// The test itself never creates or removes the marker. SetMarker, ClearMarker
// and Watch exist for the CLI and the probe runner.
package failctl
