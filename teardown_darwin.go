//go:build darwin && !ios

package mtbridge

// Host runtimes on macOS tear down native libraries during process exit
// while engine worker threads are still parked; closing the engine there
// hangs the exit.
const defaultTeardownPolicy = TeardownDeferred
