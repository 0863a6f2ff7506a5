package app

import (
	"os"
	"sync/atomic"
)

const testModeEnv = "SUNCORE_TEST_MODE"

var testMode atomic.Bool

func init() {
	RefreshTestMode()
}

// InTestMode reports whether the binaries should skip runtime side effects.
func InTestMode() bool {
	return testMode.Load()
}

// RefreshTestMode re-reads the environment after tests change it.
func RefreshTestMode() {
	testMode.Store(os.Getenv(testModeEnv) == "1")
}
