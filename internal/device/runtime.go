package device

import (
	"errors"
	"fmt"
	"sync"

	"github.com/banshee-data/depthsense/internal/monitoring"
)

// ErrRuntimeNotInitialized is returned when a session is opened before
// InitializeRuntime has succeeded.
var ErrRuntimeNotInitialized = errors.New("device runtime not initialized")

var (
	runtimeMu    sync.Mutex
	runtimeReady bool
)

// InitializeRuntime performs the one-time, process-wide driver setup
// (loading native libraries and the like). It is idempotent: once a load
// has succeeded later calls return nil without invoking loader. A nil
// loader marks the runtime ready, which is what hardware-free boundaries
// use.
func InitializeRuntime(loader func() error) error {
	runtimeMu.Lock()
	defer runtimeMu.Unlock()
	if runtimeReady {
		return nil
	}
	if loader != nil {
		if err := loader(); err != nil {
			return fmt.Errorf("failed to load device runtime: %w", err)
		}
	}
	runtimeReady = true
	monitoring.Logf("[Device] runtime initialized")
	return nil
}

// RuntimeInitialized reports whether InitializeRuntime has succeeded.
func RuntimeInitialized() bool {
	runtimeMu.Lock()
	defer runtimeMu.Unlock()
	return runtimeReady
}

// TeardownRuntime resets the runtime gate. The process bootstrap calls it
// after every session has been closed.
func TeardownRuntime() {
	runtimeMu.Lock()
	defer runtimeMu.Unlock()
	runtimeReady = false
}
