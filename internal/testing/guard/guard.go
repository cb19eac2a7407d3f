// Package guard switches the process into test mode when imported by a test
// binary, so entrypoints skip listeners and background workers.
package guard

import (
	"os"
	"sync"

	"github.com/odyssey-erp/wpadmin/internal/app"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv(app.TestModeEnv) == "" {
			_ = os.Setenv(app.TestModeEnv, "1")
		}
		app.RefreshTestMode()
	})
}
