package hooks

import (
	"fmt"
	"runtime/debug"

	hydradebug "hydra/internal/debug"
)

// Safely runs a hook body, converting a panic into a logged error. Hook
// failures are only ever logged; the host must see a clean exit.
func Safely(name string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("hook %s panicked: %v", name, r)
			hydradebug.Logf("%v\n%s", err, debug.Stack())
		}
	}()
	if err = fn(); err != nil {
		hydradebug.Logf("hook %s: %v", name, err)
	}
	return err
}
