package telegram

import "fmt"

// runSafely calls fn and turns a panic into an error.
func runSafely(scope string, fn func() error) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("%s panic: %v", scope, recovered)
		}
	}()

	return fn()
}
