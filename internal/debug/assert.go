//go:build !release

package debug

import "fmt"

// Enabled reports whether assertions are compiled in.
const Enabled = true

// Assert panics with the formatted message when cond is false. Build with
// -tags release to compile assertions out.
func Assert(cond bool, format string, args ...any) {
	if !cond {
		panic("assertion failed: " + fmt.Sprintf(format, args...))
	}
}
