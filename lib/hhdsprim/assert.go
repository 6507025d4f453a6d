// This file is distributed under the BSD 3-Clause License. See LICENSE for details.

package hhdsprim

import "fmt"

// Assert panics with a formatted message if cond is false. It is for
// precondition violations only (spec category 1: programmer error, not
// a recoverable runtime outcome) — mirroring the original C++'s
// iassert.hpp I(...) macro and the teacher's panic-on-misuse
// convention in containers.LinkedList.Delete. Callers that can fail for
// reasons outside the caller's control must return (T, bool) or
// (T, error) instead of calling Assert.
func Assert(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Errorf("hhds: assertion failed: "+format, args...))
	}
}

// Invariant is Assert under a name that reads better at call sites that
// are checking a structural invariant (e.g. "the sibling ring is
// closed") rather than a simple argument precondition.
func Invariant(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Errorf("hhds: invariant violated: "+format, args...))
	}
}
