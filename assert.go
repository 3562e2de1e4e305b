package optflate

import "fmt"

// assert panics if an internal invariant does not hold. Violations are
// programming errors, not bad input: any byte buffer is valid input.
func assert(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(fmt.Sprintf("optflate: "+format, args...))
	}
}

// debugAsserts enables checks that are too slow to leave on all the time,
// such as re-verifying every match against the data.
const debugAsserts = false
