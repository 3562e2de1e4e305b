package flate

import "fmt"

func assert(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(fmt.Sprintf("optflate/flate: "+format, args...))
	}
}
