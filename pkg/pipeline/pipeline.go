package pipeline

import "runtime"

func defaultParallelism() int {
	n := runtime.NumCPU()
	if n <= 0 {
		return 1
	}
	return n
}
