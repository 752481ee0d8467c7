package heat

import (
	"runtime"
	"sync"
)

// parallelThreshold is the interior size below which splitting costs more than it saves.
const parallelThreshold = 4096

// ParallelFor runs fn over [start, end) split into contiguous chunks, one per worker.
func ParallelFor(start, end, workers int, fn func(lo, hi int)) {
	total := end - start
	if total <= 0 {
		return
	}
	if workers < 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > total {
		workers = total
	}
	if workers <= 1 {
		fn(start, end)
		return
	}

	chunk := (total + workers - 1) / workers
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo := start + w*chunk
		if lo >= end {
			break
		}
		hi := lo + chunk
		if hi > end {
			hi = end
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			fn(lo, hi)
		}(lo, hi)
	}
	wg.Wait()
}
