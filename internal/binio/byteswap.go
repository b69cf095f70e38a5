package binio

import (
	"runtime"
	"sync"
)

// chunkSize approximates the cache-sized block the reference
// implementation's SIMD byte-swap operates over.
const chunkSize = 64 * 1024

// SwapInPlace reverses the byte order of every elemSize-wide element in buf.
// elemSize must be 2, 4, or 8. Work is split into cache-sized chunks and run
// across GOMAXPROCS goroutines — the parallel_for_each bulk operator spec §5
// describes, minus the SIMD path itself (no portable Go intrinsic exists;
// the per-element scalar loop below is the documented fallback, run in
// parallel rather than vectorized).
func SwapInPlace(buf []byte, elemSize int) {
	if len(buf) == 0 || elemSize == 1 {
		return
	}
	n := len(buf) / elemSize
	if n == 0 {
		return
	}
	elemsPerChunk := chunkSize / elemSize
	if elemsPerChunk == 0 {
		elemsPerChunk = 1
	}
	numChunks := (n + elemsPerChunk - 1) / elemsPerChunk
	if numChunks <= 1 || runtime.GOMAXPROCS(0) <= 1 {
		swapRange(buf, elemSize, 0, n)
		return
	}

	var wg sync.WaitGroup
	for c := 0; c < numChunks; c++ {
		start := c * elemsPerChunk
		end := start + elemsPerChunk
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			swapRange(buf, elemSize, start, end)
		}(start, end)
	}
	wg.Wait()
}

// swapRange swaps elements [start,end) of width elemSize within buf.
func swapRange(buf []byte, elemSize, start, end int) {
	switch elemSize {
	case 2:
		for i := start; i < end; i++ {
			o := i * 2
			buf[o], buf[o+1] = buf[o+1], buf[o]
		}
	case 4:
		for i := start; i < end; i++ {
			o := i * 4
			buf[o], buf[o+1], buf[o+2], buf[o+3] = buf[o+3], buf[o+2], buf[o+1], buf[o]
		}
	case 8:
		for i := start; i < end; i++ {
			o := i * 8
			buf[o], buf[o+1], buf[o+2], buf[o+3], buf[o+4], buf[o+5], buf[o+6], buf[o+7] =
				buf[o+7], buf[o+6], buf[o+5], buf[o+4], buf[o+3], buf[o+2], buf[o+1], buf[o]
		}
	default:
		for i := start; i < end; i++ {
			o := i * elemSize
			lo, hi := o, o+elemSize-1
			for lo < hi {
				buf[lo], buf[hi] = buf[hi], buf[lo]
				lo++
				hi--
			}
		}
	}
}

// ParallelForEachChunk runs fn over [0,n) split into cache-sized chunks of
// chunkItems items, across GOMAXPROCS goroutines, and waits for all of them
// to finish. It is a general bulk operator: the RLE codec and the
// channel store in this module run sequentially and do not call it.
func ParallelForEachChunk(n, chunkItems int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	if chunkItems <= 0 {
		chunkItems = 1
	}
	numChunks := (n + chunkItems - 1) / chunkItems
	if numChunks <= 1 || runtime.GOMAXPROCS(0) <= 1 {
		fn(0, n)
		return
	}

	var wg sync.WaitGroup
	for c := 0; c < numChunks; c++ {
		start := c * chunkItems
		end := start + chunkItems
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			fn(start, end)
		}(start, end)
	}
	wg.Wait()
}
