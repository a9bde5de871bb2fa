// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import "sync"

// nodePass runs fn over all vertex ids, fanned out over nw workers in
// contiguous chunks. fn must write only to the slots of its own vertex, so
// that the result is identical for any number of workers. Small passes run
// on the calling goroutine.
func nodePass(nverts, nw int, fn func(worker, vid int)) {
	if nw < 2 || nverts < 2*nw {
		for vid := 0; vid < nverts; vid++ {
			fn(0, vid)
		}
		return
	}
	chunk := (nverts + nw - 1) / nw
	var wg sync.WaitGroup
	for w := 0; w < nw; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > nverts {
			hi = nverts
		}
		if lo >= hi {
			break
		}
		wg.Add(1)
		go func(w, lo, hi int) {
			defer wg.Done()
			for vid := lo; vid < hi; vid++ {
				fn(w, vid)
			}
		}(w, lo, hi)
	}
	wg.Wait()
}
