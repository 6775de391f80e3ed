package traversal

import (
	"container/heap"
	"sort"

	"github.com/radsplat/build-lod/internal/rad"
	"github.com/radsplat/build-lod/internal/splat"
)

// chunkOf maps a splat index to the RAD chunk that carries it, mirroring
// the fixed-size base/count chunking encoder.go lays the array out in.
func chunkOf(idx int) int { return idx / rad.ChunkSize }

// Result is one traversal's output: the emitted node indices (ascending,
// renderer-friendly per spec §4.H) and the chunks touched because they
// weren't resident.
type Result struct {
	Emitted       []int
	TouchedChunks []int
}

type heapItem struct {
	index int
	scale float32
}

type maxHeap []heapItem

func (h maxHeap) Len() int            { return len(h) }
func (h maxHeap) Less(i, j int) bool  { return h[i].scale > h[j].scale }
func (h maxHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *maxHeap) Push(x interface{}) { *h = append(*h, x.(heapItem)) }
func (h *maxHeap) Pop() interface{} {
	old := *h
	n := len(old)
	it := old[n-1]
	*h = old[:n-1]
	return it
}

// Traverse walks the LoD tree rooted at root, choosing the coarsest
// resident subset whose on-screen pixel size stays within
// params.PixelScaleLimit while respecting params.MaxSplats (spec §4.H).
func Traverse(r splat.Reader, root int, params Params, residency *Residency) Result {
	var emitted []int
	touched := map[int]bool{}

	full := false
	emit := func(idx int) bool {
		if len(emitted) >= params.MaxSplats {
			full = true
			return false
		}
		emitted = append(emitted, idx)
		return true
	}

	h := &maxHeap{{index: root, scale: PixelScale(r.Get(root), params)}}
	heap.Init(h)

	for h.Len() > 0 && (*h)[0].scale > params.PixelScaleLimit && !full {
		it := heap.Pop(h).(heapItem)
		node := it.index

		if !r.HasChildren(node) {
			emit(node)
			continue
		}
		children := r.Children(node)
		k := len(children)
		if len(emitted)+k > params.MaxSplats {
			emit(node)
			break
		}

		missing := missingChunks(children, residency)
		if len(missing) > 0 {
			emit(node)
			for _, c := range missing {
				touched[c] = true
			}
			continue
		}

		for _, c := range children {
			childScale := PixelScale(r.Get(int(c)), params)
			if childScale <= params.PixelScaleLimit {
				if !emit(int(c)) {
					break
				}
			} else {
				heap.Push(h, heapItem{index: int(c), scale: childScale})
			}
		}
	}

	if !full {
		for h.Len() > 0 {
			it := heap.Pop(h).(heapItem)
			if !emit(it.index) {
				break
			}
		}
	}

	sort.Ints(emitted)
	touchedList := make([]int, 0, len(touched))
	for c := range touched {
		touchedList = append(touchedList, c)
	}
	sort.Ints(touchedList)

	return Result{Emitted: emitted, TouchedChunks: touchedList}
}

// missingChunks returns, in ascending order, the distinct chunks spanned
// by children (contiguous per the chunk-tree layout invariant) that are
// not currently resident.
func missingChunks(children []uint32, residency *Residency) []int {
	if len(children) == 0 {
		return nil
	}
	lo := chunkOf(int(children[0]))
	hi := chunkOf(int(children[len(children)-1]))
	var missing []int
	for c := lo; c <= hi; c++ {
		if _, ok := residency.Resident(c); !ok {
			missing = append(missing, c)
		}
	}
	return missing
}
