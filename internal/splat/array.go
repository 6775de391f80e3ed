package splat

// Reader is the read side of the splat container contract: every
// downstream component (covariance math, the builder, the pruner, the
// chunk-tree layout, the RAD encoder) is written against this interface
// so it is oblivious to whether the backing array is full-precision or
// byte-packed.
type Reader interface {
	Len() int
	Get(i int) Core
	MaxSH() int // 0..3; SH2/SH3 are stored only up to this degree, SH1 always
	Children(i int) []uint32
	HasChildren(i int) bool
}

// Writer is the mutating side: append, permute, retain and truncate, all
// of which must move every parallel column (core fields, child list, and
// whichever SH bands are present) together.
type Writer interface {
	Reader
	Set(i int, c Core)
	SetChildren(i int, children []uint32)
	AppendMerged(c Core, children []uint32) int
	Permute(dst []int) // dst[i] = destination index of source i
	Retain(keep func(i int) bool) []int // returns oldIndex, in new order
	Truncate(n int)
	Clone(indices []int) Array
}

// Array is the full read/write contract a concrete container type
// implements (FullArray, CompactArray).
type Array interface {
	Writer
}
