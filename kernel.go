package caravel

// Kernel is the accelerated-backend boundary. Every call crosses it with
// flat numeric buffers or encoded group keys, never host objects. Buffers
// are registered into the kernel's arena, addressed by opaque ids, and must
// be released explicitly; ids are never reused within a kernel instance.
//
// A Kernel failure on any call is non-fatal: the dispatcher recovers by
// running the portable implementation. Kernels therefore never need to be
// correct about edge cases the portable path already defines; they need to
// be bit-compatible or fail.
type Kernel interface {
	Name() string

	RegisterF64(data []float64) (uint64, error)
	RegisterI32(data []int32) (uint64, error)
	Release(id uint64)

	ReduceF64(id uint64, op reduceOp) (float64, error)
	GroupReduceF64(id uint64, keys [][]byte, op reduceOp) ([][]byte, []float64, error)
	SortIndicesF64(id uint64, ascending, nullsLast bool) ([]int, error)
	SortIndices2F64(id1, id2 uint64, asc1, asc2, nullsLast bool) ([]int, error)
	SortIndicesI32(id uint64, ascending, nullsLast bool) ([]int, error)
	SortIndices2I32(id1, id2 uint64, asc1, asc2, nullsLast bool) ([]int, error)
	FilterF64(id uint64, mask []bool) ([]float64, error)
	IsInF64(id uint64, candidates []float64, tol float64) ([]bool, error)
	IsInI32(id uint64, candidates []int32) ([]bool, error)
}

// ownedHandle ties a registered kernel buffer to single-release discipline.
// The dispatcher defers release immediately after registration, so every
// exit path of an operation releases exactly once; a second release is a
// no-op rather than a double free.
type ownedHandle struct {
	id       uint64
	kernel   Kernel
	released bool
}

func newOwnedHandle(id uint64, k Kernel) *ownedHandle {
	return &ownedHandle{id: id, kernel: k}
}

func (h *ownedHandle) release() {
	if h == nil || h.released {
		return
	}
	h.released = true
	h.kernel.Release(h.id)
}
