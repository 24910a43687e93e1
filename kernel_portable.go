package caravel

// portableKernel is an in-process Kernel backed by host memory. It exists so
// the dispatcher's register/operate/release path can be exercised and parity
// tested without the native library, and it doubles as the reference for the
// arena contract: registration copies data in, results are copied out, ids
// are never reused, and operating on a released id is an error.
type portableKernel struct {
	nextID uint64
	f64buf map[uint64][]float64
	i32buf map[uint64][]int32
}

func newPortableKernel() *portableKernel {
	return &portableKernel{
		f64buf: make(map[uint64][]float64),
		i32buf: make(map[uint64][]int32),
	}
}

func (k *portableKernel) Name() string { return "portable" }

func (k *portableKernel) RegisterF64(data []float64) (uint64, error) {
	id := k.nextID
	k.nextID++
	buf := make([]float64, len(data))
	copy(buf, data)
	k.f64buf[id] = buf
	return id, nil
}

func (k *portableKernel) RegisterI32(data []int32) (uint64, error) {
	id := k.nextID
	k.nextID++
	buf := make([]int32, len(data))
	copy(buf, data)
	k.i32buf[id] = buf
	return id, nil
}

func (k *portableKernel) Release(id uint64) {
	delete(k.f64buf, id)
	delete(k.i32buf, id)
}

func (k *portableKernel) f64(id uint64) ([]float64, error) {
	buf, ok := k.f64buf[id]
	if !ok {
		return nil, errHandleReleased
	}
	return buf, nil
}

func (k *portableKernel) i32(id uint64) ([]int32, error) {
	buf, ok := k.i32buf[id]
	if !ok {
		return nil, errHandleReleased
	}
	return buf, nil
}

func (k *portableKernel) ReduceF64(id uint64, op reduceOp) (float64, error) {
	data, err := k.f64(id)
	if err != nil {
		return 0, err
	}
	return portableReduceF64(data, op), nil
}

func (k *portableKernel) GroupReduceF64(id uint64, keys [][]byte, op reduceOp) ([][]byte, []float64, error) {
	data, err := k.f64(id)
	if err != nil {
		return nil, nil, err
	}
	if len(keys) != len(data) {
		return nil, nil, ErrLengthMismatch
	}
	groups, vals := portableGroupReduceF64(data, keys, op)
	return groups, vals, nil
}

func (k *portableKernel) SortIndicesF64(id uint64, ascending, nullsLast bool) ([]int, error) {
	data, err := k.f64(id)
	if err != nil {
		return nil, err
	}
	return portableSortIndicesF64(data, ascending, nullsLast), nil
}

func (k *portableKernel) SortIndices2F64(id1, id2 uint64, asc1, asc2, nullsLast bool) ([]int, error) {
	col1, err := k.f64(id1)
	if err != nil {
		return nil, err
	}
	col2, err := k.f64(id2)
	if err != nil {
		return nil, err
	}
	if len(col1) != len(col2) {
		return nil, ErrLengthMismatch
	}
	return portableSortIndices2F64(col1, col2, asc1, asc2, nullsLast), nil
}

func (k *portableKernel) SortIndicesI32(id uint64, ascending, nullsLast bool) ([]int, error) {
	data, err := k.i32(id)
	if err != nil {
		return nil, err
	}
	return portableSortIndicesI32(data, ascending, nullsLast), nil
}

func (k *portableKernel) SortIndices2I32(id1, id2 uint64, asc1, asc2, nullsLast bool) ([]int, error) {
	col1, err := k.i32(id1)
	if err != nil {
		return nil, err
	}
	col2, err := k.i32(id2)
	if err != nil {
		return nil, err
	}
	if len(col1) != len(col2) {
		return nil, ErrLengthMismatch
	}
	return portableSortIndices2I32(col1, col2, asc1, asc2, nullsLast), nil
}

func (k *portableKernel) FilterF64(id uint64, mask []bool) ([]float64, error) {
	data, err := k.f64(id)
	if err != nil {
		return nil, err
	}
	if len(mask) != len(data) {
		return nil, ErrLengthMismatch
	}
	return portableFilterF64(data, mask), nil
}

func (k *portableKernel) IsInF64(id uint64, candidates []float64, tol float64) ([]bool, error) {
	data, err := k.f64(id)
	if err != nil {
		return nil, err
	}
	return portableIsInF64(data, candidates, tol), nil
}

func (k *portableKernel) IsInI32(id uint64, candidates []int32) ([]bool, error) {
	data, err := k.i32(id)
	if err != nil {
		return nil, err
	}
	return portableIsInI32(data, candidates), nil
}
