package caravel

import (
	"go.uber.org/zap"
)

// Engine dispatches numeric work between the accelerated kernel and the
// portable implementation. It is an explicit value rather than process
// state: tests and embedders can run several engines side by side with
// different kernels and loggers.
//
// Every kernel interaction is a self-contained register -> operate ->
// release sequence; handles never outlive the dispatching method. Any
// kernel fault, including the kernel being absent, routes the call to the
// portable path without surfacing an error: kernel trouble is a diagnostic,
// not a data error.
type Engine struct {
	kernel Kernel
	log    *zap.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithKernel sets the accelerated kernel. Passing nil pins the engine to
// the portable path.
func WithKernel(k Kernel) EngineOption {
	return func(e *Engine) { e.kernel = k }
}

// WithLogger sets the diagnostics logger used for kernel-fault warnings.
func WithLogger(log *zap.Logger) EngineOption {
	return func(e *Engine) { e.log = log }
}

// NewEngine builds an Engine. By default it probes for the accelerated
// kernel and, when the probe fails, serves everything portably.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{log: zap.NewNop()}
	if k, err := AcceleratedKernel(); err == nil {
		e.kernel = k
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// defaultEngine serves Series and DataFrames built without an explicit
// engine. It is immutable after init.
var defaultEngine = NewEngine()

func (e *Engine) fault(op string, err error) {
	name := "none"
	if e.kernel != nil {
		name = e.kernel.Name()
	}
	e.log.Warn("kernel fault, falling back to portable path",
		zap.String("op", op),
		zap.String("kernel", name),
		zap.Error(err))
}

// registerF64 registers a buffer and wraps the handle with single-release
// discipline. Callers must defer release immediately.
func (e *Engine) registerF64(op string, data []float64) (*ownedHandle, bool) {
	id, err := e.kernel.RegisterF64(data)
	if err != nil {
		e.fault(op, err)
		return nil, false
	}
	return newOwnedHandle(id, e.kernel), true
}

func (e *Engine) registerI32(op string, data []int32) (*ownedHandle, bool) {
	id, err := e.kernel.RegisterI32(data)
	if err != nil {
		e.fault(op, err)
		return nil, false
	}
	return newOwnedHandle(id, e.kernel), true
}

func (e *Engine) reduceF64(data []float64, op reduceOp) float64 {
	if e.kernel != nil {
		if v, ok := e.kernelReduceF64(data, op); ok {
			return v
		}
	}
	return portableReduceF64(data, op)
}

func (e *Engine) kernelReduceF64(data []float64, op reduceOp) (float64, bool) {
	h, ok := e.registerF64("reduce", data)
	if !ok {
		return 0, false
	}
	defer h.release()

	v, err := e.kernel.ReduceF64(h.id, op)
	if err != nil {
		e.fault("reduce", err)
		return 0, false
	}
	return v, true
}

// groupReduceF64 reduces data per encoded group key. The result maps each
// encoded key to its reduction so callers can read it back in partition
// order regardless of the kernel's own group ordering.
func (e *Engine) groupReduceF64(data []float64, keys [][]byte, op reduceOp) map[string]float64 {
	if e.kernel != nil {
		if m, ok := e.kernelGroupReduceF64(data, keys, op); ok {
			return m
		}
	}
	groups, vals := portableGroupReduceF64(data, keys, op)
	return groupResultMap(groups, vals)
}

func (e *Engine) kernelGroupReduceF64(data []float64, keys [][]byte, op reduceOp) (map[string]float64, bool) {
	h, ok := e.registerF64("group-reduce", data)
	if !ok {
		return nil, false
	}
	defer h.release()

	groups, vals, err := e.kernel.GroupReduceF64(h.id, keys, op)
	if err != nil || len(groups) != len(vals) {
		e.fault("group-reduce", err)
		return nil, false
	}
	return groupResultMap(groups, vals), true
}

func groupResultMap(groups [][]byte, vals []float64) map[string]float64 {
	m := make(map[string]float64, len(groups))
	for i, g := range groups {
		m[string(g)] = vals[i]
	}
	return m
}

func (e *Engine) sortIndicesF64(data []float64, ascending, nullsLast bool) []int {
	if e.kernel != nil {
		h, ok := e.registerF64("sort", data)
		if ok {
			defer h.release()
			if idx, err := e.kernel.SortIndicesF64(h.id, ascending, nullsLast); err == nil {
				return idx
			} else {
				e.fault("sort", err)
			}
		}
	}
	return portableSortIndicesF64(data, ascending, nullsLast)
}

func (e *Engine) sortIndices2F64(col1, col2 []float64, asc1, asc2, nullsLast bool) []int {
	if e.kernel != nil {
		if idx, ok := e.kernelSortIndices2F64(col1, col2, asc1, asc2, nullsLast); ok {
			return idx
		}
	}
	return portableSortIndices2F64(col1, col2, asc1, asc2, nullsLast)
}

func (e *Engine) kernelSortIndices2F64(col1, col2 []float64, asc1, asc2, nullsLast bool) ([]int, bool) {
	h1, ok := e.registerF64("sort2", col1)
	if !ok {
		return nil, false
	}
	defer h1.release()
	h2, ok := e.registerF64("sort2", col2)
	if !ok {
		return nil, false
	}
	defer h2.release()

	idx, err := e.kernel.SortIndices2F64(h1.id, h2.id, asc1, asc2, nullsLast)
	if err != nil {
		e.fault("sort2", err)
		return nil, false
	}
	return idx, true
}

func (e *Engine) sortIndicesI32(data []int32, ascending, nullsLast bool) []int {
	if e.kernel != nil {
		h, ok := e.registerI32("sort", data)
		if ok {
			defer h.release()
			if idx, err := e.kernel.SortIndicesI32(h.id, ascending, nullsLast); err == nil {
				return idx
			} else {
				e.fault("sort", err)
			}
		}
	}
	return portableSortIndicesI32(data, ascending, nullsLast)
}

func (e *Engine) sortIndices2I32(col1, col2 []int32, asc1, asc2, nullsLast bool) []int {
	if e.kernel != nil {
		if idx, ok := e.kernelSortIndices2I32(col1, col2, asc1, asc2, nullsLast); ok {
			return idx
		}
	}
	return portableSortIndices2I32(col1, col2, asc1, asc2, nullsLast)
}

func (e *Engine) kernelSortIndices2I32(col1, col2 []int32, asc1, asc2, nullsLast bool) ([]int, bool) {
	h1, ok := e.registerI32("sort2", col1)
	if !ok {
		return nil, false
	}
	defer h1.release()
	h2, ok := e.registerI32("sort2", col2)
	if !ok {
		return nil, false
	}
	defer h2.release()

	idx, err := e.kernel.SortIndices2I32(h1.id, h2.id, asc1, asc2, nullsLast)
	if err != nil {
		e.fault("sort2", err)
		return nil, false
	}
	return idx, true
}

func (e *Engine) filterF64(data []float64, mask []bool) []float64 {
	if e.kernel != nil {
		h, ok := e.registerF64("filter", data)
		if ok {
			defer h.release()
			if out, err := e.kernel.FilterF64(h.id, mask); err == nil {
				return out
			} else {
				e.fault("filter", err)
			}
		}
	}
	return portableFilterF64(data, mask)
}

func (e *Engine) isinF64(data, candidates []float64, tol float64) []bool {
	if e.kernel != nil {
		h, ok := e.registerF64("isin", data)
		if ok {
			defer h.release()
			if out, err := e.kernel.IsInF64(h.id, candidates, tol); err == nil {
				return out
			} else {
				e.fault("isin", err)
			}
		}
	}
	return portableIsInF64(data, candidates, tol)
}

func (e *Engine) isinI32(data, candidates []int32) []bool {
	if e.kernel != nil {
		h, ok := e.registerI32("isin", data)
		if ok {
			defer h.release()
			if out, err := e.kernel.IsInI32(h.id, candidates); err == nil {
				return out
			} else {
				e.fault("isin", err)
			}
		}
	}
	return portableIsInI32(data, candidates)
}
