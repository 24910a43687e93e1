//go:build accel

// Accelerated kernel, linked against the native SIMD core. Build with:
//
//	cd core && zig build -Doptimize=ReleaseFast
//	go build -tags accel
package caravel

/*
#cgo CFLAGS: -I${SRCDIR}/core/include
#cgo LDFLAGS: -L${SRCDIR}/core/zig-out/lib -lcaravel
#include "caravel.h"
#include <stdlib.h>
*/
import "C"
import (
	"errors"
	"unsafe"
)

var errKernelCall = errors.New("caravel: accelerated kernel call failed")

// AcceleratedKernel returns the cgo-backed kernel. The native arena lives on
// the other side of the boundary; every id handed out here addresses a
// buffer the native core owns until Release.
func AcceleratedKernel() (Kernel, error) {
	if !bool(C.caravel_init()) {
		return nil, errKernelUnavailable
	}
	return &cgoKernel{}, nil
}

type cgoKernel struct{}

func (k *cgoKernel) Name() string { return "accel" }

func (k *cgoKernel) RegisterF64(data []float64) (uint64, error) {
	var ptr *C.double
	if len(data) > 0 {
		ptr = (*C.double)(unsafe.Pointer(&data[0]))
	}
	id := C.caravel_register_f64(ptr, C.size_t(len(data)))
	if id == C.CARAVEL_INVALID_ID {
		return 0, errKernelCall
	}
	return uint64(id), nil
}

func (k *cgoKernel) RegisterI32(data []int32) (uint64, error) {
	var ptr *C.int32_t
	if len(data) > 0 {
		ptr = (*C.int32_t)(unsafe.Pointer(&data[0]))
	}
	id := C.caravel_register_i32(ptr, C.size_t(len(data)))
	if id == C.CARAVEL_INVALID_ID {
		return 0, errKernelCall
	}
	return uint64(id), nil
}

func (k *cgoKernel) Release(id uint64) {
	C.caravel_release(C.uint64_t(id))
}

func (k *cgoKernel) ReduceF64(id uint64, op reduceOp) (float64, error) {
	var out C.double
	ok := C.caravel_reduce_f64(C.uint64_t(id), C.uint8_t(op), &out)
	if !bool(ok) {
		return 0, errKernelCall
	}
	return float64(out), nil
}

func (k *cgoKernel) GroupReduceF64(id uint64, keys [][]byte, op reduceOp) ([][]byte, []float64, error) {
	// Keys cross the boundary as one flat buffer of length-prefixed entries.
	total := 0
	for _, key := range keys {
		total += 4 + len(key)
	}
	flat := make([]byte, 0, total)
	for _, key := range keys {
		flat = appendUint32(flat, uint32(len(key)))
		flat = append(flat, key...)
	}
	var flatPtr *C.uint8_t
	if len(flat) > 0 {
		flatPtr = (*C.uint8_t)(unsafe.Pointer(&flat[0]))
	}

	res := C.caravel_group_reduce_f64(C.uint64_t(id), flatPtr, C.size_t(len(flat)), C.size_t(len(keys)), C.uint8_t(op))
	if res == nil {
		return nil, nil, errKernelCall
	}
	defer C.caravel_group_result_destroy(res)

	n := int(C.caravel_group_result_len(res))
	groups := make([][]byte, n)
	vals := make([]float64, n)
	for i := 0; i < n; i++ {
		var keyLen C.size_t
		keyPtr := C.caravel_group_result_key(res, C.size_t(i), &keyLen)
		groups[i] = C.GoBytes(unsafe.Pointer(keyPtr), C.int(keyLen))
		vals[i] = float64(C.caravel_group_result_value(res, C.size_t(i)))
	}
	return groups, vals, nil
}

func (k *cgoKernel) SortIndicesF64(id uint64, ascending, nullsLast bool) ([]int, error) {
	return k.copySortResult(C.caravel_sort_indices_f64(C.uint64_t(id), C.bool(ascending), C.bool(nullsLast)))
}

func (k *cgoKernel) SortIndices2F64(id1, id2 uint64, asc1, asc2, nullsLast bool) ([]int, error) {
	return k.copySortResult(C.caravel_sort_indices2_f64(
		C.uint64_t(id1), C.uint64_t(id2), C.bool(asc1), C.bool(asc2), C.bool(nullsLast)))
}

func (k *cgoKernel) SortIndicesI32(id uint64, ascending, nullsLast bool) ([]int, error) {
	return k.copySortResult(C.caravel_sort_indices_i32(C.uint64_t(id), C.bool(ascending), C.bool(nullsLast)))
}

func (k *cgoKernel) SortIndices2I32(id1, id2 uint64, asc1, asc2, nullsLast bool) ([]int, error) {
	return k.copySortResult(C.caravel_sort_indices2_i32(
		C.uint64_t(id1), C.uint64_t(id2), C.bool(asc1), C.bool(asc2), C.bool(nullsLast)))
}

func (k *cgoKernel) copySortResult(res *C.CaravelSortResult) ([]int, error) {
	if res == nil {
		return nil, errKernelCall
	}
	defer C.caravel_sort_result_destroy(res)

	n := int(C.caravel_sort_result_len(res))
	indices := C.caravel_sort_result_indices(res)
	out := make([]int, n)
	for i := 0; i < n; i++ {
		out[i] = int(*(*C.uint32_t)(unsafe.Pointer(uintptr(unsafe.Pointer(indices)) + uintptr(i)*4)))
	}
	return out, nil
}

func (k *cgoKernel) FilterF64(id uint64, mask []bool) ([]float64, error) {
	cMask := make([]C.bool, len(mask))
	for i, v := range mask {
		cMask[i] = C.bool(v)
	}
	var maskPtr *C.bool
	if len(cMask) > 0 {
		maskPtr = &cMask[0]
	}
	res := C.caravel_filter_f64(C.uint64_t(id), maskPtr, C.size_t(len(cMask)))
	if res == nil {
		return nil, errKernelCall
	}
	defer C.caravel_f64_result_destroy(res)

	n := int(C.caravel_f64_result_len(res))
	out := make([]float64, n)
	if n > 0 {
		C.caravel_f64_result_copy(res, (*C.double)(unsafe.Pointer(&out[0])), C.size_t(n))
	}
	return out, nil
}

func (k *cgoKernel) IsInF64(id uint64, candidates []float64, tol float64) ([]bool, error) {
	var candPtr *C.double
	if len(candidates) > 0 {
		candPtr = (*C.double)(unsafe.Pointer(&candidates[0]))
	}
	res := C.caravel_isin_f64(C.uint64_t(id), candPtr, C.size_t(len(candidates)), C.double(tol))
	return k.copyMaskResult(res)
}

func (k *cgoKernel) IsInI32(id uint64, candidates []int32) ([]bool, error) {
	var candPtr *C.int32_t
	if len(candidates) > 0 {
		candPtr = (*C.int32_t)(unsafe.Pointer(&candidates[0]))
	}
	res := C.caravel_isin_i32(C.uint64_t(id), candPtr, C.size_t(len(candidates)))
	return k.copyMaskResult(res)
}

func (k *cgoKernel) copyMaskResult(res *C.CaravelMaskResult) ([]bool, error) {
	if res == nil {
		return nil, errKernelCall
	}
	defer C.caravel_mask_result_destroy(res)

	n := int(C.caravel_mask_result_len(res))
	maskPtr := C.caravel_mask_result_data(res)
	out := make([]bool, n)
	for i := 0; i < n; i++ {
		out[i] = *(*C.uint8_t)(unsafe.Pointer(uintptr(unsafe.Pointer(maskPtr)) + uintptr(i))) != 0
	}
	return out, nil
}
