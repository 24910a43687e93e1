package caravel

import "errors"

// Construction and usage errors. These are raised synchronously to the
// caller and never retried. Kernel faults are not represented here: they are
// recovered internally by the portable path (see engine.go).
var (
	// ErrLengthMismatch reports an index, mask, or column whose length does
	// not match the data it is applied to.
	ErrLengthMismatch = errors.New("caravel: length mismatch")

	// ErrColumnNotFound reports a reference to a column name the DataFrame
	// does not contain.
	ErrColumnNotFound = errors.New("caravel: column not found")

	// ErrUnknownAggregation reports an aggregation function name outside the
	// supported set.
	ErrUnknownAggregation = errors.New("caravel: unknown aggregation function")

	// ErrGroupNotFound reports a reference to a group key the partition does
	// not contain.
	ErrGroupNotFound = errors.New("caravel: group not found")

	// ErrTypeMismatch reports a value that cannot be represented in a
	// Series' dtype.
	ErrTypeMismatch = errors.New("caravel: type mismatch")

	// ErrEmptyDataFrame reports an operation that requires at least one
	// column.
	ErrEmptyDataFrame = errors.New("caravel: empty DataFrame")
)

// errKernelUnavailable signals that no accelerated kernel is linked into
// this build. It only circulates inside the dispatcher.
var errKernelUnavailable = errors.New("caravel: accelerated kernel unavailable")

// errHandleReleased signals use of a buffer handle after release. The owned
// handle type prevents this by construction; kernels still guard against it.
var errHandleReleased = errors.New("caravel: buffer handle released")
