//go:build !accel

package caravel

// AcceleratedKernel probes for the native SIMD kernel. Default builds do not
// link it; build with -tags accel after compiling the native core (see
// core/README in the source tree). The dispatcher treats unavailability as
// an ordinary kernel fault and stays on the portable path.
func AcceleratedKernel() (Kernel, error) {
	return nil, errKernelUnavailable
}
