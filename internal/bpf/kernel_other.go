//go:build !linux

package bpf

import "time"

type unsupportedKernel struct{}

// NewKernel returns a Kernel whose walks fail with ErrUnsupported.
func NewKernel() Kernel {
	return unsupportedKernel{}
}

func (unsupportedKernel) NextID(Kind, ID) (ID, bool, error) { return 0, false, ErrUnsupported }
func (unsupportedKernel) Open(Kind, ID) (Handle, error)     { return nil, ErrUnsupported }
func (unsupportedKernel) Info(Kind, Handle) (Descriptor, error) {
	return Descriptor{}, ErrUnsupported
}

// BootTime is unknown off Linux.
func BootTime() time.Time {
	return time.Time{}
}
