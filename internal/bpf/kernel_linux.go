//go:build linux

package bpf

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"
	"unsafe"

	"github.com/cilium/ebpf"
	"golang.org/x/sys/unix"
)

type sysKernel struct{}

// NewKernel returns the Kernel backed by the bpf(2) syscall.
func NewKernel() Kernel {
	return sysKernel{}
}

func (sysKernel) NextID(kind Kind, after ID) (ID, bool, error) {
	var (
		next uint32
		err  error
	)
	switch kind {
	case KindMap:
		var id ebpf.MapID
		id, err = ebpf.MapGetNextID(ebpf.MapID(after))
		next = uint32(id)
	case KindProgram:
		var id ebpf.ProgramID
		id, err = ebpf.ProgramGetNextID(ebpf.ProgramID(after))
		next = uint32(id)
	default:
		return 0, false, fmt.Errorf("unknown object kind %s", kind)
	}
	if errors.Is(err, os.ErrNotExist) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return ID(next), true, nil
}

func (sysKernel) Open(kind Kind, id ID) (Handle, error) {
	var err error
	switch kind {
	case KindMap:
		m, merr := ebpf.NewMapFromID(ebpf.MapID(id))
		if merr == nil {
			return m, nil
		}
		err = merr
	case KindProgram:
		p, perr := ebpf.NewProgramFromID(ebpf.ProgramID(id))
		if perr == nil {
			return p, nil
		}
		err = perr
	default:
		return nil, fmt.Errorf("unknown object kind %s", kind)
	}
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
	}
	return nil, err
}

func (sysKernel) Info(kind Kind, h Handle) (Descriptor, error) {
	buf := make([]byte, InfoSize(kind))
	n, err := objGetInfoByFD(h.FD(), buf)
	if err != nil {
		return Descriptor{}, err
	}
	desc := Descriptor{Data: buf[:n]}
	if prog, ok := h.(*ebpf.Program); ok {
		// Map IDs need a second query with a caller-provided array.
		if info, err := prog.Info(); err == nil {
			if ids, ok := info.MapIDs(); ok {
				desc.MapIDs = make([]ID, len(ids))
				for i, id := range ids {
					desc.MapIDs[i] = ID(id)
				}
			}
		}
	}
	return desc, nil
}

// objInfoAttr is the info member of union bpf_attr.
type objInfoAttr struct {
	bpfFD   uint32
	infoLen uint32
	info    uint64
}

// objGetInfoByFD fills buf with the object's info record and returns the
// number of bytes the kernel wrote.
func objGetInfoByFD(fd int, buf []byte) (int, error) {
	attr := objInfoAttr{
		bpfFD:   uint32(fd),
		infoLen: uint32(len(buf)),
		info:    uint64(uintptr(unsafe.Pointer(&buf[0]))),
	}
	_, _, errno := unix.Syscall(unix.SYS_BPF, unix.BPF_OBJ_GET_INFO_BY_FD,
		uintptr(unsafe.Pointer(&attr)), unsafe.Sizeof(attr))
	runtime.KeepAlive(buf)
	if errno != 0 {
		return 0, fmt.Errorf("obj get info by fd %d: %w", fd, errno)
	}
	n := int(attr.infoLen)
	if n > len(buf) {
		n = len(buf)
	}
	return n, nil
}

// BootTime returns the wall-clock boot time from /proc/stat. The zero time
// is returned when it cannot be determined.
func BootTime() time.Time {
	data, err := os.ReadFile("/proc/stat")
	if err != nil {
		return time.Time{}
	}
	for _, line := range strings.Split(string(data), "\n") {
		if !strings.HasPrefix(line, "btime ") {
			continue
		}
		var btime int64
		if _, err := fmt.Sscanf(line, "btime %d", &btime); err == nil {
			return time.Unix(btime, 0)
		}
	}
	return time.Time{}
}
