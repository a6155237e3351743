package testutil

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/atomicstack/eman/internal/bpf"
)

// ErrInfoFailed is returned by FakeKernel.Info for objects marked with FailInfo.
var ErrInfoFailed = errors.New("fake info failure")

type fakeObject struct {
	data     []byte
	mapIDs   []bpf.ID
	vanished bool
	failInfo bool
}

// FakeKernel is a scripted bpf.Kernel. Objects are listed in ascending ID
// order, which is how the real ID walk reports them.
type FakeKernel struct {
	mu      sync.Mutex
	objects map[bpf.Kind]map[bpf.ID]*fakeObject
	nextErr map[bpf.Kind]error
	errFrom map[bpf.Kind]int
	calls   map[bpf.Kind]int
	stall   map[bpf.Kind]bool

	opened      int
	closed      int
	doubleClose int
	nextCalls   int
}

// NewFakeKernel returns an empty kernel.
func NewFakeKernel() *FakeKernel {
	return &FakeKernel{
		objects: map[bpf.Kind]map[bpf.ID]*fakeObject{},
		nextErr: map[bpf.Kind]error{},
		stall:   map[bpf.Kind]bool{},
	}
}

func (k *FakeKernel) put(kind bpf.Kind, id bpf.ID, obj *fakeObject) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.objects[kind] == nil {
		k.objects[kind] = map[bpf.ID]*fakeObject{}
	}
	k.objects[kind][id] = obj
}

// AddMap registers or replaces a live map.
func (k *FakeKernel) AddMap(r bpf.MapRecord) {
	k.put(bpf.KindMap, r.ID, &fakeObject{data: bpf.EncodeMap(r)})
}

// AddProgram registers or replaces a live program.
func (k *FakeKernel) AddProgram(r bpf.ProgramRecord) {
	k.put(bpf.KindProgram, r.ID, &fakeObject{data: bpf.EncodeProgram(r), mapIDs: r.MapIDs})
}

// AddRaw registers an object whose info record is the given bytes.
func (k *FakeKernel) AddRaw(kind bpf.Kind, id bpf.ID, data []byte) {
	k.put(kind, id, &fakeObject{data: append([]byte(nil), data...)})
}

// Remove destroys an object so it is no longer listed.
func (k *FakeKernel) Remove(kind bpf.Kind, id bpf.ID) {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.objects[kind], id)
}

// Vanish keeps id in the ID walk but makes Open fail with bpf.ErrNotFound,
// as when an object is destroyed between enumeration and resolution.
func (k *FakeKernel) Vanish(kind bpf.Kind, id bpf.ID) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if obj, ok := k.objects[kind][id]; ok {
		obj.vanished = true
		return
	}
	if k.objects[kind] == nil {
		k.objects[kind] = map[bpf.ID]*fakeObject{}
	}
	k.objects[kind][id] = &fakeObject{vanished: true}
}

// FailInfo makes the info fetch for id fail after a successful open.
func (k *FakeKernel) FailInfo(kind bpf.Kind, id bpf.ID) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if obj, ok := k.objects[kind][id]; ok {
		obj.failInfo = true
	}
}

// FailNextID makes every NextID call for kind return err.
func (k *FakeKernel) FailNextID(kind bpf.Kind, err error) {
	k.FailNextIDAfter(kind, 0, err)
}

// FailNextIDAfter lets n more NextID calls for kind succeed and fails every
// call after them with err.
func (k *FakeKernel) FailNextIDAfter(kind bpf.Kind, n int, err error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.nextErr[kind] = err
	k.errFrom[kind] = k.calls[kind] + n
}

// Stall makes NextID for kind keep returning the same ID.
func (k *FakeKernel) Stall(kind bpf.Kind) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.stall[kind] = true
}

// NextID implements bpf.Kernel.
func (k *FakeKernel) NextID(kind bpf.Kind, after bpf.ID) (bpf.ID, bool, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.nextCalls++
	k.calls[kind]++
	if err := k.nextErr[kind]; err != nil && k.calls[kind] > k.errFrom[kind] {
		return 0, false, err
	}
	ids := make([]bpf.ID, 0, len(k.objects[kind]))
	for id := range k.objects[kind] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	if k.stall[kind] && len(ids) > 0 {
		return ids[0], true, nil
	}
	for _, id := range ids {
		if id > after {
			return id, true, nil
		}
	}
	return 0, false, nil
}

// Open implements bpf.Kernel.
func (k *FakeKernel) Open(kind bpf.Kind, id bpf.ID) (bpf.Handle, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	obj, ok := k.objects[kind][id]
	if !ok || obj.vanished {
		return nil, fmt.Errorf("%s %d: %w", kind, id, bpf.ErrNotFound)
	}
	k.opened++
	return &fakeHandle{kernel: k, kind: kind, id: id, fd: 100 + k.opened}, nil
}

// Info implements bpf.Kernel.
func (k *FakeKernel) Info(kind bpf.Kind, h bpf.Handle) (bpf.Descriptor, error) {
	fh, ok := h.(*fakeHandle)
	if !ok {
		return bpf.Descriptor{}, fmt.Errorf("foreign handle %T", h)
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	if fh.closed {
		return bpf.Descriptor{}, errors.New("info on closed handle")
	}
	obj, ok := k.objects[kind][fh.id]
	if !ok {
		return bpf.Descriptor{}, fmt.Errorf("%s %d: %w", kind, fh.id, bpf.ErrNotFound)
	}
	if obj.failInfo {
		return bpf.Descriptor{}, ErrInfoFailed
	}
	size := bpf.InfoSize(kind)
	data := obj.data
	if len(data) > size {
		data = data[:size]
	}
	return bpf.Descriptor{
		Data:   append([]byte(nil), data...),
		MapIDs: append([]bpf.ID(nil), obj.mapIDs...),
	}, nil
}

// OpenHandles returns the number of handles opened but not yet closed.
func (k *FakeKernel) OpenHandles() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.opened - k.closed
}

// Opened returns the total number of successful opens.
func (k *FakeKernel) Opened() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.opened
}

// DoubleCloses returns how many times a handle was closed more than once.
func (k *FakeKernel) DoubleCloses() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.doubleClose
}

// NextIDCalls returns the number of NextID round trips made so far.
func (k *FakeKernel) NextIDCalls() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.nextCalls
}

type fakeHandle struct {
	kernel *FakeKernel
	kind   bpf.Kind
	id     bpf.ID
	fd     int
	closed bool
}

func (h *fakeHandle) FD() int { return h.fd }

func (h *fakeHandle) Close() error {
	h.kernel.mu.Lock()
	defer h.kernel.mu.Unlock()
	if h.closed {
		h.kernel.doubleClose++
		return errors.New("handle already closed")
	}
	h.closed = true
	h.kernel.closed++
	return nil
}

// Name packs s into a fixed-size, zero-padded name buffer.
func Name(s string) [bpf.NameLen]byte {
	var buf [bpf.NameLen]byte
	copy(buf[:], s)
	return buf
}
