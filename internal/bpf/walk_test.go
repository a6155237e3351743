package bpf_test

import (
	"errors"
	"testing"

	"github.com/atomicstack/eman/internal/bpf"
	"github.com/atomicstack/eman/internal/testutil"
)

func TestMapsReturnsKernelOrder(t *testing.T) {
	k := testutil.NewFakeKernel()
	for _, id := range []bpf.ID{9, 2, 5} {
		k.AddMap(bpf.MapRecord{ID: id, Type: 1, MaxEntries: uint32(id) * 10, Name: testutil.Name("m")})
	}

	maps, err := bpf.Maps(k)
	if err != nil {
		t.Fatalf("Maps: %v", err)
	}
	if len(maps) != 3 {
		t.Fatalf("expected 3 maps, got %d", len(maps))
	}
	for i, want := range []bpf.ID{2, 5, 9} {
		if maps[i].ID != want {
			t.Fatalf("maps[%d].ID = %d, want %d", i, maps[i].ID, want)
		}
		if maps[i].MaxEntries != uint32(want)*10 {
			t.Fatalf("maps[%d].MaxEntries = %d", i, maps[i].MaxEntries)
		}
	}
	if k.OpenHandles() != 0 {
		t.Fatalf("leaked %d handles", k.OpenHandles())
	}
}

func TestWalkSkipsVanishedObjects(t *testing.T) {
	k := testutil.NewFakeKernel()
	k.AddProgram(bpf.ProgramRecord{ID: 1, Type: 1})
	k.AddProgram(bpf.ProgramRecord{ID: 2, Type: 2})
	k.AddProgram(bpf.ProgramRecord{ID: 3, Type: 3})
	k.Vanish(bpf.KindProgram, 2)

	progs, err := bpf.Programs(k)
	if err != nil {
		t.Fatalf("Programs: %v", err)
	}
	if len(progs) != 2 || progs[0].ID != 1 || progs[1].ID != 3 {
		t.Fatalf("unexpected programs %+v", progs)
	}
}

func TestWalkSkipsInfoFailuresAndClosesHandles(t *testing.T) {
	k := testutil.NewFakeKernel()
	k.AddMap(bpf.MapRecord{ID: 4})
	k.AddMap(bpf.MapRecord{ID: 7})
	k.FailInfo(bpf.KindMap, 4)

	maps, err := bpf.Maps(k)
	if err != nil {
		t.Fatalf("Maps: %v", err)
	}
	if len(maps) != 1 || maps[0].ID != 7 {
		t.Fatalf("unexpected maps %+v", maps)
	}
	if k.Opened() != 2 {
		t.Fatalf("expected 2 opens, got %d", k.Opened())
	}
	if k.OpenHandles() != 0 || k.DoubleCloses() != 0 {
		t.Fatalf("handle accounting off: open=%d double=%d", k.OpenHandles(), k.DoubleCloses())
	}
}

func TestWalkTerminatesWhenEveryResolveFails(t *testing.T) {
	k := testutil.NewFakeKernel()
	for id := bpf.ID(1); id <= 50; id++ {
		k.Vanish(bpf.KindMap, id)
	}

	maps, err := bpf.Maps(k)
	if err != nil {
		t.Fatalf("Maps: %v", err)
	}
	if len(maps) != 0 {
		t.Fatalf("expected no maps, got %d", len(maps))
	}
	if calls := k.NextIDCalls(); calls != 51 {
		t.Fatalf("expected 51 next-id calls, got %d", calls)
	}
}

func TestWalkEmptyKernel(t *testing.T) {
	k := testutil.NewFakeKernel()
	progs, err := bpf.Programs(k)
	if err != nil {
		t.Fatalf("Programs: %v", err)
	}
	if len(progs) != 0 {
		t.Fatalf("expected empty list, got %d", len(progs))
	}
}

func TestWalkAbortKeepsPartialResult(t *testing.T) {
	k := testutil.NewFakeKernel()
	for _, id := range []bpf.ID{2, 5, 9} {
		k.AddMap(bpf.MapRecord{ID: id, MaxEntries: uint32(id)})
	}
	boom := errors.New("permission denied")
	k.FailNextIDAfter(bpf.KindMap, 2, boom)

	maps, err := bpf.Maps(k)
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
	if len(maps) != 2 {
		t.Fatalf("expected the two maps seen before the failure, got %d", len(maps))
	}
	for i, want := range []bpf.ID{2, 5} {
		if maps[i].ID != want || maps[i].MaxEntries != uint32(want) {
			t.Fatalf("maps[%d] = %+v, want id %d", i, maps[i], want)
		}
	}
	if k.OpenHandles() != 0 {
		t.Fatalf("leaked %d handles", k.OpenHandles())
	}
}

func TestWalkAbortOnFirstCallReturnsEmpty(t *testing.T) {
	k := testutil.NewFakeKernel()
	k.AddMap(bpf.MapRecord{ID: 1})
	boom := errors.New("permission denied")
	k.FailNextID(bpf.KindMap, boom)

	maps, err := bpf.Maps(k)
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
	if len(maps) != 0 {
		t.Fatalf("expected no maps, got %d", len(maps))
	}
}

func TestWalkStopsOnStalledID(t *testing.T) {
	k := testutil.NewFakeKernel()
	k.AddMap(bpf.MapRecord{ID: 3})
	k.AddMap(bpf.MapRecord{ID: 8})
	k.Stall(bpf.KindMap)

	maps, err := bpf.Maps(k)
	if err == nil {
		t.Fatalf("expected stalled walk error")
	}
	if len(maps) != 1 || maps[0].ID != 3 {
		t.Fatalf("expected the first record before the stall, got %+v", maps)
	}
}

func TestLookupProgram(t *testing.T) {
	k := testutil.NewFakeKernel()
	k.AddProgram(bpf.ProgramRecord{
		ID:            12,
		Type:          5,
		Name:          testutil.Name("xdp_pass"),
		Tag:           [bpf.TagLen]byte{0xde, 0xad, 0xbe, 0xef, 0, 1, 2, 3},
		GPLCompatible: true,
		RunCnt:        42,
		MapIDs:        []bpf.ID{3, 4},
	})

	rec, err := bpf.LookupProgram(k, 12)
	if err != nil {
		t.Fatalf("LookupProgram: %v", err)
	}
	if rec.ID != 12 || rec.Type != 5 || !rec.GPLCompatible || rec.RunCnt != 42 {
		t.Fatalf("unexpected record %+v", rec)
	}
	if rec.Tag[0] != 0xde || rec.Tag[7] != 3 {
		t.Fatalf("tag not decoded: %x", rec.Tag)
	}
	if len(rec.MapIDs) != 2 || rec.MapIDs[1] != 4 {
		t.Fatalf("map ids not carried: %v", rec.MapIDs)
	}

	_, err = bpf.LookupProgram(k, 99)
	if !errors.Is(err, bpf.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if k.OpenHandles() != 0 {
		t.Fatalf("leaked %d handles", k.OpenHandles())
	}
}

func TestResolveReturnsOwnedHandle(t *testing.T) {
	k := testutil.NewFakeKernel()
	k.AddMap(bpf.MapRecord{ID: 1})

	h, err := bpf.Resolve(k, bpf.KindMap, 1)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if h.FD() <= 0 {
		t.Fatalf("expected a valid fd, got %d", h.FD())
	}
	if k.OpenHandles() != 1 {
		t.Fatalf("expected one open handle")
	}
	if err := h.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if k.OpenHandles() != 0 {
		t.Fatalf("handle not released")
	}

	if _, err := bpf.Resolve(k, bpf.KindMap, 2); !errors.Is(err, bpf.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing id, got %v", err)
	}
}
