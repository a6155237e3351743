package descriptor

import (
	"strings"
	"testing"
	"time"

	"github.com/atomicstack/eman/internal/bpf"
)

func TestNameStopsAtFirstZero(t *testing.T) {
	buf := make([]byte, bpf.NameLen)
	copy(buf, "abc")
	if got := Name(buf); got != "abc" {
		t.Fatalf("Name = %q, want abc", got)
	}
}

func TestNameWithoutTerminatorUsesWholeBuffer(t *testing.T) {
	buf := []byte("sixteen_chars_xx")
	if got := Name(buf); got != "sixteen_chars_xx" {
		t.Fatalf("Name = %q", got)
	}
}

func TestNameInvalidUTF8(t *testing.T) {
	buf := make([]byte, bpf.NameLen)
	buf[0] = 'a'
	buf[1] = 0xff
	if got := Name(buf); got != NotAvailable {
		t.Fatalf("Name = %q, want %q", got, NotAvailable)
	}
	// invalid bytes after the terminator are ignored
	buf = []byte{'o', 'k', 0, 0xff, 0xfe}
	if got := Name(buf); got != "ok" {
		t.Fatalf("Name = %q, want ok", got)
	}
}

func TestTag(t *testing.T) {
	if got := Tag([]byte{0xde, 0xad, 0x00, 0x0f, 0xa0, 0xb1, 0xc2, 0xd3}); got != "dead000fa0b1c2d3" {
		t.Fatalf("Tag = %q", got)
	}
}

func TestDuration(t *testing.T) {
	cases := map[uint64]string{
		0:                 "0ns",
		500:               "500ns",
		999:               "999ns",
		1_000:             "1.00μs",
		1_500:             "1.50μs",
		2_500_000:         "2.50ms",
		3_500_000_000:     "3.50s",
		999_994:           "999.99μs",
		999_999:           "1.00ms",
		999_999_999:       "1.00s",
		7_200_000_000_000: "7200.00s",
	}
	for ns, want := range cases {
		if got := Duration(ns); got != want {
			t.Fatalf("Duration(%d) = %q, want %q", ns, got, want)
		}
	}
}

func TestTypeTables(t *testing.T) {
	if ProgramType(6) != "XDP" || ProgramType(32) != "NETFILTER" {
		t.Fatalf("unexpected program labels")
	}
	if ProgramType(33) != Unknown || ProgramType(^uint32(0)) != Unknown {
		t.Fatalf("out of range program type should be %q", Unknown)
	}
	if MapType(1) != "HASH" || MapType(27) != "RINGBUF" {
		t.Fatalf("unexpected map labels")
	}
	if MapType(1000) != Unknown {
		t.Fatalf("out of range map type should be %q", Unknown)
	}
}

func TestTimestamp(t *testing.T) {
	boot := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	got := Timestamp(uint64(90*time.Second), boot)
	want := boot.Add(90 * time.Second).Local().Format(time.RFC3339)
	if got != want {
		t.Fatalf("Timestamp = %q, want %q", got, want)
	}
	if Timestamp(^uint64(0), boot) != InvalidTimestamp {
		t.Fatalf("overflowing load time should be invalid")
	}
	if Timestamp(1, time.Time{}) != InvalidTimestamp {
		t.Fatalf("unknown boot time should be invalid")
	}
}

func TestAge(t *testing.T) {
	boot := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := Clock{Boot: boot, Now: boot.Add(10 * time.Minute)}
	if got := clock.Age(uint64(7 * time.Minute)); got != "3 minutes ago" {
		t.Fatalf("Age = %q", got)
	}
	if got := (Clock{Boot: boot}).Age(1); got != NotAvailable {
		t.Fatalf("Age without a current time = %q", got)
	}
}

func TestCountAndAverage(t *testing.T) {
	if got := Count(1234567); got != "1,234,567" {
		t.Fatalf("Count = %q", got)
	}
	if got := Count(^uint64(0)); got != "18446744073709551615" {
		t.Fatalf("Count(max) = %q", got)
	}
	if got := AverageRunTime(3_000, 2); got != "1.50μs" {
		t.Fatalf("AverageRunTime = %q", got)
	}
	if got := AverageRunTime(10, 0); got != NotAvailable {
		t.Fatalf("AverageRunTime with no runs = %q", got)
	}
}

func TestRows(t *testing.T) {
	m := bpf.MapRecord{ID: 5, Type: 2, MaxEntries: 64, KeySize: 4, ValueSize: 8}
	copy(m.Name[:], "counters")
	row := MapRow(m)
	want := []string{"5", "counters", "64", "ARRAY", "4B", "8B"}
	if strings.Join(row, "|") != strings.Join(want, "|") {
		t.Fatalf("MapRow = %v, want %v", row, want)
	}
	if len(row) != len(MapHeaders) {
		t.Fatalf("map row and headers disagree")
	}

	p := bpf.ProgramRecord{ID: 9, Type: 6, Tag: [bpf.TagLen]byte{1, 2, 3, 4, 5, 6, 7, 8}}
	copy(p.Name[:], "xdp_prog")
	prow := ProgramRow(p)
	pwant := []string{"9", "xdp_prog", "0102030405060708", "XDP"}
	if strings.Join(prow, "|") != strings.Join(pwant, "|") {
		t.Fatalf("ProgramRow = %v, want %v", prow, pwant)
	}
	if len(prow) != len(ProgramHeaders) {
		t.Fatalf("program row and headers disagree")
	}
}

func TestProgramSectionsLayout(t *testing.T) {
	sections := ProgramSections(bpf.ProgramRecord{ID: 3, MapIDs: []bpf.ID{1, 2}}, Clock{})
	titles := []string{
		"Identity", "Program Lengths", "Load & Creator", "Maps & Namespaces",
		"JIT Symbols", "BTF & Func Info", "Line Info", "Tags & Stats",
	}
	if len(sections) != len(titles) {
		t.Fatalf("expected %d sections, got %d", len(titles), len(sections))
	}
	for i, title := range titles {
		if sections[i].Title != title {
			t.Fatalf("section %d = %q, want %q", i, sections[i].Title, title)
		}
	}
	if v := fieldValue(sections, "Map IDs"); v != "[1, 2]" {
		t.Fatalf("Map IDs = %q", v)
	}
	if v := fieldValue(sections, "Loaded At"); v != InvalidTimestamp {
		t.Fatalf("Loaded At without boot time = %q", v)
	}
}

func TestFormattingIsTotal(t *testing.T) {
	boot := time.Unix(1_700_000_000, 0)
	clock := Clock{Boot: boot, Now: boot.Add(time.Hour)}
	for _, fill := range []byte{0x00, 0xff} {
		mapBuf := make([]byte, bpf.MapInfoSize)
		progBuf := make([]byte, bpf.ProgramInfoSize)
		for i := range mapBuf {
			mapBuf[i] = fill
		}
		for i := range progBuf {
			progBuf[i] = fill
		}

		m := bpf.DecodeMap(bpf.Descriptor{Data: mapBuf})
		for _, f := range MapFields(m) {
			if f.Value == "" && f.Label != "Name" {
				t.Fatalf("fill %#x: empty map field %q", fill, f.Label)
			}
		}
		if len(MapRow(m)) != len(MapHeaders) {
			t.Fatalf("fill %#x: short map row", fill)
		}

		p := bpf.DecodeProgram(bpf.Descriptor{Data: progBuf})
		fields := Flatten(ProgramSections(p, clock))
		if len(fields) == 0 {
			t.Fatalf("fill %#x: no program fields", fill)
		}
		if len(ProgramRow(p)) != len(ProgramHeaders) {
			t.Fatalf("fill %#x: short program row", fill)
		}
	}

	p := bpf.DecodeProgram(bpf.Descriptor{Data: bytesOf(0xff, bpf.ProgramInfoSize)})
	sections := ProgramSections(p, clock)
	if v := fieldValue(sections, "Name"); v != NotAvailable {
		t.Fatalf("0xff name = %q", v)
	}
	if v := fieldValue(sections, "Loaded At"); v != InvalidTimestamp {
		t.Fatalf("0xff load time = %q", v)
	}
	if v := fieldValue(sections, "Type"); !strings.Contains(v, Unknown) {
		t.Fatalf("0xff type = %q", v)
	}
}

func bytesOf(b byte, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = b
	}
	return out
}

func fieldValue(sections []Section, label string) string {
	for _, f := range Flatten(sections) {
		if f.Label == label {
			return f.Value
		}
	}
	return ""
}
