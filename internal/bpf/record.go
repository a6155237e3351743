package bpf

import "encoding/binary"

// Sizes of the uapi info structs this package understands. Kernels that
// know fewer fields fill a prefix; the remainder decodes as zero.
const (
	MapInfoSize     = 88
	ProgramInfoSize = 232

	NameLen = 16
	TagLen  = 8
)

// MapRecord mirrors struct bpf_map_info.
type MapRecord struct {
	Type                  uint32
	ID                    ID
	KeySize               uint32
	ValueSize             uint32
	MaxEntries            uint32
	Flags                 uint32
	Name                  [NameLen]byte
	IfIndex               uint32
	BTFVmlinuxValueTypeID uint32
	NetnsDev              uint64
	NetnsIno              uint64
	BTFID                 uint32
	BTFKeyTypeID          uint32
	BTFValueTypeID        uint32
	MapExtra              uint64
}

// ProgramRecord mirrors struct bpf_prog_info. Pointer fields are kept as
// the raw addresses the kernel reported. MapIDs is filled by a separate
// query and is not part of the fixed record.
type ProgramRecord struct {
	Type                 uint32
	ID                   ID
	Tag                  [TagLen]byte
	JitedProgLen         uint32
	XlatedProgLen        uint32
	JitedProgInsns       uint64
	XlatedProgInsns      uint64
	LoadTime             uint64
	CreatedByUID         uint32
	NrMapIDs             uint32
	MapIDsAddr           uint64
	Name                 [NameLen]byte
	IfIndex              uint32
	GPLCompatible        bool
	NetnsDev             uint64
	NetnsIno             uint64
	NrJitedKsyms         uint32
	NrJitedFuncLens      uint32
	JitedKsyms           uint64
	JitedFuncLens        uint64
	BTFID                uint32
	FuncInfoRecSize      uint32
	FuncInfo             uint64
	NrFuncInfo           uint32
	NrLineInfo           uint32
	LineInfo             uint64
	JitedLineInfo        uint64
	NrJitedLineInfo      uint32
	LineInfoRecSize      uint32
	JitedLineInfoRecSize uint32
	NrProgTags           uint32
	ProgTags             uint64
	RunTimeNs            uint64
	RunCnt               uint64
	RecursionMisses      uint64
	VerifiedInsns        uint32
	AttachBTFObjID       uint32
	AttachBTFID          uint32

	MapIDs []ID
}

// field offsets within struct bpf_map_info
const (
	mapOffType           = 0
	mapOffID             = 4
	mapOffKeySize        = 8
	mapOffValueSize      = 12
	mapOffMaxEntries     = 16
	mapOffFlags          = 20
	mapOffName           = 24
	mapOffIfIndex        = 40
	mapOffVmlinuxValueID = 44
	mapOffNetnsDev       = 48
	mapOffNetnsIno       = 56
	mapOffBTFID          = 64
	mapOffBTFKeyTypeID   = 68
	mapOffBTFValueTypeID = 72
	mapOffMapExtra       = 80
)

// field offsets within struct bpf_prog_info
const (
	progOffType                 = 0
	progOffID                   = 4
	progOffTag                  = 8
	progOffJitedProgLen         = 16
	progOffXlatedProgLen        = 20
	progOffJitedProgInsns       = 24
	progOffXlatedProgInsns      = 32
	progOffLoadTime             = 40
	progOffCreatedByUID         = 48
	progOffNrMapIDs             = 52
	progOffMapIDs               = 56
	progOffName                 = 64
	progOffIfIndex              = 80
	progOffGPLCompatible        = 84
	progOffNetnsDev             = 88
	progOffNetnsIno             = 96
	progOffNrJitedKsyms         = 104
	progOffNrJitedFuncLens      = 108
	progOffJitedKsyms           = 112
	progOffJitedFuncLens        = 120
	progOffBTFID                = 128
	progOffFuncInfoRecSize      = 132
	progOffFuncInfo             = 136
	progOffNrFuncInfo           = 144
	progOffNrLineInfo           = 148
	progOffLineInfo             = 152
	progOffJitedLineInfo        = 160
	progOffNrJitedLineInfo      = 168
	progOffLineInfoRecSize      = 172
	progOffJitedLineInfoRecSize = 176
	progOffNrProgTags           = 180
	progOffProgTags             = 184
	progOffRunTimeNs            = 192
	progOffRunCnt               = 200
	progOffRecursionMisses      = 208
	progOffVerifiedInsns        = 216
	progOffAttachBTFObjID       = 220
	progOffAttachBTFID          = 224
)

// InfoSize returns the buffer size used to fetch records of kind.
func InfoSize(kind Kind) int {
	if kind == KindProgram {
		return ProgramInfoSize
	}
	return MapInfoSize
}

// layout reads and writes host-endian fields at fixed offsets. The buffer
// is always the full record size so short kernel replies decode as zero.
type layout struct {
	buf []byte
}

func newLayout(data []byte, size int) layout {
	buf := make([]byte, size)
	copy(buf, data)
	return layout{buf: buf}
}

func (l layout) u32(off int) uint32 { return binary.NativeEndian.Uint32(l.buf[off:]) }
func (l layout) u64(off int) uint64 { return binary.NativeEndian.Uint64(l.buf[off:]) }

func (l layout) putU32(off int, v uint32) { binary.NativeEndian.PutUint32(l.buf[off:], v) }
func (l layout) putU64(off int, v uint64) { binary.NativeEndian.PutUint64(l.buf[off:], v) }

// DecodeMap decodes a struct bpf_map_info.
func DecodeMap(desc Descriptor) MapRecord {
	l := newLayout(desc.Data, MapInfoSize)
	r := MapRecord{
		Type:                  l.u32(mapOffType),
		ID:                    ID(l.u32(mapOffID)),
		KeySize:               l.u32(mapOffKeySize),
		ValueSize:             l.u32(mapOffValueSize),
		MaxEntries:            l.u32(mapOffMaxEntries),
		Flags:                 l.u32(mapOffFlags),
		IfIndex:               l.u32(mapOffIfIndex),
		BTFVmlinuxValueTypeID: l.u32(mapOffVmlinuxValueID),
		NetnsDev:              l.u64(mapOffNetnsDev),
		NetnsIno:              l.u64(mapOffNetnsIno),
		BTFID:                 l.u32(mapOffBTFID),
		BTFKeyTypeID:          l.u32(mapOffBTFKeyTypeID),
		BTFValueTypeID:        l.u32(mapOffBTFValueTypeID),
		MapExtra:              l.u64(mapOffMapExtra),
	}
	copy(r.Name[:], l.buf[mapOffName:mapOffName+NameLen])
	return r
}

// EncodeMap produces the kernel layout for r.
func EncodeMap(r MapRecord) []byte {
	l := newLayout(nil, MapInfoSize)
	l.putU32(mapOffType, r.Type)
	l.putU32(mapOffID, uint32(r.ID))
	l.putU32(mapOffKeySize, r.KeySize)
	l.putU32(mapOffValueSize, r.ValueSize)
	l.putU32(mapOffMaxEntries, r.MaxEntries)
	l.putU32(mapOffFlags, r.Flags)
	copy(l.buf[mapOffName:], r.Name[:])
	l.putU32(mapOffIfIndex, r.IfIndex)
	l.putU32(mapOffVmlinuxValueID, r.BTFVmlinuxValueTypeID)
	l.putU64(mapOffNetnsDev, r.NetnsDev)
	l.putU64(mapOffNetnsIno, r.NetnsIno)
	l.putU32(mapOffBTFID, r.BTFID)
	l.putU32(mapOffBTFKeyTypeID, r.BTFKeyTypeID)
	l.putU32(mapOffBTFValueTypeID, r.BTFValueTypeID)
	l.putU64(mapOffMapExtra, r.MapExtra)
	return l.buf
}

// DecodeProgram decodes a struct bpf_prog_info plus the separately queried
// map IDs.
func DecodeProgram(desc Descriptor) ProgramRecord {
	l := newLayout(desc.Data, ProgramInfoSize)
	r := ProgramRecord{
		Type:                 l.u32(progOffType),
		ID:                   ID(l.u32(progOffID)),
		JitedProgLen:         l.u32(progOffJitedProgLen),
		XlatedProgLen:        l.u32(progOffXlatedProgLen),
		JitedProgInsns:       l.u64(progOffJitedProgInsns),
		XlatedProgInsns:      l.u64(progOffXlatedProgInsns),
		LoadTime:             l.u64(progOffLoadTime),
		CreatedByUID:         l.u32(progOffCreatedByUID),
		NrMapIDs:             l.u32(progOffNrMapIDs),
		MapIDsAddr:           l.u64(progOffMapIDs),
		IfIndex:              l.u32(progOffIfIndex),
		GPLCompatible:        l.u32(progOffGPLCompatible)&1 == 1,
		NetnsDev:             l.u64(progOffNetnsDev),
		NetnsIno:             l.u64(progOffNetnsIno),
		NrJitedKsyms:         l.u32(progOffNrJitedKsyms),
		NrJitedFuncLens:      l.u32(progOffNrJitedFuncLens),
		JitedKsyms:           l.u64(progOffJitedKsyms),
		JitedFuncLens:        l.u64(progOffJitedFuncLens),
		BTFID:                l.u32(progOffBTFID),
		FuncInfoRecSize:      l.u32(progOffFuncInfoRecSize),
		FuncInfo:             l.u64(progOffFuncInfo),
		NrFuncInfo:           l.u32(progOffNrFuncInfo),
		NrLineInfo:           l.u32(progOffNrLineInfo),
		LineInfo:             l.u64(progOffLineInfo),
		JitedLineInfo:        l.u64(progOffJitedLineInfo),
		NrJitedLineInfo:      l.u32(progOffNrJitedLineInfo),
		LineInfoRecSize:      l.u32(progOffLineInfoRecSize),
		JitedLineInfoRecSize: l.u32(progOffJitedLineInfoRecSize),
		NrProgTags:           l.u32(progOffNrProgTags),
		ProgTags:             l.u64(progOffProgTags),
		RunTimeNs:            l.u64(progOffRunTimeNs),
		RunCnt:               l.u64(progOffRunCnt),
		RecursionMisses:      l.u64(progOffRecursionMisses),
		VerifiedInsns:        l.u32(progOffVerifiedInsns),
		AttachBTFObjID:       l.u32(progOffAttachBTFObjID),
		AttachBTFID:          l.u32(progOffAttachBTFID),
	}
	copy(r.Tag[:], l.buf[progOffTag:progOffTag+TagLen])
	copy(r.Name[:], l.buf[progOffName:progOffName+NameLen])
	if len(desc.MapIDs) > 0 {
		r.MapIDs = append([]ID(nil), desc.MapIDs...)
	}
	return r
}

// EncodeProgram produces the kernel layout for r. MapIDs are not part of
// the fixed record and are left to the caller.
func EncodeProgram(r ProgramRecord) []byte {
	l := newLayout(nil, ProgramInfoSize)
	l.putU32(progOffType, r.Type)
	l.putU32(progOffID, uint32(r.ID))
	copy(l.buf[progOffTag:], r.Tag[:])
	l.putU32(progOffJitedProgLen, r.JitedProgLen)
	l.putU32(progOffXlatedProgLen, r.XlatedProgLen)
	l.putU64(progOffJitedProgInsns, r.JitedProgInsns)
	l.putU64(progOffXlatedProgInsns, r.XlatedProgInsns)
	l.putU64(progOffLoadTime, r.LoadTime)
	l.putU32(progOffCreatedByUID, r.CreatedByUID)
	l.putU32(progOffNrMapIDs, r.NrMapIDs)
	l.putU64(progOffMapIDs, r.MapIDsAddr)
	copy(l.buf[progOffName:], r.Name[:])
	l.putU32(progOffIfIndex, r.IfIndex)
	if r.GPLCompatible {
		l.putU32(progOffGPLCompatible, 1)
	}
	l.putU64(progOffNetnsDev, r.NetnsDev)
	l.putU64(progOffNetnsIno, r.NetnsIno)
	l.putU32(progOffNrJitedKsyms, r.NrJitedKsyms)
	l.putU32(progOffNrJitedFuncLens, r.NrJitedFuncLens)
	l.putU64(progOffJitedKsyms, r.JitedKsyms)
	l.putU64(progOffJitedFuncLens, r.JitedFuncLens)
	l.putU32(progOffBTFID, r.BTFID)
	l.putU32(progOffFuncInfoRecSize, r.FuncInfoRecSize)
	l.putU64(progOffFuncInfo, r.FuncInfo)
	l.putU32(progOffNrFuncInfo, r.NrFuncInfo)
	l.putU32(progOffNrLineInfo, r.NrLineInfo)
	l.putU64(progOffLineInfo, r.LineInfo)
	l.putU64(progOffJitedLineInfo, r.JitedLineInfo)
	l.putU32(progOffNrJitedLineInfo, r.NrJitedLineInfo)
	l.putU32(progOffLineInfoRecSize, r.LineInfoRecSize)
	l.putU32(progOffJitedLineInfoRecSize, r.JitedLineInfoRecSize)
	l.putU32(progOffNrProgTags, r.NrProgTags)
	l.putU64(progOffProgTags, r.ProgTags)
	l.putU64(progOffRunTimeNs, r.RunTimeNs)
	l.putU64(progOffRunCnt, r.RunCnt)
	l.putU64(progOffRecursionMisses, r.RecursionMisses)
	l.putU32(progOffVerifiedInsns, r.VerifiedInsns)
	l.putU32(progOffAttachBTFObjID, r.AttachBTFObjID)
	l.putU32(progOffAttachBTFID, r.AttachBTFID)
	return l.buf
}
