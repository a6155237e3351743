package descriptor

import (
	"strings"

	"github.com/atomicstack/eman/internal/bpf"
)

// Field is one labelled value in a detail view.
type Field struct {
	Label string
	Value string
}

// Section groups related fields under a title.
type Section struct {
	Title  string
	Fields []Field
}

var (
	MapHeaders     = []string{"ID", "Name", "Max-Entries", "Type", "Key Size", "Value Size"}
	ProgramHeaders = []string{"ID", "Name", "Tag", "Type"}
)

// MapRow renders the summary row for a map.
func MapRow(r bpf.MapRecord) []string {
	return []string{
		decimal(r.ID),
		Name(r.Name[:]),
		decimal(r.MaxEntries),
		MapType(r.Type),
		byteLen(r.KeySize),
		byteLen(r.ValueSize),
	}
}

// ProgramRow renders the summary row for a program.
func ProgramRow(r bpf.ProgramRecord) []string {
	return []string{
		decimal(r.ID),
		Name(r.Name[:]),
		Tag(r.Tag[:]),
		ProgramType(r.Type),
	}
}

// MapFields renders every field of a map record in display order.
func MapFields(r bpf.MapRecord) []Field {
	return []Field{
		{"ID", decimal(r.ID)},
		{"Type", typeWithCode(r.Type, MapType(r.Type))},
		{"Name", Name(r.Name[:])},
		{"Key Size", byteLen(r.KeySize)},
		{"Value Size", byteLen(r.ValueSize)},
		{"Max Entries", decimal(r.MaxEntries)},
		{"Flags", hexAddr(uint64(r.Flags))},
		{"IfIndex", decimal(r.IfIndex)},
		{"Netns Dev", hexAddr(r.NetnsDev)},
		{"Netns Ino", decimal(r.NetnsIno)},
		{"BTF ID", decimal(r.BTFID)},
		{"BTF Key Type ID", decimal(r.BTFKeyTypeID)},
		{"BTF Value Type ID", decimal(r.BTFValueTypeID)},
		{"BTF Vmlinux Value Type ID", decimal(r.BTFVmlinuxValueTypeID)},
		{"Map Extra", hexAddr(r.MapExtra)},
	}
}

// ProgramSections renders the full program detail view.
func ProgramSections(r bpf.ProgramRecord, clock Clock) []Section {
	return []Section{
		{"Identity", []Field{
			{"ID", decimal(r.ID)},
			{"Type", typeWithCode(r.Type, ProgramType(r.Type))},
			{"Name", Name(r.Name[:])},
			{"Tag", Tag(r.Tag[:])},
			{"GPL Compatible", yesNo(r.GPLCompatible)},
		}},
		{"Program Lengths", []Field{
			{"Xlated Len", byteLen(r.XlatedProgLen)},
			{"JITed Len", byteLen(r.JitedProgLen)},
			{"Xlated Prog", hexAddr(r.XlatedProgInsns)},
			{"JITed Prog", hexAddr(r.JitedProgInsns)},
		}},
		{"Load & Creator", []Field{
			{"Load Time", Duration(r.LoadTime)},
			{"Loaded At", Timestamp(r.LoadTime, clock.Boot)},
			{"Age", clock.Age(r.LoadTime)},
			{"Created By UID", decimal(r.CreatedByUID)},
		}},
		{"Maps & Namespaces", []Field{
			{"Nr Map IDs", decimal(r.NrMapIDs)},
			{"Map IDs", idList(r.MapIDs)},
			{"IfIndex", decimal(r.IfIndex)},
			{"Netns Dev", hexAddr(r.NetnsDev)},
			{"Netns Ino", decimal(r.NetnsIno)},
		}},
		{"JIT Symbols", []Field{
			{"Nr JITed Ksyms", decimal(r.NrJitedKsyms)},
			{"JITed Ksyms", hexAddr(r.JitedKsyms)},
			{"Nr JITed Func Lens", decimal(r.NrJitedFuncLens)},
			{"JITed Func Lens", hexAddr(r.JitedFuncLens)},
		}},
		{"BTF & Func Info", []Field{
			{"BTF ID", decimal(r.BTFID)},
			{"Func Info Rec Size", decimal(r.FuncInfoRecSize)},
			{"Nr Func Info", decimal(r.NrFuncInfo)},
			{"Func Info", hexAddr(r.FuncInfo)},
		}},
		{"Line Info", []Field{
			{"Nr Line Info", decimal(r.NrLineInfo)},
			{"Line Info Rec Size", decimal(r.LineInfoRecSize)},
			{"Line Info", hexAddr(r.LineInfo)},
			{"Nr JITed Line Info", decimal(r.NrJitedLineInfo)},
			{"JITed Line Info Rec Size", decimal(r.JitedLineInfoRecSize)},
			{"JITed Line Info", hexAddr(r.JitedLineInfo)},
		}},
		{"Tags & Stats", []Field{
			{"Nr Prog Tags", decimal(r.NrProgTags)},
			{"Prog Tags", hexAddr(r.ProgTags)},
			{"Run Time (ns)", decimal(r.RunTimeNs)},
			{"Run Count", Count(r.RunCnt)},
			{"Avg Run Time", AverageRunTime(r.RunTimeNs, r.RunCnt)},
			{"Recursion Misses", Count(r.RecursionMisses)},
			{"Verified Insns", decimal(r.VerifiedInsns)},
			{"Attach BTF Obj ID", decimal(r.AttachBTFObjID)},
			{"Attach BTF ID", decimal(r.AttachBTFID)},
		}},
	}
}

// Flatten concatenates the fields of every section.
func Flatten(sections []Section) []Field {
	var out []Field
	for _, s := range sections {
		out = append(out, s.Fields...)
	}
	return out
}

func idList(ids []bpf.ID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = decimal(id)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
