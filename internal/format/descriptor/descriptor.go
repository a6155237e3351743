// Package descriptor turns decoded kernel info records into display
// strings, table rows and labelled detail sections. Every function here is
// total: malformed input yields a placeholder, never an error.
package descriptor

import (
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
)

const (
	NotAvailable     = "N/A"
	InvalidTimestamp = "Invalid timestamp"
	Unknown          = "UNKNOWN"
)

// Name decodes a fixed-size, zero-padded name buffer. The name ends at the
// first zero byte, or spans the whole buffer when there is none.
func Name(buf []byte) string {
	n := len(buf)
	for i, b := range buf {
		if b == 0 {
			n = i
			break
		}
	}
	if !utf8.Valid(buf[:n]) {
		return NotAvailable
	}
	return string(buf[:n])
}

// Tag renders a program tag as lowercase hex without separators.
func Tag(tag []byte) string {
	return hex.EncodeToString(tag)
}

var durationUnits = [...]struct {
	size   uint64
	suffix string
}{
	{1_000, "μs"},
	{1_000_000, "ms"},
	{1_000_000_000, "s"},
}

// Duration renders ns using the largest of ns, μs, ms and s that keeps the
// value at or above one. A value that rounds up to 1000 of one unit is shown
// in the next unit instead.
func Duration(ns uint64) string {
	if ns < durationUnits[0].size {
		return strconv.FormatUint(ns, 10) + "ns"
	}
	i := len(durationUnits) - 1
	for ns < durationUnits[i].size {
		i--
	}
	v := scaled(ns, durationUnits[i].size)
	if v == "1000.00" && i < len(durationUnits)-1 {
		i++
		v = scaled(ns, durationUnits[i].size)
	}
	return v + durationUnits[i].suffix
}

func scaled(ns, size uint64) string {
	return strconv.FormatFloat(float64(ns)/float64(size), 'f', 2, 64)
}

// Clock anchors boot-relative kernel timestamps to the wall clock.
type Clock struct {
	Boot time.Time
	Now  time.Time
}

// LoadedAt converts nanoseconds since boot to wall-clock time. ok is false
// when the boot time is unknown or sinceBoot does not fit a time.Duration.
func (c Clock) LoadedAt(sinceBoot uint64) (t time.Time, ok bool) {
	if c.Boot.IsZero() || sinceBoot > math.MaxInt64 {
		return time.Time{}, false
	}
	return c.Boot.Add(time.Duration(sinceBoot)), true
}

// Timestamp renders a boot-relative load time as RFC 3339 in the local zone.
func Timestamp(sinceBoot uint64, boot time.Time) string {
	t, ok := Clock{Boot: boot}.LoadedAt(sinceBoot)
	if !ok {
		return InvalidTimestamp
	}
	return t.Local().Format(time.RFC3339)
}

// Age renders how long ago a boot-relative load time was, e.g. "3 minutes ago".
func (c Clock) Age(sinceBoot uint64) string {
	t, ok := c.LoadedAt(sinceBoot)
	if !ok || c.Now.IsZero() {
		return NotAvailable
	}
	return humanize.RelTime(t, c.Now, "ago", "from now")
}

// Count renders n with thousands separators.
func Count(n uint64) string {
	if n > math.MaxInt64 {
		return strconv.FormatUint(n, 10)
	}
	return humanize.Comma(int64(n))
}

// AverageRunTime renders total run time divided by run count.
func AverageRunTime(runTimeNs, runCnt uint64) string {
	if runCnt == 0 {
		return NotAvailable
	}
	return Duration(runTimeNs / runCnt)
}

func hexAddr(v uint64) string {
	return fmt.Sprintf("%#x", v)
}

func byteLen(v uint32) string {
	return fmt.Sprintf("%dB", v)
}

func decimal[T ~uint32 | ~uint64](v T) string {
	return strconv.FormatUint(uint64(v), 10)
}
