// Package persist stores soul snapshots through a chain of tiers:
// a byte-addressable region (the NVRAM analog), a JSON file, and
// compiled-in factory defaults. Saves stop at the first tier that
// takes the record; loads stop at the first tier that yields a valid
// one. A corrupted or missing tier is a log line, never a failure.
package persist

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/lazypower/hearth/internal/soul"
)

// Binary record layout, little-endian, 100 bytes:
//
//	off size field
//	0   4    magic "APEX"
//	4   2    schema version
//	6   1    persona index
//	7   1    reserved
//	8   4    e (float32)
//	12  4    floor
//	16  4    peak
//	20  4    totalCare
//	24  4    curiosity
//	28  4    playfulness
//	32  4    wisdom
//	36  4    interactions
//	40  4    totalChats
//	44  4    totalSyncs
//	48  8    birth (unix seconds)
//	56  8    lastCare
//	64  8    lastSync
//	72  8    savedAt
//	80  16   firmware tag, NUL padded
//	96  4    checksum over bytes 0..95
const (
	recordMagic   = 0x41504558
	recordVersion = 2
	recordSize    = 100

	checksumSeed = 0xA9EF
)

// Record is the unit of persistence: a soul snapshot plus the tag of
// the build that wrote it.
type Record struct {
	Snapshot soul.Snapshot
	Firmware string
}

// checksum is a position-weighted byte sum. Any single corrupted byte
// shifts the sum by delta*(position+1), which cannot wrap to zero at
// this record size, so single-byte corruption is always caught.
func checksum(b []byte) uint32 {
	var sum uint32
	for i, v := range b {
		sum += uint32(v) * uint32(i+1)
	}
	return sum ^ checksumSeed
}

// encode serializes a record into the fixed binary layout.
func encode(rec Record) []byte {
	buf := make([]byte, recordSize)
	le := binary.LittleEndian

	le.PutUint32(buf[0:], recordMagic)
	le.PutUint16(buf[4:], recordVersion)
	buf[6] = rec.Snapshot.Persona

	off := 8
	putF32 := func(v float64) {
		le.PutUint32(buf[off:], math.Float32bits(float32(v)))
		off += 4
	}
	putU32 := func(v uint32) {
		le.PutUint32(buf[off:], v)
		off += 4
	}
	putTime := func(t time.Time) {
		var unix int64
		if !t.IsZero() {
			unix = t.Unix()
		}
		le.PutUint64(buf[off:], uint64(unix))
		off += 8
	}

	s := rec.Snapshot
	putF32(s.E)
	putF32(s.Floor)
	putF32(s.Peak)
	putF32(s.TotalCare)
	putF32(s.Curiosity)
	putF32(s.Playfulness)
	putF32(s.Wisdom)
	putU32(s.Interactions)
	putU32(s.TotalChats)
	putU32(s.TotalSyncs)
	putTime(s.BirthTime)
	putTime(s.LastCareTime)
	putTime(s.LastSyncTime)
	putTime(s.SavedAt)
	copy(buf[off:off+16], rec.Firmware)
	off += 16

	le.PutUint32(buf[off:], checksum(buf[:off]))
	return buf
}

// decode parses and verifies a binary record. Anything off (length,
// magic, version, checksum) is a rejection; the chain treats that as
// "this tier has nothing for us".
func decode(buf []byte) (Record, error) {
	le := binary.LittleEndian

	if len(buf) < recordSize {
		return Record{}, fmt.Errorf("record: short read (%d bytes)", len(buf))
	}
	buf = buf[:recordSize]

	if m := le.Uint32(buf[0:]); m != recordMagic {
		return Record{}, fmt.Errorf("record: bad magic %#x", m)
	}
	if v := le.Uint16(buf[4:]); v != recordVersion {
		return Record{}, fmt.Errorf("record: unsupported version %d", v)
	}
	if got, want := le.Uint32(buf[96:]), checksum(buf[:96]); got != want {
		return Record{}, fmt.Errorf("record: checksum mismatch (%#x != %#x)", got, want)
	}

	off := 8
	getF32 := func() float64 {
		v := math.Float32frombits(le.Uint32(buf[off:]))
		off += 4
		return float64(v)
	}
	getU32 := func() uint32 {
		v := le.Uint32(buf[off:])
		off += 4
		return v
	}
	getTime := func() time.Time {
		unix := int64(le.Uint64(buf[off:]))
		off += 8
		if unix == 0 {
			return time.Time{}
		}
		return time.Unix(unix, 0)
	}

	var rec Record
	rec.Snapshot.Persona = buf[6]
	rec.Snapshot.E = getF32()
	rec.Snapshot.Floor = getF32()
	rec.Snapshot.Peak = getF32()
	rec.Snapshot.TotalCare = getF32()
	rec.Snapshot.Curiosity = getF32()
	rec.Snapshot.Playfulness = getF32()
	rec.Snapshot.Wisdom = getF32()
	rec.Snapshot.Interactions = getU32()
	rec.Snapshot.TotalChats = getU32()
	rec.Snapshot.TotalSyncs = getU32()
	rec.Snapshot.BirthTime = getTime()
	rec.Snapshot.LastCareTime = getTime()
	rec.Snapshot.LastSyncTime = getTime()
	rec.Snapshot.SavedAt = getTime()
	rec.Firmware = string(bytes.TrimRight(buf[off:off+16], "\x00"))

	return rec, nil
}
