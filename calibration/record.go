// Package calibration implements the persisted heater-calibration record
// (spec.md §6): a magic-tagged, versioned, fixed-width array of per-heater
// autotune results with a CRC-32 guarding the whole payload. Grounded on
// the teacher's protocol/buffers.go fixed-width encode/decode idiom and
// core/tmc5240_regs.go's register-table layout style, applied here to a
// flash-resident record instead of a wire register set.
package calibration

import (
	"encoding/binary"
	"fmt"
)

// Magic is "PIDC" read little-endian, per spec.md §6.
const Magic uint32 = 0x43444950

// Version is the only record layout this package understands.
const Version byte = 1

// MaxHeaters bounds the fixed-width entry array (one slot per possible
// heater_control entry, spec.md §3's capacity caps).
const MaxHeaters = 4

// entrySize is the encoded byte length of one Entry: heater_index(1) +
// valid(1) + kp_x100(4) + ki_x100(4) + kd_x100(4) + ku_x100(4) +
// tu_ticks(4) = 22 bytes.
const entrySize = 1 + 1 + 4 + 4 + 4 + 4 + 4

// headerSize is magic(4) + version(1).
const headerSize = 4 + 1

// Entry is one heater's autotune result.
type Entry struct {
	HeaterIndex byte
	Valid       bool
	KpX100      int32
	KiX100      int32
	KdX100      int32
	KuX100      int32
	TuTicks     uint32
}

func (e Entry) encode() []byte {
	buf := make([]byte, entrySize)
	buf[0] = e.HeaterIndex
	if e.Valid {
		buf[1] = 1
	}
	binary.BigEndian.PutUint32(buf[2:6], uint32(e.KpX100))
	binary.BigEndian.PutUint32(buf[6:10], uint32(e.KiX100))
	binary.BigEndian.PutUint32(buf[10:14], uint32(e.KdX100))
	binary.BigEndian.PutUint32(buf[14:18], uint32(e.KuX100))
	binary.BigEndian.PutUint32(buf[18:22], e.TuTicks)
	return buf
}

func decodeEntry(buf []byte) Entry {
	return Entry{
		HeaterIndex: buf[0],
		Valid:       buf[1] != 0,
		KpX100:      int32(binary.BigEndian.Uint32(buf[2:6])),
		KiX100:      int32(binary.BigEndian.Uint32(buf[6:10])),
		KdX100:      int32(binary.BigEndian.Uint32(buf[10:14])),
		KuX100:      int32(binary.BigEndian.Uint32(buf[14:18])),
		TuTicks:     binary.BigEndian.Uint32(buf[18:22]),
	}
}

// Record is the full persisted calibration blob: one Entry per configured
// heater, indexed 0..MaxHeaters-1.
type Record struct {
	Entries [MaxHeaters]Entry
}

// Encode renders the record as magic, version, every entry in order, and
// a trailing CRC-32 over everything preceding it.
func (r Record) Encode() []byte {
	body := make([]byte, 0, headerSize+MaxHeaters*entrySize)
	var magicBuf [4]byte
	binary.LittleEndian.PutUint32(magicBuf[:], Magic)
	body = append(body, magicBuf[:]...)
	body = append(body, Version)
	for _, e := range r.Entries {
		body = append(body, e.encode()...)
	}
	crc := CRC32(body)
	var crcBuf [4]byte
	binary.LittleEndian.PutUint32(crcBuf[:], crc)
	return append(body, crcBuf[:]...)
}

// Decode parses and validates a Record, checking magic, version, and CRC.
func Decode(buf []byte) (Record, error) {
	want := headerSize + MaxHeaters*entrySize + 4
	if len(buf) != want {
		return Record{}, fmt.Errorf("calibration: record must be %d bytes, got %d", want, len(buf))
	}
	if got := binary.LittleEndian.Uint32(buf[0:4]); got != Magic {
		return Record{}, fmt.Errorf("calibration: bad magic 0x%08x", got)
	}
	if buf[4] != Version {
		return Record{}, fmt.Errorf("calibration: unsupported version %d", buf[4])
	}
	body := buf[:len(buf)-4]
	wantCRC := binary.LittleEndian.Uint32(buf[len(buf)-4:])
	if gotCRC := CRC32(body); gotCRC != wantCRC {
		return Record{}, fmt.Errorf("calibration: crc mismatch: got 0x%08x want 0x%08x", gotCRC, wantCRC)
	}

	var rec Record
	off := headerSize
	for i := 0; i < MaxHeaters; i++ {
		rec.Entries[i] = decodeEntry(buf[off : off+entrySize])
		off += entrySize
	}
	return rec, nil
}
