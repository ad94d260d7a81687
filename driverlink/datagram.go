// Package driverlink implements the stepper-driver configuration datagram
// protocol (spec.md §6): a small fixed-format register read/write wire
// format to an external driver IC (e.g. TMC2209), distinct from the
// display link's framing in package display. Grounded on
// core/tmc5240_regs.go's register table and
// original_source/isochron-drivers/src/stepper/tmc2209.rs's register
// read/write shape, re-expressed in Go as explicit encode/decode functions
// over byte slices rather than Klipper's command-dispatch registry (there
// is exactly one datagram shape here, not an extensible command set).
package driverlink

import "fmt"

const syncByte = 0x05
const readAddress = 0xFF
const writeBit = 0x80

// WriteDatagram is an 8-byte register write: sync, address, (reg|write
// bit), 4 big-endian data bytes, CRC-8.
type WriteDatagram struct {
	Address byte
	Reg     byte
	Data    uint32
}

// Encode renders a WriteDatagram as the 8-byte wire form.
func (w WriteDatagram) Encode() []byte {
	buf := []byte{
		syncByte,
		w.Address,
		w.Reg | writeBit,
		byte(w.Data >> 24), byte(w.Data >> 16), byte(w.Data >> 8), byte(w.Data),
	}
	return append(buf, CRC8(buf))
}

// DecodeWrite parses an 8-byte write datagram, validating sync and CRC.
func DecodeWrite(buf []byte) (WriteDatagram, error) {
	if len(buf) != 8 {
		return WriteDatagram{}, fmt.Errorf("driverlink: write datagram must be 8 bytes, got %d", len(buf))
	}
	if buf[0] != syncByte {
		return WriteDatagram{}, fmt.Errorf("driverlink: invalid sync byte 0x%02x", buf[0])
	}
	if buf[2]&writeBit == 0 {
		return WriteDatagram{}, fmt.Errorf("driverlink: register byte missing write bit")
	}
	if got, want := buf[7], CRC8(buf[:7]); got != want {
		return WriteDatagram{}, fmt.Errorf("driverlink: crc mismatch: got 0x%02x want 0x%02x", got, want)
	}
	data := uint32(buf[3])<<24 | uint32(buf[4])<<16 | uint32(buf[5])<<8 | uint32(buf[6])
	return WriteDatagram{Address: buf[1], Reg: buf[2] &^ writeBit, Data: data}, nil
}

// ReadRequest is a 4-byte register read request: sync, address, reg, CRC-8.
type ReadRequest struct {
	Address byte
	Reg     byte
}

// Encode renders a ReadRequest as its 4-byte wire form.
func (r ReadRequest) Encode() []byte {
	buf := []byte{syncByte, r.Address, r.Reg}
	return append(buf, CRC8(buf))
}

// DecodeReadRequest parses a 4-byte read request, validating sync and CRC.
func DecodeReadRequest(buf []byte) (ReadRequest, error) {
	if len(buf) != 4 {
		return ReadRequest{}, fmt.Errorf("driverlink: read request must be 4 bytes, got %d", len(buf))
	}
	if buf[0] != syncByte {
		return ReadRequest{}, fmt.Errorf("driverlink: invalid sync byte 0x%02x", buf[0])
	}
	if got, want := buf[3], CRC8(buf[:3]); got != want {
		return ReadRequest{}, fmt.Errorf("driverlink: crc mismatch: got 0x%02x want 0x%02x", got, want)
	}
	return ReadRequest{Address: buf[1], Reg: buf[2]}, nil
}

// ReadResponse is an 8-byte register read response: sync, 0xFF, reg, 4
// big-endian data bytes, CRC-8.
type ReadResponse struct {
	Reg  byte
	Data uint32
}

// Encode renders a ReadResponse as its 8-byte wire form.
func (r ReadResponse) Encode() []byte {
	buf := []byte{
		syncByte, readAddress, r.Reg,
		byte(r.Data >> 24), byte(r.Data >> 16), byte(r.Data >> 8), byte(r.Data),
	}
	return append(buf, CRC8(buf))
}

// DecodeReadResponse parses an 8-byte read response, validating sync,
// the fixed 0xFF address byte, and CRC.
func DecodeReadResponse(buf []byte) (ReadResponse, error) {
	if len(buf) != 8 {
		return ReadResponse{}, fmt.Errorf("driverlink: read response must be 8 bytes, got %d", len(buf))
	}
	if buf[0] != syncByte {
		return ReadResponse{}, fmt.Errorf("driverlink: invalid sync byte 0x%02x", buf[0])
	}
	if buf[1] != readAddress {
		return ReadResponse{}, fmt.Errorf("driverlink: expected address 0xFF in read response, got 0x%02x", buf[1])
	}
	if got, want := buf[7], CRC8(buf[:7]); got != want {
		return ReadResponse{}, fmt.Errorf("driverlink: crc mismatch: got 0x%02x want 0x%02x", got, want)
	}
	data := uint32(buf[3])<<24 | uint32(buf[4])<<16 | uint32(buf[5])<<8 | uint32(buf[6])
	return ReadResponse{Reg: buf[2], Data: data}, nil
}
