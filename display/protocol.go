// Package display implements the display-link wire protocol (spec.md
// §4.8): a fixed byte-framed message registry carried over a UART to an
// external OLED + rotary-encoder module, plus the heartbeat liveness
// contract layered on top of it. Grounded on the teacher's
// protocol/transport.go resync-on-garbage framing idiom (adapted here from
// Klipper's variable-length seq/CRC16 framing to this link's fixed
// START/LENGTH/TYPE/PAYLOAD/XOR-checksum shape) and protocol/buffers.go's
// output-buffer interface.
package display

// MsgType is a message type ID from the fixed registry (spec.md §4.8).
type MsgType byte

// Pico -> Display messages.
const (
	MsgClear  MsgType = 0x20
	MsgText   MsgType = 0x21
	MsgInvert MsgType = 0x22
	MsgHLine  MsgType = 0x23
	MsgPong   MsgType = 0x24
	MsgReset  MsgType = 0x2F
)

// Display -> Pico messages.
const (
	MsgInput MsgType = 0x01
	MsgPing  MsgType = 0x02
	MsgAck   MsgType = 0x03
)

// EncoderEvent is the one-byte payload of an Input message.
type EncoderEvent byte

const (
	EncoderCw         EncoderEvent = 0x01
	EncoderCcw        EncoderEvent = 0x02
	EncoderClick      EncoderEvent = 0x10
	EncoderLongPress  EncoderEvent = 0x11
	EncoderRelease    EncoderEvent = 0x12
)

// ScreenRows and ScreenCols bound the display's text buffer (spec.md §4.8).
const (
	ScreenRows = 8
	ScreenCols = 21
)

// MaxTextLen is the maximum text payload length for a Text message
// (one row, ScreenCols characters).
const MaxTextLen = ScreenCols

// EncodeClear builds a Clear frame (0x20, no payload).
func EncodeClear() []byte {
	return Frame{Type: byte(MsgClear)}.Encode()
}

// EncodeText builds a Text frame: row, col, len, then up to MaxTextLen
// bytes of text (spec.md §4.8: "row ‖ col ‖ len ‖ bytes").
func EncodeText(row, col byte, text string) []byte {
	if len(text) > MaxTextLen {
		text = text[:MaxTextLen]
	}
	payload := make([]byte, 0, 3+len(text))
	payload = append(payload, row, col, byte(len(text)))
	payload = append(payload, text...)
	return Frame{Type: byte(MsgText), Payload: payload}.Encode()
}

// EncodeInvert builds an Invert frame: row, start_col, end_col.
func EncodeInvert(row, startCol, endCol byte) []byte {
	return Frame{Type: byte(MsgInvert), Payload: []byte{row, startCol, endCol}}.Encode()
}

// EncodeHLine builds an HLine frame: row, start_col, end_col.
func EncodeHLine(row, startCol, endCol byte) []byte {
	return Frame{Type: byte(MsgHLine), Payload: []byte{row, startCol, endCol}}.Encode()
}

// EncodePong builds a Pong frame (0x24, no payload), sent by the
// controller immediately upon parsing a Ping.
func EncodePong() []byte {
	return Frame{Type: byte(MsgPong)}.Encode()
}

// EncodeReset builds a Reset frame (0x2F, no payload).
func EncodeReset() []byte {
	return Frame{Type: byte(MsgReset)}.Encode()
}

// EncodeInput builds an Input frame carrying one encoder event.
func EncodeInput(ev EncoderEvent) []byte {
	return Frame{Type: byte(MsgInput), Payload: []byte{byte(ev)}}.Encode()
}

// EncodePing builds a Ping frame (0x02, no payload).
func EncodePing() []byte {
	return Frame{Type: byte(MsgPing)}.Encode()
}

// EncodeAck builds an Ack frame carrying a one-byte sequence number.
func EncodeAck(seq byte) []byte {
	return Frame{Type: byte(MsgAck), Payload: []byte{seq}}.Encode()
}

// DecodeInput extracts the EncoderEvent from an Input frame's payload.
func DecodeInput(f Frame) (EncoderEvent, bool) {
	if f.Type != byte(MsgInput) || len(f.Payload) != 1 {
		return 0, false
	}
	return EncoderEvent(f.Payload[0]), true
}
