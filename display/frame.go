package display

import "fmt"

// StartByte begins every frame (spec.md §4.8).
const StartByte = 0xAA

// MaxPayloadLen is the largest LENGTH value a frame may carry; above it
// the parser reports InvalidFrame and resynchronises.
const MaxPayloadLen = 250

// Frame is one decoded display-link message: a type ID and its payload.
type Frame struct {
	Type    byte
	Payload []byte
}

func checksum(length, typ byte, payload []byte) byte {
	c := length ^ typ
	for _, b := range payload {
		c ^= b
	}
	return c
}

// Encode renders a Frame to its wire form: START, LENGTH, TYPE, PAYLOAD,
// CHECKSUM (XOR of LENGTH, TYPE, and PAYLOAD).
func (f Frame) Encode() []byte {
	buf := make([]byte, 0, 4+len(f.Payload))
	length := byte(len(f.Payload))
	buf = append(buf, StartByte, length, f.Type)
	buf = append(buf, f.Payload...)
	buf = append(buf, checksum(length, f.Type, f.Payload))
	return buf
}

// ParseErrorKind distinguishes why the parser discarded a frame attempt.
type ParseErrorKind uint8

const (
	InvalidFrame ParseErrorKind = iota
	InvalidChecksum
)

func (k ParseErrorKind) Error() string {
	if k == InvalidChecksum {
		return "display: invalid checksum"
	}
	return "display: invalid frame"
}

type parseState uint8

const (
	awaitStart parseState = iota
	awaitLength
	awaitType
	readPayload
	awaitChecksum
)

// Parser is the five-state frame decoder (spec.md §4.8): await-start,
// await-length, await-type, read-payload, await-checksum. Non-start bytes
// while awaiting start are silently discarded, so the link resynchronises
// after arbitrary noise (testable property 4).
type Parser struct {
	state   parseState
	length  byte
	typ     byte
	payload []byte

	onFrame func(Frame)
	onError func(ParseErrorKind)
}

// NewParser builds a Parser that calls onFrame for every successfully
// decoded frame and onError for every invalid-frame or checksum-mismatch
// event. Either callback may be nil.
func NewParser(onFrame func(Frame), onError func(ParseErrorKind)) *Parser {
	return &Parser{onFrame: onFrame, onError: onError}
}

func (p *Parser) reset() {
	p.state = awaitStart
	p.length = 0
	p.typ = 0
	p.payload = nil
}

func (p *Parser) reportError(kind ParseErrorKind) {
	p.reset()
	if p.onError != nil {
		p.onError(kind)
	}
}

// Feed consumes a single byte, advancing the parser's state machine and
// invoking onFrame/onError as appropriate.
func (p *Parser) Feed(b byte) {
	switch p.state {
	case awaitStart:
		if b == StartByte {
			p.state = awaitLength
		}
	case awaitLength:
		if b > MaxPayloadLen {
			p.reportError(InvalidFrame)
			return
		}
		p.length = b
		if p.length > 0 {
			p.payload = make([]byte, 0, p.length)
		}
		p.state = awaitType
	case awaitType:
		p.typ = b
		if p.length == 0 {
			p.state = awaitChecksum
		} else {
			p.state = readPayload
		}
	case readPayload:
		p.payload = append(p.payload, b)
		if len(p.payload) == int(p.length) {
			p.state = awaitChecksum
		}
	case awaitChecksum:
		want := checksum(p.length, p.typ, p.payload)
		if b != want {
			p.reportError(InvalidChecksum)
			return
		}
		frame := Frame{Type: p.typ, Payload: p.payload}
		p.reset()
		if p.onFrame != nil {
			p.onFrame(frame)
		}
	default:
		panic(fmt.Sprintf("display: parser in unknown state %d", p.state))
	}
}

// FeedBytes feeds an entire byte slice through Feed, for convenience.
func (p *Parser) FeedBytes(data []byte) {
	for _, b := range data {
		p.Feed(b)
	}
}
