// Command isochron-bridge is the host-side companion to the firmware's
// display link (spec.md §4.8): it opens a serial port to the controller
// board, decodes the frame stream, and logs every frame plus heartbeat
// liveness, replying to Ping with Pong the same way the controller
// firmware does. Grounded on the teacher's host/cmd/gopper-host/main.go
// (flag-parsed device, connect-then-interactive-loop shape), adapted from
// the Klipper dictionary/identify exchange to this link's fixed frame
// registry, and on host/serial/serial.go's Port abstraction.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"isochron/display"
	"isochron/host/serial"
)

var (
	device  = flag.String("device", "/dev/ttyACM0", "Serial device path")
	baud    = flag.Int("baud", 115200, "Baud rate")
	verbose = flag.Bool("verbose", false, "Enable debug-level logging")
)

func main() {
	flag.Parse()

	logger := newLogger(*verbose)
	defer logger.Sync()

	port, err := serial.Open(&serial.Config{Device: *device, Baud: *baud, ReadTimeout: 100})
	if err != nil {
		logger.Fatal("failed to open serial port", zap.String("device", *device), zap.Error(err))
	}
	defer port.Close()
	logger.Info("connected", zap.String("device", *device), zap.Int("baud", *baud))

	parser := display.NewParser(
		func(f display.Frame) { onFrame(logger, port, f) },
		func(k display.ParseErrorKind) { logger.Warn("frame parse error", zap.String("kind", k.Error())) },
	)

	go readLoop(logger, port, parser)

	runCommandLoop(logger, port)
}

func newLogger(verbose bool) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		// zap itself failed to build; fall back to a no-op logger rather
		// than crash a debug tool over logging infrastructure.
		return zap.NewNop()
	}
	return logger
}

func readLoop(logger *zap.Logger, port serial.Port, parser *display.Parser) {
	buf := make([]byte, 64)
	for {
		n, err := port.Read(buf)
		if n > 0 {
			parser.FeedBytes(buf[:n])
		}
		if err != nil {
			logger.Error("serial read failed", zap.Error(err))
			return
		}
	}
}

func onFrame(logger *zap.Logger, port serial.Port, f display.Frame) {
	switch {
	case display.IsPing(f):
		logger.Debug("ping received, replying pong")
		if _, err := port.Write(display.EncodePong()); err != nil {
			logger.Error("failed to write pong", zap.Error(err))
		}
	case f.Type == byte(display.MsgInput):
		ev, _ := display.DecodeInput(f)
		logger.Info("input", zap.Uint8("event", uint8(ev)))
	default:
		logger.Info("frame", zap.Uint8("type", f.Type), zap.Binary("payload", f.Payload))
	}
}

// runCommandLoop lets an operator drive the link by hand: "clear",
// "text <row> <col> <msg>", "ping", or "quit".
func runCommandLoop(logger *zap.Logger, port serial.Port) {
	fmt.Println("isochron-bridge ready. Commands: clear | text <row> <col> <msg> | ping | quit")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "quit", "exit":
			return
		case "clear":
			writeOrLog(logger, port, display.EncodeClear())
		case "ping":
			writeOrLog(logger, port, display.EncodePing())
		case "text":
			if len(fields) < 4 {
				fmt.Println("usage: text <row> <col> <message...>")
				continue
			}
			var row, col int
			fmt.Sscanf(fields[1], "%d", &row)
			fmt.Sscanf(fields[2], "%d", &col)
			text := strings.Join(fields[3:], " ")
			writeOrLog(logger, port, display.EncodeText(byte(row), byte(col), text))
		default:
			fmt.Printf("unknown command %q\n", fields[0])
		}
	}
}

func writeOrLog(logger *zap.Logger, port serial.Port, frame []byte) {
	if _, err := port.Write(frame); err != nil {
		logger.Error("write failed", zap.Error(err))
	}
}
