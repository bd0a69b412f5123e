// Package serialtransport is the serial transport (C5): a byte stream
// into and out of a physical CI-V cable, plus RTS control used as an
// external PTT signal on rigs that lack a 1C 00 PTT command.
package serialtransport

import (
	"context"

	goserial "github.com/daedaluz/goserial"
)

// Options configures a serial session.
type Options struct {
	Device   string
	BaudRate int
}

// Transport owns one open serial port. It delivers received bytes to C3
// with no reframing — C1 (civframe.Split) does the reframing — and
// exposes SetPTT for rigs with Flags.UseRTSForPTT.
type Transport struct {
	port *goserial.Port
}

// Open opens the serial device at the given baud rate, 8N1, no flow
// control — the configuration every CI-V cable expects.
func Open(opts Options) (*Transport, error) {
	o := goserial.NewOptions()
	port, err := goserial.Open(opts.Device, o)
	if err != nil {
		return nil, err
	}
	attrs, err := port.GetAttr()
	if err != nil {
		port.Close()
		return nil, err
	}
	attrs.MakeRaw()
	attrs.SetSpeed(baudFlag(opts.BaudRate))
	attrs.Cflag &^= goserial.CRTSCTS
	if err := port.SetAttr(goserial.TCSANOW, attrs); err != nil {
		port.Close()
		return nil, err
	}
	return &Transport{port: port}, nil
}

// baudFlags maps the CI-V-reference baud rates (spec.md §6's wake-byte
// table) to their termios CFlag constants. An unlisted rate falls back
// to 19200, the Icom CI-V default.
var baudFlags = map[int]goserial.CFlag{
	9600:   goserial.B9600,
	19200:  goserial.B19200,
	38400:  goserial.B38400,
	57600:  goserial.B57600,
	115200: goserial.B115200,
}

func baudFlag(baud int) goserial.CFlag {
	if f, ok := baudFlags[baud]; ok {
		return f
	}
	return goserial.B19200
}

// Write sends raw bytes (a civframe.Encode result) to the rig.
func (t *Transport) Write(p []byte) (int, error) { return t.port.Write(p) }

// Read blocks until at least one byte is available, a device error
// occurs, or ctx is cancelled. Serial reads have no deadline otherwise
// (spec.md §5): the transport relies on frame delimiters, not timeouts.
func (t *Transport) Read(ctx context.Context, buf []byte) (int, error) {
	type result struct {
		n   int
		err error
	}
	done := make(chan result, 1)
	go func() {
		n, err := t.port.Read(buf)
		done <- result{n, err}
	}()
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case r := <-done:
		return r.n, r.err
	}
}

// SetPTT drives the RTS line high (keyed) or low (unkeyed). Used only
// when the bound rig's capability record has Flags.UseRTSForPTT set;
// models with a native 1C 00 command use civop.Builder.SetPTT instead.
func (t *Transport) SetPTT(on bool) error {
	if on {
		return t.port.EnableModemLines(goserial.TIOCM_RTS)
	}
	return t.port.DisableModemLines(goserial.TIOCM_RTS)
}

// Close releases the underlying file descriptor.
func (t *Transport) Close() error { return t.port.Close() }
