// Command civd is a CI-V bridge daemon: it speaks CI-V to one Icom rig
// over a serial cable or the Icom LAN protocol, keeps a rigstate
// register in sync with it, and exposes that register to rigctld-style
// clients, a WebSocket push stream, a Prometheus exporter, and an MCP
// tool server. Flag handling and the startup/shutdown sequence follow
// the teacher's main.go.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/bturbeville/wfview-sub001/internal/audit"
	"github.com/bturbeville/wfview-sub001/internal/civframe"
	"github.com/bturbeville/wfview-sub001/internal/civop"
	"github.com/bturbeville/wfview-sub001/internal/cmdserver"
	"github.com/bturbeville/wfview-sub001/internal/config"
	"github.com/bturbeville/wfview-sub001/internal/lantransport"
	"github.com/bturbeville/wfview-sub001/internal/mcpserver"
	"github.com/bturbeville/wfview-sub001/internal/metrics"
	"github.com/bturbeville/wfview-sub001/internal/rigcat"
	"github.com/bturbeville/wfview-sub001/internal/rigstate"
	"github.com/bturbeville/wfview-sub001/internal/serialtransport"
	"github.com/bturbeville/wfview-sub001/internal/spectrum"
	"github.com/bturbeville/wfview-sub001/internal/stateevents"
)

const appVersion = "0.1.0"

// boundServers are the HTTP-facing subsystems that cannot start until
// the rig is identified, since both need the final capability record:
// the command server (C7, dump_caps/dump_state need the real mode and
// band tables) and the MCP tool server (C13, get_mode/set_mode need the
// real mode table).
type boundServers struct {
	cmd *cmdserver.Server
	mcp *http.Server
}

var debugMode bool

func main() {
	configDir := flag.String("config-dir", ".", "Directory containing configuration files")
	configFile := flag.String("config", "config.yaml", "Path to configuration file")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	debugMode = *debug
	if v := os.Getenv("DEBUG"); v != "" {
		debugMode = v == "true" || v == "1" || v == "yes"
	}
	if debugMode {
		log.Println("debug mode enabled")
	}

	configPath := *configFile
	if *configDir != "." {
		configPath = *configDir + "/" + *configFile
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	if err := run(cfg); err != nil {
		log.Fatalf("civd: %v", err)
	}
}

func run(cfg *config.Config) error {
	reg := rigstate.NewRegister()
	m := metrics.New()
	hub := stateevents.New(reg)

	geo, err := audit.OpenGeoLookup(cfg.GeoIP.DatabasePath)
	if err != nil {
		return fmt.Errorf("open geoip database: %w", err)
	}
	defer geo.Close()
	auditLogger := audit.NewLogger(geo)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan struct{})
	go hub.Run(stop)

	var wg sync.WaitGroup
	servers := startAncillaryServers(cfg, reg, m, hub, &wg)

	boundCh := make(chan boundServers, 1)
	bridgeErr := make(chan error, 1)
	wg.Add(1)
	go func() {
		defer wg.Done()
		bridgeErr <- runBridge(ctx, cfg, reg, m, auditLogger, hub, boundCh, &wg)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	var bound boundServers
	var haveBound bool
	select {
	case sig := <-sigCh:
		log.Printf("civd: received %s, shutting down", sig)
	case err := <-bridgeErr:
		if err != nil {
			log.Printf("civd: bridge stopped: %v", err)
		}
	case bound = <-boundCh:
		haveBound = true
		// the bridge identified the rig and started its bound servers
		// before either a signal or a fatal bridge error arrived; keep
		// waiting for one of those to actually trigger shutdown.
		select {
		case sig := <-sigCh:
			log.Printf("civd: received %s, shutting down", sig)
		case err := <-bridgeErr:
			if err != nil {
				log.Printf("civd: bridge stopped: %v", err)
			}
		}
	}

	cancel()
	close(stop)
	if !haveBound {
		select {
		case bound = <-boundCh:
			haveBound = true
		default:
		}
	}
	if haveBound {
		if bound.cmd != nil {
			bound.cmd.Close()
		}
		if bound.mcp != nil {
			bound.mcp.Close()
		}
	}
	for _, srv := range servers {
		srv.Close()
	}
	wg.Wait()
	return nil
}

// startAncillaryServers starts every enabled HTTP-based subsystem and
// returns the servers for shutdown. Each listens on its own configured
// port, matching the teacher's one-http.Server-per-concern layout.
func startAncillaryServers(cfg *config.Config, reg *rigstate.Register, m *metrics.Metrics, hub *stateevents.Hub, wg *sync.WaitGroup) []*http.Server {
	var servers []*http.Server

	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		mux.HandleFunc("/status", handleProcessStatus)
		srv := &http.Server{Addr: cfg.Metrics.ListenAddr, Handler: mux}
		servers = append(servers, srv)
		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Printf("civd: metrics listening on %s", cfg.Metrics.ListenAddr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("civd: metrics server error: %v", err)
			}
		}()
	}

	if cfg.StateEvents.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/ws/state", hub)
		srv := &http.Server{Addr: cfg.StateEvents.ListenAddr, Handler: mux}
		servers = append(servers, srv)
		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Printf("civd: state events listening on %s", cfg.StateEvents.ListenAddr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("civd: state events server error: %v", err)
			}
		}()
	}

	return servers
}

// startMCPServer starts the MCP tool server (C13) once the rig has been
// identified and a real capability record is available; mcpserver.Server
// binds its capability record at construction, same as cmdserver.Server,
// so it cannot start any earlier.
func startMCPServer(cfg *config.Config, reg *rigstate.Register, caps rigcat.Capability, wg *sync.WaitGroup) *http.Server {
	if !cfg.MCP.Enabled {
		return nil
	}
	mcpSrv := mcpserver.New(reg, caps)
	mux := http.NewServeMux()
	mux.HandleFunc("/mcp", mcpSrv.HandleMCP)
	srv := &http.Server{Addr: cfg.MCP.ListenAddr, Handler: mux}
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Printf("civd: MCP tool server listening on %s", cfg.MCP.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("civd: MCP server error: %v", err)
		}
	}()
	return srv
}

// handleProcessStatus reports this process's own CPU and memory use,
// the admin-facing counterpart to the teacher's system load endpoint in
// admin.go, scoped to civd's own process instead of the whole host.
func handleProcessStatus(w http.ResponseWriter, r *http.Request) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	cpuPct, _ := proc.CPUPercent()
	mem, err := proc.MemoryInfo()
	rss := uint64(0)
	if err == nil && mem != nil {
		rss = mem.RSS
	}
	fmt.Fprintf(w, "{\"cpu_percent\":%.2f,\"rss_bytes\":%d}\n", cpuPct, rss)
}

// frameTransport is the byte-stream abstraction both C5 and C6 present
// to the CI-V reassembly loop: a context-cancellable blocking read and a
// fire-and-forget write.
type frameTransport interface {
	Read(ctx context.Context, buf []byte) (int, error)
	Write(p []byte) (int, error)
}

// runBridge opens the configured transport, identifies the rig, and
// drives the read/reconcile loop until ctx is cancelled or the
// transport dies. Once the rig is identified, it also starts the
// command server (C7), since internal/cmdserver expects a bound, final
// capability record at construction time.
func runBridge(ctx context.Context, cfg *config.Config, reg *rigstate.Register, m *metrics.Metrics, auditLogger *audit.Logger, hub *stateevents.Hub, boundCh chan<- boundServers, wg *sync.WaitGroup) error {
	if cfg.LAN.Host != "" {
		return runLANBridge(ctx, cfg, reg, m, auditLogger, hub, boundCh, wg)
	}
	return runSerialBridge(ctx, cfg, reg, m, hub, boundCh, wg)
}

func runSerialBridge(ctx context.Context, cfg *config.Config, reg *rigstate.Register, m *metrics.Metrics, hub *stateevents.Hub, boundCh chan<- boundServers, wg *sync.WaitGroup) error {
	t, err := serialtransport.Open(serialtransport.Options{
		Device:   cfg.Serial.Device,
		BaudRate: cfg.Serial.Baud,
	})
	if err != nil {
		return fmt.Errorf("open serial transport: %w", err)
	}
	defer t.Close()
	log.Printf("civd: serial transport open on %s at %d baud", cfg.Serial.Device, cfg.Serial.Baud)

	rtsOverride := &cfg.Serial.UseRTSForPTT
	return pumpFrames(ctx, t, rtsOverride, reg, m, hub, cfg, boundCh, wg)
}

func runLANBridge(ctx context.Context, cfg *config.Config, reg *rigstate.Register, m *metrics.Metrics, auditLogger *audit.Logger, hub *stateevents.Hub, boundCh chan<- boundServers, wg *sync.WaitGroup) error {
	ctrl := lantransport.NewController(lantransport.Config{
		Host:           cfg.LAN.Host,
		ControlPort:    cfg.LAN.ControlPort,
		CIVPort:        cfg.LAN.CIVPort,
		AudioPort:      cfg.LAN.AudioPort,
		Username:       cfg.LAN.Username,
		Password:       cfg.LAN.Password,
		ReauthInterval: time.Duration(cfg.LAN.ReauthIntervalS) * time.Second,
		PingInterval:   time.Duration(cfg.LAN.IdlePingIntervalMS) * time.Millisecond,
	})
	log.Printf("civd: LAN session %s connecting to %s", ctrl.SessionID, cfg.LAN.Host)

	if err := ctrl.Open(); err != nil {
		return fmt.Errorf("open LAN control channel: %w", err)
	}
	defer ctrl.Close()

	if err := driveLANHandshake(ctx, ctrl, cfg, m, auditLogger); err != nil {
		return err
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		maintainLANControl(ctx, ctrl, cfg, m, auditLogger)
	}()

	lt := &lanCIVTransport{ctrl: ctrl}
	return pumpFrames(ctx, lt, nil, reg, m, hub, cfg, boundCh, wg)
}

// maintainLANControl keeps ticking and reading the control channel for
// the rest of the session once Streaming is reached, since
// driveLANHandshake returns as soon as it gets there: without this loop
// nothing would ever call Tick again, and a Controller's TokenRenew
// handling would never fire in practice. It mirrors driveLANHandshake's
// TokenRequest handling for the TokenRenew case, using the same
// best-effort decodeLoginReply codec.
func maintainLANControl(ctx context.Context, ctrl *lantransport.Controller, cfg *config.Config, m *metrics.Metrics, auditLogger *audit.Logger) {
	interval := time.Duration(cfg.LAN.IdlePingIntervalMS) * time.Millisecond
	if interval <= 0 {
		interval = lantransport.DefaultPingInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	buf := make([]byte, 256)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := ctrl.Tick(); err != nil {
				log.Printf("civd: LAN session %s keep-alive failed: %v", ctrl.SessionID, err)
				return
			}
		default:
		}

		n, err := ctrl.ReadControl(buf)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			continue
		}
		data := append([]byte(nil), buf[:n]...)

		if ctrl.State() == lantransport.TokenRenew {
			accepted, token, ok := decodeLoginReply(data)
			if !ok {
				continue
			}
			if !accepted {
				auditLogger.LoginRejected(cfg.LAN.Host, time.Now(), "rig refused token renewal")
				ctrl.RejectAuth()
				return
			}
			ctrl.GrantToken(token)
		}
		m.SetLinkState(metrics.LinkState(ctrl.State()))
	}
}

// driveLANHandshake reads control-channel datagrams until the session
// reaches Streaming (or Tick reports the link dead). Login-reply and
// token payloads have no wire format in spec.md beyond the magic-byte
// handshake (lantransport.Controller.HandleControlPacket's doc comment
// explicitly leaves that to the caller), so decodeLoginReply's
// four-byte-trailer convention is this bridge's own best-effort codec,
// not a byte-exact reproduction of Icom's wire protocol.
func driveLANHandshake(ctx context.Context, ctrl *lantransport.Controller, cfg *config.Config, m *metrics.Metrics, auditLogger *audit.Logger) error {
	buf := make([]byte, 256)
	ticker := time.NewTicker(lantransport.DefaultPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := ctrl.Tick(); err != nil {
				return fmt.Errorf("LAN keep-alive: %w", err)
			}
		default:
		}

		n, err := ctrl.ReadControl(buf)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			continue // read timeout is expected while waiting on ticks
		}
		data := append([]byte(nil), buf[:n]...)

		switch ctrl.State() {
		case lantransport.AreYouThere, lantransport.AreYouReady:
			if err := ctrl.HandleControlPacket(data); err != nil {
				return err
			}
		case lantransport.TokenRequest:
			accepted, token, ok := decodeLoginReply(data)
			if !ok {
				continue
			}
			if !accepted {
				auditLogger.LoginRejected(cfg.LAN.Host, time.Now(), "rig refused credentials")
				ctrl.RejectAuth()
				return fmt.Errorf("lan transport: authentication rejected")
			}
			auditLogger.LoginAccepted(cfg.LAN.Host, time.Now())
			ctrl.GrantToken(token)
			ctrl.OfferRadios([]lantransport.Radio{{Index: 0, Name: "default"}})
			if err := ctrl.SelectRadio(0); err != nil {
				return fmt.Errorf("select LAN radio: %w", err)
			}
		case lantransport.Streaming:
			m.SetLinkState(metrics.LinkStreaming)
			return nil
		}
		m.SetLinkState(metrics.LinkState(ctrl.State()))
	}
}

// decodeLoginReply treats any non-empty datagram received in
// TokenRequest as a login reply: a zero first byte means rejected, a
// nonzero first byte means accepted with the last (up to) four bytes
// after it (big endian, zero-padded if short) as the granted token.
func decodeLoginReply(data []byte) (accepted bool, token uint32, ok bool) {
	if len(data) == 0 {
		return false, 0, false
	}
	if data[0] == 0x00 {
		return false, 0, true
	}
	tail := data[1:]
	if len(tail) > 4 {
		tail = tail[len(tail)-4:]
	}
	var v uint32
	for _, b := range tail {
		v = v<<8 | uint32(b)
	}
	return true, v, true
}

// lanCIVTransport adapts lantransport.Controller's CI-V subchannel to
// the context-cancellable frameTransport shape, the same wrapping
// internal/serialtransport.Transport.Read already does over a blocking
// device read.
type lanCIVTransport struct {
	ctrl *lantransport.Controller
}

func (l *lanCIVTransport) Write(p []byte) (int, error) { return l.ctrl.SendCIV(p) }

func (l *lanCIVTransport) Read(ctx context.Context, buf []byte) (int, error) {
	type result struct {
		n   int
		err error
	}
	done := make(chan result, 1)
	go func() {
		n, err := l.ctrl.ReadCIV(buf)
		done <- result{n, err}
	}()
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case r := <-done:
		return r.n, r.err
	}
}

// pumpFrames runs the rig-identification handshake, starts the servers
// that need a bound capability record (the command server and the MCP
// tool server), then the steady state: a reader that reassembles and
// dispatches CI-V frames, plus a reconciler ticker that writes out
// whatever the command server has marked dirty on the register
// (spec.md §4.3/§4.4's write-then-read discipline).
func pumpFrames(ctx context.Context, t frameTransport, rtsOverride *bool, reg *rigstate.Register, m *metrics.Metrics, hub *stateevents.Hub, cfg *config.Config, boundCh chan<- boundServers, wg *sync.WaitGroup) error {
	identifier := civop.NewIdentifier(rtsOverride)
	ctrlAddr := cfg.CIV.ControllerAddress

	if _, err := t.Write(civop.IdentifyBroadcast(ctrlAddr)); err != nil {
		return fmt.Errorf("send identify broadcast: %w", err)
	}

	var ident civop.Identification
	if err := identifyLoop(ctx, t, identifier, &ident); err != nil {
		return err
	}
	log.Printf("civd: identified rig %s at address %#x (known model: %v)", ident.Caps.ModelName, ident.RigAddr, ident.Known)

	cmdSrv := cmdserver.NewServer(reg, ident.Caps, appVersion)
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := cmdSrv.ListenAndServe(cfg.CommandServer.ListenAddr); err != nil {
			log.Printf("civd: command server stopped: %v", err)
		}
	}()

	mcpSrv := startMCPServer(cfg, reg, ident.Caps, wg)
	boundCh <- boundServers{cmd: cmdSrv, mcp: mcpSrv}

	parser := civop.NewParser(ident, ctrlAddr)
	builder := civop.NewBuilder(ident.RigAddr, ident.Caps, ctrlAddr)
	reconciler := civop.Reconciler{Builder: builder}
	assembler := spectrum.NewAssembler(ident.Caps.SpectSeqMax)

	if frame := builder.EnableTransceive(); frame != nil {
		if _, err := t.Write(frame); err != nil {
			return fmt.Errorf("enable transceive mode: %w", err)
		}
	}

	readErr := make(chan error, 1)
	go func() {
		readErr <- readLoop(ctx, t, parser, assembler, reg, m, hub)
	}()

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-readErr:
			return err
		case <-ticker.C:
			for _, frame := range reconciler.Reconcile(reg) {
				if _, err := t.Write(frame); err != nil {
					return fmt.Errorf("write reconciled command: %w", err)
				}
				m.FramesEncodedTotal.Inc()
			}
		}
	}
}

func identifyLoop(ctx context.Context, t frameTransport, identifier *civop.Identifier, out *civop.Identification) error {
	buf := make([]byte, 4096)
	var acc []byte
	deadline := time.Now().Add(5 * time.Second)
	for {
		if time.Now().After(deadline) {
			return fmt.Errorf("civop: no rig responded to identification")
		}
		readCtx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
		n, err := t.Read(readCtx, buf)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			continue
		}
		acc, _ = consumeFrames(append(acc, buf[:n]...), func(f civframe.Frame) {
			if ident, event, ok := identifier.Feed(f); ok && event == "discovered_rig_id" {
				*out = ident
			}
		})
		if out.Caps.ModelName != "" {
			return nil
		}
	}
}

func readLoop(ctx context.Context, t frameTransport, parser civop.Parser, assembler *spectrum.Assembler, reg *rigstate.Register, m *metrics.Metrics, hub *stateevents.Hub) error {
	buf := make([]byte, 4096)
	var acc []byte
	for {
		n, err := t.Read(ctx, buf)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			m.FramesDecodedTotal.WithLabelValues("transport_error").Inc()
			return fmt.Errorf("read transport: %w", err)
		}
		acc, _ = consumeFrames(append(acc, buf[:n]...), func(f civframe.Frame) {
			if line, ok := assembler.Feed(f); ok {
				m.SpectrumLinesAssembledTotal.Inc()
				hub.PublishSpectrumLine(line)
			}
			if _, err := parser.Parse(f, reg); err != nil {
				m.FramesDecodedTotal.WithLabelValues("negative_ack").Inc()
				return
			}
			m.FramesDecodedTotal.WithLabelValues("ok").Inc()
		})
	}
}

// consumeFrames splits every complete frame out of acc, leaving any
// trailing partial frame for the next read (civframe.Split only parses
// complete FD-terminated fragments; it does not report how much of acc
// it consumed, so this finds the last terminator itself).
func consumeFrames(acc []byte, handle func(civframe.Frame)) (remainder []byte, consumed int) {
	last := bytes.LastIndexByte(acc, 0xFD)
	if last < 0 {
		return acc, 0
	}
	for _, f := range civframe.Split(acc[:last+1]) {
		handle(f)
	}
	return append([]byte(nil), acc[last+1:]...), last + 1
}

