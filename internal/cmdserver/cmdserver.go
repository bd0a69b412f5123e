// Package cmdserver is the Hamlib-style TCP command server (C7): a
// line-delimited text protocol that exposes the rig-state register to
// rigctld-compatible clients (wfview, Xdial, Hamlib's own rigctl).
package cmdserver

import (
	"bufio"
	"fmt"
	"log"
	"net"
	"strings"
	"sync"

	"github.com/hashicorp/go-version"

	"github.com/bturbeville/wfview-sub001/internal/rigcat"
	"github.com/bturbeville/wfview-sub001/internal/rigstate"
)

// supportedProtocolFloor is the lowest rigctld protocol version this
// server accepts on set_proto before refusing dump_state/get_rig_info.
var supportedProtocolFloor = version.Must(version.NewVersion("1.0.0"))

// Server accepts TCP connections and spawns one per-connection worker
// (spec.md §5) that shares the rig-state register.
type Server struct {
	Register   *rigstate.Register
	Caps       rigcat.Capability
	AppVersion string

	mu       sync.Mutex
	listener net.Listener
}

// NewServer builds a command server bound to the given register and
// capability record.
func NewServer(reg *rigstate.Register, caps rigcat.Capability, appVersion string) *Server {
	return &Server{Register: reg, Caps: caps, AppVersion: appVersion}
}

// ListenAndServe opens addr and accepts connections until it fails or
// Close is called.
func (s *Server) ListenAndServe(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("cmdserver: listen %s: %w", addr, err)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	log.Printf("cmdserver: listening on %s", addr)
	for {
		conn, err := ln.Accept()
		if err != nil {
			return err
		}
		go s.handleConn(conn)
	}
}

// Close stops accepting new connections.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Close()
}

type conn struct {
	server      *Server
	protoVer    *version.Version
	chkVfoCalled bool
}

func (s *Server) handleConn(nc net.Conn) {
	defer nc.Close()
	c := &conn{server: s, protoVer: supportedProtocolFloor}
	scanner := bufio.NewScanner(nc)
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		reply, quit := c.dispatch(line)
		if reply != "" {
			if _, err := nc.Write([]byte(reply)); err != nil {
				return
			}
		}
		if quit {
			return
		}
	}
}
