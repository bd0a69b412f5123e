// Package mcpserver exposes rig operations as Model Context Protocol
// tools (C13): get/set frequency, get/set mode, read a meter, and a
// rig-status summary, all against the C4 register. Tool registration
// (mcp.NewTool(...).WithDescription(...) chained into AddTool) and the
// JSON/text dual-format tool result convention follow the teacher's
// mcp_server.go.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bturbeville/wfview-sub001/internal/rigcat"
	"github.com/bturbeville/wfview-sub001/internal/rigstate"
)

// Server wraps an MCP tool server bound to one rig's register.
type Server struct {
	register *rigstate.Register
	caps     rigcat.Capability

	mcpServer  *server.MCPServer
	httpServer *server.StreamableHTTPServer
}

// New builds a Server, registers every tool, and wraps it for
// streamable-HTTP serving.
func New(register *rigstate.Register, caps rigcat.Capability) *Server {
	s := &Server{register: register, caps: caps}
	s.mcpServer = server.NewMCPServer(
		"civd",
		"1.0.0",
		server.WithToolCapabilities(true),
	)
	s.registerTools()
	s.httpServer = server.NewStreamableHTTPServer(s.mcpServer)
	return s
}

// HandleMCP serves one MCP protocol request, to be mounted at /mcp.
func (s *Server) HandleMCP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.ServeHTTP(w, r)
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("get_frequency",
			mcp.WithDescription("Get the current VFO A frequency in Hz."),
		),
		s.handleGetFrequency,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("set_frequency",
			mcp.WithDescription("Tune VFO A to a frequency in Hz."),
			mcp.WithNumber("hz", mcp.Description("Target frequency in Hz")),
		),
		s.handleSetFrequency,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("get_mode",
			mcp.WithDescription("Get the rig's current operating mode and passband width."),
		),
		s.handleGetMode,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("set_mode",
			mcp.WithDescription("Set the rig's operating mode, e.g. USB, LSB, CW, FM, AM, RTTY."),
			mcp.WithString("mode", mcp.Description("Mode name, e.g. USB, LSB, CW, FM, AM, RTTY")),
		),
		s.handleSetMode,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("get_meter",
			mcp.WithDescription("Read a rig meter: 'strength' for S-meter, 'swr' for SWR, 'power' for RF power output."),
			mcp.WithString("meter", mcp.Description("One of strength, swr, power"), mcp.DefaultString("strength")),
		),
		s.handleGetMeter,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("get_rig_status",
			mcp.WithDescription("Get a one-shot summary of the rig's current state: frequency, mode, PTT, and link validity."),
		),
		s.handleGetRigStatus,
	)
}

func (s *Server) handleGetFrequency(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	hz, _ := s.register.Get(rigstate.VFOAFreq).Value.Int()
	return mcp.NewToolResultText(fmt.Sprintf("%d", hz)), nil
}

func (s *Server) handleSetFrequency(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	hz := request.GetFloat("hz", -1)
	if hz < 0 {
		return mcp.NewToolResultError("hz is required and must be non-negative"), nil
	}
	s.register.Set(rigstate.VFOAFreq, rigstate.IntValue(int64(hz)))
	return mcp.NewToolResultText(fmt.Sprintf("tuned to %d Hz", int64(hz))), nil
}

func (s *Server) handleGetMode(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	modeVal, _ := s.register.Get(rigstate.Mode).Value.Int()
	width, _ := s.register.Get(rigstate.Passband).Value.Int()
	kind := rigcat.ModeKind(modeVal)
	name, ok := s.caps.ModeName(kind)
	if !ok {
		name = "UNKNOWN"
	}
	out, _ := json.Marshal(map[string]interface{}{"mode": name, "passband_hz": width})
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) handleSetMode(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := request.GetString("mode", "")
	if name == "" {
		return mcp.NewToolResultError("mode is required"), nil
	}
	kind, ok := s.caps.ModeKindByName(name)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("unsupported mode %q for %s", name, s.caps.ModelName)), nil
	}
	s.register.Set(rigstate.Mode, rigstate.IntValue(int64(kind)))
	return mcp.NewToolResultText(fmt.Sprintf("mode set to %s", name)), nil
}

func (s *Server) handleGetMeter(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	meter := request.GetString("meter", "strength")
	var key rigstate.Key
	switch meter {
	case "strength":
		key = rigstate.MeterS
	case "swr":
		key = rigstate.MeterSWR
	case "power":
		key = rigstate.MeterPower
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown meter %q, want strength, swr, or power", meter)), nil
	}
	raw, valid := s.register.Get(key).Value.Int()
	if !valid {
		return mcp.NewToolResultError(fmt.Sprintf("meter %q is not readable on this rig", meter)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%d", raw)), nil
}

func (s *Server) handleGetRigStatus(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	freqEntry := s.register.Get(rigstate.VFOAFreq)
	modeVal, _ := s.register.Get(rigstate.Mode).Value.Int()
	ptt, _ := s.register.Get(rigstate.PTT).Value.Bool()
	kind := rigcat.ModeKind(modeVal)
	name, _ := s.caps.ModeName(kind)

	hz, _ := freqEntry.Value.Int()
	status := map[string]interface{}{
		"rig":         s.caps.ModelName,
		"frequency_hz": hz,
		"mode":        name,
		"ptt":         ptt,
		"valid":       freqEntry.Valid,
	}
	out, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal status: %v", err)), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}
