// Package audit records one structured line per LAN control-channel
// login attempt (C12): timestamp, remote IP, best-effort GeoIP
// country, accepted/rejected, and token age at rejection. GeoIP
// lookups are optional and never block authentication — the enabled-
// flag-guarded reader pattern is grounded on the teacher's
// geoip_service.go.
package audit

import (
	"fmt"
	"log"
	"net"
	"sync"
	"time"

	"github.com/oschwald/geoip2-golang"
)

// GeoLookup resolves an IP to a country; nil disables geolocation.
type GeoLookup struct {
	mu sync.RWMutex
	db *geoip2.Reader
}

// OpenGeoLookup opens a MaxMind MMDB file. An empty path returns a
// disabled lookup (every Country call returns "", nil) rather than an
// error, since GeoIP is an optional enrichment.
func OpenGeoLookup(path string) (*GeoLookup, error) {
	if path == "" {
		return &GeoLookup{}, nil
	}
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open geoip database %s: %w", path, err)
	}
	return &GeoLookup{db: db}, nil
}

// Close releases the underlying database, if one was opened.
func (g *GeoLookup) Close() error {
	if g.db == nil {
		return nil
	}
	return g.db.Close()
}

// Country returns the English country name for ip, or "" if lookups
// are disabled, the address is unparsable, or the lookup fails.
func (g *GeoLookup) Country(ip string) string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.db == nil {
		return ""
	}
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return ""
	}
	record, err := g.db.Country(parsed)
	if err != nil {
		return ""
	}
	if name, ok := record.Country.Names["en"]; ok && name != "" {
		return name
	}
	return record.Country.IsoCode
}

// Result is one login attempt, emitted as a single structured log line.
type Result struct {
	Time       time.Time
	RemoteIP   string
	Country    string
	Accepted   bool
	Reason     string
	TokenAge   time.Duration
	HasTokenAge bool
}

// Logger writes login attempts through an optional GeoIP lookup.
type Logger struct {
	geo *GeoLookup
}

// NewLogger builds a Logger. geo may be nil, which disables country
// annotation entirely (equivalent to an unconfigured GeoLookup).
func NewLogger(geo *GeoLookup) *Logger {
	if geo == nil {
		geo = &GeoLookup{}
	}
	return &Logger{geo: geo}
}

// LoginAccepted records a successful LAN login.
func (l *Logger) LoginAccepted(remoteIP string, at time.Time) {
	l.log(Result{Time: at, RemoteIP: remoteIP, Country: l.geo.Country(remoteIP), Accepted: true})
}

// LoginRejected records a failed LAN login attempt with its reason.
func (l *Logger) LoginRejected(remoteIP string, at time.Time, reason string) {
	l.log(Result{Time: at, RemoteIP: remoteIP, Country: l.geo.Country(remoteIP), Accepted: false, Reason: reason})
}

// TokenRejected records a rejection carrying the age of the token that
// was presented (e.g. a renewal request against an expired token).
func (l *Logger) TokenRejected(remoteIP string, at time.Time, age time.Duration) {
	l.log(Result{
		Time: at, RemoteIP: remoteIP, Country: l.geo.Country(remoteIP),
		Accepted: false, Reason: "token rejected", TokenAge: age, HasTokenAge: true,
	})
}

func (l *Logger) log(r Result) {
	status := "accepted"
	if !r.Accepted {
		status = "rejected"
	}
	line := fmt.Sprintf("audit: login %s ip=%s country=%q", status, r.RemoteIP, r.Country)
	if r.Reason != "" {
		line += fmt.Sprintf(" reason=%q", r.Reason)
	}
	if r.HasTokenAge {
		line += fmt.Sprintf(" token_age=%s", r.TokenAge)
	}
	log.Println(line)
}
