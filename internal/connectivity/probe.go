// Package connectivity decides which path, if any, can reach the controller.
package connectivity

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"

	"nexadomus/internal/models"
)

// Defaults for the controller network and the relay reachability check.
const (
	DefaultControllerSubnet = "192.168.4.0/24"
	DefaultRelayAddr        = "api.thingspeak.com:443"
	DefaultDialTimeout      = 3 * time.Second
)

// Prober reports the current connectivity mode.
type Prober interface {
	Probe(ctx context.Context) models.ConnectivityMode
}

// StaticProbe always reports the same mode.
type StaticProbe models.ConnectivityMode

func (p StaticProbe) Probe(context.Context) models.ConnectivityMode {
	return models.ConnectivityMode(p)
}

type dialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// NetProbe inspects local interfaces and dials the relay.
//
// An address inside the controller subnet means the host is joined to the
// controller's access point and the mode is LocalDirect. Otherwise a TCP dial
// to the relay host decides between RemoteOnly and Offline.
type NetProbe struct {
	subnet      *net.IPNet
	relayAddr   string
	dialTimeout time.Duration

	addrs func() ([]net.Addr, error)
	dial  dialFunc
}

// NewNetProbe builds a probe. Empty arguments select the defaults.
func NewNetProbe(subnet, relayAddr string, dialTimeout time.Duration) (*NetProbe, error) {
	if subnet == "" {
		subnet = DefaultControllerSubnet
	}
	if relayAddr == "" {
		relayAddr = DefaultRelayAddr
	}
	if dialTimeout <= 0 {
		dialTimeout = DefaultDialTimeout
	}
	_, ipnet, err := net.ParseCIDR(subnet)
	if err != nil {
		return nil, fmt.Errorf("parse controller subnet %q: %w", subnet, err)
	}
	d := &net.Dialer{}
	return &NetProbe{
		subnet:      ipnet,
		relayAddr:   relayAddr,
		dialTimeout: dialTimeout,
		addrs:       net.InterfaceAddrs,
		dial:        d.DialContext,
	}, nil
}

// RelayAddrFromURL derives host:port from a relay URL for the reachability dial.
func RelayAddrFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return DefaultRelayAddr
	}
	port := u.Port()
	if port == "" {
		port = "443"
		if u.Scheme == "http" {
			port = "80"
		}
	}
	return net.JoinHostPort(u.Hostname(), port)
}

func (p *NetProbe) Probe(ctx context.Context) models.ConnectivityMode {
	addrs, err := p.addrs()
	if err != nil {
		return models.ModeOffline
	}
	for _, a := range addrs {
		if ip := addrIP(a); ip != nil && p.subnet.Contains(ip) {
			return models.ModeLocalDirect
		}
	}
	if !hasRoutableAddr(addrs) {
		return models.ModeOffline
	}

	dctx, cancel := context.WithTimeout(ctx, p.dialTimeout)
	defer cancel()
	conn, err := p.dial(dctx, "tcp", p.relayAddr)
	if err != nil {
		return models.ModeOffline
	}
	_ = conn.Close()
	return models.ModeRemoteOnly
}

func addrIP(a net.Addr) net.IP {
	switch v := a.(type) {
	case *net.IPNet:
		return v.IP
	case *net.IPAddr:
		return v.IP
	}
	return nil
}

func hasRoutableAddr(addrs []net.Addr) bool {
	for _, a := range addrs {
		ip := addrIP(a)
		if ip == nil || ip.IsLoopback() || ip.IsLinkLocalUnicast() {
			continue
		}
		return true
	}
	return false
}
