package net

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/hashicorp/mdns"

	"VectorBoard/internal/logx"
)

const ServiceType = "_vectorboard._tcp"

// newService describes a mirror on port. Empty host and nil ips are
// filled in from the OS.
func newService(instance, host string, port int, ips []net.IP) (*mdns.MDNSService, error) {
	if instance == "" {
		h, err := os.Hostname()
		if err != nil {
			return nil, fmt.Errorf("could not get hostname: %w", err)
		}
		instance = h
	}
	svc, err := mdns.NewMDNSService(instance, ServiceType, "", host, port, ips, []string{"VectorBoard", "path=" + MirrorPath})
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS service: %w", err)
	}
	return svc, nil
}

// Advertise announces the mirror on the LAN until the returned server is
// shut down.
func Advertise(port int) (*mdns.Server, error) {
	svc, err := newService("", "", port, nil)
	if err != nil {
		return nil, err
	}
	server, err := mdns.NewServer(&mdns.Config{Zone: svc})
	if err != nil {
		return nil, fmt.Errorf("failed to start mDNS server: %w", err)
	}
	logx.For("mdns").Info("advertising", "service", ServiceType, "instance", svc.Instance, "port", port)
	return server, nil
}

// Browse looks for mirrors for up to timeout and reports each one as
// host:port. It returns when the lookup ends or ctx is done.
func Browse(ctx context.Context, timeout time.Duration, found func(addr string)) error {
	entries := make(chan *mdns.ServiceEntry, 8)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for e := range entries {
			if e.AddrV4 == nil || e.Port == 0 {
				continue
			}
			found(net.JoinHostPort(e.AddrV4.String(), fmt.Sprint(e.Port)))
		}
	}()

	params := mdns.DefaultParams(ServiceType)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true
	err := mdns.QueryContext(ctx, params)
	close(entries)
	<-done
	if err != nil {
		return fmt.Errorf("mdns lookup: %w", err)
	}
	return nil
}
