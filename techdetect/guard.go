package techdetect

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"
	"time"
)

// ErrPrivateAddress is returned when a fetched URL resolves to a loopback, private or link-local address
var ErrPrivateAddress = errors.New("refusing to connect to a non-public address")

// publicOnly returns a copy of base whose connections may only reach public addresses.
// The check runs at dial time, so it also covers redirects and DNS answers.
func publicOnly(base *http.Client) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if t, ok := base.Transport.(*http.Transport); ok {
		transport = t.Clone()
	}
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
		Control:   rejectNonPublic,
	}
	transport.DialContext = dialer.DialContext
	// A proxy would be dialled instead of the target
	transport.Proxy = nil

	client := *base
	client.Transport = transport
	return &client
}

func rejectNonPublic(network, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	ip := net.ParseIP(host)
	if ip == nil || !isPublic(ip) {
		return fmt.Errorf("%w: %s", ErrPrivateAddress, host)
	}
	return nil
}

func isPublic(ip net.IP) bool {
	return !(ip.IsLoopback() ||
		ip.IsPrivate() ||
		ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() ||
		ip.IsInterfaceLocalMulticast() ||
		ip.IsMulticast())
}
