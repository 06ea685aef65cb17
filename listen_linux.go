//go:build linux

package gecho

import (
	"fmt"
	"net"
	"os"

	"golang.org/x/sys/unix"
)

// Listen opens a TCP listener on addr with SO_REUSEADDR set and the given
// accept backlog. A non-positive backlog means DefaultBacklog. A host-less
// addr such as ":8080" or "[::]:8080" accepts both IPv4 and IPv6 clients,
// the same as net.Listen; without IPv6 support ":8080" falls back to IPv4.
func Listen(addr string, backlog int) (net.Listener, error) {
	if backlog <= 0 {
		backlog = DefaultBacklog
	}
	tcpAddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("gecho: resolve %s: %w", addr, err)
	}
	fd, sa, err := socket(tcpAddr)
	if err != nil {
		return nil, err
	}
	if err = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("gecho: setsockopt SO_REUSEADDR: %w", err)
	}
	if err = unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("gecho: bind %s: %w", addr, err)
	}
	if err = unix.Listen(fd, backlog); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("gecho: listen %s: %w", addr, err)
	}
	// net.FileListener dups fd, so the file is closed either way.
	f := os.NewFile(uintptr(fd), "gecho-listener")
	defer f.Close()
	ln, err := net.FileListener(f)
	if err != nil {
		return nil, fmt.Errorf("gecho: listener %s: %w", addr, err)
	}
	return ln, nil
}

func socket(addr *net.TCPAddr) (int, unix.Sockaddr, error) {
	const typ = unix.SOCK_STREAM | unix.SOCK_CLOEXEC
	if addr.IP == nil || addr.IP.Equal(net.IPv6unspecified) {
		fd, err := unix.Socket(unix.AF_INET6, typ, unix.IPPROTO_TCP)
		if err == nil {
			if err = unix.SetsockoptInt(fd, unix.IPPROTO_IPV6, unix.IPV6_V6ONLY, 0); err == nil {
				return fd, &unix.SockaddrInet6{Port: addr.Port}, nil
			}
			unix.Close(fd)
		}
		if addr.IP != nil {
			return -1, nil, fmt.Errorf("gecho: socket: %w", err)
		}
	}
	family, sa := sockaddr(addr)
	fd, err := unix.Socket(family, typ, unix.IPPROTO_TCP)
	if err != nil {
		return -1, nil, fmt.Errorf("gecho: socket: %w", err)
	}
	return fd, sa, nil
}

func sockaddr(addr *net.TCPAddr) (int, unix.Sockaddr) {
	if ip4 := addr.IP.To4(); ip4 != nil || addr.IP == nil {
		sa := &unix.SockaddrInet4{Port: addr.Port}
		copy(sa.Addr[:], ip4)
		return unix.AF_INET, sa
	}
	sa := &unix.SockaddrInet6{Port: addr.Port}
	copy(sa.Addr[:], addr.IP.To16())
	if addr.Zone != "" {
		if ifi, err := net.InterfaceByName(addr.Zone); err == nil {
			sa.ZoneId = uint32(ifi.Index)
		}
	}
	return unix.AF_INET6, sa
}
