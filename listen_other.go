//go:build !linux

package gecho

import (
	"fmt"
	"net"
)

// Listen opens a TCP listener on addr. The runtime already sets
// SO_REUSEADDR on these platforms; backlog is left to the OS default.
func Listen(addr string, backlog int) (net.Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("gecho: listen %s: %w", addr, err)
	}
	return ln, nil
}
