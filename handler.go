package gecho

import (
	"context"
	"io"
)

// DefaultBufferSize is the per-connection read buffer capacity.
const DefaultBufferSize = 4096

type (
	// ConnHandler serves a single connection until it returns. The Server
	// closes the connection afterwards.
	ConnHandler func(context.Context, Conn)
)

// SetEchoHandler makes s echo every chunk it reads back to the sender after
// passing it through transform. Each connection gets its own buffer of
// bufSize bytes. A non-positive bufSize means DefaultBufferSize and a nil
// transform means UpperASCII.
//
// Chunks are echoed as they are read: nothing reassembles messages split
// across reads.
func (s *Server) SetEchoHandler(bufSize int, transform Transformer) {
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}
	if transform == nil {
		transform = UpperASCII
	}
	s.ConnHandler = func(ctx context.Context, conn Conn) {
		buf := make([]byte, bufSize)
		for {
			clear(buf)
			conn.SetIdle(true)
			n, err := conn.Read(buf)
			conn.SetIdle(false)
			if n > 0 {
				chunk := buf[:n]
				transform(chunk)
				if _, werr := WriteAll(conn, chunk); werr != nil {
					s.logger().Errorf("gecho: write %v: %v", conn.RemoteAddr(), werr)
					return
				}
			}
			if err != nil {
				if err != io.EOF {
					s.logger().Errorf("gecho: read %v: %v", conn.RemoteAddr(), err)
				}
				return
			}
			if n == 0 {
				// peer shut down its side
				return
			}
		}
	}
}
