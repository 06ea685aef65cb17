/*
Package gecho is a concurrent TCP echo server that sends every byte it
receives back to its sender with ASCII lowercase letters folded to
uppercase.

### Model
- One goroutine per accepted connection, unbounded. The accept loop never
  waits for a connection to finish.
- Blocking reads and writes. A connection ends only when its peer closes it
  or an I/O error happens; there is no idle timeout.
- A Counter guarded by a single mutex tracks active connections and is used
  for the "Client connected/disconnected" log lines.
- WriteAll loops over partial writes and fails on the first zero-byte or
  failed write.

### Components
- ConnHandler
  - SetEchoHandler installs the uppercase echo loop (the default).
- Conn
  - NewBaseConn cancels the per-connection context on I/O errors.
  - StatsConn measures incoming/outgoing bytes.
  - DebugConn logs every Read/Write/Close.
- ConnTracker
  - MapConnTracker handles force closing and graceful shutdown.
- Logger
  - BuiltinLogger logs using the standard log package.
- Retry
  - ExponentialRetry backs off the accept loop on accept errors.
- Statistics
  - TrafficStatistics accumulates traffic across a server and can be
    exported to Prometheus with NewCollector.

### Known limitation
There is no message framing. Each echo corresponds to one read, so a
message split across reads comes back as several smaller echoes and two
messages that arrive in one read come back as one chunk.
*/
package gecho
