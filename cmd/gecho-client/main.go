// Command gecho-client opens several simultaneous connections to a gecho
// server and prints what each one gets back.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cat2neat/gecho/loadgen"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("gecho-client", flag.ContinueOnError)
	fs.SetOutput(stderr)
	addr := fs.String("addr", loadgen.DefaultAddr, "server address")
	conns := fs.Int("n", loadgen.DefaultConns, "number of simultaneous connections")
	msg := fs.String("msg", loadgen.DefaultMessage, "message sent on every connection")
	timeout := fs.Duration("timeout", 5*time.Second, "dial timeout")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	fmt.Fprintf(stdout, "Starting client simulation with %d threads...\n", *conns)
	_, err := loadgen.Run(ctx, loadgen.Config{
		Addr:        *addr,
		Conns:       *conns,
		Message:     *msg,
		DialTimeout: *timeout,
		Out:         stdout,
	})
	fmt.Fprintln(stdout, "All client threads finished.")
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}
