// Command ssui-mock serves a preview SteamServerUI backend with canned data
// for trying the console without a game server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/steamserverui/ssui-console/internal/logging"
	"github.com/steamserverui/ssui-console/internal/mock"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:8443", "TCP address to listen on")
	socket := flag.String("socket", "", "also listen on this unix socket")
	user := flag.String("user", "admin", "admin username accepted by login")
	password := flag.String("password", "admin", "admin password accepted by login")
	auth := flag.Bool("auth", false, "require login for API calls")
	sscm := flag.Bool("sscm", true, "enable the console command bridge")
	interval := flag.Duration("interval", 2*time.Second, "delay between replayed stream lines")
	logFile := flag.String("log-file", "", "path to the log file")
	trace := flag.Bool("trace", false, "enable JSON trace logging")
	flag.Parse()

	logging.Configure(*logFile)
	logging.SetTraceEnabled(*trace)

	if err := run(*addr, *socket, *interval, mock.Options{
		Username:    *user,
		Password:    *password,
		RequireAuth: *auth,
		SSCM:        *sscm,
	}); err != nil {
		logging.Error(err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(addr, socket string, interval time.Duration, opts mock.Options) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend := mock.NewServer(opts)
	go backend.Run(ctx, interval)

	srv := &http.Server{Handler: backend.Handler(), ReadHeaderTimeout: 10 * time.Second}
	listeners := []net.Listener{}
	tcp, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	listeners = append(listeners, tcp)
	if socket != "" {
		_ = os.Remove(socket)
		unix, err := net.Listen("unix", socket)
		if err != nil {
			tcp.Close()
			return fmt.Errorf("listen %s: %w", socket, err)
		}
		defer os.Remove(socket)
		listeners = append(listeners, unix)
	}

	errs := make(chan error, len(listeners))
	for _, l := range listeners {
		fmt.Fprintf(os.Stderr, "ssui-mock listening on %s %s\n", l.Addr().Network(), l.Addr())
		go func(l net.Listener) { errs <- srv.Serve(l) }(l)
	}

	select {
	case <-ctx.Done():
	case err := <-errs:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}
	shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdown)
}
