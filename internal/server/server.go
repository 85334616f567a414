// Package server serves the Spellstacks static assets over HTTP.
// Every response carries open CORS and no-cache headers, and every request
// is logged with a timestamp.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"net"
	"net/http"
	"os"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vesaa/spellstacks/internal/config"
	"github.com/vesaa/spellstacks/webui"
)

const shutdownTimeout = 5 * time.Second

// PortInUseError reports that another process already listens on Port.
type PortInUseError struct {
	Port int
	// Holder describes the listening process when it could be identified.
	Holder string
	Err    error
}

func (e *PortInUseError) Error() string {
	if e.Holder != "" {
		return fmt.Sprintf("port %d is already in use by %s", e.Port, e.Holder)
	}
	return fmt.Sprintf("port %d is already in use", e.Port)
}

func (e *PortInUseError) Unwrap() error { return e.Err }

// isAddrInUse matches EADDRINUSE on Unix and WSAEADDRINUSE on Windows.
func isAddrInUse(err error) bool {
	return errors.Is(err, syscall.EADDRINUSE) || errors.Is(err, syscall.Errno(10048))
}

// RootFS returns the filesystem to serve and a label describing it.
func RootFS(cfg *config.Config) (fs.FS, string, error) {
	if cfg.EmbeddedUI {
		root, err := webui.Root()
		if err != nil {
			return nil, "", err
		}
		return root, "embedded skeleton", nil
	}
	dir, err := cfg.ResolveRoot()
	if err != nil {
		return nil, "", err
	}
	st, err := os.Stat(dir)
	if err != nil {
		return nil, "", fmt.Errorf("root directory: %w", err)
	}
	if !st.IsDir() {
		return nil, "", fmt.Errorf("root %s is not a directory", dir)
	}
	return os.DirFS(dir), dir, nil
}

// NewEngine builds the Gin engine serving root, logging requests to logOut.
func NewEngine(root fs.FS, logOut io.Writer) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(logOut), HeadersMiddleware())
	RegisterStaticFiles(r, root)
	return r
}

// Listen binds the configured address. A port conflict is returned as
// *PortInUseError.
func Listen(ctx context.Context, cfg *config.Config) (net.Listener, error) {
	addr := net.JoinHostPort(cfg.ServerHost, strconv.Itoa(cfg.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		if isAddrInUse(err) {
			return nil, &PortInUseError{Port: cfg.Port, Holder: lookupPortHolder(ctx, cfg.Port), Err: err}
		}
		return nil, fmt.Errorf("listening on %s: %w", addr, err)
	}
	return ln, nil
}

// Serve binds the configured port and serves the configured root until ctx
// is cancelled, then shuts down gracefully and returns nil. ready, if set, is
// called with a description of the root once the port is bound.
func Serve(ctx context.Context, cfg *config.Config, logOut io.Writer, ready func(root string)) error {
	root, label, err := RootFS(cfg)
	if err != nil {
		return err
	}
	ln, err := Listen(ctx, cfg)
	if err != nil {
		return err
	}
	log.Printf("[server] serving %s on %s", label, ln.Addr())
	if ready != nil {
		ready(label)
	}
	return ServeListener(ctx, ln, NewEngine(root, logOut))
}

// ServeListener serves h on ln until ctx is cancelled.
func ServeListener(ctx context.Context, ln net.Listener, h http.Handler) error {
	srv := &http.Server{Handler: h, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}
