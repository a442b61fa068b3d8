package api

import (
	"context"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	chiprometheus "github.com/766b/chi-prometheus"
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	reuse "github.com/libp2p/go-reuseport"
	"go.uber.org/zap"
	"go.vocdoni.io/hub/log"
	"golang.org/x/net/http2"
)

const desiredSoMaxConn = 4096

type stdLogger struct {
	log *zap.SugaredLogger
}

func (l stdLogger) Print(v ...interface{}) { l.log.Debug(v...) }

// NewRouter returns a chi router with the middleware stack every hub
// endpoint runs behind.
func NewRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  stdLogger{log.Logger()},
		NoColor: true,
	}))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(middleware.ThrottleBacklog(5000, 40000, 30*time.Second))
	r.Use(middleware.Timeout(30 * time.Second))
	cors := cors.New(cors.Options{
		AllowOriginFunc: func(r *http.Request, origin string) bool {
			return true
		},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	})
	r.Use(cors.Handler)
	return r
}

// EnablePrometheusMetrics records per-route request metrics under
// prometheusID. It registers collectors globally, so call it once per
// process. If ID is empty, "gochi_http" is used.
func EnablePrometheusMetrics(r chi.Router, prometheusID string) {
	if prometheusID == "" {
		prometheusID = "gochi_http"
	}
	r.Use(chiprometheus.NewMiddleware(prometheusID))
}

// Serve listens on host:port and serves handler until ctx is done. The
// returned address is useful when port is 0.
func Serve(ctx context.Context, host string, port int, handler http.Handler) (net.Addr, error) {
	ln, err := reuse.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return nil, err
	}
	if n := somaxconn(); n < desiredSoMaxConn {
		log.Warnf("operating system SOMAXCONN is smaller than recommended (%d). "+
			"Consider increasing it: echo %d | sudo tee /proc/sys/net/core/somaxconn", n, desiredSoMaxConn)
	}
	s := &http.Server{
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       10 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		Handler:           handler,
	}
	if err := http2.ConfigureServer(s, nil); err != nil {
		return nil, err
	}
	go func() {
		if err := s.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Errorw(err, "http server stopped")
		}
	}()
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Shutdown(shutdown); err != nil {
			log.Warnf("cannot shutdown http server: %v", err)
		}
	}()
	log.Infof("api ready at http://%s", ln.Addr())
	return ln.Addr(), nil
}

func somaxconn() int {
	content, err := os.ReadFile("/proc/sys/net/core/somaxconn")
	if err != nil {
		return syscall.SOMAXCONN
	}
	n, err := strconv.Atoi(strings.Trim(string(content), "\n"))
	if err != nil {
		return syscall.SOMAXCONN
	}
	return n
}
