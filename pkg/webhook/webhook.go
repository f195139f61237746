// Package webhook receives vote notifications from the listing site.
//
// A Webhook either owns its own listener (standalone) or interposes itself in
// front of an existing *http.Server (attached). In attached mode any request
// it does not claim is handed, untouched, to the handlers the server had
// before, so the embedding application's own routes keep working.
package webhook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/beatX-bot/discordbots-go/pkg/event"
	"github.com/beatX-bot/discordbots-go/pkg/metrics"
	"github.com/gorilla/mux"
)

const DefaultPath = "/dblwebhook"

type Mode int

const (
	Standalone Mode = iota
	Attached
)

func (m Mode) String() string {
	if m == Attached {
		return "attached"
	}
	return "standalone"
}

// Ready is emitted once the listener is bound.
type Ready struct {
	Hostname string
	Port     int
	Path     string
}

type Option func(*options)

type options struct {
	host      string
	port      int
	path      string
	auth      string
	server    *http.Server
	serverSet bool
	logger    *slog.Logger
	metrics   *metrics.Webhook
	onReady   []event.Handler[Ready]
	onVote    []event.Handler[Vote]
}

// WithPort sets the standalone listen port. 0 picks an ephemeral port.
func WithPort(port int) Option {
	return func(o *options) { o.port = port }
}

// WithHost sets the standalone listen address. Empty listens on all
// interfaces.
func WithHost(host string) Option {
	return func(o *options) { o.host = host }
}

func WithPath(path string) Option {
	return func(o *options) { o.path = path }
}

// WithAuth requires the Authorization header to equal secret.
func WithAuth(secret string) Option {
	return func(o *options) { o.auth = secret }
}

// WithServer attaches to srv instead of opening a listener. It must be called
// before srv starts serving.
func WithServer(srv *http.Server) Option {
	return func(o *options) {
		o.server = srv
		o.serverSet = true
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func WithMetrics(m *metrics.Webhook) Option {
	return func(o *options) { o.metrics = m }
}

// OnReady subscribes fn before anything is bound, so it cannot miss the
// ready event.
func OnReady(fn func(Ready)) Option {
	return func(o *options) { o.onReady = append(o.onReady, fn) }
}

func OnVote(fn func(Vote)) Option {
	return func(o *options) { o.onVote = append(o.onVote, fn) }
}

type Webhook struct {
	path    string
	auth    string
	mode    Mode
	logger  *slog.Logger
	metrics *metrics.Webhook
	router  *mux.Router

	readyEvents event.Emitter[Ready]
	voteEvents  event.Emitter[Vote]

	ready     chan struct{}
	readyOnce sync.Once

	lock sync.RWMutex
	addr net.Addr

	// standalone
	server    *http.Server
	serveDone chan struct{}

	// attached; delegates is fixed once attach returns
	delegates Listeners
	detached  bool
}

// New builds a Webhook and starts it right away: standalone mode binds its
// listener before returning, attached mode installs itself on the server.
func New(opts ...Option) (*Webhook, error) {
	o := options{path: DefaultPath}
	for _, opt := range opts {
		opt(&o)
	}

	if o.serverSet && o.server == nil {
		return nil, &ConfigurationError{Option: "server", Reason: "nil *http.Server"}
	}
	if o.port < 0 || o.port > 65535 {
		return nil, &ConfigurationError{Option: "port", Reason: fmt.Sprintf("%d is out of range", o.port)}
	}
	if o.path == "" {
		o.path = DefaultPath
	}
	if !strings.HasPrefix(o.path, "/") {
		return nil, &ConfigurationError{Option: "path", Reason: fmt.Sprintf("%q must start with /", o.path)}
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	w := &Webhook{
		path:    o.path,
		auth:    o.auth,
		logger:  o.logger,
		metrics: o.metrics,
		ready:   make(chan struct{}),
	}
	for _, fn := range o.onReady {
		w.readyEvents.On(fn)
	}
	for _, fn := range o.onVote {
		w.voteEvents.On(fn)
	}
	w.router = w.newRouter()

	if o.server != nil {
		w.attach(o.server)
		return w, nil
	}
	if err := w.listen(o.host, o.port); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *Webhook) newRouter() *mux.Router {
	r := mux.NewRouter()
	// exact path matching; no cleaning redirects
	r.SkipClean(true)
	r.NewRoute().
		MatcherFunc(func(req *http.Request, _ *mux.RouteMatch) bool {
			return req.URL.Path == w.path
		}).
		Methods(http.MethodPost).
		HandlerFunc(w.handleVote)
	r.NotFoundHandler = http.HandlerFunc(w.decline)
	r.MethodNotAllowedHandler = http.HandlerFunc(w.decline)
	return r
}

func (w *Webhook) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	if w.mode == Attached {
		w.lock.RLock()
		detached := w.detached
		w.lock.RUnlock()
		if detached {
			w.delegates.ServeHTTP(rw, r)
			return
		}
	}
	w.router.ServeHTTP(rw, r)
}

// decline handles every request that is not a POST to the webhook path.
func (w *Webhook) decline(rw http.ResponseWriter, r *http.Request) {
	if w.mode == Attached {
		w.delegates.ServeHTTP(rw, r)
		return
	}
	w.respond(rw, http.StatusNotFound, "")
}

func (w *Webhook) listen(host string, port int) error {
	address := net.JoinHostPort(host, strconv.Itoa(port))
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("webhook: listening on %s: %w", address, err)
	}

	w.mode = Standalone
	w.server = &http.Server{
		Handler:           w,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	w.serveDone = make(chan struct{})

	w.listening(listener.Addr())

	go func() {
		defer close(w.serveDone)
		if err := w.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			w.logger.Error("webhook server stopped", "error", err)
		}
	}()
	return nil
}

func (w *Webhook) attach(srv *http.Server) {
	w.mode = Attached
	w.delegates = captureHandlers(srv.Handler)

	previous := srv.BaseContext
	srv.BaseContext = func(l net.Listener) context.Context {
		ctx := context.Background()
		if previous != nil {
			ctx = previous(l)
		}
		w.listening(l.Addr())
		return ctx
	}
	srv.Handler = w

	w.logger.Debug("webhook attached to existing server",
		"path", w.path,
		"delegates", len(w.delegates),
	)
}

// listening records the first bound address and emits ready for it. Later
// listeners on the same server are logged only.
func (w *Webhook) listening(addr net.Addr) {
	w.lock.Lock()
	if w.detached {
		w.lock.Unlock()
		return
	}
	if w.addr == nil {
		w.addr = addr
	}
	w.lock.Unlock()

	w.logger.Info("webhook listening",
		"mode", w.mode.String(),
		"address", addr.String(),
		"path", w.path,
		"vote_subscribers", w.voteEvents.Len(),
	)
	w.readyOnce.Do(func() {
		host, port := splitAddr(addr)
		w.readyEvents.Emit(Ready{Hostname: host, Port: port, Path: w.path})
		close(w.ready)
	})
}

func splitAddr(addr net.Addr) (string, int) {
	if tcp, ok := addr.(*net.TCPAddr); ok {
		return tcp.IP.String(), tcp.Port
	}
	host, portStr, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String(), 0
	}
	port, _ := strconv.Atoi(portStr)
	return host, port
}

// OnReady subscribes fn to ready events. It returns a function that
// unsubscribes.
func (w *Webhook) OnReady(fn func(Ready)) func() {
	return w.readyEvents.On(fn)
}

// OnVote subscribes fn to vote events. Handlers run synchronously on the
// request goroutine, before the response is written.
func (w *Webhook) OnVote(fn func(Vote)) func() {
	return w.voteEvents.On(fn)
}

// Ready is closed the first time the listener is bound.
func (w *Webhook) Ready() <-chan struct{} {
	return w.ready
}

// Addr is the bound address, or nil before Ready is closed.
func (w *Webhook) Addr() net.Addr {
	w.lock.RLock()
	defer w.lock.RUnlock()
	return w.addr
}

func (w *Webhook) Path() string {
	return w.path
}

func (w *Webhook) Mode() Mode {
	return w.mode
}

// Close stops the webhook. A standalone webhook shuts its server down and
// waits for in-flight requests, bounded by ctx. An attached webhook stops
// claiming requests and hands every one to the captured handlers; the
// server, which may still be serving, is not modified.
func (w *Webhook) Close(ctx context.Context) error {
	if w.mode == Attached {
		w.lock.Lock()
		w.detached = true
		w.lock.Unlock()
		return nil
	}

	err := w.server.Shutdown(ctx)
	select {
	case <-w.serveDone:
	case <-ctx.Done():
	}
	return err
}
