// plugin.go provides the Plugin that owns the Sentry client and the base hub.

package sentryware

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-logr/logr"
	"github.com/pkg/errors"
)

// DefaultRequestIDHeader is the header consulted for an incoming request ID.
const DefaultRequestIDHeader = "X-Request-Id"

// Plugin wires a Sentry client into request handling.
// A Plugin is safe for concurrent use.
type Plugin struct {
	cfg             Config
	client          *sentry.Client
	hub             *sentry.Hub
	logger          logr.Logger
	ignore          IgnoreList
	clientOpts      []func(*sentry.ClientOptions)
	bindGlobal      bool
	requestIDHeader string
	maxBody         int64

	mu         sync.RWMutex
	processors []Processor
}

// Option configures a Plugin.
type Option func(*Plugin)

// WithLogger sets the logger used for diagnostics. The default discards everything.
func WithLogger(logger logr.Logger) Option {
	return func(p *Plugin) {
		p.logger = logger
	}
}

// WithProcessors registers processors in the given order.
func WithProcessors(processors ...Processor) Option {
	return func(p *Plugin) {
		for _, fn := range processors {
			if fn != nil {
				p.processors = append(p.processors, fn)
			}
		}
	}
}

// WithIgnoreErrors adds the runtime type of each sample to the ignore list.
//
//	sentryware.WithIgnoreErrors(&NotFoundError{}, ValidationError{})
func WithIgnoreErrors(samples ...any) Option {
	return func(p *Plugin) {
		p.ignore = p.ignore.With(samples...)
	}
}

// WithClientOptions adjusts the sentry.ClientOptions built from the Config
// before the client is created.
func WithClientOptions(fn func(*sentry.ClientOptions)) Option {
	return func(p *Plugin) {
		p.clientOpts = append(p.clientOpts, fn)
	}
}

// WithGlobalHub also binds the client to sentry.CurrentHub so that the
// package-level sentry functions report to the same project.
func WithGlobalHub() Option {
	return func(p *Plugin) {
		p.bindGlobal = true
	}
}

// WithRequestIDHeader changes the header consulted for an incoming request ID.
func WithRequestIDHeader(name string) Option {
	return func(p *Plugin) {
		if name != "" {
			p.requestIDHeader = name
		}
	}
}

// WithBody captures up to max bytes of POST, PUT and PATCH bodies into the
// event request data. The body remains readable by the handler.
func WithBody(max int64) Option {
	return func(p *Plugin) {
		p.maxBody = max
	}
}

// New validates cfg and builds a Plugin. With an empty DSN no client is
// created: the middleware still provides request scopes but nothing is sent.
func New(cfg Config, opts ...Option) (*Plugin, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Plugin{
		cfg:             cfg,
		logger:          logr.Discard(),
		requestIDHeader: DefaultRequestIDHeader,
	}
	for _, opt := range opts {
		opt(p)
	}

	var client *sentry.Client
	if cfg.DSN != "" {
		options := cfg.ClientOptions()
		for _, fn := range p.clientOpts {
			fn(&options)
		}
		c, err := sentry.NewClient(options)
		if err != nil {
			return nil, errors.Wrap(err, "sentryware: init client")
		}
		if len(cfg.ExcludePaths) > 0 {
			c.AddEventProcessor(excludeFrames(cfg.ExcludePaths))
		}
		client = c
	}

	scope := sentry.NewScope()
	scope.SetContext("app", sentry.Context{
		"name": cfg.AppName,
		"argv": append([]string(nil), os.Args...),
	})

	p.client = client
	p.hub = sentry.NewHub(client, scope)

	if client != nil && p.bindGlobal {
		sentry.CurrentHub().BindClient(client)
	}

	p.logger.V(1).Info("sentry plugin configured",
		"enabled", client != nil,
		"transactionStyle", string(cfg.TransactionStyle),
		"ignoredTypes", p.ignore.Len(),
	)

	return p, nil
}

// Enabled reports whether a DSN was configured.
func (p *Plugin) Enabled() bool {
	return p.client != nil
}

// Client returns the Sentry client, or nil when disabled.
func (p *Plugin) Client() *sentry.Client {
	return p.client
}

// Hub returns the base hub. Request hubs are clones of it.
func (p *Plugin) Hub() *sentry.Hub {
	return p.hub
}

// Config returns the configuration the plugin was built with.
func (p *Plugin) Config() Config {
	return p.cfg
}

// BodyLimit returns the request body capture limit set WithBody; 0 disables capture.
func (p *Plugin) BodyLimit() int64 {
	return p.maxBody
}

// Flush waits for buffered events until ctx's deadline, or FlushTimeout
// when ctx has none.
func (p *Plugin) Flush(ctx context.Context) error {
	if p.client == nil {
		return nil
	}

	timeout := p.cfg.FlushTimeout
	if timeout == 0 {
		timeout = defaultConfig.FlushTimeout
	}
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	if timeout <= 0 {
		return ErrFlushTimeout
	}

	if !p.hub.Flush(timeout) {
		p.logger.Info("sentry flush timed out", "timeout", timeout.String())
		return ErrFlushTimeout
	}
	return nil
}

// Close flushes outstanding events. The plugin must not be used afterwards.
func (p *Plugin) Close() error {
	return p.Flush(context.Background())
}
