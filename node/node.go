// Package node assembles one gateway: request store, dispatcher, protocol
// orchestrator and gRPC server.
package node

import (
	"net"

	log "github.com/sirupsen/logrus"
	"github.com/vadiminshakov/satp/config"
	"github.com/vadiminshakov/satp/core/dispatcher"
	"github.com/vadiminshakov/satp/core/driver"
	"github.com/vadiminshakov/satp/core/gateway"
	"github.com/vadiminshakov/satp/core/gateway/hooks"
	"github.com/vadiminshakov/satp/core/msgfactory"
	"github.com/vadiminshakov/satp/io/gateway/grpc/client"
	"github.com/vadiminshakov/satp/io/gateway/grpc/server"
	"github.com/vadiminshakov/satp/io/store"
	"google.golang.org/grpc"
)

type options struct {
	dialOpts   []grpc.DialOption
	serverOpts []server.Option
	drivers    gateway.DriverResolver
	signer     msgfactory.Signer
	hooks      []hooks.Hook
}

type Option func(*options)

// WithDialOptions adds dial options to every outbound connection.
func WithDialOptions(opts ...grpc.DialOption) Option {
	return func(o *options) {
		o.dialOpts = append(o.dialOpts, opts...)
	}
}

func WithServerOptions(opts ...server.Option) Option {
	return func(o *options) {
		o.serverOpts = append(o.serverOpts, opts...)
	}
}

// WithDrivers replaces the drivers of the configuration.
func WithDrivers(d gateway.DriverResolver) Option {
	return func(o *options) {
		o.drivers = d
	}
}

func WithSigner(s msgfactory.Signer) Option {
	return func(o *options) {
		o.signer = s
	}
}

// WithHooks registers validation hooks run for every step.
func WithHooks(h ...hooks.Hook) Option {
	return func(o *options) {
		o.hooks = append(o.hooks, h...)
	}
}

// Node is a running gateway.
type Node struct {
	conf       *config.Config
	store      *store.Store
	dispatcher *dispatcher.Dispatcher
	gateway    *gateway.Gateway
	server     *server.Server
}

// New opens the stores and wires the gateway. The returned error is fatal
// (errs.KindFatal) when the store could not be opened.
func New(conf *config.Config, opts ...Option) (*Node, error) {
	o := &options{signer: msgfactory.NopSigner{}}
	for _, opt := range opts {
		opt(o)
	}

	storeOpts := conf.StoreOptions()
	if conf.StateJournal.Dir != "" {
		journal, err := store.OpenJournal(conf.JournalOptions())
		if err != nil {
			return nil, err
		}
		storeOpts.Journal = journal
	}
	st, err := store.Open(storeOpts)
	if err != nil {
		if storeOpts.Journal != nil {
			_ = storeOpts.Journal.Close()
		}
		return nil, err
	}

	drivers := o.drivers
	if drivers == nil {
		drivers = driver.NewRegistry(conf.DriverEndpoints(), client.DriverDialer(o.dialOpts...))
	}

	registry := hooks.NewRegistry()
	registry.Register(hooks.NewDefaultHook())
	registry.Register(hooks.NewSessionHook())
	registry.Register(hooks.NewAuditHook(conf.NodeAddr))
	for _, h := range o.hooks {
		registry.Register(h)
	}

	factory := msgfactory.New(
		msgfactory.WithSigner(o.signer),
		msgfactory.WithLockAssertionTTL(conf.LockAssertionTTL()),
	)

	d := dispatcher.New(client.SATPDialer(o.dialOpts...), st, conf.DispatchConfig())
	dir := conf.RelayDirectory()
	gw := gateway.New(st, d, conf.Resolver(dir), dir,
		gateway.WithFactory(factory),
		gateway.WithDrivers(drivers),
		gateway.WithHooks(registry),
	)

	serverOpts := []server.Option{server.WithWhitelist(conf.Whitelist)}
	if conf.TLS.CertPath != "" {
		serverOpts = append(serverOpts, server.WithTLS(conf.TLS.CertPath, conf.TLS.KeyPath))
	}
	srv, err := server.New(conf.NodeAddr, gw, append(serverOpts, o.serverOpts...)...)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	return &Node{conf: conf, store: st, dispatcher: d, gateway: gw, server: srv}, nil
}

// Run listens on the configured address without blocking.
func (n *Node) Run() error {
	return n.server.Run()
}

// Serve serves on l until Stop is called.
func (n *Node) Serve(l net.Listener) error {
	return n.server.Serve(l)
}

func (n *Node) Gateway() *gateway.Gateway {
	return n.gateway
}

func (n *Node) Store() *store.Store {
	return n.store
}

// Stop stops accepting calls, waits for in-flight dispatches and closes the stores.
func (n *Node) Stop() {
	n.server.Stop()
	n.dispatcher.Wait()
	if err := n.store.Close(); err != nil {
		log.Errorf("failed to close store: %v", err)
	}
}
