// Package driver resolves and invokes the ledger drivers that lock, create,
// extinguish and assign assets on behalf of a gateway.
package driver

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/vadiminshakov/satp/core/dto"
	"github.com/vadiminshakov/satp/core/errs"
)

// Driver performs a ledger action.
type Driver interface {
	Execute(ctx context.Context, req dto.DriverRequest) error
}

// Func adapts a function to the Driver interface.
type Func func(ctx context.Context, req dto.DriverRequest) error

func (f Func) Execute(ctx context.Context, req dto.DriverRequest) error {
	return f(ctx, req)
}

// Conn is a driver reached over a connection that must be closed after use.
type Conn interface {
	Driver
	Close() error
}

// Dialer opens a connection to the driver listening at ep.
type Dialer func(ctx context.Context, ep dto.RelayEndpoint) (Conn, error)

// Endpoint is a configured driver.
type Endpoint struct {
	Name      string
	NetworkID string
	dto.RelayEndpoint
}

// Registry resolves drivers by the network they serve.
type Registry struct {
	byNetwork map[string]Endpoint
	dial      Dialer
}

func NewRegistry(endpoints []Endpoint, dial Dialer) *Registry {
	byNetwork := make(map[string]Endpoint, len(endpoints))
	for _, ep := range endpoints {
		network := strings.ToLower(ep.NetworkID)
		if _, dup := byNetwork[network]; dup {
			log.Warnf("driver %s overrides another driver of network %s", ep.Name, ep.NetworkID)
		}
		byNetwork[network] = ep
	}
	return &Registry{byNetwork: byNetwork, dial: dial}
}

// Resolve returns the driver of networkID. The connection is opened per call.
func (r *Registry) Resolve(networkID string) (Driver, error) {
	ep, ok := r.byNetwork[strings.ToLower(networkID)]
	if !ok {
		return nil, errs.Config("Driver not found for network %q", networkID)
	}
	return &remote{ep: ep, dial: r.dial}, nil
}

type remote struct {
	ep   Endpoint
	dial Dialer
}

func (d *remote) Execute(ctx context.Context, req dto.DriverRequest) error {
	conn, err := d.dial(ctx, d.ep.RelayEndpoint)
	if err != nil {
		return errors.Wrapf(err, "connect to driver %s at %s", d.ep.Name, d.ep.Address())
	}
	defer func() {
		if err := conn.Close(); err != nil {
			log.Warnf("failed to close connection to driver %s: %v", d.ep.Name, err)
		}
	}()

	log.WithFields(log.Fields{
		"driver":     d.ep.Name,
		"action":     req.Action.String(),
		"request_id": req.RequestID,
	}).Debug("invoking driver")

	return errors.Wrapf(conn.Execute(ctx, req), "driver %s failed to %s", d.ep.Name, req.Action)
}

// Static resolves drivers from a fixed network id to driver map.
type Static map[string]Driver

func (s Static) Resolve(networkID string) (Driver, error) {
	d, ok := s[networkID]
	if !ok {
		return nil, errs.Config("Driver not found for network %q", networkID)
	}
	return d, nil
}
