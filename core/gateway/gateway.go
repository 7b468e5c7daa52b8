// Package gateway implements the SATP protocol orchestrator.
//
// For every inbound step the gateway persists the message, validates it,
// builds the successor through the message factory and hands it to the
// dispatcher together with the ledger driver action the step requires.
// The acknowledgment only reports the local hop.
package gateway

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/vadiminshakov/satp/core/ack"
	"github.com/vadiminshakov/satp/core/dispatcher"
	"github.com/vadiminshakov/satp/core/driver"
	"github.com/vadiminshakov/satp/core/dto"
	"github.com/vadiminshakov/satp/core/errs"
	"github.com/vadiminshakov/satp/core/gateway/hooks"
	"github.com/vadiminshakov/satp/core/msgfactory"
	"github.com/vadiminshakov/satp/core/relay"
	"github.com/vadiminshakov/satp/io/store"
)

//go:generate mockgen -destination=../../mocks/mock_request_store.go -package=mocks . RequestStore
type RequestStore interface {
	Set(kind store.Kind, key string, value any) error
	State(kind store.Kind, requestID string) (dto.RequestState, error)
	History(requestID string) ([]dto.RequestState, error)
}

//go:generate mockgen -destination=../../mocks/mock_dispatcher.go -package=mocks . Dispatcher
type Dispatcher interface {
	Dispatch(task dispatcher.Task)
}

type DriverResolver interface {
	Resolve(networkID string) (driver.Driver, error)
}

type Option func(*Gateway)

func WithFactory(f *msgfactory.Factory) Option {
	return func(g *Gateway) {
		g.factory = f
	}
}

func WithDrivers(d DriverResolver) Option {
	return func(g *Gateway) {
		g.drivers = d
	}
}

func WithHooks(r *hooks.Registry) Option {
	return func(g *Gateway) {
		g.hooks = r
	}
}

// Gateway is the protocol orchestrator of one gateway.
type Gateway struct {
	store      RequestStore
	dispatcher Dispatcher
	resolver   relay.Resolver
	directory  *relay.Directory
	factory    *msgfactory.Factory
	drivers    DriverResolver
	hooks      *hooks.Registry
}

func New(st RequestStore, d Dispatcher, resolver relay.Resolver, directory *relay.Directory, opts ...Option) *Gateway {
	g := &Gateway{
		store:      st,
		dispatcher: d,
		resolver:   resolver,
		directory:  directory,
		factory:    msgfactory.New(),
		drivers:    driver.Static{},
	}
	for _, opt := range opts {
		opt(g)
	}

	if g.hooks == nil {
		g.hooks = hooks.NewRegistry()
		g.hooks.Register(hooks.NewDefaultHook())
	}
	if g.directory == nil {
		g.directory = relay.NewDirectory(nil)
	}

	return g
}

// Handle processes one inbound step message and returns the hop acknowledgment.
func (g *Gateway) Handle(ctx context.Context, msg dto.Message) *dto.Ack {
	step := msg.Step()
	requestID := msgfactory.RequestID(msg)

	row, ok := steps[step]
	if !ok {
		return ack.Error(requestID, "Unsupported step", errs.Validation("unknown step %d", step))
	}

	logger := log.WithFields(log.Fields{"request_id": requestID, "step": step.String()})
	logger.Debug("received step")

	if requestID == "" {
		return ack.Invalid(requestID, step)
	}

	if err := g.store.Set(row.inbound, requestID, msg); err != nil {
		return ack.Error(requestID, fmt.Sprintf("Error storing %s in %s satp_db for request_id", step, row.inbound), err)
	}

	if row.terminal {
		logger.Infof("transfer of asset %s completed", msg.GetSession().AssetID)
		return ack.Accepted(requestID, step)
	}

	if !g.hooks.Execute(msg) {
		return ack.Invalid(requestID, step)
	}

	next, err := g.factory.Next(msg)
	if err != nil {
		return ack.Error(requestID, fmt.Sprintf("Error building the successor of %s for request_id", step), err)
	}
	if err := checkTransition(step, next.Step()); err != nil {
		return ack.Error(requestID, fmt.Sprintf("Error building the successor of %s for request_id", step), err)
	}

	task, err := g.task(next)
	if err != nil {
		return ack.Error(requestID, fmt.Sprintf("Error routing %s for request_id", next.Step()), err)
	}

	if row.driver != nil {
		prepare, err := g.driverAction(*row.driver, requestID, msg.GetSession())
		if err != nil {
			return ack.Error(requestID, fmt.Sprintf("Error resolving %s driver for request_id", row.driver.action), err)
		}
		task.Prepare = prepare
	}

	g.dispatcher.Dispatch(task)
	logger.WithField("peer", task.Endpoint.Address()).Debugf("dispatched %s", next.Step())

	return ack.Accepted(requestID, step)
}

// InitiateTransfer starts a transfer: the proposal claims are built,
// recorded locally and sent to the recipient gateway.
func (g *Gateway) InitiateTransfer(ctx context.Context, transfer dto.AssetTransfer) *dto.Ack {
	claims, err := g.factory.NewProposalClaims(transfer)
	if err != nil {
		return ack.Error("", "Error building TransferProposalClaims", err)
	}
	requestID := msgfactory.RequestID(claims)

	if err := g.store.Set(store.LocalRequests, requestID, claims); err != nil {
		return ack.Error(requestID, fmt.Sprintf("Error storing %s in %s satp_db for request_id", claims.Step(), store.LocalRequests), err)
	}

	task, err := g.task(claims)
	if err != nil {
		return ack.Error(requestID, fmt.Sprintf("Error routing %s for request_id", claims.Step()), err)
	}
	g.dispatcher.Dispatch(task)

	log.WithFields(log.Fields{
		"request_id": requestID,
		"session_id": claims.SessionID,
		"asset_id":   claims.AssetID,
	}).Info("transfer initiated")

	return ack.OK(requestID, fmt.Sprintf("Transfer initiated with session %s", claims.SessionID))
}

// RequestState returns the last recorded state of a request.
func (g *Gateway) RequestState(requestID string, remote bool) (dto.RequestState, error) {
	kind := store.LocalRequestStates
	if remote {
		kind = store.RemoteRequestStates
	}
	return g.store.State(kind, requestID)
}

// StateHistory returns every state recorded for a request, oldest first.
func (g *Gateway) StateHistory(requestID string) ([]dto.RequestState, error) {
	return g.store.History(requestID)
}

// Report answers an out-of-band state query.
func (g *Gateway) Report(query dto.StateQuery) (*dto.StateReport, error) {
	state, err := g.RequestState(query.RequestID, query.Remote)
	if err != nil {
		return nil, err
	}

	report := &dto.StateReport{Current: &state}
	if query.History {
		if report.History, err = g.StateHistory(query.RequestID); err != nil {
			return nil, err
		}
	}
	return report, nil
}

func (g *Gateway) task(msg dto.Message) (dispatcher.Task, error) {
	host, port, err := g.resolver.Resolve(msg)
	if err != nil {
		return dispatcher.Task{}, err
	}

	return dispatcher.Task{
		RequestID: msgfactory.RequestID(msg),
		Message:   msg,
		Endpoint:  g.directory.Lookup(host, port),
	}, nil
}

func (g *Gateway) driverAction(ds driverStep, requestID string, s dto.Session) (func(context.Context) error, error) {
	network := ds.network(s)
	d, err := g.drivers.Resolve(network)
	if err != nil {
		return nil, err
	}

	req := dto.DriverRequest{
		Action:    ds.action,
		RequestID: requestID,
		SessionID: s.SessionID,
		NetworkID: network,
		AssetID:   s.AssetID,
	}
	return func(ctx context.Context) error {
		return d.Execute(ctx, req)
	}, nil
}
