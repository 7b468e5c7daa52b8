// Package dispatcher sends outbound SATP messages to peer gateways in the
// background and records the outcome of every send as a request state.
package dispatcher

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/vadiminshakov/satp/core/dto"
	"github.com/vadiminshakov/satp/core/errs"
	"github.com/vadiminshakov/satp/io/store"
	"golang.org/x/time/rate"
)

const (
	DefaultTimeout = 10 * time.Second

	// UnsupportedStatus is recorded when a peer answers with an unknown ack status.
	UnsupportedStatus = "Status is not supported or is invalid"
)

// Sender delivers a message to one peer.
type Sender interface {
	Send(ctx context.Context, msg dto.Message) (*dto.Ack, error)
	Close() error
}

// Dialer connects to the peer at ep, using TLS when ep asks for it.
type Dialer func(ctx context.Context, ep dto.RelayEndpoint) (Sender, error)

//go:generate mockgen -destination=../../mocks/mock_state_store.go -package=mocks . StateStore
type StateStore interface {
	SetState(kind store.Kind, state dto.RequestState) error
}

// Task is one outbound message.
type Task struct {
	RequestID string
	Message   dto.Message
	Endpoint  dto.RelayEndpoint
	// Prepare runs before the message is sent, e.g. a ledger driver action.
	// Its failure is recorded and the message is not sent.
	Prepare func(ctx context.Context) error
}

type Config struct {
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
	// RateLimit caps outbound sends per second, zero disables pacing.
	RateLimit float64
	Burst     int
}

type Dispatcher struct {
	dial    Dialer
	states  StateStore
	conf    Config
	limiter *rate.Limiter
	now     func() time.Time
	wg      sync.WaitGroup
}

func New(dial Dialer, states StateStore, conf Config) *Dispatcher {
	if conf.Timeout <= 0 {
		conf.Timeout = DefaultTimeout
	}
	if conf.MaxRetries < 0 {
		conf.MaxRetries = 0
	}

	d := &Dispatcher{dial: dial, states: states, conf: conf, now: time.Now}
	if conf.RateLimit > 0 {
		burst := conf.Burst
		if burst <= 0 {
			burst = 1
		}
		d.limiter = rate.NewLimiter(rate.Limit(conf.RateLimit), burst)
	}
	return d
}

// Dispatch sends the task in its own goroutine and returns immediately.
func (d *Dispatcher) Dispatch(task Task) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.run(task)
	}()
}

// Wait blocks until every dispatched task has recorded its state.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) run(task Task) {
	logger := log.WithFields(log.Fields{
		"request_id": task.RequestID,
		"step":       task.Message.Step().String(),
		"peer":       task.Endpoint.Address(),
	})

	if d.limiter != nil {
		if err := d.limiter.Wait(context.Background()); err != nil {
			d.record(logger, task, nil, errs.Dispatch(err, "rate limiter"))
			return
		}
	}

	if task.Prepare != nil {
		ctx, cancel := context.WithTimeout(context.Background(), d.conf.Timeout)
		err := task.Prepare(ctx)
		cancel()
		if err != nil {
			d.record(logger, task, nil, errs.Dispatch(err, "prepare %s", task.Message.Step()))
			return
		}
	}

	var (
		resp *dto.Ack
		err  error
	)
	for attempt := 0; attempt <= d.conf.MaxRetries; attempt++ {
		if attempt > 0 {
			logger.Warnf("retrying send (attempt %d/%d): %v", attempt, d.conf.MaxRetries, err)
			time.Sleep(d.conf.RetryBackoff)
		}
		resp, err = d.send(task)
		if err == nil {
			break
		}
	}

	d.record(logger, task, resp, err)
}

func (d *Dispatcher) send(task Task) (*dto.Ack, error) {
	ctx, cancel := context.WithTimeout(context.Background(), d.conf.Timeout)
	defer cancel()

	sender, err := d.dial(ctx, task.Endpoint)
	if err != nil {
		return nil, errs.Dispatch(err, "dial %s", task.Endpoint.Address())
	}
	defer func() {
		if err := sender.Close(); err != nil {
			log.Warnf("failed to close connection to %s: %v", task.Endpoint.Address(), err)
		}
	}()

	resp, err := sender.Send(ctx, task.Message)
	if err != nil {
		return nil, errs.Dispatch(err, "send %s to %s", task.Message.Step(), task.Endpoint.Address())
	}
	return resp, nil
}

// record writes the single request state of a dispatch.
func (d *Dispatcher) record(logger *log.Entry, task Task, resp *dto.Ack, err error) {
	state := dto.RequestState{
		RequestID: task.RequestID,
		Step:      task.Message.Step(),
		UpdatedAt: d.now(),
	}

	switch {
	case err != nil:
		logger.Errorf("dispatch failed: %v", err)
		state.Status = dto.RequestStatusError
		state.State = err.Error()
	case resp == nil || !resp.Status.Valid():
		logger.Error(UnsupportedStatus)
		state.Status = dto.RequestStatusError
		state.State = UnsupportedStatus
	case resp.Status == dto.AckStatusError:
		logger.Warnf("peer rejected message: %s", resp.Message)
		state.Status = dto.RequestStatusError
		state.State = resp.Message
	default:
		logger.Debugf("peer acknowledged message: %s", resp.Message)
		state.Status = dto.RequestStatusPending
	}

	if err := d.states.SetState(store.LocalRequestStates, state); err != nil {
		logger.Errorf("failed to record request state: %v", err)
	}
}
