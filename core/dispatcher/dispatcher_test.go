package dispatcher_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/satp/core/dispatcher"
	"github.com/vadiminshakov/satp/core/dto"
	"github.com/vadiminshakov/satp/io/store"
	"github.com/vadiminshakov/satp/mocks"
	"go.uber.org/mock/gomock"
)

type recordedState struct {
	kind  store.Kind
	state dto.RequestState
}

type stateRecorder struct {
	mu     sync.Mutex
	writes []recordedState
}

func (r *stateRecorder) SetState(kind store.Kind, state dto.RequestState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes = append(r.writes, recordedState{kind: kind, state: state})
	return nil
}

func (r *stateRecorder) only(t *testing.T) dto.RequestState {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.Len(t, r.writes, 1)
	require.Equal(t, store.LocalRequestStates, r.writes[0].kind)
	return r.writes[0].state
}

type fakeSender struct {
	ack    *dto.Ack
	err    error
	sent   []dto.Message
	closed bool
}

func (s *fakeSender) Send(_ context.Context, msg dto.Message) (*dto.Ack, error) {
	s.sent = append(s.sent, msg)
	return s.ack, s.err
}

func (s *fakeSender) Close() error {
	s.closed = true
	return nil
}

func dialTo(s dispatcher.Sender) dispatcher.Dialer {
	return func(context.Context, dto.RelayEndpoint) (dispatcher.Sender, error) {
		return s, nil
	}
}

func task() dispatcher.Task {
	return dispatcher.Task{
		RequestID: "session-1",
		Message:   &dto.TransferCommence{Session: dto.Session{SessionID: "session-1"}},
		Endpoint:  dto.RelayEndpoint{Hostname: "localhost", Port: "9085"},
	}
}

func TestDispatch_AckOK(t *testing.T) {
	states := &stateRecorder{}
	sender := &fakeSender{ack: &dto.Ack{Status: dto.AckStatusOK, RequestID: "session-1"}}
	d := dispatcher.New(dialTo(sender), states, dispatcher.Config{})

	d.Dispatch(task())
	d.Wait()

	state := states.only(t)
	require.Equal(t, "session-1", state.RequestID)
	require.Equal(t, dto.RequestStatusPending, state.Status)
	require.Equal(t, dto.StepTransferCommence, state.Step)
	require.Len(t, sender.sent, 1)
	require.True(t, sender.closed)
}

func TestDispatch_PeerError(t *testing.T) {
	states := &stateRecorder{}
	sender := &fakeSender{ack: &dto.Ack{Status: dto.AckStatusError, Message: "X"}}
	d := dispatcher.New(dialTo(sender), states, dispatcher.Config{MaxRetries: 3})

	d.Dispatch(task())
	d.Wait()

	state := states.only(t)
	require.Equal(t, dto.RequestStatusError, state.Status)
	require.Equal(t, "X", state.State)
	// a rejection is not retried
	require.Len(t, sender.sent, 1)
}

func TestDispatch_UnknownStatus(t *testing.T) {
	states := &stateRecorder{}
	sender := &fakeSender{ack: &dto.Ack{Status: dto.AckStatus(7)}}
	d := dispatcher.New(dialTo(sender), states, dispatcher.Config{})

	d.Dispatch(task())
	d.Wait()

	state := states.only(t)
	require.Equal(t, dto.RequestStatusError, state.Status)
	require.Contains(t, state.State, "not supported or is invalid")
}

func TestDispatch_TransportError(t *testing.T) {
	states := &stateRecorder{}
	sender := &fakeSender{err: errors.New("connection refused")}
	d := dispatcher.New(dialTo(sender), states, dispatcher.Config{})

	d.Dispatch(task())
	d.Wait()

	state := states.only(t)
	require.Equal(t, dto.RequestStatusError, state.Status)
	require.Contains(t, state.State, "connection refused")
}

func TestDispatch_DialError(t *testing.T) {
	states := &stateRecorder{}
	dial := func(context.Context, dto.RelayEndpoint) (dispatcher.Sender, error) {
		return nil, errors.New("x509: certificate signed by unknown authority")
	}
	d := dispatcher.New(dial, states, dispatcher.Config{})

	d.Dispatch(task())
	d.Wait()

	state := states.only(t)
	require.Equal(t, dto.RequestStatusError, state.Status)
	require.Contains(t, state.State, "unknown authority")
}

func TestDispatch_RetriesTransportFailures(t *testing.T) {
	states := &stateRecorder{}
	var attempts int
	dial := func(context.Context, dto.RelayEndpoint) (dispatcher.Sender, error) {
		attempts++
		if attempts < 3 {
			return nil, errors.New("connection refused")
		}
		return &fakeSender{ack: &dto.Ack{Status: dto.AckStatusOK}}, nil
	}
	d := dispatcher.New(dial, states, dispatcher.Config{MaxRetries: 2, RetryBackoff: time.Millisecond})

	d.Dispatch(task())
	d.Wait()

	require.Equal(t, 3, attempts)
	require.Equal(t, dto.RequestStatusPending, states.only(t).Status)
}

func TestDispatch_RetriesExhausted(t *testing.T) {
	states := &stateRecorder{}
	sender := &fakeSender{err: errors.New("unavailable")}
	d := dispatcher.New(dialTo(sender), states, dispatcher.Config{MaxRetries: 2, RetryBackoff: time.Millisecond})

	d.Dispatch(task())
	d.Wait()

	require.Len(t, sender.sent, 3)
	require.Equal(t, dto.RequestStatusError, states.only(t).Status)
}

func TestDispatch_PrepareFailure(t *testing.T) {
	states := &stateRecorder{}
	sender := &fakeSender{ack: &dto.Ack{Status: dto.AckStatusOK}}
	d := dispatcher.New(dialTo(sender), states, dispatcher.Config{})

	tk := task()
	tk.Prepare = func(context.Context) error { return errors.New("asset is already locked") }
	d.Dispatch(tk)
	d.Wait()

	state := states.only(t)
	require.Equal(t, dto.RequestStatusError, state.Status)
	require.Contains(t, state.State, "asset is already locked")
	require.Empty(t, sender.sent)
}

func TestDispatch_PrepareRunsBeforeSend(t *testing.T) {
	states := &stateRecorder{}
	sender := &fakeSender{ack: &dto.Ack{Status: dto.AckStatusOK}}
	d := dispatcher.New(dialTo(sender), states, dispatcher.Config{})

	sentBeforePrepare := -1
	tk := task()
	tk.Prepare = func(context.Context) error {
		sentBeforePrepare = len(sender.sent)
		return nil
	}
	d.Dispatch(tk)
	d.Wait()

	require.Equal(t, 0, sentBeforePrepare)
	require.Len(t, sender.sent, 1)
}

func TestDispatch_ExactlyOneStateWrite(t *testing.T) {
	ctrl := gomock.NewController(t)
	states := mocks.NewMockStateStore(ctrl)
	states.EXPECT().
		SetState(store.LocalRequestStates, gomock.Any()).
		Return(nil).
		Times(5)

	dial := func(context.Context, dto.RelayEndpoint) (dispatcher.Sender, error) {
		return &fakeSender{err: errors.New("unavailable")}, nil
	}
	d := dispatcher.New(dial, states, dispatcher.Config{MaxRetries: 1, RetryBackoff: time.Millisecond, RateLimit: 1000, Burst: 5})

	for i := 0; i < 5; i++ {
		d.Dispatch(task())
	}
	d.Wait()
}
