package proto

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/satp/core/dto"
	"github.com/vmihailenco/msgpack/v5"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type receiver struct {
	got dto.Message
}

func (r *receiver) Receive(_ context.Context, msg dto.Message) (*dto.Ack, error) {
	r.got = msg
	return &dto.Ack{Status: dto.AckStatusOK, RequestID: msg.GetSession().SessionID}, nil
}

func decoderOf(t *testing.T, v any) func(interface{}) error {
	t.Helper()
	raw, err := msgpack.Marshal(v)
	require.NoError(t, err)
	return func(out interface{}) error {
		return msgpack.Unmarshal(raw, out)
	}
}

func TestSATPServiceDesc_MethodPerStep(t *testing.T) {
	require.Len(t, SATP_ServiceDesc.Methods, len(dto.Steps()))
	for i, step := range dto.Steps() {
		require.Equal(t, step.String(), SATP_ServiceDesc.Methods[i].MethodName)
	}
}

func TestSATPHandler_DecodesStepMessage(t *testing.T) {
	r := &receiver{}
	sent := &dto.LockAssertion{Session: dto.Session{SessionID: "s1"}, LockAssertionClaim: "claim"}

	out, err := satpHandler(dto.StepLockAssertion)(r, context.Background(), decoderOf(t, sent), nil)
	require.NoError(t, err)
	require.Equal(t, "s1", out.(*dto.Ack).RequestID)
	require.Equal(t, sent, r.got)
}

func TestSATPHandler_UnknownStep(t *testing.T) {
	r := &receiver{}

	_, err := satpHandler(dto.Step(99))(r, context.Background(), decoderOf(t, struct{}{}), nil)
	require.Equal(t, codes.Unimplemented, status.Code(err))
	require.Nil(t, r.got)
}
