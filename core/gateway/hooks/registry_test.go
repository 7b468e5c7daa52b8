package hooks

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/satp/core/dto"
)

type testHook struct {
	result bool
	called int
}

func (t *testHook) Validate(dto.Message) bool {
	t.called++
	return t.result
}

func TestRegistry_Register(t *testing.T) {
	registry := NewRegistry()
	require.Equal(t, 0, registry.Count())

	registry.Register(&testHook{})
	registry.RegisterFor(dto.StepLockAssertion, &testHook{})

	require.Equal(t, 2, registry.Count())
}

func TestRegistry_Execute(t *testing.T) {
	registry := NewRegistry()

	hook1 := &testHook{result: true}
	registry.Register(hook1)

	msg := &dto.TransferCommence{Session: dto.Session{SessionID: "s1"}}
	require.True(t, registry.Execute(msg))
	require.Equal(t, 1, hook1.called)

	registry.Register(&testHook{result: false})
	require.False(t, registry.Execute(msg), "expected failure when a hook returns false")
}

func TestRegistry_ExecutePerStep(t *testing.T) {
	registry := NewRegistry()
	lockHook := &testHook{result: false}
	registry.RegisterFor(dto.StepLockAssertion, lockHook)

	require.True(t, registry.Execute(&dto.TransferCommence{}))
	require.Equal(t, 0, lockHook.called)

	require.False(t, registry.Execute(&dto.LockAssertion{}))
	require.Equal(t, 1, lockHook.called)
}

func TestDefaultHooks(t *testing.T) {
	metrics := NewMetricsHook()
	registry := NewRegistry()
	registry.Register(NewDefaultHook())
	registry.Register(metrics)
	registry.Register(NewAuditHook("gateway-a"))

	require.True(t, registry.Execute(&dto.CommitPrepare{Session: dto.Session{SessionID: "s1"}}))
	require.True(t, registry.Execute(&dto.CommitPrepare{Session: dto.Session{SessionID: "s1"}}))
	require.Equal(t, uint64(2), metrics.Count(dto.StepCommitPrepare))
	require.Equal(t, uint64(0), metrics.Count(dto.StepCommitReady))
}

func TestSessionHook(t *testing.T) {
	h := NewSessionHook()

	require.True(t, h.Validate(&dto.TransferProposalClaims{}))
	require.False(t, h.Validate(&dto.TransferCommence{}))
	require.True(t, h.Validate(&dto.TransferCommence{Session: dto.Session{SessionID: "s1"}}))
}
