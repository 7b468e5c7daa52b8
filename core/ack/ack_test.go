package ack

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/satp/core/dto"
)

func TestError(t *testing.T) {
	a := Error("req-1", "Error storing TransferCommence in remote satp_db for request_id", errors.New("io failure"))

	require.Equal(t, dto.AckStatusError, a.Status)
	require.Equal(t, "req-1", a.RequestID)
	require.Equal(t, "Error storing TransferCommence in remote satp_db for request_id io failure", a.Message)
}

func TestOKAndAccepted(t *testing.T) {
	a := OK("req-2", "fine")
	require.Equal(t, dto.AckStatusOK, a.Status)
	require.Equal(t, "fine", a.Message)

	a = Accepted("req-3", dto.StepLockAssertion)
	require.Equal(t, dto.AckStatusOK, a.Status)
	require.Equal(t, "Ack of the LockAssertion request", a.Message)
}

func TestInvalid(t *testing.T) {
	a := Invalid("req-4", dto.StepCommitReady)
	require.Equal(t, dto.AckStatusError, a.Status)
	require.Equal(t, "Error: The CommitReady request is invalid", a.Message)
}
