package dto

import "fmt"

// Step identifies one message of the SATP handshake. Steps are ordered.
type Step int32

const (
	StepTransferProposalClaims Step = iota
	StepTransferProposalReceipt
	StepTransferCommence
	StepAckCommence
	StepSendAssetStatus
	StepLockAssertion
	StepLockAssertionReceipt
	StepCommitPrepare
	StepCommitReady
	StepCommitFinalAssertion
	StepAckFinalReceipt
	StepTransferCompleted
)

var stepNames = [...]string{
	"TransferProposalClaims",
	"TransferProposalReceipt",
	"TransferCommence",
	"AckCommence",
	"SendAssetStatus",
	"LockAssertion",
	"LockAssertionReceipt",
	"CommitPrepare",
	"CommitReady",
	"CommitFinalAssertion",
	"AckFinalReceipt",
	"TransferCompleted",
}

// Steps lists every step in protocol order.
func Steps() []Step {
	steps := make([]Step, 0, len(stepNames))
	for i := range stepNames {
		steps = append(steps, Step(i))
	}
	return steps
}

// String returns the RPC method name of the step.
func (s Step) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Step(%d)", int32(s))
	}
	return stepNames[s]
}

func (s Step) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

// Valid reports whether s is a known step.
func (s Step) Valid() bool {
	return s >= StepTransferProposalClaims && s <= StepTransferCompleted
}

// Terminal reports whether s ends the handshake.
func (s Step) Terminal() bool {
	return s == StepTransferCompleted
}

// Next returns the step that follows s. The second value is false for the
// terminal step and for unknown steps.
func (s Step) Next() (Step, bool) {
	if !s.Valid() || s.Terminal() {
		return s, false
	}
	return s + 1, true
}

// Direction tells which side of the session sends a message.
type Direction int

const (
	// ClientToServer messages are sent by the gateway that initiated the transfer.
	ClientToServer Direction = iota
	// ServerToClient messages travel back to the initiating gateway.
	ServerToClient
)

func (d Direction) String() string {
	if d == ServerToClient {
		return "server-to-client"
	}
	return "client-to-server"
}

// Direction returns the side that sends a message of step s.
// SendAssetStatus is reported by the initiator's own driver, so it arrives at the client side.
func (s Step) Direction() Direction {
	switch s {
	case StepTransferProposalReceipt,
		StepAckCommence,
		StepSendAssetStatus,
		StepLockAssertionReceipt,
		StepCommitReady,
		StepAckFinalReceipt:
		return ServerToClient
	default:
		return ClientToServer
	}
}
