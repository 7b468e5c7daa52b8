package gateway

import (
	"github.com/vadiminshakov/satp/core/dto"
	"github.com/vadiminshakov/satp/io/store"
)

// ledger selects the network whose driver performs an action.
type ledger int

const (
	senderLedger ledger = iota
	recipientLedger
)

type driverStep struct {
	action dto.DriverAction
	ledger ledger
}

func (d driverStep) network(s dto.Session) string {
	if d.ledger == recipientLedger {
		return s.RecipientGatewayNetworkID
	}
	return s.SenderGatewayNetworkID
}

// stepRow describes how the gateway handles an inbound step.
type stepRow struct {
	// inbound is where the received message is persisted.
	inbound store.Kind
	// driver, if set, runs before the successor is sent.
	driver   *driverStep
	terminal bool
}

var steps = map[dto.Step]stepRow{
	dto.StepTransferProposalClaims:  {inbound: store.RemoteRequests},
	dto.StepTransferProposalReceipt: {inbound: store.LocalRequests},
	dto.StepTransferCommence:        {inbound: store.RemoteRequests},
	dto.StepAckCommence: {
		inbound: store.LocalRequests,
		driver:  &driverStep{action: dto.DriverActionLock, ledger: senderLedger},
	},
	dto.StepSendAssetStatus:      {inbound: store.LocalRequests},
	dto.StepLockAssertion:        {inbound: store.RemoteRequests},
	dto.StepLockAssertionReceipt: {inbound: store.LocalRequests},
	dto.StepCommitPrepare: {
		inbound: store.RemoteRequests,
		driver:  &driverStep{action: dto.DriverActionCreateAsset, ledger: recipientLedger},
	},
	dto.StepCommitReady: {
		inbound: store.LocalRequests,
		driver:  &driverStep{action: dto.DriverActionExtinguish, ledger: senderLedger},
	},
	dto.StepCommitFinalAssertion: {
		inbound: store.RemoteRequests,
		driver:  &driverStep{action: dto.DriverActionAssignAsset, ledger: recipientLedger},
	},
	dto.StepAckFinalReceipt:   {inbound: store.LocalRequests},
	dto.StepTransferCompleted: {inbound: store.RemoteRequests, terminal: true},
}
