package dto

// Message is implemented by every SATP step message.
type Message interface {
	Step() Step
	GetSession() Session
}

// Session carries the identifiers and chain state shared by every message of one handshake.
type Session struct {
	MessageType               string `msgpack:"message_type"`
	SessionID                 string `msgpack:"session_id"`
	TransferContextID         string `msgpack:"transfer_context_id"`
	ClientIdentityPubkey      string `msgpack:"client_identity_pubkey"`
	ServerIdentityPubkey      string `msgpack:"server_identity_pubkey"`
	SenderGatewayNetworkID    string `msgpack:"sender_gateway_network_id"`
	RecipientGatewayNetworkID string `msgpack:"recipient_gateway_network_id"`
	AssetID                   string `msgpack:"asset_id"`
	HashTransferInitClaims    string `msgpack:"hash_transfer_init_claims,omitempty"`
	HashPrevMessage           string `msgpack:"hash_prev_message,omitempty"`
	ClientTransferNumber      uint64 `msgpack:"client_transfer_number"`
	ServerTransferNumber      uint64 `msgpack:"server_transfer_number"`
}

// GetSession returns a copy of the session part of a message.
func (s Session) GetSession() Session {
	return s
}

// TransferClaims describes the asset and the parties of a proposed transfer.
type TransferClaims struct {
	AssetAssetID                string `msgpack:"asset_asset_id"`
	AssetProfileID              string `msgpack:"asset_profile_id"`
	VerifiedOriginatorEntityID  string `msgpack:"verified_originator_entity_id"`
	VerifiedBeneficiaryEntityID string `msgpack:"verified_beneficiary_entity_id"`
	OriginatorPubkey            string `msgpack:"originator_pubkey"`
	BeneficiaryPubkey           string `msgpack:"beneficiary_pubkey"`
	SenderGatewayNetworkID      string `msgpack:"sender_gateway_network_id"`
	RecipientGatewayNetworkID   string `msgpack:"recipient_gateway_network_id"`
	SenderGatewayOwnerID        string `msgpack:"sender_gateway_owner_id"`
	ReceiverGatewayOwnerID      string `msgpack:"receiver_gateway_owner_id"`
}

type TransferProposalClaims struct {
	Session
	Claims          TransferClaims `msgpack:"claims"`
	ClientSignature string         `msgpack:"client_signature"`
}

func (*TransferProposalClaims) Step() Step { return StepTransferProposalClaims }

type TransferProposalReceipt struct {
	Session
	Claims          TransferClaims `msgpack:"claims"`
	Timestamp       int64          `msgpack:"timestamp"`
	ServerSignature string         `msgpack:"server_signature"`
}

func (*TransferProposalReceipt) Step() Step { return StepTransferProposalReceipt }

type TransferCommence struct {
	Session
	ClientSignature string `msgpack:"client_signature"`
}

func (*TransferCommence) Step() Step { return StepTransferCommence }

type AckCommence struct {
	Session
	ServerSignature string `msgpack:"server_signature"`
}

func (*AckCommence) Step() Step { return StepAckCommence }

// SendAssetStatus is reported to the initiating gateway once its driver has locked the asset.
type SendAssetStatus struct {
	Session
	Status          string `msgpack:"status"`
	ServerSignature string `msgpack:"server_signature"`
}

func (*SendAssetStatus) Step() Step { return StepSendAssetStatus }

type LockAssertion struct {
	Session
	LockAssertionClaim       string `msgpack:"lock_assertion_claim"`
	LockAssertionClaimFormat string `msgpack:"lock_assertion_claim_format"`
	// LockAssertionExpiration is a unix timestamp in seconds.
	LockAssertionExpiration int64  `msgpack:"lock_assertion_expiration"`
	ClientSignature         string `msgpack:"client_signature"`
}

func (*LockAssertion) Step() Step { return StepLockAssertion }

type LockAssertionReceipt struct {
	Session
	ServerSignature string `msgpack:"server_signature"`
}

func (*LockAssertionReceipt) Step() Step { return StepLockAssertionReceipt }

type CommitPrepare struct {
	Session
	ClientSignature string `msgpack:"client_signature"`
}

func (*CommitPrepare) Step() Step { return StepCommitPrepare }

type CommitReady struct {
	Session
	MintAssertionClaims       string `msgpack:"mint_assertion_claims"`
	MintAssertionClaimsFormat string `msgpack:"mint_assertion_claims_format"`
	ServerSignature           string `msgpack:"server_signature"`
}

func (*CommitReady) Step() Step { return StepCommitReady }

type CommitFinalAssertion struct {
	Session
	BurnAssertionClaim       string `msgpack:"burn_assertion_claim"`
	BurnAssertionClaimFormat string `msgpack:"burn_assertion_claim_format"`
	ClientSignature          string `msgpack:"client_signature"`
}

func (*CommitFinalAssertion) Step() Step { return StepCommitFinalAssertion }

type AckFinalReceipt struct {
	Session
	AssignmentAssertionClaim       string `msgpack:"assignment_assertion_claim"`
	AssignmentAssertionClaimFormat string `msgpack:"assignment_assertion_claim_format"`
	ServerSignature                string `msgpack:"server_signature"`
}

func (*AckFinalReceipt) Step() Step { return StepAckFinalReceipt }

type TransferCompleted struct {
	Session
	ClientSignature string `msgpack:"client_signature"`
}

func (*TransferCompleted) Step() Step { return StepTransferCompleted }

// NewMessage returns an empty message of the given step, ready to be decoded into.
func NewMessage(step Step) (Message, bool) {
	switch step {
	case StepTransferProposalClaims:
		return &TransferProposalClaims{}, true
	case StepTransferProposalReceipt:
		return &TransferProposalReceipt{}, true
	case StepTransferCommence:
		return &TransferCommence{}, true
	case StepAckCommence:
		return &AckCommence{}, true
	case StepSendAssetStatus:
		return &SendAssetStatus{}, true
	case StepLockAssertion:
		return &LockAssertion{}, true
	case StepLockAssertionReceipt:
		return &LockAssertionReceipt{}, true
	case StepCommitPrepare:
		return &CommitPrepare{}, true
	case StepCommitReady:
		return &CommitReady{}, true
	case StepCommitFinalAssertion:
		return &CommitFinalAssertion{}, true
	case StepAckFinalReceipt:
		return &AckFinalReceipt{}, true
	case StepTransferCompleted:
		return &TransferCompleted{}, true
	default:
		return nil, false
	}
}
