// Package msgfactory builds the outbound SATP message of step N+1 from the
// inbound message of step N.
//
// Builders never mutate their input. Session and transfer context identifiers,
// participant keys, network ids and the asset id are carried forward
// unchanged; hash_prev_message chains every message to its predecessor.
package msgfactory

import (
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/pkg/errors"
	"github.com/vadiminshakov/satp/core/dto"
)

// ErrTerminalStep is returned when asked for the successor of TransferCompleted.
var ErrTerminalStep = errors.New("transfer completed is the terminal step")

// DefaultLockAssertionTTL is the validity of a lock assertion when none is configured.
const DefaultLockAssertionTTL = time.Hour

const assetStatusLocked = "LOCKED"

var messageTypes = map[dto.Step]string{
	dto.StepTransferProposalClaims:  "urn:ietf:satp:msgtype:proposal-msg",
	dto.StepTransferProposalReceipt: "urn:ietf:satp:msgtype:proposal-receipt-msg",
	dto.StepTransferCommence:        "urn:ietf:satp:msgtype:transfer-commence-msg",
	dto.StepAckCommence:             "urn:ietf:satp:msgtype:ack-commence-msg",
	dto.StepSendAssetStatus:         "urn:ietf:satp:msgtype:asset-status-msg",
	dto.StepLockAssertion:           "urn:ietf:satp:msgtype:lock-assert-msg",
	dto.StepLockAssertionReceipt:    "urn:ietf:satp:msgtype:assertion-receipt-msg",
	dto.StepCommitPrepare:           "urn:ietf:satp:msgtype:commit-prepare-msg",
	dto.StepCommitReady:             "urn:ietf:satp:msgtype:commit-ready-msg",
	dto.StepCommitFinalAssertion:    "urn:ietf:satp:msgtype:commit-final-msg",
	dto.StepAckFinalReceipt:         "urn:ietf:satp:msgtype:ack-commit-final-msg",
	dto.StepTransferCompleted:       "urn:ietf:satp:msgtype:commit-transfer-complete-msg",
}

// MessageType returns the SATP message type URN of a step.
func MessageType(step dto.Step) string {
	return messageTypes[step]
}

// Signer produces the opaque signature of a message from its digest.
type Signer interface {
	Sign(step dto.Step, digest string) (string, error)
}

// NopSigner leaves signatures empty.
type NopSigner struct{}

func (NopSigner) Sign(dto.Step, string) (string, error) {
	return "", nil
}

type Option func(*Factory)

// WithSigner sets the signer used for the client/server signature fields.
func WithSigner(s Signer) Option {
	return func(f *Factory) {
		f.signer = s
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(f *Factory) {
		f.now = now
	}
}

// WithIDGenerator overrides the generator of session and transfer context ids.
func WithIDGenerator(newID func() string) Option {
	return func(f *Factory) {
		f.newID = newID
	}
}

// WithLockAssertionTTL sets how long a lock assertion stays valid.
func WithLockAssertionTTL(ttl time.Duration) Option {
	return func(f *Factory) {
		if ttl > 0 {
			f.lockTTL = ttl
		}
	}
}

// Factory builds step messages.
type Factory struct {
	signer  Signer
	now     func() time.Time
	newID   func() string
	lockTTL time.Duration
}

func New(opts ...Option) *Factory {
	f := &Factory{
		signer:  NopSigner{},
		now:     time.Now,
		newID:   func() string { return ulid.Make().String() },
		lockTTL: DefaultLockAssertionTTL,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// NewProposalClaims builds the first message of a transfer initiated by this gateway.
func (f *Factory) NewProposalClaims(transfer dto.AssetTransfer) (*dto.TransferProposalClaims, error) {
	claims := transfer.Claims
	msg := &dto.TransferProposalClaims{
		Session: dto.Session{
			MessageType:               MessageType(dto.StepTransferProposalClaims),
			SessionID:                 f.newID(),
			TransferContextID:         f.newID(),
			ClientIdentityPubkey:      transfer.ClientIdentityPubkey,
			ServerIdentityPubkey:      transfer.ServerIdentityPubkey,
			SenderGatewayNetworkID:    claims.SenderGatewayNetworkID,
			RecipientGatewayNetworkID: claims.RecipientGatewayNetworkID,
			AssetID:                   claims.AssetAssetID,
			ClientTransferNumber:      1,
		},
		Claims: claims,
	}

	sig, err := f.sign(msg)
	if err != nil {
		return nil, err
	}
	msg.ClientSignature = sig
	return msg, nil
}

// Next builds the message that follows prev.
func (f *Factory) Next(prev dto.Message) (dto.Message, error) {
	switch m := prev.(type) {
	case *dto.TransferProposalClaims:
		return f.proposalReceipt(m)
	case *dto.TransferProposalReceipt:
		return f.transferCommence(m)
	case *dto.TransferCommence:
		return f.ackCommence(m)
	case *dto.AckCommence:
		return f.sendAssetStatus(m)
	case *dto.SendAssetStatus:
		return f.lockAssertion(m)
	case *dto.LockAssertion:
		return f.lockAssertionReceipt(m)
	case *dto.LockAssertionReceipt:
		return f.commitPrepare(m)
	case *dto.CommitPrepare:
		return f.commitReady(m)
	case *dto.CommitReady:
		return f.commitFinalAssertion(m)
	case *dto.CommitFinalAssertion:
		return f.ackFinalReceipt(m)
	case *dto.AckFinalReceipt:
		return f.transferCompleted(m)
	case *dto.TransferCompleted:
		return nil, ErrTerminalStep
	default:
		return nil, errors.Errorf("unsupported message type %T", prev)
	}
}

// chain derives the session of the next message: identifiers are copied,
// the previous message is hashed and the sender's transfer number advances.
func (f *Factory) chain(prev dto.Message, next dto.Step) (dto.Session, error) {
	hash, err := Digest(prev)
	if err != nil {
		return dto.Session{}, err
	}

	s := prev.GetSession()
	s.MessageType = MessageType(next)
	s.HashPrevMessage = hash
	if sentByClient(next) {
		s.ClientTransferNumber++
	} else {
		s.ServerTransferNumber++
	}
	return s, nil
}

// sentByClient reports whether the initiating gateway builds messages of step.
// SendAssetStatus travels server-to-client but the initiator sends it to itself.
func sentByClient(step dto.Step) bool {
	return step.Direction() == dto.ClientToServer || step == dto.StepSendAssetStatus
}

func (f *Factory) sign(msg dto.Message) (string, error) {
	digest, err := Digest(msg)
	if err != nil {
		return "", err
	}
	sig, err := f.signer.Sign(msg.Step(), digest)
	if err != nil {
		return "", errors.Wrapf(err, "failed to sign %s", msg.Step())
	}
	return sig, nil
}

func (f *Factory) proposalReceipt(prev *dto.TransferProposalClaims) (dto.Message, error) {
	s, err := f.chain(prev, dto.StepTransferProposalReceipt)
	if err != nil {
		return nil, err
	}
	if s.SessionID == "" {
		s.SessionID = f.newID()
	}
	if s.TransferContextID == "" {
		s.TransferContextID = f.newID()
	}

	msg := &dto.TransferProposalReceipt{Session: s, Claims: prev.Claims, Timestamp: f.now().Unix()}
	if msg.ServerSignature, err = f.sign(msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (f *Factory) transferCommence(prev *dto.TransferProposalReceipt) (dto.Message, error) {
	s, err := f.chain(prev, dto.StepTransferCommence)
	if err != nil {
		return nil, err
	}
	if s.HashTransferInitClaims, err = Digest(prev.Claims); err != nil {
		return nil, err
	}

	msg := &dto.TransferCommence{Session: s}
	if msg.ClientSignature, err = f.sign(msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (f *Factory) ackCommence(prev *dto.TransferCommence) (dto.Message, error) {
	s, err := f.chain(prev, dto.StepAckCommence)
	if err != nil {
		return nil, err
	}

	msg := &dto.AckCommence{Session: s}
	if msg.ServerSignature, err = f.sign(msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (f *Factory) sendAssetStatus(prev *dto.AckCommence) (dto.Message, error) {
	s, err := f.chain(prev, dto.StepSendAssetStatus)
	if err != nil {
		return nil, err
	}

	msg := &dto.SendAssetStatus{Session: s, Status: assetStatusLocked}
	if msg.ServerSignature, err = f.sign(msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (f *Factory) lockAssertion(prev *dto.SendAssetStatus) (dto.Message, error) {
	s, err := f.chain(prev, dto.StepLockAssertion)
	if err != nil {
		return nil, err
	}

	msg := &dto.LockAssertion{
		Session:                  s,
		LockAssertionClaim:       s.HashPrevMessage,
		LockAssertionClaimFormat: DigestFormat,
		LockAssertionExpiration:  f.now().Add(f.lockTTL).Unix(),
	}
	if msg.ClientSignature, err = f.sign(msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (f *Factory) lockAssertionReceipt(prev *dto.LockAssertion) (dto.Message, error) {
	s, err := f.chain(prev, dto.StepLockAssertionReceipt)
	if err != nil {
		return nil, err
	}

	msg := &dto.LockAssertionReceipt{Session: s}
	if msg.ServerSignature, err = f.sign(msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (f *Factory) commitPrepare(prev *dto.LockAssertionReceipt) (dto.Message, error) {
	s, err := f.chain(prev, dto.StepCommitPrepare)
	if err != nil {
		return nil, err
	}

	msg := &dto.CommitPrepare{Session: s}
	if msg.ClientSignature, err = f.sign(msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (f *Factory) commitReady(prev *dto.CommitPrepare) (dto.Message, error) {
	s, err := f.chain(prev, dto.StepCommitReady)
	if err != nil {
		return nil, err
	}

	msg := &dto.CommitReady{
		Session:                   s,
		MintAssertionClaims:       s.HashPrevMessage,
		MintAssertionClaimsFormat: DigestFormat,
	}
	if msg.ServerSignature, err = f.sign(msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (f *Factory) commitFinalAssertion(prev *dto.CommitReady) (dto.Message, error) {
	s, err := f.chain(prev, dto.StepCommitFinalAssertion)
	if err != nil {
		return nil, err
	}

	msg := &dto.CommitFinalAssertion{
		Session:                  s,
		BurnAssertionClaim:       s.HashPrevMessage,
		BurnAssertionClaimFormat: DigestFormat,
	}
	if msg.ClientSignature, err = f.sign(msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (f *Factory) ackFinalReceipt(prev *dto.CommitFinalAssertion) (dto.Message, error) {
	s, err := f.chain(prev, dto.StepAckFinalReceipt)
	if err != nil {
		return nil, err
	}

	msg := &dto.AckFinalReceipt{
		Session:                        s,
		AssignmentAssertionClaim:       s.HashPrevMessage,
		AssignmentAssertionClaimFormat: DigestFormat,
	}
	if msg.ServerSignature, err = f.sign(msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (f *Factory) transferCompleted(prev *dto.AckFinalReceipt) (dto.Message, error) {
	s, err := f.chain(prev, dto.StepTransferCompleted)
	if err != nil {
		return nil, err
	}

	msg := &dto.TransferCompleted{Session: s}
	if msg.ClientSignature, err = f.sign(msg); err != nil {
		return nil, err
	}
	return msg, nil
}
