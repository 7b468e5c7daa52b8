package msgfactory

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/satp/core/dto"
)

func testTransfer() dto.AssetTransfer {
	return dto.AssetTransfer{
		Claims: dto.TransferClaims{
			AssetAssetID:                "asset-1",
			AssetProfileID:              "bond",
			VerifiedOriginatorEntityID:  "alice",
			VerifiedBeneficiaryEntityID: "bob",
			OriginatorPubkey:            "alice-pk",
			BeneficiaryPubkey:           "bob-pk",
			SenderGatewayNetworkID:      "network1",
			RecipientGatewayNetworkID:   "network2",
			SenderGatewayOwnerID:        "org1",
			ReceiverGatewayOwnerID:      "org2",
		},
		ClientIdentityPubkey: "client-pk",
		ServerIdentityPubkey: "server-pk",
	}
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

type recordingSigner struct {
	steps []dto.Step
}

func (r *recordingSigner) Sign(step dto.Step, digest string) (string, error) {
	r.steps = append(r.steps, step)
	return "sig:" + digest[:8], nil
}

func TestNewProposalClaims(t *testing.T) {
	f := New(WithIDGenerator(sequentialIDs()))

	claims, err := f.NewProposalClaims(testTransfer())
	require.NoError(t, err)
	require.Equal(t, "id-1", claims.SessionID)
	require.Equal(t, "id-2", claims.TransferContextID)
	require.Equal(t, "network1", claims.SenderGatewayNetworkID)
	require.Equal(t, "network2", claims.RecipientGatewayNetworkID)
	require.Equal(t, "asset-1", claims.AssetID)
	require.Equal(t, uint64(1), claims.ClientTransferNumber)
	require.Equal(t, MessageType(dto.StepTransferProposalClaims), claims.MessageType)
}

func TestNext_PreservesIdentifiersAcrossAllTransitions(t *testing.T) {
	f := New()
	first, err := f.NewProposalClaims(testTransfer())
	require.NoError(t, err)

	var msg dto.Message = first
	transitions := 0
	for !msg.Step().Terminal() {
		next, err := f.Next(msg)
		require.NoError(t, err)

		wantStep, ok := msg.Step().Next()
		require.True(t, ok)
		require.Equal(t, wantStep, next.Step(), "factory must produce the immediate successor")

		prev, cur := msg.GetSession(), next.GetSession()
		require.Equal(t, prev.SessionID, cur.SessionID, "session id changed on %s", next.Step())
		require.Equal(t, prev.TransferContextID, cur.TransferContextID, "transfer context id changed on %s", next.Step())
		require.Equal(t, prev.ClientIdentityPubkey, cur.ClientIdentityPubkey)
		require.Equal(t, prev.ServerIdentityPubkey, cur.ServerIdentityPubkey)

		hash, err := Digest(msg)
		require.NoError(t, err)
		require.Equal(t, hash, cur.HashPrevMessage, "broken hash chain on %s", next.Step())

		msg = next
		transitions++
	}

	require.Equal(t, 11, transitions)
}

func TestNext_TransferNumbersGrowPerDirection(t *testing.T) {
	f := New()
	first, err := f.NewProposalClaims(testTransfer())
	require.NoError(t, err)

	var msg dto.Message = first
	for !msg.Step().Terminal() {
		next, err := f.Next(msg)
		require.NoError(t, err)

		prev, cur := msg.GetSession(), next.GetSession()
		if sentByClient(next.Step()) {
			require.Equal(t, prev.ClientTransferNumber+1, cur.ClientTransferNumber)
			require.Equal(t, prev.ServerTransferNumber, cur.ServerTransferNumber)
		} else {
			require.Equal(t, prev.ServerTransferNumber+1, cur.ServerTransferNumber)
			require.Equal(t, prev.ClientTransferNumber, cur.ClientTransferNumber)
		}
		msg = next
	}
}

func TestNext_SendAssetStatusCountsAsClient(t *testing.T) {
	prev := &dto.AckCommence{Session: dto.Session{SessionID: "s1", ClientTransferNumber: 2, ServerTransferNumber: 2}}

	next, err := New().Next(prev)
	require.NoError(t, err)
	require.Equal(t, dto.StepSendAssetStatus, next.Step())
	require.Equal(t, uint64(3), next.GetSession().ClientTransferNumber)
	require.Equal(t, uint64(2), next.GetSession().ServerTransferNumber)
}

func TestNext_ReceiptGeneratesSessionWhenMissing(t *testing.T) {
	f := New(WithIDGenerator(sequentialIDs()))

	claims := &dto.TransferProposalClaims{Claims: testTransfer().Claims}
	next, err := f.Next(claims)
	require.NoError(t, err)

	receipt, ok := next.(*dto.TransferProposalReceipt)
	require.True(t, ok)
	require.Equal(t, "id-1", receipt.SessionID)
	require.Equal(t, "id-2", receipt.TransferContextID)
	require.Equal(t, claims.Claims, receipt.Claims)
}

func TestNext_DoesNotMutateInput(t *testing.T) {
	f := New()
	prev := &dto.TransferCommence{Session: dto.Session{SessionID: "s1", ClientTransferNumber: 2}}
	before := *prev

	_, err := f.Next(prev)
	require.NoError(t, err)
	require.Equal(t, before, *prev)
}

func TestNext_Terminal(t *testing.T) {
	_, err := New().Next(&dto.TransferCompleted{})
	require.ErrorIs(t, err, ErrTerminalStep)
}

func TestNext_LockAssertionExpiry(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	f := New(WithClock(func() time.Time { return now }), WithLockAssertionTTL(30*time.Minute))

	next, err := f.Next(&dto.SendAssetStatus{Session: dto.Session{SessionID: "s1"}, Status: "LOCKED"})
	require.NoError(t, err)

	lock := next.(*dto.LockAssertion)
	require.Equal(t, now.Add(30*time.Minute).Unix(), lock.LockAssertionExpiration)
	require.Equal(t, DigestFormat, lock.LockAssertionClaimFormat)
	require.Equal(t, lock.HashPrevMessage, lock.LockAssertionClaim)
}

func TestNext_Signs(t *testing.T) {
	signer := &recordingSigner{}
	f := New(WithSigner(signer))

	next, err := f.Next(&dto.LockAssertionReceipt{Session: dto.Session{SessionID: "s1"}})
	require.NoError(t, err)

	prepare := next.(*dto.CommitPrepare)
	require.NotEmpty(t, prepare.ClientSignature)
	require.Equal(t, []dto.Step{dto.StepCommitPrepare}, signer.steps)
}

func TestRequestID(t *testing.T) {
	f := New()
	claims, err := f.NewProposalClaims(testTransfer())
	require.NoError(t, err)

	receipt, err := f.Next(claims)
	require.NoError(t, err)

	claimsID := RequestID(claims)
	require.Contains(t, claimsID, claimsRequestPrefix)
	require.Equal(t, claimsID, RequestID(receipt), "claims and receipt must correlate")

	commence, err := f.Next(receipt)
	require.NoError(t, err)
	require.Equal(t, claims.SessionID, RequestID(commence))
}
