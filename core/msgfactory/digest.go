package msgfactory

import (
	"encoding/hex"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/satp/core/dto"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/crypto/blake2b"
)

// DigestFormat names the format of digest-based assertion claims.
const DigestFormat = "blake2b-256"

const claimsRequestPrefix = "claims-"

// Digest returns the hex encoded blake2b-256 hash of the canonical (msgpack)
// encoding of v.
func Digest(v any) (string, error) {
	raw, err := msgpack.Marshal(v)
	if err != nil {
		return "", errors.Wrap(err, "failed to encode message for hashing")
	}
	sum := blake2b.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

// RequestID returns the identifier a message is persisted and tracked under.
// Session-scoped steps use the session id. The proposal steps precede the
// session, so they use an id derived from the transfer claims they carry;
// claims and receipt of the same proposal share it.
func RequestID(msg dto.Message) string {
	switch m := msg.(type) {
	case *dto.TransferProposalClaims:
		return claimsRequestID(m.Claims)
	case *dto.TransferProposalReceipt:
		return claimsRequestID(m.Claims)
	default:
		return msg.GetSession().SessionID
	}
}

func claimsRequestID(claims dto.TransferClaims) string {
	digest, err := Digest(claims)
	if err != nil {
		// TransferClaims holds only strings, encoding cannot fail.
		return claimsRequestPrefix + "invalid"
	}
	return claimsRequestPrefix + digest[:32]
}
