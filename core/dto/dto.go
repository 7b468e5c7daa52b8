// Package dto provides data transfer objects for gateway-to-gateway communication.
//
// This package defines the SATP step messages, the per-hop acknowledgment and
// the request-state records exchanged and persisted by the protocol engine.
package dto

import "time"

// AckStatus represents the per-hop result signalled back to a caller.
type AckStatus int32

const (
	// AckStatusOK indicates the hop was accepted.
	AckStatusOK AckStatus = iota
	// AckStatusError indicates the hop was rejected.
	AckStatusError
)

// Valid reports whether the status belongs to the defined enumeration.
func (s AckStatus) Valid() bool {
	return s == AckStatusOK || s == AckStatusError
}

func (s AckStatus) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

func (s AckStatus) String() string {
	switch s {
	case AckStatusOK:
		return "OK"
	case AckStatusError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Ack is the per-hop, per-RPC acknowledgment. It says nothing about
// end-to-end transfer completion.
type Ack struct {
	Status    AckStatus `msgpack:"status" yaml:"status"`
	RequestID string    `msgpack:"request_id" yaml:"request_id"`
	Message   string    `msgpack:"message" yaml:"message"`
}

// RequestStatus is the processing status of a dispatched request.
type RequestStatus int32

const (
	// RequestStatusPending means the peer acknowledged the hop.
	RequestStatusPending RequestStatus = iota
	// RequestStatusOk means the request finished successfully.
	RequestStatusOk
	// RequestStatusError means the dispatch failed or the peer rejected it.
	RequestStatusError
)

func (s RequestStatus) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

func (s RequestStatus) String() string {
	switch s {
	case RequestStatusPending:
		return "PENDING"
	case RequestStatusOk:
		return "OK"
	case RequestStatusError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// RequestState is the last known status of a request. Every update overwrites
// the previous value.
type RequestState struct {
	RequestID string        `msgpack:"request_id" yaml:"request_id"`
	Status    RequestStatus `msgpack:"status" yaml:"status"`
	// State holds the error detail when Status is RequestStatusError.
	State     string    `msgpack:"state,omitempty" yaml:"state,omitempty"`
	Step      Step      `msgpack:"step" yaml:"step"`
	UpdatedAt time.Time `msgpack:"updated_at" yaml:"updated_at"`
}

// RelayEndpoint is the network location of a peer gateway (or driver) and its TLS settings.
type RelayEndpoint struct {
	Hostname      string `msgpack:"hostname"`
	Port          string `msgpack:"port"`
	TLS           bool   `msgpack:"tls"`
	TLSCACertPath string `msgpack:"tlsca_cert_path"`
}

// Address returns host:port of the endpoint.
func (e RelayEndpoint) Address() string {
	return e.Hostname + ":" + e.Port
}

// AssetTransfer is a local request to start transferring an asset to another network.
type AssetTransfer struct {
	Claims               TransferClaims `msgpack:"claims"`
	ClientIdentityPubkey string         `msgpack:"client_identity_pubkey"`
	ServerIdentityPubkey string         `msgpack:"server_identity_pubkey"`
}

// DriverAction is the ledger operation requested from a driver.
type DriverAction int32

const (
	DriverActionLock DriverAction = iota
	DriverActionCreateAsset
	DriverActionExtinguish
	DriverActionAssignAsset
)

func (a DriverAction) String() string {
	switch a {
	case DriverActionLock:
		return "lock"
	case DriverActionCreateAsset:
		return "create-asset"
	case DriverActionExtinguish:
		return "extinguish"
	case DriverActionAssignAsset:
		return "assign-asset"
	default:
		return "unknown"
	}
}

// DriverRequest asks a ledger driver to perform an action for a session.
type DriverRequest struct {
	Action    DriverAction `msgpack:"action"`
	RequestID string       `msgpack:"request_id"`
	SessionID string       `msgpack:"session_id"`
	NetworkID string       `msgpack:"network_id"`
	AssetID   string       `msgpack:"asset_id"`
}

// StateQuery selects a request state for out-of-band inspection.
type StateQuery struct {
	RequestID string `msgpack:"request_id"`
	Remote    bool   `msgpack:"remote"`
	History   bool   `msgpack:"history"`
}

// StateReport is the answer to a StateQuery.
type StateReport struct {
	Current *RequestState  `msgpack:"current" yaml:"current"`
	History []RequestState `msgpack:"history,omitempty" yaml:"history,omitempty"`
}
