// Package relay resolves where the next message of a session must be sent and
// which TLS settings apply to that peer.
package relay

import (
	"strings"

	"github.com/vadiminshakov/satp/core/dto"
	"github.com/vadiminshakov/satp/core/errs"
)

const (
	DefaultHost = "localhost"
	DefaultPort = "9085"
)

// Directory holds the table of known relays. Relay names are case-insensitive.
type Directory struct {
	relays map[string]dto.RelayEndpoint
}

// NewDirectory creates a directory from named relay endpoints.
func NewDirectory(relays map[string]dto.RelayEndpoint) *Directory {
	table := make(map[string]dto.RelayEndpoint, len(relays))
	for name, r := range relays {
		table[strings.ToLower(name)] = r
	}
	return &Directory{relays: table}
}

// Lookup returns the endpoint for host and port with the TLS settings of the
// matching relay. An unknown relay gets TLS disabled and an empty CA path.
func (d *Directory) Lookup(host, port string) dto.RelayEndpoint {
	for _, r := range d.relays {
		if r.Hostname == host && r.Port == port {
			return r
		}
	}
	return dto.RelayEndpoint{Hostname: host, Port: port}
}

// ByName returns the relay registered under name.
func (d *Directory) ByName(name string) (dto.RelayEndpoint, bool) {
	r, ok := d.relays[strings.ToLower(name)]
	return r, ok
}

// Resolver decides which gateway receives a message.
type Resolver interface {
	Resolve(msg dto.Message) (host, port string, err error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(msg dto.Message) (string, string, error)

func (f ResolverFunc) Resolve(msg dto.Message) (string, string, error) {
	return f(msg)
}

// Static sends every message to the same relay.
type Static struct {
	Host string
	Port string
}

// NewStatic returns a Static resolver, falling back to localhost:9085.
func NewStatic(host, port string) Static {
	if host == "" {
		host = DefaultHost
	}
	if port == "" {
		port = DefaultPort
	}
	return Static{Host: host, Port: port}
}

func (s Static) Resolve(dto.Message) (string, string, error) {
	return s.Host, s.Port, nil
}

// ByNetwork routes messages by the network ids carried in the session:
// client-to-server messages go to the recipient network's relay, the others
// back to the sender network's relay. Network ids are case-insensitive.
type ByNetwork struct {
	dir      *Directory
	networks map[string]string // network id -> relay name
}

func NewByNetwork(dir *Directory, networks map[string]string) *ByNetwork {
	table := make(map[string]string, len(networks))
	for network, name := range networks {
		table[strings.ToLower(network)] = name
	}
	return &ByNetwork{dir: dir, networks: table}
}

func (b *ByNetwork) Resolve(msg dto.Message) (string, string, error) {
	s := msg.GetSession()
	network := s.RecipientGatewayNetworkID
	if msg.Step().Direction() == dto.ServerToClient {
		network = s.SenderGatewayNetworkID
	}

	name, ok := b.networks[strings.ToLower(network)]
	if !ok {
		return "", "", errs.Config("no relay registered for network %q", network)
	}
	r, ok := b.dir.ByName(name)
	if !ok {
		return "", "", errs.Config("relay %q of network %q is not configured", name, network)
	}
	return r.Hostname, r.Port, nil
}
