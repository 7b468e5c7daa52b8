package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/satp/core/dto"
	"github.com/vadiminshakov/satp/core/errs"
	"github.com/vadiminshakov/satp/core/relay"
)

const gatewayConfig = `
node_addr: localhost:9080
satp_db_path: /tmp/satp/gw1
db_open_max_retries: 20
relays:
  Network1Relay:
    hostname: localhost
    port: 9080
  Network2Relay:
    hostname: relay2.example.org
    port: 9083
    tls: true
    tlsca_cert_path: /certs/ca.pem
networks:
  network1: Network1Relay
  network2: Network2Relay
drivers:
  Network1Driver:
    network_id: network1
    hostname: localhost
    port: 9090
whitelist:
  - 127.0.0.1
dispatch:
  max_retries: 2
  timeout_msec: 500
state_journal:
  dir: /tmp/satp/gw1/journal
log_level: debug
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	conf, err := Load(writeConfig(t, gatewayConfig))
	require.NoError(t, err)

	require.Equal(t, "localhost:9080", conf.NodeAddr)
	require.Equal(t, "/tmp/satp/gw1", conf.DBPath)
	require.Equal(t, 20, conf.DBOpenMaxRetries)
	require.Equal(t, 10, conf.DBOpenRetryBackoffMsec)
	require.Equal(t, []string{"127.0.0.1"}, conf.Whitelist)

	dir := conf.RelayDirectory()
	ep := dir.Lookup("relay2.example.org", "9083")
	require.True(t, ep.TLS)
	require.Equal(t, "/certs/ca.pem", ep.TLSCACertPath)

	dc := conf.DispatchConfig()
	require.Equal(t, 500*time.Millisecond, dc.Timeout)
	require.Equal(t, 2, dc.MaxRetries)

	drivers := conf.DriverEndpoints()
	require.Len(t, drivers, 1)
	require.Equal(t, "network1", drivers[0].NetworkID)
	require.Equal(t, "localhost:9090", drivers[0].Address())

	require.Equal(t, time.Hour, conf.LockAssertionTTL())
	require.Equal(t, "/tmp/satp/gw1/journal", conf.JournalOptions().Dir)
}

func TestLoad_ResolverByNetwork(t *testing.T) {
	conf, err := Load(writeConfig(t, gatewayConfig))
	require.NoError(t, err)

	r := conf.Resolver(conf.RelayDirectory())
	host, port, err := r.Resolve(&dto.TransferCommence{Session: dto.Session{RecipientGatewayNetworkID: "network2"}})
	require.NoError(t, err)
	require.Equal(t, "relay2.example.org", host)
	require.Equal(t, "9083", port)
}

func TestLoad_Defaults(t *testing.T) {
	conf, err := Load("")
	require.NoError(t, err)

	require.Equal(t, 500, conf.DBOpenMaxRetries)
	require.Equal(t, 10, conf.DBOpenRetryBackoffMsec)
	require.Equal(t, 0, conf.Dispatch.MaxRetries)
	require.Equal(t, 10*time.Second, conf.DispatchConfig().Timeout)
	require.Empty(t, conf.StateJournal.Dir)

	host, port, err := conf.Resolver(conf.RelayDirectory()).Resolve(&dto.TransferCommence{})
	require.NoError(t, err)
	require.Equal(t, relay.DefaultHost, host)
	require.Equal(t, relay.DefaultPort, port)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("SATP_NODE_ADDR", "0.0.0.0:9999")

	conf, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0:9999", conf.NodeAddr)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := map[string]string{
		"unknown relay": `
networks:
  network1: NoSuchRelay
`,
		"driver without network": `
drivers:
  d1:
    hostname: localhost
    port: 9090
`,
		"tls without ca": `
relays:
  r1:
    hostname: localhost
    port: 9080
    tls: true
`,
		"half server tls": `
tls:
  cert_path: /certs/server.pem
`,
		"bad log level": `
log_level: loud
`,
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, content))
			require.Error(t, err)
			require.True(t, errs.Is(err, errs.KindConfig), "got %v", err)
		})
	}
}
