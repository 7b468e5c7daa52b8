package main

import (
	"context"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vadiminshakov/satp/config"
	"github.com/vadiminshakov/satp/core/dto"
	"github.com/vadiminshakov/satp/core/errs"
	"github.com/vadiminshakov/satp/io/gateway/grpc/client"
	"github.com/vadiminshakov/satp/node"
	"gopkg.in/yaml.v3"
)

var (
	configPath string
	nodeAddr   string

	gatewayAddr  string
	gatewayCA    string
	callTimeout  time.Duration
	transferArgs dto.AssetTransfer
	stateQuery   dto.StateQuery
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "satp",
		Short:        "SATP gateway: cross-ledger asset transfer protocol engine",
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&gatewayAddr, "gateway", "localhost:9085", "admin address of the gateway (host:port)")
	root.PersistentFlags().StringVar(&gatewayCA, "gateway-ca", "", "CA certificate of the gateway, enables TLS")
	root.PersistentFlags().DurationVar(&callTimeout, "timeout", 10*time.Second, "timeout of admin calls")

	root.AddCommand(serveCmd(), transferCmd(), stateCmd())
	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if nodeAddr != "" {
				conf.NodeAddr = nodeAddr
			}
			setupLogging(conf.LogLevel)

			n, err := node.New(conf)
			if err != nil {
				if errs.Is(err, errs.KindFatal) {
					log.Errorf("gateway cannot start: %v", err)
				}
				return err
			}
			if err := n.Run(); err != nil {
				n.Stop()
				return err
			}

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
			<-sig

			n.Stop()
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to the YAML configuration")
	cmd.Flags().StringVar(&nodeAddr, "node-addr", "", "listen address, overrides node_addr")
	return cmd
}

func transferCmd() *cobra.Command {
	claims := &transferArgs.Claims
	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Ask a gateway to transfer an asset to another network",
		RunE: func(cmd *cobra.Command, args []string) error {
			admin, ctx, cancel, err := adminClient()
			if err != nil {
				return err
			}
			defer cancel()
			defer admin.Close()

			resp, err := admin.InitiateTransfer(ctx, transferArgs)
			if err != nil {
				return err
			}
			if err := render(cmd.OutOrStdout(), resp); err != nil {
				return err
			}
			if resp.Status != dto.AckStatusOK {
				return errors.New(resp.Message)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&claims.AssetAssetID, "asset-id", "", "id of the asset")
	f.StringVar(&claims.AssetProfileID, "asset-profile-id", "", "asset profile")
	f.StringVar(&claims.VerifiedOriginatorEntityID, "originator", "", "verified originator entity id")
	f.StringVar(&claims.VerifiedBeneficiaryEntityID, "beneficiary", "", "verified beneficiary entity id")
	f.StringVar(&claims.OriginatorPubkey, "originator-pubkey", "", "originator public key")
	f.StringVar(&claims.BeneficiaryPubkey, "beneficiary-pubkey", "", "beneficiary public key")
	f.StringVar(&claims.SenderGatewayNetworkID, "sender-network", "", "network id of the sending gateway")
	f.StringVar(&claims.RecipientGatewayNetworkID, "recipient-network", "", "network id of the receiving gateway")
	f.StringVar(&claims.SenderGatewayOwnerID, "sender-owner", "", "owner of the sending gateway")
	f.StringVar(&claims.ReceiverGatewayOwnerID, "receiver-owner", "", "owner of the receiving gateway")
	f.StringVar(&transferArgs.ClientIdentityPubkey, "client-pubkey", "", "identity key of the sending gateway")
	f.StringVar(&transferArgs.ServerIdentityPubkey, "server-pubkey", "", "identity key of the receiving gateway")
	_ = cmd.MarkFlagRequired("asset-id")
	_ = cmd.MarkFlagRequired("sender-network")
	_ = cmd.MarkFlagRequired("recipient-network")
	return cmd
}

func stateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state [request-id]",
		Short: "Show the recorded state of a request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stateQuery.RequestID = args[0]

			admin, ctx, cancel, err := adminClient()
			if err != nil {
				return err
			}
			defer cancel()
			defer admin.Close()

			report, err := admin.RequestState(ctx, stateQuery)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), report)
		},
	}

	cmd.Flags().BoolVar(&stateQuery.Remote, "remote", false, "read the remote request states (this gateway records local states only)")
	cmd.Flags().BoolVar(&stateQuery.History, "history", false, "include every recorded state")
	return cmd
}

func adminClient() (*client.AdminClient, context.Context, context.CancelFunc, error) {
	host, port, err := net.SplitHostPort(gatewayAddr)
	if err != nil {
		return nil, nil, nil, errors.Wrapf(err, "invalid gateway address %s", gatewayAddr)
	}
	ep := dto.RelayEndpoint{Hostname: host, Port: port, TLS: gatewayCA != "", TLSCACertPath: gatewayCA}

	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	admin, err := client.NewAdminClient(ctx, ep)
	if err != nil {
		cancel()
		return nil, nil, nil, err
	}
	return admin, ctx, cancel, nil
}

func render(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return errors.Wrap(err, "failed to render output")
	}
	return enc.Close()
}

func setupLogging(level string) {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}
