package serve

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/authorizedtester/testgate/cmd/util"
	"github.com/authorizedtester/testgate/cmd/util/flags/configflags"
	"github.com/authorizedtester/testgate/pkg/publicapi"
)

const serveLong = `Start the gate in front of an upstream application.

Requests from allowed clients are forwarded to the upstream. Everyone else
is challenged for Basic credentials or turned away with 403 Forbidden.`

const serveExample = `  # Protect a local staging app, letting the office IP and one tester through
  testgate serve --upstream http://127.0.0.1:3000 \
    --allow-ips 203.0.113.7 --allow-users 'tester:s3cret'

  # Read the gate settings from a config file
  testgate serve --config /etc/testgate/testgate.yaml`

func NewCmd() *cobra.Command {
	serveFlags := map[string][]configflags.Definition{
		"server": configflags.ServerFlags,
		"gate":   configflags.GateFlags,
	}

	serveCmd := &cobra.Command{
		Use:     "serve",
		Short:   "Start the gate in front of an upstream application",
		Long:    serveLong,
		Example: serveExample,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd)
		},
	}

	if err := configflags.RegisterFlags(serveCmd, serveFlags); err != nil {
		util.Fatal(serveCmd, err, 1)
	}

	return serveCmd
}

func serve(cmd *cobra.Command) error {
	ctx := cmd.Context()
	cm := util.GetCleanupManager(ctx)
	cfg := util.GetConfig(ctx)

	serverConfig, err := cfg.Server()
	if err != nil {
		return err
	}
	gateConfig := cfg.Gate()
	log.Ctx(ctx).Info().Object("Gate", gateConfig).Msg("gate configured")

	apiServer, err := publicapi.NewAPIServer(publicapi.ServerParams{
		Config: serverConfig,
		Gate:   gateConfig,
	})
	if err != nil {
		return err
	}

	// registered before the server starts so Cleanup always stops it
	cm.RegisterCallback(func() error {
		return apiServer.Shutdown(ctx)
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- apiServer.ListenAndServe(ctx, nil)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Ctx(ctx).Info().Msg("received shutdown signal")
		return nil
	}
}
