package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oceanbase/cinedeck-go/pkg/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the discovery deck over HTTP",
	Long: `Start one discovery session with the saved filters and expose it on a
JSON API under /api/v1, with Prometheus metrics on /metrics.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "127.0.0.1:8080", "Listen address")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := openClient()
	if err != nil {
		return err
	}
	defer client.Close()

	session, err := client.NewSession(ctx)
	if err != nil {
		return err
	}
	return server.New(client, session).ListenAndServe(ctx, serveAddr)
}
