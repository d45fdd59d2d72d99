package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"storefront/internal/demoapi"
	"storefront/internal/httputil"
	"storefront/internal/logging"
)

var demoAPICmd = &cobra.Command{
	Use:   "demo-api",
	Short: "Start the stateless demo JSON API",
	RunE:  runDemoAPI,
}

func init() {
	demoAPICmd.Flags().String("addr", "", "Listen address (default from $DEMO_API_ADDR or :8081)")
	rootCmd.AddCommand(demoAPICmd)
}

func runDemoAPI(cmd *cobra.Command, args []string) error {
	applyLogFlags(cmd)
	if v, _ := cmd.Flags().GetString("addr"); v != "" {
		cfg.DemoAPIAddr = v
	}

	logger, err := logging.New(cfg.Logger)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return httputil.ListenAndServe(ctx, cfg.DemoAPIAddr, demoapi.New(logger.Named("demoapi")).Handler(), logger)
}
