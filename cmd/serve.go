package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"storefront/internal/assets"
	"storefront/internal/auth"
	"storefront/internal/catalog"
	"storefront/internal/docstore"
	"storefront/internal/httputil"
	"storefront/internal/logging"
	"storefront/internal/site"
	"storefront/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the storefront web server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default from $STOREFRONT_ADDR or :8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	applyLogFlags(cmd)
	if v, _ := cmd.Flags().GetString("addr"); v != "" {
		cfg.Addr = v
	}

	logger, err := logging.New(cfg.Logger)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, closeBackend, err := openBackend(ctx, logger)
	if err != nil {
		return err
	}
	defer closeBackend()

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return errors.Wrap(err, "create upload dir")
	}
	var opts []assets.Option
	if cfg.CloudinaryURL != "" {
		mirror, err := assets.NewCloudinary(cfg.CloudinaryURL)
		if err != nil {
			return err
		}
		opts = append(opts, assets.WithMirror(mirror))
		logger.Info("mirroring uploads to cloudinary")
	}

	srv, err := web.New(web.Options{
		Site:      site.NewStore(backend),
		Catalog:   catalog.NewStore(backend),
		Assets:    assets.New(cfg.UploadDir, logger.Named("assets"), opts...),
		Sessions:  auth.NewSessions([]byte(cfg.SessionSecret)),
		Logger:    logger.Named("web"),
		MaxUpload: cfg.MaxUploadBytes(),
	})
	if err != nil {
		return err
	}
	return httputil.ListenAndServe(ctx, cfg.Addr, srv.Handler(), logger)
}

// openBackend picks MySQL when a DSN is configured, JSON files otherwise.
func openBackend(ctx context.Context, logger *zap.Logger) (docstore.Backend, func(), error) {
	if cfg.MySQLDSN == "" {
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, nil, errors.Wrap(err, "create data dir")
		}
		logger.Info("using json documents", zap.String("dir", cfg.DataDir))
		return docstore.NewFiles(cfg.DataDir), func() {}, nil
	}

	db, err := docstore.OpenMySQL(ctx, cfg.MySQLDSN, cfg.TiDBCA, logger)
	if err != nil {
		return nil, nil, err
	}
	store := docstore.NewSQL(db)
	if err := store.EnsureTable(ctx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	logger.Info("using mysql documents")
	return store, func() { _ = db.Close() }, nil
}
