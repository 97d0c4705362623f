package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/resume-analyzer/internal/analysis"
	"github.com/spigell/resume-analyzer/internal/api"
	"github.com/spigell/resume-analyzer/internal/logger"
	"github.com/spigell/resume-analyzer/internal/scoring"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analyzer over HTTP",
	Run: func(cmd *cobra.Command, _ []string) {
		serve(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("listen", "l", "", "address to listen on (default :8080)")
	serveCmd.Flags().Duration("request-timeout", 0, "deadline for a single analysis request (default 60s)")
	serveCmd.Flags().String("upload-dir", "", "directory for uploaded resumes (default uploads)")
	serveCmd.Flags().Bool("preload", false, "load the similarity backend before accepting requests")

	viper.BindPFlag("server.listen", serveCmd.Flags().Lookup("listen"))
	viper.BindPFlag("server.request-timeout", serveCmd.Flags().Lookup("request-timeout"))
	viper.BindPFlag("server.upload-dir", serveCmd.Flags().Lookup("upload-dir"))
}

func serve(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if config.Server == nil {
		logger.Fatal("server configuration is required")
	}

	svc, err := newSimilarity(config.Similarity, logger)
	if err != nil {
		logger.Fatal("building similarity provider", zap.Error(err))
	}

	if preload, _ := cmd.Flags().GetBool("preload"); preload {
		if err := svc.Preload(ctx); err != nil {
			logger.Fatal("preloading similarity backend", zap.Error(err))
		}
		logger.Info("similarity backend loaded")
	}

	analyzer := analysis.New(scoring.NewScorer(svc, logger), logger)
	srv := api.NewServer(analyzer, logger, config.Server.UploadDir)

	logger.Info("starting the resume-analyzer server",
		zap.String("version", version),
		zap.String("listen", config.Server.Listen),
		zap.Duration("request_timeout", config.Server.RequestTimeout),
	)

	if err := runServer(ctx, newHTTPServer(config.Server, srv.Router()), logger); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}

	logger.Info("server stopped")
}

func newHTTPServer(cfg *ServerConfig, handler http.Handler) *http.Server {
	if cfg.RequestTimeout > 0 {
		handler = http.TimeoutHandler(handler, cfg.RequestTimeout, `{"error":"request timed out"}`)
	}

	return &http.Server{
		Addr:              cfg.Listen,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// runServer serves until ctx is cancelled and then shuts the server down
// gracefully.
func runServer(ctx context.Context, server *http.Server, logger *zap.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
