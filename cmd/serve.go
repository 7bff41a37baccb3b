package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/jobfinder/internal/httpapi"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the AI gateway over HTTP",
	Run: func(cmd *cobra.Command, _ []string) {
		logger := newLogger()
		defer logger.Sync()

		config, err := getConfig()
		if err != nil {
			logger.Fatal("getting a config", zap.Error(err))
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		g, err := newGateway(ctx, config, logger)
		if err != nil {
			logger.Fatal("configuring ai providers", zap.Error(err))
		}

		server := httpapi.New(g, httpapi.Config{
			Listen:       config.Server.Listen,
			RateLimit:    config.Server.RateLimit,
			AllowOrigins: config.Server.AllowOrigins,
			Version:      version,
		}, logger)

		logger.Info("starting the jobfinder api", zap.String("version", version))

		if err := server.Run(ctx); err != nil {
			logger.Fatal("serving http", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("listen", "l", "", "listen address (default :8080)")
	serveCmd.Flags().Float64("rate-limit", 0, "requests per second per client ip, 0 disables")

	viper.BindPFlag("server.listen", serveCmd.Flags().Lookup("listen"))
	viper.BindPFlag("server.rate-limit", serveCmd.Flags().Lookup("rate-limit"))
}
