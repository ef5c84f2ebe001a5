package cmd

import (
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/abhisek/adaptiq/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the quiz API over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = cfg.HTTPAddr
		}

		a, log, cleanup, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		if cfg.LogMode == "prod" || cfg.LogMode == "production" {
			gin.SetMode(gin.ReleaseMode)
		}
		router := api.NewRouter(api.NewHandler(a, log.With("component", "api")))

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return api.Serve(ctx, addr, router, log)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default from ADAPTIQ_HTTP_ADDR or :8080)")
}
