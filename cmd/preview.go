package cmd

import (
	"net/http"
	"time"

	"github.com/ZacxDev/go-docs-site/config"
	"github.com/ZacxDev/go-docs-site/handlers"
	"github.com/ZacxDev/go-docs-site/logger"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Serve the built site from the output directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		p := resolvePaths(cmd)
		port, _ := cmd.Flags().GetString("port")
		log := logger.WithComponent("preview")

		if !isDir(p.out) {
			return errors.Errorf("%s does not exist, run docsite build first", p.out)
		}
		cfg, err := config.Load(p.config)
		if err != nil {
			return err
		}

		log.Info().Str("dir", p.out).Str("base", cfg.Base).Msg("previewing build")
		srv := &http.Server{
			Addr:              ":" + port,
			Handler:           handlers.PreviewHandler(p.out, cfg.Base),
			ReadHeaderTimeout: 10 * time.Second,
		}
		return listen(cmd.Context(), srv, log)
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)
	previewCmd.Flags().StringP("port", "p", "4173", "Port to run the server on")
}
