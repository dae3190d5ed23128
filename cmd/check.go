package cmd

import (
	"fmt"

	"github.com/ZacxDev/go-docs-site/config"
	"github.com/ZacxDev/go-docs-site/handlers"
	"github.com/ZacxDev/go-docs-site/logger"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the site config, pages and links without writing output",
	RunE: func(cmd *cobra.Command, args []string) error {
		p := resolvePaths(cmd)
		log := logger.WithComponent("check")

		cfg, err := config.Load(p.config)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			var verr config.ValidationError
			if errors.As(err, &verr) {
				for _, fe := range verr.Errors() {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", fe.Field, fe.Message)
				}
				return errors.Errorf("%d config problem(s) in %s", len(verr.Errors()), p.config)
			}
			return err
		}

		site, err := handlers.NewSite(p.siteOptions())
		if err != nil {
			return err
		}
		log.Info().Int("pages", len(site.Pages)).Int("locales", len(cfg.AllLocales())).Msg("site is valid")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
