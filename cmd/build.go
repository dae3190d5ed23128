package cmd

import (
	"runtime"

	"github.com/ZacxDev/go-docs-site/builder"
	"github.com/ZacxDev/go-docs-site/handlers"
	"github.com/ZacxDev/go-docs-site/logger"
	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build a static version of the site",
	RunE: func(cmd *cobra.Command, args []string) error {
		p := resolvePaths(cmd)
		concurrency, _ := cmd.Flags().GetInt("concurrency")
		log := logger.WithComponent("build")

		log.Info().Str("root", p.root).Str("config", p.config).Msg("building static site")
		site, err := handlers.NewSite(p.siteOptions())
		if err != nil {
			return err
		}

		res, err := builder.Build(cmd.Context(), site, builder.Options{
			OutDir:      p.out,
			PublicDir:   site.PublicDir(),
			Concurrency: concurrency,
			Logger:      log,
		})
		if err != nil {
			return err
		}

		log.Info().Int("pages", res.Pages).Str("out", p.out).Msg("build finished")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().IntP("concurrency", "j", runtime.NumCPU(), "pages rendered in parallel")
}
