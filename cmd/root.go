package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/ZacxDev/go-docs-site/handlers"
	"github.com/ZacxDev/go-docs-site/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "DOCSITE"

var rootCmd = &cobra.Command{
	Use:   "docsite",
	Short: "docsite - build documentation sites from Markdown",
	Long: `docsite turns a directory of Markdown pages and a YAML site config into a
localized documentation site with navigation, sidebar, search and sitemap.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := applyEnv(cmd); err != nil {
			return err
		}
		level, _ := cmd.Flags().GetString("log-level")
		json, _ := cmd.Flags().GetBool("log-json")
		logger.Configure(logger.Config{Level: level, JSON: json})
		return nil
	},
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("root", "docs", "directory holding the Markdown pages")
	pf.String("config", "", "site config file (default <root>/.docsite/config.yaml)")
	pf.String("out", "", "output directory (default <root>/.docsite/dist)")
	pf.String("log-level", "info", "log level: debug, info, warn or error")
	pf.Bool("log-json", false, "emit JSON log lines")
}

// applyEnv fills every flag the user did not set from DOCSITE_* variables,
// e.g. DOCSITE_LOG_LEVEL for --log-level.
func applyEnv(cmd *cobra.Command) error {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	var setErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Changed || setErr != nil {
			return
		}
		val := v.GetString(f.Name)
		if val == "" || val == f.DefValue {
			return
		}
		if err := f.Value.Set(val); err != nil {
			setErr = fmt.Errorf("%s_%s: %w", envPrefix, strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_")), err)
		}
	})
	return setErr
}

// paths holds the resolved on-disk layout of a site.
type paths struct {
	root   string
	config string
	out    string
}

func resolvePaths(cmd *cobra.Command) paths {
	root, _ := cmd.Flags().GetString("root")
	cfg, _ := cmd.Flags().GetString("config")
	out, _ := cmd.Flags().GetString("out")

	p := paths{root: filepath.Clean(root), config: cfg, out: out}
	if p.config == "" {
		p.config = filepath.Join(p.root, ".docsite", "config.yaml")
	}
	if p.out == "" {
		p.out = filepath.Join(p.root, ".docsite", "dist")
	}
	return p
}

func (p paths) siteOptions() handlers.Options {
	opts := handlers.Options{
		Root:       p.root,
		ConfigPath: p.config,
		ThemeDir:   filepath.Join(p.root, ".docsite", "theme"),
		PublicDir:  filepath.Join(p.root, "public"),
		Logger:     logger.WithComponent("site"),
	}
	// An output directory inside the root must not be read back as pages.
	if rel, err := filepath.Rel(p.root, p.out); err == nil && !strings.HasPrefix(rel, "..") && rel != "." {
		opts.Exclude = append(opts.Exclude, filepath.ToSlash(rel))
	}
	return opts
}
