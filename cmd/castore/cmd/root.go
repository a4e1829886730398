package cmd

import (
	"fmt"
	"os"

	"github.com/aweris/castore"
	"github.com/aweris/castore/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfg    *config.Config
	logger = logrus.New()
)

var rootCmd = &cobra.Command{
	Use:   "castore",
	Short: "Content-addressed file store CLI",
	Long:  "Store files under the SHA-256 digest of their content, and retrieve or remove them by digest.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig(cmd)
	},
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: ~/.config/castore/config.yaml)")
	rootCmd.PersistentFlags().String("root", "", "store root directory (default: $CASTORE_ROOT or <tmp>/castore)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "log format (text, json)")

	viper.BindPFlag("root", rootCmd.PersistentFlags().Lookup("root"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
}

func initConfig(cmd *cobra.Command) error {
	configFile := cmd.Root().PersistentFlags().Lookup("config").Value.String()

	c, err := config.Load(viper.GetViper(), configFile)
	if err != nil {
		return err
	}
	cfg = c

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger.SetLevel(level)
	logger.SetOutput(os.Stderr)
	if cfg.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return nil
}

func openStore() (*castore.Store, error) {
	s, err := castore.Open(
		castore.WithRoot(cfg.Root),
		castore.WithLogger(logger),
		castore.WithConcurrency(cfg.Concurrency),
	)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return s, nil
}

// exitCode maps store error kinds to distinct exit statuses so scripts
// can branch without parsing messages.
func exitCode(err error) int {
	switch castore.KindOf(err) {
	case castore.KindBadRequest:
		return 2
	case castore.KindNotFound:
		return 3
	case castore.KindConflict:
		return 4
	default:
		return 1
	}
}
