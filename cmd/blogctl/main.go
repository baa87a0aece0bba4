// Command blogctl manages blog content against a json-server compatible
// record store.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"blog_admin/internal/config"
	"blog_admin/internal/logging"
)

var (
	configPath  string
	sessionPath string
	storeURL    string
	logLevel    string

	current *app
)

var rootCmd = &cobra.Command{
	Use:           "blogctl",
	Short:         "Manage posts, categories, members and comments",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		if sessionPath != "" {
			cfg.Auth.SessionFile = sessionPath
		}
		if storeURL != "" {
			cfg.Store.BaseURL = storeURL
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}

		a, err := newApp(cfg, logging.NewWithWriter(cmd.ErrOrStderr(), cfg.LogLevel))
		if err != nil {
			return err
		}
		current = a
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if current != nil {
			return current.Close()
		}
		return nil
	},
}

// loadConfig reads path when it exists and falls back to defaults otherwise.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return config.Default(), nil
	}
	return config.Load(path)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&sessionPath, "session", "", "Session file (default from config)")
	rootCmd.PersistentFlags().StringVar(&storeURL, "store", "", "Record store base URL (default from config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd)
	rootCmd.AddCommand(postsCmd, categoriesCmd, membersCmd, commentsCmd, watchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", describe(err))
		os.Exit(1)
	}
}
