package main

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/opd-ai/voxlink/config"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

type globalFlags struct {
	configFile string
	envFile    string
}

func newRootCommand() *cobra.Command {
	var g globalFlags

	root := &cobra.Command{
		Use:   "voxlink",
		Short: "Mumble voice chat client",
		Long: `voxlink connects to a Mumble server over TLS or a WebSocket proxy,
authenticates, and keeps the session alive while logging control traffic and
received voice frames.

Configuration comes from voxlink.yaml (or --config), VOXLINK_* environment
variables and an optional .env file, in increasing order of precedence after
the built-in defaults.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadEnvFile(g.envFile)
		},
	}

	root.PersistentFlags().StringVarP(&g.configFile, "config", "c", "", "config file path (default: ./voxlink.yaml)")
	root.PersistentFlags().StringVar(&g.envFile, "env-file", ".env", "dotenv file with VOXLINK_* overrides")

	root.AddCommand(newConnectCommand(&g))
	root.AddCommand(newConfigCommand(&g))
	root.AddCommand(newVersionCommand())
	return root
}

// loadEnvFile imports path into the environment without overriding variables
// that are already set. A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func loadConfig(g *globalFlags) (*config.Config, error) {
	return config.Load(g.configFile)
}
