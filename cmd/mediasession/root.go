package main

import (
	"fmt"
	"os"

	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/sokolawesome/mediasession/internal/config"
	"github.com/sokolawesome/mediasession/internal/media"
	"github.com/sokolawesome/mediasession/internal/mpris"
)

var (
	configPath string
	appConfig  *config.AppConfig
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to the config file")
	rootCmd.PersistentFlags().String("log-level", "", "Override log.level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")
	rootCmd.PersistentFlags().String("name", "", "Override session.name, the bus name suffix")
}

var rootCmd = &cobra.Command{
	Use:           "mediasession",
	Short:         "Publish a media session on the desktop bus",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			var err error
			if path, err = config.DefaultPath(); err != nil {
				return err
			}
		}

		v := config.New(afero.NewOsFs(), path)
		lo.Must0(v.BindPFlag("log.level", cmd.Root().PersistentFlags().Lookup("log-level")))
		lo.Must0(v.BindPFlag("log.json", cmd.Root().PersistentFlags().Lookup("log-json")))
		lo.Must0(v.BindPFlag("session.name", cmd.Root().PersistentFlags().Lookup("name")))

		cfg, err := config.Load(v)
		if err != nil {
			return err
		}
		configPath = path
		appConfig = cfg
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// sessionConfig turns the session settings into what the published session
// advertises.
func sessionConfig(s config.SessionSettings) mpris.Config {
	perms := media.DefaultPermissions()
	perms.CanQuit = s.CanQuit
	perms.CanRaise = s.CanRaise
	perms.CanSetFullscreen = s.CanSetFullscreen
	perms.MinRate = minRate
	perms.MaxRate = maxRate
	perms.SupportedURISchemes = s.SupportedURISchemes
	perms.SupportedMIMETypes = s.SupportedMIMETypes

	return mpris.Config{
		Name:         s.Name,
		Identity:     s.Identity,
		DesktopEntry: s.DesktopEntry,
		Permissions:  mo.Some(perms),
	}
}

// mpv accepts any positive speed; these are the bounds advertised to peers.
const (
	minRate = 0.25
	maxRate = 4.0
)
