package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"sftpgrab/internal/config"
	"sftpgrab/internal/history"
	"sftpgrab/internal/logging"
)

// app carries the resolved configuration and logger into the subcommands.
type app struct {
	cfgPath string
	verbose bool

	flagHost     string
	flagPort     int
	flagUser     string
	flagPassword string

	cfg config.Config
	log zerolog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "sftpgrab",
		Short:         "Move a single file to or from an SFTP host, with progress and a transfer history",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.cfgPath, "config", "", "config file (default ~/.sftpgrab.yaml)")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")
	pf.StringVar(&a.flagHost, "host", "", "remote host")
	pf.IntVar(&a.flagPort, "port", 22, "remote port")
	pf.StringVar(&a.flagUser, "user", "", "remote username")
	pf.StringVar(&a.flagPassword, "password", "", "remote password")

	cmd.AddCommand(
		newUploadCmd(a),
		newDownloadCmd(a),
		newHistoryCmd(a),
		newServeCmd(a),
	)
	return cmd
}

// setup resolves config with precedence: flags over env over file over
// defaults.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Host = a.flagHost
	}
	if flags.Changed("port") {
		cfg.Port = a.flagPort
	}
	if flags.Changed("user") {
		cfg.Username = a.flagUser
	}
	if flags.Changed("password") {
		cfg.Password = a.flagPassword
	}
	a.cfg = cfg
	a.log = logging.New(a.verbose)
	return nil
}

// openStore picks the history backend: Postgres when a DSN is configured,
// otherwise the JSON file. The returned func releases the backend.
func (a *app) openStore() (history.Store, func(), error) {
	if a.cfg.DatabaseURL != "" {
		pg, err := history.NewPGStore(a.cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return pg, func() { pg.Close() }, nil
	}
	fs := history.NewFileStore(a.cfg.HistoryPath, a.log)
	return fs, func() {}, nil
}
