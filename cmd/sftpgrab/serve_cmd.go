package main

import (
	"github.com/spf13/cobra"

	"sftpgrab/internal/api"
	"sftpgrab/internal/transfer"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the status server: transfer triggers, history, and live progress over WebSocket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeStore, err := a.openStore()
			if err != nil {
				return err
			}
			defer closeStore()

			orch := transfer.New(store, a.log)
			return api.NewServer(a.cfg, store, orch, a.log).Start()
		},
	}
}
