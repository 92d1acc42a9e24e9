package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sftpgrab/internal/history"
)

func newHistoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show or edit the transfer history",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.listHistory()
		},
	}
	cmd.AddCommand(newHistoryListCmd(a), newHistoryRmCmd(a), newHistoryClearCmd(a))
	return cmd
}

func newHistoryListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List past transfers, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.listHistory()
		},
	}
}

func newHistoryRmCmd(a *app) *cobra.Command {
	var key history.Key
	cmd := &cobra.Command{
		Use:   "rm",
		Short: "Remove one entry matching date, file and status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeStore, err := a.openStore()
			if err != nil {
				return err
			}
			defer closeStore()
			return store.Delete(key)
		},
	}
	cmd.Flags().StringVar(&key.Date, "date", "", `entry date ("YYYY-MM-DD HH:MM")`)
	cmd.Flags().StringVar(&key.File, "file", "", "file name")
	cmd.Flags().StringVar(&key.Status, "status", "", "success or failed")
	cmd.MarkFlagRequired("date")
	cmd.MarkFlagRequired("file")
	cmd.MarkFlagRequired("status")
	return cmd
}

func newHistoryClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the entire transfer history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeStore, err := a.openStore()
			if err != nil {
				return err
			}
			defer closeStore()
			return store.Clear()
		},
	}
}

func (a *app) listHistory() error {
	store, closeStore, err := a.openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	entries, err := store.Load()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("no transfers recorded")
		return nil
	}
	// Newest first.
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		fmt.Printf("%-16s  %-8s  %-8s  %s\n", e.Date, e.Type, e.Status, e.File)
	}
	return nil
}
