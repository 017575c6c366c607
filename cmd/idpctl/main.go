// Copyright 2025 The IDP Authors
// This file is part of IDP.
//
// IDP is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// IDP is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with IDP. If not, see <http://www.gnu.org/licenses/>.

// Command idpctl is a thin wrapper over this repository's storage,
// replication, and signed-ownership-chain packages, for manual smoke
// testing of a running node. It is not part of the core library surface
// and carries no guarantees beyond what its flags do.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ledgerplum/idp/internal/telemetry"
	"github.com/ledgerplum/idp/sig"
	"github.com/ledgerplum/idp/storage"
	"github.com/ledgerplum/idp/storage/sqlite"
)

var (
	dbPath  string
	logFile string
	debug   bool

	store    storage.Store
	logger   *zap.Logger
	resolver sig.Resolver = sig.KeyResolver{}
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "idpctl",
		Short:         "Inspect and manipulate an IDP content-addressed store",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			logger, err = telemetry.NewLogger(telemetry.Config{FilePath: logFile, Development: debug})
			if err != nil {
				return fmt.Errorf("building logger: %w", err)
			}
			store, err = sqlite.Open(context.Background(), dbPath)
			if err != nil {
				return fmt.Errorf("opening store %s: %w", dbPath, err)
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			var closeErr error
			if store != nil {
				closeErr = store.Close()
			}
			if logger != nil {
				_ = logger.Sync()
			}
			return closeErr
		},
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "idpctl.db", "SQLite database path")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "log file path (stderr if unset)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable human-readable development logging")

	rootCmd.AddCommand(
		newKeygenCmd(),
		newPutCmd(),
		newGetCmd(),
		newPushCmd(),
		newPullCmd(),
		newPathCmd(),
		newServeCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "idpctl:", err)
		os.Exit(1)
	}
}
