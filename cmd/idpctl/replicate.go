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

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ledgerplum/idp/replication"
	"github.com/ledgerplum/idp/seal"
)

func newPushCmd() *cobra.Command {
	var host string
	var port int
	cmd := &cobra.Command{
		Use:   "push <seal>",
		Short: "push the Plum tree rooted at seal to a remote idpctl serve instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := seal.ParsePlumHeadSeal(args[0])
			if err != nil {
				return fmt.Errorf("parsing seal: %w", err)
			}

			ctx := context.Background()
			client, err := replication.Dial(ctx, host, port, store, logger)
			if err != nil {
				return fmt.Errorf("dialing %s:%d: %w", host, port, err)
			}
			defer client.Close()

			if err := client.Push(ctx, root); err != nil {
				return fmt.Errorf("pushing %s: %w", root.Seal.String(), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pushed %s to %s:%d\n", root.Seal.String(), host, port)
			return nil
		},
	}
	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "remote host")
	cmd.Flags().IntVar(&port, "port", 7777, "remote port")
	return cmd
}

func newPullCmd() *cobra.Command {
	var host string
	var port int
	cmd := &cobra.Command{
		Use:   "pull <seal>",
		Short: "pull the Plum named by seal (not its dependencies) from a remote idpctl serve instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := seal.ParsePlumHeadSeal(args[0])
			if err != nil {
				return fmt.Errorf("parsing seal: %w", err)
			}

			ctx := context.Background()
			client, err := replication.Dial(ctx, host, port, store, logger)
			if err != nil {
				return fmt.Errorf("dialing %s:%d: %w", host, port, err)
			}
			defer client.Close()

			if err := client.Pull(ctx, host, port, root); err != nil {
				return fmt.Errorf("pulling %s: %w", root.Seal.String(), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pulled %s from %s:%d\n", root.Seal.String(), host, port)
			return nil
		},
	}
	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "remote host")
	cmd.Flags().IntVar(&port, "port", 7777, "remote port")
	return cmd
}
