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

	"github.com/ledgerplum/idp/pathgov"
	"github.com/ledgerplum/idp/seal"
	"github.com/ledgerplum/idp/sig"
	"github.com/ledgerplum/idp/storage"
)

func newPathCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "path",
		Short: "create, update, inspect, delete, and list path-governed ownership chains",
	}
	cmd.AddCommand(newPathCreateCmd(), newPathUpdateCmd(), newPathShowCmd(), newPathDeleteCmd(), newPathListCmd())
	return cmd
}

func newPathCreateCmd() *cobra.Command {
	var keyPath, dataSealStr string
	cmd := &cobra.Command{
		Use:   "create <path>",
		Short: "establish path with a fresh genesis ownership link signed by --key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			privJWK, err := loadPrivateKey(keyPath)
			if err != nil {
				return err
			}
			signerDID, err := sig.ParseDIDURL(privJWK.KeyID())
			if err != nil {
				return fmt.Errorf("parsing key's own kid: %w", err)
			}
			owner := signerDID.Primary().String()

			dataSeal, err := seal.ParsePlumHeadSeal(dataSealStr)
			if err != nil {
				return fmt.Errorf("parsing --data seal: %w", err)
			}

			ownedData := sig.NewOwnedData(owner, dataSeal, nil)
			ownedDataPlum, err := sig.BuildOwnedDataPlum(&ownedData)
			if err != nil {
				return fmt.Errorf("building genesis OwnedData: %w", err)
			}
			content := sig.NewPlumSigContent(ownedDataPlum.HeadSeal(), nil)
			plumSig, err := sig.NewPlumSig(content, privJWK)
			if err != nil {
				return fmt.Errorf("signing genesis PlumSig: %w", err)
			}
			plumSigPlum, err := sig.BuildPlumSigPlum(plumSig)
			if err != nil {
				return fmt.Errorf("building genesis PlumSig plum: %w", err)
			}

			ctx := context.Background()
			var plumSigSeal seal.PlumHeadSeal
			if err := store.WithTx(ctx, func(tx storage.Tx) error {
				if _, err := tx.StorePlum(ctx, ownedDataPlum); err != nil {
					return err
				}
				var err error
				if plumSigSeal, err = tx.StorePlum(ctx, plumSigPlum); err != nil {
					return err
				}
				return pathgov.Create(ctx, tx, resolver, path, plumSigSeal)
			}); err != nil {
				return fmt.Errorf("creating path %q: %w", path, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created %q owned by %s at %s\n", path, owner, plumSigSeal.Seal.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&keyPath, "key", "", "genesis owner's private key file (required)")
	cmd.Flags().StringVar(&dataSealStr, "data", "", "head seal of the data Plum being claimed (required)")
	_ = cmd.MarkFlagRequired("key")
	_ = cmd.MarkFlagRequired("data")
	return cmd
}

func newPathUpdateCmd() *cobra.Command {
	var keyPath, newOwner, dataSealStr string
	cmd := &cobra.Command{
		Use:   "update <path>",
		Short: "transfer path to a new owner, signed by --key (the outgoing owner)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			privJWK, err := loadPrivateKey(keyPath)
			if err != nil {
				return err
			}
			dataSeal, err := seal.ParsePlumHeadSeal(dataSealStr)
			if err != nil {
				return fmt.Errorf("parsing --data seal: %w", err)
			}

			ctx := context.Background()
			var newPlumSigSeal seal.PlumHeadSeal
			if err := store.WithTx(ctx, func(tx storage.Tx) error {
				currentPathState, err := tx.GetPathState(ctx, path)
				if err != nil {
					return err
				}
				currentPlumSig, err := sig.LoadPlumSig(ctx, tx, currentPathState.CurrentStateHeadSeal)
				if err != nil {
					return err
				}

				newOwnedData := sig.NewOwnedData(newOwner, dataSeal, &currentPlumSig.Content.Plum)
				newOwnedDataPlum, err := sig.BuildOwnedDataPlum(&newOwnedData)
				if err != nil {
					return fmt.Errorf("building new OwnedData: %w", err)
				}
				newContent := sig.NewPlumSigContent(newOwnedDataPlum.HeadSeal(), &currentPathState.CurrentStateHeadSeal)
				newPlumSig, err := sig.NewPlumSig(newContent, privJWK)
				if err != nil {
					return fmt.Errorf("signing transfer PlumSig: %w", err)
				}
				newPlumSigPlum, err := sig.BuildPlumSigPlum(newPlumSig)
				if err != nil {
					return fmt.Errorf("building transfer PlumSig plum: %w", err)
				}

				if _, err := tx.StorePlum(ctx, newOwnedDataPlum); err != nil {
					return err
				}
				if newPlumSigSeal, err = tx.StorePlum(ctx, newPlumSigPlum); err != nil {
					return err
				}
				return pathgov.Update(ctx, tx, resolver, path, newPlumSigSeal)
			}); err != nil {
				return fmt.Errorf("updating path %q: %w", path, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "transferred %q to %s at %s\n", path, newOwner, newPlumSigSeal.Seal.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&keyPath, "key", "", "current owner's private key file (required)")
	cmd.Flags().StringVar(&newOwner, "new-owner", "", "did:key of the incoming owner (required)")
	cmd.Flags().StringVar(&dataSealStr, "data", "", "head seal of the data Plum the path now points at (required)")
	_ = cmd.MarkFlagRequired("key")
	_ = cmd.MarkFlagRequired("new-owner")
	_ = cmd.MarkFlagRequired("data")
	return cmd
}

func newPathShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <path>",
		Short: "print a path's current owner, data seal, and chain-verification status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			ctx := context.Background()
			return store.WithTx(ctx, func(tx storage.Tx) error {
				pathState, err := tx.GetPathState(ctx, path)
				if err != nil {
					return err
				}
				plumSig, err := sig.LoadPlumSig(ctx, tx, pathState.CurrentStateHeadSeal)
				if err != nil {
					return err
				}
				ownedData, err := sig.LoadOwnedData(ctx, tx, plumSig.Content.Plum)
				if err != nil {
					return err
				}

				verifyErr := sig.VerifyChain(ctx, tx, resolver, pathState.CurrentStateHeadSeal)
				status := "valid"
				if verifyErr != nil {
					status = fmt.Sprintf("INVALID: %v", verifyErr)
				}

				fmt.Fprintf(cmd.OutOrStdout(), "path:       %s\n", pathState.Path)
				fmt.Fprintf(cmd.OutOrStdout(), "owner:      %s\n", ownedData.Owner)
				fmt.Fprintf(cmd.OutOrStdout(), "data:       %s\n", ownedData.Data.Seal.String())
				fmt.Fprintf(cmd.OutOrStdout(), "plum_sig:   %s\n", pathState.CurrentStateHeadSeal.Seal.String())
				fmt.Fprintf(cmd.OutOrStdout(), "chain:      %s\n", status)
				return nil
			})
		},
	}
	return cmd
}

func newPathDeleteCmd() *cobra.Command {
	var keyPath string
	cmd := &cobra.Command{
		Use:   "delete <path>",
		Short: "tombstone path, signed by --key (the current owner)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			privJWK, err := loadPrivateKey(keyPath)
			if err != nil {
				return err
			}
			requesterDID, err := sig.ParseDIDURL(privJWK.KeyID())
			if err != nil {
				return fmt.Errorf("parsing key's own kid: %w", err)
			}

			ctx := context.Background()
			if err := store.WithTx(ctx, func(tx storage.Tx) error {
				return pathgov.Delete(ctx, tx, resolver, path, requesterDID.Primary().String())
			}); err != nil {
				return fmt.Errorf("deleting path %q: %w", path, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "deleted %q\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&keyPath, "key", "", "current owner's private key file (required)")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}

func newPathListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "list every non-deleted path and its current state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			return store.WithTx(ctx, func(tx storage.Tx) error {
				states, err := tx.ListPathStates(ctx)
				if err != nil {
					return err
				}
				for _, state := range states {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\tinserted=%d\tupdated=%d\n",
						state.Path, state.CurrentStateHeadSeal.Seal.String(),
						state.RowInsertedAtUnixNano, state.RowUpdatedAtUnixNano)
				}
				return nil
			})
		},
	}
	return cmd
}
