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
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ledgerplum/idp/codec"
	"github.com/ledgerplum/idp/plum"
	"github.com/ledgerplum/idp/seal"
	"github.com/ledgerplum/idp/storage"
)

func newPutCmd() *cobra.Command {
	var (
		class    string
		format   string
		encoding string
		inPath   string
	)
	cmd := &cobra.Command{
		Use:   "put",
		Short: "store stdin (or --file) as a new Plum, printing its head seal",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(inPath)
			if err != nil {
				return err
			}

			content, err := codec.EncodeBytesToContent(data, class, format, encoding)
			if err != nil {
				return fmt.Errorf("encoding content: %w", err)
			}
			p, err := plum.NewBuilder().WithContent(content).Build()
			if err != nil {
				return fmt.Errorf("building plum: %w", err)
			}

			ctx := context.Background()
			var headSeal seal.PlumHeadSeal
			if err := store.WithTx(ctx, func(tx storage.Tx) error {
				var err error
				headSeal, err = tx.StorePlum(ctx, p)
				return err
			}); err != nil {
				return fmt.Errorf("storing plum: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), headSeal.Seal.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&class, "class", "application/octet-stream", "content class to tag the stored Plum with")
	cmd.Flags().StringVar(&format, "format", codec.FormatNone, "content format: empty for none, charset=us-ascii, charset=utf-8")
	cmd.Flags().StringVar(&encoding, "encoding", codec.EncodingIdentity, "comma-separated compression codec chain")
	cmd.Flags().StringVar(&inPath, "file", "-", "input file, or - for stdin")
	return cmd
}

func newGetCmd() *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "get <seal>",
		Short: "load a Plum by head seal and write its decoded content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			headSeal, err := seal.ParsePlumHeadSeal(args[0])
			if err != nil {
				return fmt.Errorf("parsing seal: %w", err)
			}

			ctx := context.Background()
			var content plum.Content
			if err := store.WithTx(ctx, func(tx storage.Tx) error {
				p, err := tx.LoadPlum(ctx, headSeal)
				if err != nil {
					return err
				}
				content = bodyContent(&p.Body)
				return nil
			}); err != nil {
				return fmt.Errorf("loading plum: %w", err)
			}

			data, err := codec.DecodeBytesFromContent(content, "")
			if err != nil {
				return fmt.Errorf("decoding content: %w", err)
			}
			return writeOutput(outPath, data)
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "-", "output file, or - for stdout")
	return cmd
}

// bodyContent reassembles the plum.Content a Body was built from, the
// reverse of what Builder.WithContent flattens onto the Body's fields.
func bodyContent(b *plum.Body) plum.Content {
	return plum.Content{
		Metadata: plum.ContentMetadata{
			Length:   b.ContentLength,
			Class:    b.ContentClass,
			Format:   b.ContentFormat,
			Encoding: b.ContentEncoding,
		},
		Bytes: b.Content,
	}
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func writeOutput(path string, data []byte) error {
	if path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
