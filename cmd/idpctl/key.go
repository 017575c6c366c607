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
	"crypto/ecdsa"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/spf13/cobra"

	"github.com/ledgerplum/idp/sig"
)

func newKeygenCmd() *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "generate a secp256k1 signing key and write it as a did:key-tagged JWK",
		RunE: func(cmd *cobra.Command, args []string) error {
			priv, err := ecdsa.GenerateKey(secp256k1.S256(), rand.Reader)
			if err != nil {
				return fmt.Errorf("generating key: %w", err)
			}
			privJWK, err := jwk.FromRaw(priv)
			if err != nil {
				return fmt.Errorf("wrapping key: %w", err)
			}
			primary, err := sig.DIDKeyFromJWK(privJWK)
			if err != nil {
				return fmt.Errorf("deriving did:key: %w", err)
			}
			if err := privJWK.Set(jwk.KeyIDKey, sig.WithKeyFragment(primary).String()); err != nil {
				return fmt.Errorf("setting kid: %w", err)
			}

			out, err := json.MarshalIndent(privJWK, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding key: %w", err)
			}
			if err := os.WriteFile(outPath, out, 0o600); err != nil {
				return fmt.Errorf("writing %s: %w", outPath, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\nDID: %s\n", outPath, primary.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "key.jwk.json", "output path for the generated private key")
	return cmd
}

// loadPrivateKey reads back a JWK written by keygen, requiring it to
// already carry the kid keygen set.
func loadPrivateKey(path string) (jwk.Key, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading key file %s: %w", path, err)
	}
	key, err := jwk.ParseKey(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing key file %s: %w", path, err)
	}
	if key.KeyID() == "" {
		return nil, fmt.Errorf("key file %s has no kid; was it written by idpctl keygen?", path)
	}
	return key, nil
}
