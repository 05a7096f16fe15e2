package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Hadidomena/inqwheel/cryptography"
	"github.com/Hadidomena/inqwheel/jwt_auth"
	"github.com/Hadidomena/inqwheel/validation"
	"github.com/Hadidomena/inqwheel/wheelcipher"
	"github.com/spf13/cobra"
)

func newKeygenCmd(a *app) *cobra.Command {
	var passphrase, salt string
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a random wheel key, or derive one from a passphrase",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key := cryptography.GenerateKey(cryptography.SecureSource{})
			if passphrase != "" {
				derived, err := cryptography.DeriveKey(passphrase, salt)
				if err != nil {
					return err
				}
				key = derived
			}
			fmt.Fprintln(cmd.OutOrStdout(), cryptography.FormatKey(key))
			return nil
		},
	}
	cmd.Flags().StringVar(&passphrase, "passphrase", "", "derive the key from this passphrase instead of at random")
	cmd.Flags().StringVar(&salt, "salt", "", "salt for --passphrase")
	return cmd
}

func newTokenCmd(a *app) *cobra.Command {
	var scope string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token <subject>",
		Short: "Issue an API bearer token signed with auth.jwt_secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if ttl == 0 {
				ttl = a.cfg.Auth.TokenTTL
			}
			authority, err := jwt_auth.NewAuthority(a.cfg.Auth.JWTSecret, ttl)
			if err != nil {
				return err
			}
			token, err := authority.GenerateToken(args[0], scope)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&scope, "scope", jwt_auth.DefaultScopes,
		fmt.Sprintf("space-separated scopes: %q for the keybook, %q for mailing", jwt_auth.ScopeKeys, jwt_auth.ScopeSend))
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default auth.token_ttl)")
	return cmd
}

func newKeysCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage the keybook of named wheel keys",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <name> <key>",
		Short: "Store a key under a name",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if err := validation.ValidateKeyName(name); err != nil {
				return err
			}
			ws, err := wheelcipher.Build(joinKey(args[1:]))
			if err != nil {
				return err
			}

			store, release, err := a.openStore(cmd.Context(), a.cfg)
			if err != nil {
				return err
			}
			defer release()

			if err := store.Save(cmd.Context(), name, ws.Key()); err != nil {
				return err
			}
			a.logger.Info("key saved", "name", name)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <name>",
		Short: "Print a stored key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, release, err := a.openStore(cmd.Context(), a.cfg)
			if err != nil {
				return err
			}
			defer release()

			key, err := store.Lookup(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cryptography.FormatKey(key))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List stored keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, release, err := a.openStore(cmd.Context(), a.cfg)
			if err != nil {
				return err
			}
			defer release()

			entries, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, headerStyle.Render("NAME")+"\t"+headerStyle.Render("KEY")+"\t"+headerStyle.Render("CREATED"))
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Name, cryptography.FormatKey(e.Key), e.CreatedAt.Format(time.DateOnly))
			}
			return tw.Flush()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <name>",
		Short: "Remove a stored key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, release, err := a.openStore(cmd.Context(), a.cfg)
			if err != nil {
				return err
			}
			defer release()

			if err := store.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			a.logger.Info("key deleted", "name", args[0])
			return nil
		},
	})

	return cmd
}

// joinKey accepts a key given as one argument or split across several.
func joinKey(parts []string) string {
	return strings.Join(parts, "")
}
