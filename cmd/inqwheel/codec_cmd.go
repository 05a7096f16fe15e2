package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Hadidomena/inqwheel/message_auth"
	"github.com/Hadidomena/inqwheel/validation"
	"github.com/Hadidomena/inqwheel/wheelcipher"
	"github.com/spf13/cobra"
)

var errTagMismatch = errors.New("check tag does not match the decoded message")

// keyFlags are shared by every command that needs a WheelSet.
type keyFlags struct {
	key     string
	keyName string
}

func (f *keyFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.key, "key", "k", "", `wheel key, e.g. "U 14 48 56 V2"`)
	cmd.Flags().StringVarP(&f.keyName, "key-name", "n", "", "name of a key stored in the keybook")
	cmd.MarkFlagsMutuallyExclusive("key", "key-name")
	cmd.MarkFlagsOneRequired("key", "key-name")
}

func (a *app) wheels(ctx context.Context, f *keyFlags) (*wheelcipher.WheelSet, error) {
	if f.key != "" {
		return wheelcipher.Build(f.key)
	}
	if err := validation.ValidateKeyName(f.keyName); err != nil {
		return nil, err
	}

	store, release, err := a.openStore(ctx, a.cfg)
	if err != nil {
		return nil, err
	}
	defer release()

	key, err := store.Lookup(ctx, f.keyName)
	if err != nil {
		return nil, fmt.Errorf("key %q: %w", f.keyName, err)
	}
	return wheelcipher.Build(key)
}

func (a *app) codecOptions(cmd *cobra.Command) []wheelcipher.Option {
	strict := a.cfg.Codec.Strict
	if cmd.Flags().Changed("strict") {
		strict, _ = cmd.Flags().GetBool("strict")
	}
	if strict {
		return []wheelcipher.Option{wheelcipher.WithStrict()}
	}
	return nil
}

func newEncodeCmd(a *app) *cobra.Command {
	var kf keyFlags
	cmd := &cobra.Command{
		Use:   "encode [message...]",
		Short: "Encode plaintext into wheel codes",
		Long: `Encode writes every letter as one of its four codes, chosen at random,
so encoding the same message twice gives different output. Characters
outside a-z are skipped and reported. With codec.signing_secret set a
check tag is printed as well.`,
		Example: `  inqwheel encode -k "U 14 48 56 V2" curiosity
  echo "curiosity" | inqwheel encode -n vsauce`,
		RunE: func(cmd *cobra.Command, args []string) error {
			message, err := readMessage(cmd, args)
			if err != nil {
				return err
			}
			ws, err := a.wheels(cmd.Context(), &kf)
			if err != nil {
				return err
			}

			res, err := ws.Encode(message, a.codecOptions(cmd)...)
			fmt.Fprint(cmd.ErrOrStderr(), renderSkipped(res.Skipped))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSpace(res.Text))

			if secret := a.cfg.Codec.SigningSecret; secret != "" {
				mac, err := message_auth.GenerateMessageMAC(message, []byte(secret))
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "check: "+message_auth.ShortTag(mac))
			}
			return nil
		},
	}
	kf.register(cmd)
	cmd.Flags().Bool("strict", false, "fail on the first unsupported character")
	return cmd
}

func newDecodeCmd(a *app) *cobra.Command {
	var kf keyFlags
	var tag string
	cmd := &cobra.Command{
		Use:   "decode [codes...]",
		Short: "Decode wheel codes back into plaintext",
		Long: `Decode reads two-character codes, ignoring whitespace and case. "(INQ)"
stands for v4. Codes found on no wheel are skipped and reported.`,
		Example: `  inqwheel decode -k "U 14 48 56 V2" 22 V2 11 02 76 00 70 55 18`,
		RunE: func(cmd *cobra.Command, args []string) error {
			message, err := readMessage(cmd, args)
			if err != nil {
				return err
			}
			ws, err := a.wheels(cmd.Context(), &kf)
			if err != nil {
				return err
			}

			res, err := ws.Decode(message, a.codecOptions(cmd)...)
			fmt.Fprint(cmd.ErrOrStderr(), renderSkipped(res.Skipped))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Text)

			if tag != "" {
				secret := a.cfg.Codec.SigningSecret
				if secret == "" {
					return fmt.Errorf("--check needs codec.signing_secret")
				}
				ok, err := message_auth.VerifyMessageMAC(res.Text, tag, []byte(secret))
				if err != nil {
					return err
				}
				if !ok {
					return errTagMismatch
				}
				fmt.Fprintln(cmd.ErrOrStderr(), renderHint("check tag verified"))
			}
			return nil
		},
	}
	kf.register(cmd)
	cmd.Flags().Bool("strict", false, "fail on the first unrecognized code")
	cmd.Flags().StringVar(&tag, "check", "", "verify the decoded text against a check tag")
	return cmd
}

func newWheelsCmd(a *app) *cobra.Command {
	var kf keyFlags
	cmd := &cobra.Command{
		Use:   "wheels",
		Short: "Print the rotated wheels for a key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := a.wheels(cmd.Context(), &kf)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderWheels(ws))
			return nil
		},
	}
	kf.register(cmd)
	return cmd
}
