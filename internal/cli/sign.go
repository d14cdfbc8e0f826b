package cli

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/rafaelescrich/go-dstu4145/ecdh"
	"github.com/rafaelescrich/go-dstu4145/sign"
)

func addMessageFlags(cmd *cobra.Command) {
	cmd.Flags().String("in", "-", "message file, - for standard input")
	cmd.Flags().String("digest", "", "precomputed digest as hex; the message is not read")
}

func (a *app) messageDigest(cmd *cobra.Command) ([]byte, error) {
	if d, _ := cmd.Flags().GetString("digest"); d != "" {
		b, err := hex.DecodeString(d)
		return b, errors.Wrap(err, "digest")
	}

	var r io.Reader = cmd.InOrStdin()
	if in, _ := cmd.Flags().GetString("in"); in != "-" && in != "" {
		f, err := os.Open(in)
		if err != nil {
			return nil, errors.Wrap(err, "opening message")
		}
		defer f.Close()
		r = f
	}
	return digest(a.cfg.Hash, r)
}

func (a *app) signCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Sign a message",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := sign.ParseFormat(a.cfg.Format)
			if err != nil {
				return err
			}
			priv, err := a.privateKey(cmd)
			if err != nil {
				return err
			}
			d, err := a.messageDigest(cmd)
			if err != nil {
				return err
			}
			sig, err := priv.SignBytes(d, format)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(sig))
			return nil
		},
	}
	addKeyFlags(cmd)
	addMessageFlags(cmd)
	return cmd
}

func (a *app) verifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a signature",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := sign.ParseFormat(a.cfg.Format)
			if err != nil {
				return err
			}
			c, err := a.curve()
			if err != nil {
				return err
			}
			pubHex, _ := cmd.Flags().GetString("pub")
			pub, err := publicKey(c, pubHex)
			if err != nil {
				return err
			}
			sigHex, _ := cmd.Flags().GetString("sig")
			sig, err := hex.DecodeString(sigHex)
			if err != nil {
				return errors.Wrap(err, "signature")
			}
			d, err := a.messageDigest(cmd)
			if err != nil {
				return err
			}
			if !pub.VerifyBytes(d, sig, format) {
				return errors.New("signature verification failed")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "OK")
			return nil
		},
	}
	cmd.Flags().String("pub", "", "public key as hex of the raw compressed point")
	cmd.Flags().String("sig", "", "signature as hex")
	addMessageFlags(cmd)
	return cmd
}

func (a *app) agreeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agree",
		Short: "Derive a key encryption key shared with a peer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			newHash, err := lookupHash(a.cfg.KDF)
			if err != nil {
				return err
			}
			priv, err := a.privateKey(cmd)
			if err != nil {
				return err
			}
			peerHex, _ := cmd.Flags().GetString("peer")
			peer, err := publicKey(priv.Curve(), peerHex)
			if err != nil {
				return err
			}
			ukmHex, _ := cmd.Flags().GetString("ukm")
			ukm, err := hex.DecodeString(ukmHex)
			if err != nil {
				return errors.Wrap(err, "ukm")
			}

			kek, err := priv.SharedKey(peer, ukm, ecdh.HashKDF(newHash))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(kek))
			return nil
		},
	}
	addKeyFlags(cmd)
	cmd.Flags().String("peer", "", "peer public key as hex of the raw compressed point")
	cmd.Flags().String("ukm", "", "user keying material as hex")
	return cmd
}
