package cli

import (
	"encoding/hex"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	dstu4145 "github.com/rafaelescrich/go-dstu4145"
	"github.com/rafaelescrich/go-dstu4145/group"
	"github.com/rafaelescrich/go-dstu4145/internal/keystore"
)

var publicFormats = map[string]dstu4145.PublicKeyFormat{
	"raw":   dstu4145.PubRaw,
	"octet": dstu4145.PubOctetString,
	"hex":   dstu4145.PubHex,
}

func (a *app) curvesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "curves",
		Short: "List the standard curves",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, id := range group.StandardIDs() {
				c, err := a.ctx.Curve(id)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%-18s m=%-3d ks=%v a=%d h=%d window=%d\n",
					id, c.Degree(), c.Modulus().Exponents(), c.Params().A, c.Cofactor(), c.Window())
			}
			return nil
		},
	}
}

func addKeyFlags(cmd *cobra.Command) {
	cmd.Flags().String("key", "", "private key as big-endian hex")
	cmd.Flags().String("key-name", "", "name of a private key in the key store")
}

func (a *app) privateKey(cmd *cobra.Command) (*dstu4145.PrivateKey, error) {
	if name, _ := cmd.Flags().GetString("key-name"); name != "" {
		var priv *dstu4145.PrivateKey
		err := a.withStore(func(store *keystore.Store) (err error) {
			priv, err = store.Get(a.ctx, name)
			return err
		})
		return priv, err
	}
	key, _ := cmd.Flags().GetString("key")
	if key == "" {
		return nil, errors.New("one of --key or --key-name is required")
	}
	c, err := a.curve()
	if err != nil {
		return nil, err
	}
	return a.ctx.PrivateKeyFromBytes(c, []byte(key), dstu4145.PrivHex)
}

// publicKey decodes a hex encoded raw compressed public key.
func publicKey(c *group.Curve, s string) (*dstu4145.PublicKey, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrap(err, "public key")
	}
	return dstu4145.PublicKeyFromBytes(c, raw, dstu4145.PubRaw)
}

func encodePublic(pub *dstu4145.PublicKey, format string) (string, error) {
	f, ok := publicFormats[format]
	if !ok {
		return "", errors.Errorf("unknown public key format %q", format)
	}
	b, err := pub.Bytes(f)
	if err != nil {
		return "", err
	}
	if f == dstu4145.PubHex {
		return string(b), nil
	}
	return hex.EncodeToString(b), nil
}

func (a *app) keygenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a key pair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.curve()
			if err != nil {
				return err
			}
			priv, err := a.ctx.GenerateKey(c)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if name, _ := cmd.Flags().GetString("name"); name != "" {
				if err := a.withStore(func(store *keystore.Store) error {
					return store.Put(name, priv)
				}); err != nil {
					return err
				}
				a.logger.Info("key stored", zap.String("name", name), zap.String("curve", c.ID()))
			} else {
				d, err := priv.Bytes(dstu4145.PrivHex)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "private: %s\n", d)
			}
			fmt.Fprintf(out, "public: %s\n", hex.EncodeToString(priv.Public().Raw()))
			return nil
		},
	}
	cmd.Flags().String("name", "", "store the key under this name instead of printing it")
	return cmd
}

func (a *app) pubCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pub",
		Short: "Print the public key of a private key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			priv, err := a.privateKey(cmd)
			if err != nil {
				return err
			}
			format, _ := cmd.Flags().GetString("pub-format")
			s, err := encodePublic(priv.Public(), format)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s)
			return nil
		},
	}
	addKeyFlags(cmd)
	cmd.Flags().String("pub-format", "raw", "public key format: raw, octet, hex")
	return cmd
}

func (a *app) keysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage the key store",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List stored keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(store *keystore.Store) error {
				names, err := store.List()
				if err != nil {
					return err
				}
				for _, name := range names {
					priv, err := store.Get(a.ctx, name)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n",
						name, priv.Curve().Name(), hex.EncodeToString(priv.Public().Raw()))
				}
				return nil
			})
		},
	}, &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a stored key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(store *keystore.Store) error {
				return store.Delete(args[0])
			})
		},
	})
	return cmd
}
