package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/revittco/dsmon/internal/secrets"
	"github.com/spf13/cobra"
)

func newSecretCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Manage the age-encrypted bind password",
	}

	keygen := &cobra.Command{
		Use:   "keygen",
		Short: "Create the age identity named by age_identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := a.identityPath()
			id, err := secrets.GenerateKey(path)
			if err != nil {
				return err
			}
			a.logger.Info("age identity created", "path", path)
			fmt.Fprintf(cmd.OutOrStdout(), "Public key: %s\n", id.Recipient())
			return nil
		},
	}

	var out string
	encrypt := &cobra.Command{
		Use:   "encrypt",
		Short: "Encrypt a bind password read from stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			enc, err := secrets.NewAgeEncryptor(a.identityPath())
			if err != nil {
				return fmt.Errorf("create encryptor: %w", err)
			}
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && !errors.Is(err, io.EOF) {
				return fmt.Errorf("read password: %w", err)
			}
			password := strings.TrimRight(line, "\r\n")
			if password == "" {
				return errors.New("empty password")
			}
			ct, err := enc.Encrypt([]byte(password))
			if err != nil {
				return err
			}
			if out == "" {
				_, err = cmd.OutOrStdout().Write(ct)
				return err
			}
			if err := os.WriteFile(out, ct, 0o600); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Encrypted password written to %s\n", out)
			return nil
		},
	}
	encrypt.Flags().StringVarP(&out, "out", "o", "", "write to this file instead of stdout")

	cmd.AddCommand(keygen, encrypt)
	return cmd
}

func (a *app) identityPath() string {
	if p := a.cfg.File.AgeIdentity; p != "" {
		return p
	}
	return defaultDataPath("age.key")
}
