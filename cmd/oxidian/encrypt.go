package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/oxidian/engine/internal/vault"
)

func newEncryptCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "encrypt", Short: "Set up, unlock, lock, and manage at-rest encryption"}
	cmd.AddCommand(
		newEncryptSetupCmd(),
		newEncryptUnlockCmd(),
		newEncryptLockCmd(),
		newEncryptChangePasswordCmd(),
		newEncryptDisableCmd(),
	)
	return cmd
}

func newEncryptSetupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Enable encryption and set the vault password",
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := readPassword("New vault password: ")
			if err != nil {
				return err
			}
			return withVault(func(v *vault.Vault) error {
				return v.SetupEncryption(pw)
			})
		},
	}
}

func newEncryptUnlockCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unlock",
		Short: "Unlock the vault for this session",
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := readPassword("Vault password: ")
			if err != nil {
				return err
			}
			return withVault(func(v *vault.Vault) error {
				ok, err := v.UnlockVault(pw)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("incorrect password")
				}
				fmt.Println("unlocked")
				return nil
			})
		},
	}
}

func newEncryptLockCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lock",
		Short: "Discard the in-memory password and lock the vault",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withVault(func(v *vault.Vault) error {
				v.LockVault()
				return nil
			})
		},
	}
}

func newEncryptChangePasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "change-password",
		Short: "Re-encrypt every note under a new password",
		RunE: func(cmd *cobra.Command, args []string) error {
			oldPw, err := readPassword("Current password: ")
			if err != nil {
				return err
			}
			newPw, err := readPassword("New password: ")
			if err != nil {
				return err
			}
			return withVault(func(v *vault.Vault) error {
				failed, err := v.ChangePassword(oldPw, newPw)
				if err != nil {
					return err
				}
				for _, f := range failed {
					fmt.Printf("failed to re-encrypt: %s\n", f)
				}
				return nil
			})
		},
	}
}

func newEncryptDisableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disable",
		Short: "Decrypt every note and disable encryption",
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := readPassword("Vault password: ")
			if err != nil {
				return err
			}
			return withVault(func(v *vault.Vault) error {
				return v.DisableEncryption(pw)
			})
		},
	}
}

// readPassword prompts on stderr and reads a password from the terminal
// without echoing it. Falls back to a plain stdin line when stdin isn't
// a terminal (piped input, scripts).
func readPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	if term.IsTerminal(int(os.Stdin.Fd())) {
		data, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	var line string
	if _, err := fmt.Fscanln(os.Stdin, &line); err != nil {
		return "", err
	}
	return line, nil
}
