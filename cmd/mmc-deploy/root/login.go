package root

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mule-tools/mmc-deploy/common/config"
	"github.com/mule-tools/mmc-deploy/common/credential"
	"github.com/mule-tools/mmc-deploy/common/printer"
)

// newLoginCmd stores a console password in the OS keyring.
// Usage: `mmc-deploy login --username admin`
func newLoginCmd(deps Dependencies) *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:     "login",
		GroupID: "Core",
		Short:   "Save the console password in the system keyring",
		Long: `Read the console password from the terminal (or the first line of stdin)
and store it in the system keyring. 'deploy' uses it when no password is
given by flag, environment or config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := resolveUsername(cmd, username)
			if err != nil {
				return err
			}

			password, err := readPassword(cmd.InOrStdin(), user)
			if err != nil {
				return err
			}
			if err = deps.Credentials.Set(user, password); err != nil {
				return err
			}
			printer.Successln("Password for " + user + " saved to the keyring")
			return nil
		},
	}
	cmd.Flags().StringVar(&username, flagUsername, "", "console user")
	return cmd
}

// newLogoutCmd removes a stored console password.
// Usage: `mmc-deploy logout --username admin`
func newLogoutCmd(deps Dependencies) *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:     "logout",
		GroupID: "Core",
		Short:   "Remove the console password from the system keyring",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := resolveUsername(cmd, username)
			if err != nil {
				return err
			}
			if err = deps.Credentials.Delete(user); err != nil {
				return err
			}
			printer.Successln("Password for " + user + " removed from the keyring")
			return nil
		},
	}
	cmd.Flags().StringVar(&username, flagUsername, "", "console user")
	return cmd
}

func resolveUsername(cmd *cobra.Command, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	cfg, err := config.GetConfig(cmd)
	if err != nil {
		return "", err
	}
	if cfg.MMC.Username == "" {
		return "", credential.ErrNoUsername
	}
	return cfg.MMC.Username, nil
}

// readPassword prompts without echo on a terminal and reads one line otherwise.
func readPassword(in io.Reader, username string) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		printer.Infof("Password for %s: ", username)
		raw, err := term.ReadPassword(int(f.Fd()))
		printer.NewLine(1)
		if err != nil {
			return "", eris.Wrap(err, "failed to read password")
		}
		return string(raw), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", eris.Wrap(err, "failed to read password")
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", credential.ErrNoPassword
	}
	return password, nil
}
