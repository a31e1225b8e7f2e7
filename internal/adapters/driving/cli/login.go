package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/opencourse-labs/stride-cli/internal/core/domain"
	"github.com/opencourse-labs/stride-cli/internal/core/ports/driven"
)

var loginCmd = &cobra.Command{
	Use:   "login [username]",
	Short: "Log in to the LMS",
	Long: `Exchanges your username and password for a session token.
The password is read without echo; tokens are stored in the stride
config file and refreshed automatically.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogin,
}

func init() {
	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	if authService == nil {
		return errors.New("auth service not configured")
	}

	reader := bufio.NewReader(cmd.InOrStdin())

	var username string
	if len(args) == 1 {
		username = args[0]
	} else {
		cmd.Print("Username: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("read username: %w", err)
		}
		username = strings.TrimSpace(line)
	}
	if username == "" {
		return fmt.Errorf("login: %w: empty username", domain.ErrInvalidInput)
	}

	password, err := readPassword(cmd, reader)
	if err != nil {
		return err
	}

	if err := authService.Login(context.Background(), username, password); err != nil {
		if errors.Is(err, domain.ErrAuthInvalid) {
			return errors.New("login failed: username or password incorrect")
		}
		return fmt.Errorf("login failed: %w", err)
	}

	cmd.Printf("Logged in as %s.\n", username)
	if configStore != nil {
		if base := configStore.GetString(driven.ConfigKeyAPIBaseURL); base != "" {
			cmd.Printf("LMS: %s\n", base)
		}
	}
	return nil
}

// readPassword reads without echo when stdin is a terminal, and falls
// back to a plain line read otherwise (pipes, tests).
func readPassword(cmd *cobra.Command, reader *bufio.Reader) (string, error) {
	cmd.Print("Password: ")
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		cmd.Println()
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(raw), nil
	}

	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
