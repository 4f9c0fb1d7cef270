// ABOUTME: Credential input for login and register
// ABOUTME: Reads the password from stdin for scripts or prompts on a terminal

package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/Ahmed9588406/customer-support-bot/internal/tui/styles"
)

// credentialFlags are the flags shared by login and register
type credentialFlags struct {
	username      string
	passwordStdin bool
}

// promptCredentials asks for whatever readCredentials could not get
// non-interactively. Replaced in tests.
var promptCredentials = interactiveCredentials

// readCredentials returns username and password from flags, stdin, or an
// interactive prompt, in that order
func readCredentials(in io.Reader, flags credentialFlags, title string) (string, string, error) {
	if flags.passwordStdin {
		if flags.username == "" {
			return "", "", errors.New("--username is required with --password-stdin")
		}
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", "", fmt.Errorf("failed to read password: %w", err)
		}
		return flags.username, strings.TrimRight(line, "\r\n"), nil
	}
	return promptCredentials(flags.username, title)
}

// interactiveCredentials shows a huh form when the username is missing and
// a plain hidden prompt when only the password is needed
func interactiveCredentials(username, title string) (string, string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", "", errors.New("no terminal: use --username with --password-stdin")
	}

	if username != "" {
		fmt.Fprint(os.Stderr, "Password: ")
		pw, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", "", fmt.Errorf("failed to read password: %w", err)
		}
		return username, string(pw), nil
	}

	var password string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Value(&username),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&password),
		).Title(title),
	).WithTheme(styles.FormTheme())

	if err := form.Run(); err != nil {
		return "", "", err
	}
	return strings.TrimSpace(username), password, nil
}
