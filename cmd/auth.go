// ABOUTME: login, register, logout, and whoami commands
// ABOUTME: Manage the saved session shared by every supportbot command

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Ahmed9588406/customer-support-bot/internal/session"
)

var (
	loginFlags    credentialFlags
	registerFlags credentialFlags
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and save the session",
	Long: `Sign in to the support bot. The session is saved in the config directory
and used by every other command until you log out or it expires.

For scripts, pass --username and pipe the password with --password-stdin.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runLogin(ctx, os.Stdout, os.Stdin)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runRegister(ctx, os.Stdout, os.Stdin)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved session",
	Run: func(cmd *cobra.Command, args []string) {
		if exitCode := runLogout(os.Stdout); exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Run: func(cmd *cobra.Command, args []string) {
		if exitCode := runWhoami(os.Stdout); exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginFlags.username, "username", "", "Username")
	loginCmd.Flags().BoolVar(&loginFlags.passwordStdin, "password-stdin", false, "Read the password from stdin")
	registerCmd.Flags().StringVar(&registerFlags.username, "username", "", "Username")
	registerCmd.Flags().BoolVar(&registerFlags.passwordStdin, "password-stdin", false, "Read the password from stdin")

	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd)
}

// runLogin signs in and returns the exit code
func runLogin(ctx context.Context, w io.Writer, in io.Reader) int {
	s, err := setup()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}

	username, password, err := readCredentials(in, loginFlags, "Sign in")
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}

	sess, err := s.sessions.Login(ctx, username, password)
	if err != nil {
		fmt.Fprintf(w, "Error: %s\n", errorMessage(err))
		return exitCodeFor(err)
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatSessionJSON(sess))
	} else {
		fmt.Fprintf(w, "Logged in as %s.\n", sess.Username)
	}
	return exitOK
}

// runRegister creates an account and returns the exit code
func runRegister(ctx context.Context, w io.Writer, in io.Reader) int {
	s, err := setup()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}

	username, password, err := readCredentials(in, registerFlags, "Create account")
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}

	if err := s.sessions.Register(ctx, username, password); err != nil {
		fmt.Fprintf(w, "Error: %s\n", errorMessage(err))
		return exitError
	}

	if IsJSONOutput() {
		data, _ := json.MarshalIndent(map[string]string{"username": username, "message": session.MsgRegistered}, "", "  ")
		fmt.Fprintln(w, string(data))
	} else {
		fmt.Fprintln(w, session.MsgRegistered)
	}
	return exitOK
}

// runLogout clears the session and returns the exit code
func runLogout(w io.Writer) int {
	s, err := setup()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}

	s.sessions.Logout()
	fmt.Fprintln(w, "Logged out.")
	return exitOK
}

// runWhoami prints the saved session and returns the exit code
func runWhoami(w io.Writer) int {
	s, err := setup()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}

	sess, ok := s.sessions.Current()
	if !ok {
		fmt.Fprintln(w, "Not logged in.")
		return exitAuth
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatSessionJSON(sess))
	} else {
		fmt.Fprintf(w, "User: %s\nRole: %s\n", sess.Username, sess.Role)
	}
	return exitOK
}

// formatSessionJSON renders the session without its token
func formatSessionJSON(sess session.Session) string {
	output := map[string]string{
		"username": sess.Username,
		"role":     sess.Role,
	}
	data, _ := json.MarshalIndent(output, "", "  ")
	return string(data)
}
