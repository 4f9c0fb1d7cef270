// ABOUTME: Entry point for the supportbot CLI
// ABOUTME: Terminal client and local stub backend for the customer support bot

package main

import (
	"fmt"
	"os"

	"github.com/Ahmed9588406/customer-support-bot/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
