// passwd prints a credentials file entry for CREDENTIALS_FILE. The password
// is read from the first line of stdin.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"flight_board/internal/auth"

	"github.com/spf13/pflag"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var username, role string

	flagSet := pflag.NewFlagSet("passwd", pflag.ContinueOnError)
	flagSet.StringVarP(&username, "username", "u", "", "login name")
	flagSet.StringVarP(&role, "role", "r", string(auth.RoleUser), "role returned on login")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return fmt.Errorf("read password: %w", err)
	}

	doc, err := auth.UserEntry(username, strings.TrimRight(line, "\r\n"), auth.Role(role))
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(doc)
	return err
}
