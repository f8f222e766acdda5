package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/avdokushin/authgate/internal/client/api"
	"github.com/avdokushin/authgate/internal/common"
)

const menu = `Commands:
  signup   - create an account and sign in
  login    - sign in with an existing account
  profile  - show the current account
  logout   - sign out
  ping     - check server availability
  quit     - exit`

func (a *App) repl(ctx context.Context) {
	fmt.Fprintln(a.out, menu)

	for {
		cmd, err := GetSimpleText(a.reader, "", a.out)
		if err != nil {
			return
		}

		switch cmd {
		case "signup":
			a.Signup(ctx)
		case "login":
			a.Login(ctx)
		case "profile":
			a.Profile(ctx)
		case "logout":
			a.Logout(ctx)
		case "ping":
			a.Ping(ctx)
		case "help":
			fmt.Fprintln(a.out, menu)
		case "quit", "exit":
			return
		case "":
			// empty line, re-prompt
		default:
			fmt.Fprintf(a.out, "Unknown command %q. Type 'help' for the list.\n", cmd)
		}
	}
}

func (a *App) Signup(ctx context.Context) {
	name, err := GetSimpleText(a.reader, "Enter name", a.out)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return
	}
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return
	}
	password, err := GetPassword(a.out)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return
	}

	res, err := a.client.Signup(ctx, name, email, password)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return
	}
	if !res.OK {
		a.printFailure(res)
		return
	}

	fmt.Fprintln(a.out, "Account created. You are signed in.")
}

func (a *App) Login(ctx context.Context) {
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return
	}
	password, err := GetPassword(a.out)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return
	}

	res, err := a.client.Login(ctx, email, password)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return
	}
	if !res.OK {
		a.printFailure(res)
		return
	}

	fmt.Fprintln(a.out, "Signed in.")
}

func (a *App) Profile(ctx context.Context) {
	profile, err := a.client.Profile(ctx)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			fmt.Fprintln(a.out, "You are not logged in.")
			return
		}
		fmt.Fprintln(a.out, err.Error())
		return
	}

	fmt.Fprintf(a.out, "Name:  %s\nEmail: %s\n", profile.Name, profile.Email)
}

func (a *App) Logout(ctx context.Context) {
	if _, err := a.client.Logout(ctx); err != nil {
		fmt.Fprintln(a.out, err.Error())
		return
	}
	fmt.Fprintln(a.out, "Signed out.")
}

func (a *App) Ping(ctx context.Context) {
	if err := a.client.Ping(ctx); err != nil {
		fmt.Fprintln(a.out, "Server unavailable: "+err.Error())
		return
	}
	fmt.Fprintln(a.out, "OK")
}

// printFailure renders a failed result: the generic message, or each field
// error next to its field, in stable order.
func (a *App) printFailure(res *api.AuthResult) {
	if res.Message != "" {
		fmt.Fprintln(a.out, res.Message)
		return
	}

	fields := make([]string, 0, len(res.Errors))
	for field := range res.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	for _, field := range fields {
		for _, msg := range res.Errors[field] {
			fmt.Fprintf(a.out, "%s: %s\n", field, msg)
		}
	}
}
