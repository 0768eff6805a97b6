package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/mmynk/debtfree/internal/storage/remote"
)

type signupCmd struct {
	server   string
	email    string
	name     string
	password string
}

func (*signupCmd) Name() string     { return "signup" }
func (*signupCmd) Synopsis() string { return "create an account on a sync server and log in" }
func (*signupCmd) Usage() string {
	return `signup -server <url> -email <email> -password <password> [-name <display name>]

  Creates an account on the sync server and saves the session locally.
  Subsequent commands operate on your cloud partition until you log out.
`
}

func (c *signupCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.server, "server", "", "Sync server base URL (required)")
	f.StringVar(&c.email, "email", "", "Account email (required)")
	f.StringVar(&c.name, "name", "", "Display name")
	f.StringVar(&c.password, "password", "", "Account password, at least 8 characters (required)")
}

func (c *signupCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.server == "" || c.email == "" || c.password == "" {
		return usageError("-server, -email and -password are required")
	}
	session, err := remote.Register(ctx, c.server, c.email, c.name, c.password)
	if err != nil {
		return fail(err)
	}
	if err := saveSession(session); err != nil {
		return fail(err)
	}
	fmt.Printf("Signed up and logged in as %s (%s)\n", session.Email, session.UserKey)
	return subcommands.ExitSuccess
}

type loginCmd struct {
	server   string
	email    string
	password string
}

func (*loginCmd) Name() string     { return "login" }
func (*loginCmd) Synopsis() string { return "log in to a sync server" }
func (*loginCmd) Usage() string {
	return `login -server <url> -email <email> -password <password>

  Logs in and saves the session locally. Subsequent commands operate on
  your cloud partition until you log out.
`
}

func (c *loginCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.server, "server", "", "Sync server base URL (required)")
	f.StringVar(&c.email, "email", "", "Account email (required)")
	f.StringVar(&c.password, "password", "", "Account password (required)")
}

func (c *loginCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.server == "" || c.email == "" || c.password == "" {
		return usageError("-server, -email and -password are required")
	}
	session, err := remote.Login(ctx, c.server, c.email, c.password)
	if err != nil {
		return fail(err)
	}
	if err := saveSession(session); err != nil {
		return fail(err)
	}
	fmt.Printf("Logged in as %s (%s)\n", session.Email, session.UserKey)
	return subcommands.ExitSuccess
}

type logoutCmd struct{}

func (*logoutCmd) Name() string             { return "logout" }
func (*logoutCmd) Synopsis() string         { return "forget the saved session" }
func (*logoutCmd) Usage() string            { return "logout\n\n  Forgets the saved session.\n" }
func (*logoutCmd) SetFlags(_ *flag.FlagSet) {}

func (c *logoutCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := clearSession(); err != nil {
		return fail(err)
	}
	fmt.Println("Logged out")
	return subcommands.ExitSuccess
}
