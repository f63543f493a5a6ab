package cli

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/subcommands"

	"github.com/iudanet/invtracker/internal/client/app"
	"github.com/iudanet/invtracker/internal/client/auth"
	"github.com/iudanet/invtracker/internal/client/iocli"
	"github.com/iudanet/invtracker/pkg/api"
)

type signupCmd struct {
	rt    *Runtime
	name  string
	email string
}

func (*signupCmd) Name() string     { return "signup" }
func (*signupCmd) Synopsis() string { return "create an account and log in" }
func (*signupCmd) Usage() string {
	return `invtracker signup [-name <name>] [-email <email>]

  Registers a new account. Missing values and the password are prompted for.
`
}

func (c *signupCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "display name")
	f.StringVar(&c.email, "email", "", "email address")
}

func (c *signupCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.rt.run(ctx, func(ctx context.Context, a *app.App) error {
		io := c.rt.IO
		io.Println("=== Sign up ===")

		req := api.SignUpRequest{Name: c.name, Email: c.email}
		var err error
		if req.Name == "" {
			if req.Name, err = io.ReadInput("Name: "); err != nil {
				return fmt.Errorf("failed to read name: %w", err)
			}
		}
		if req.Email == "" {
			if req.Email, err = io.ReadInput("Email: "); err != nil {
				return fmt.Errorf("failed to read email: %w", err)
			}
		}
		if req.Password, err = io.ReadPassword("Password: "); err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		if req.ConfirmPassword, err = io.ReadPassword("Confirm password: "); err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}

		if err := a.Auth.SignUp(ctx, req); err != nil {
			return err
		}
		printWelcome(io, a.Auth.State().Current(), "Account created")
		return nil
	})
}

type loginCmd struct {
	rt   *Runtime
	user string
}

func (*loginCmd) Name() string     { return "login" }
func (*loginCmd) Synopsis() string { return "log in with email or name" }
func (*loginCmd) Usage() string {
	return `invtracker login [-user <email or name>]

  Logs in and stores the session in the encrypted local database.
`
}

func (c *loginCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.user, "user", "", "email or name")
}

func (c *loginCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.rt.run(ctx, func(ctx context.Context, a *app.App) error {
		io := c.rt.IO
		io.Println("=== Login ===")

		user := c.user
		var err error
		if user == "" {
			if user, err = io.ReadInput("Email or name: "); err != nil {
				return fmt.Errorf("failed to read user: %w", err)
			}
		}
		password, err := io.ReadPassword("Password: ")
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}

		if err := a.Auth.Login(ctx, user, password); err != nil {
			return err
		}
		printWelcome(io, a.Auth.State().Current(), "Login successful")
		return nil
	})
}

func printWelcome(io iocli.IO, st auth.State, headline string) {
	io.Printf("✓ %s!\n", headline)
	if st.User != nil {
		io.Printf("Name:  %s\n", st.User.Name)
		io.Printf("Email: %s\n", st.User.Email)
	}
}

type logoutCmd struct {
	rt *Runtime
}

func (*logoutCmd) Name() string     { return "logout" }
func (*logoutCmd) Synopsis() string { return "end the session and forget stored tokens" }
func (*logoutCmd) Usage() string {
	return `invtracker logout
`
}

func (*logoutCmd) SetFlags(*flag.FlagSet) {}

func (c *logoutCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.rt.run(ctx, func(ctx context.Context, a *app.App) error {
		if err := a.Auth.Logout(ctx); err != nil {
			return err
		}
		c.rt.IO.Println("✓ Logged out")
		return nil
	})
}

type statusCmd struct {
	rt *Runtime
}

func (*statusCmd) Name() string     { return "status" }
func (*statusCmd) Synopsis() string { return "show the session state" }
func (*statusCmd) Usage() string {
	return `invtracker status

  Verifies the stored session against the server and prints the profile.
`
}

func (*statusCmd) SetFlags(*flag.FlagSet) {}

func (c *statusCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.rt.run(ctx, func(ctx context.Context, a *app.App) error {
		io := c.rt.IO
		io.Println("=== Authentication Status ===")
		io.Printf("Server: %s\n", a.ServerURL())

		if err := a.Auth.Restore(ctx); err != nil {
			a.Logger.DebugContext(ctx, "restore failed", slog.Any("error", err))
		}

		st := a.Auth.State().Current()
		if !st.IsAuthenticated || st.User == nil {
			io.Println("Status: Not authenticated")
			if st.ErrorMessage != "" {
				io.Println(st.ErrorMessage)
			}
			io.Println("Run 'invtracker login' to authenticate.")
			return nil
		}

		u := st.User
		io.Println("Status: Authenticated")
		io.Printf("Name:          %s\n", u.Name)
		io.Printf("Email:         %s\n", u.Email)
		io.Printf("Base currency: %s\n", u.BaseCurrency)
		io.Printf("Timezone:      %s\n", u.Timezone)
		if created, err := u.CreatedAtTime(); err == nil {
			io.Printf("Member since:  %s\n", created.Format(time.DateOnly))
		}
		if !u.EmailVerified {
			io.Println("⚠️  Email not verified")
		}
		return nil
	})
}
