package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/medbook/medbook-ui/config"
	"github.com/medbook/medbook-ui/internal/bootstrap"
	domainauth "github.com/medbook/medbook-ui/internal/domain/auth"
	"github.com/medbook/medbook-ui/internal/service"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
	In     io.Reader
	Out    io.Writer
}

// resolveTimeout bounds how long commands wait for identity resolution.
const resolveTimeout = 15 * time.Second

func main() {
	logger := bootstrap.InitLogger(slog.LevelWarn)

	if len(os.Args) < 2 {
		if err := printUsage(os.Stdout); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		if _, err := fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmdName); err != nil {
			logger.Error("print unknown command message failed", "error", err)
		}
		if err := printUsage(os.Stderr); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		logger.ErrorContext(context.Background(), "load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}
	// The CLI exposes no metrics endpoint.
	cfg.Observability.Metrics.Enabled = false

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	cmdCtx := &commandContext{
		Ctx:    ctx,
		Logger: logger,
		Config: cfg,
		In:     os.Stdin,
		Out:    os.Stdout,
	}
	runErr := cmd.run(cmdCtx, os.Args[2:])
	stop()
	if runErr != nil {
		logger.ErrorContext(cmdCtx.Ctx, "command failed", "command", cmdName, "error", runErr)
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

func commands() map[string]command {
	return map[string]command{
		"login": {
			name:        "login",
			description: "Sign in and store the session",
			run:         runLogin,
		},
		"logout": {
			name:        "logout",
			description: "Sign out and forget the stored session",
			run:         runLogout,
		},
		"whoami": {
			name:        "whoami",
			description: "Resolve and print the signed-in user",
			run:         runWhoami,
		},
		"status": {
			name:        "status",
			description: "Print the stored session state without contacting the backend",
			run:         runStatus,
		},
		"doctors": {
			name:        "doctors",
			description: "Search doctors by speciality",
			run:         runDoctors,
		},
	}
}

func printUsage(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "Usage: medbook-cli <command> [flags]\n\nAvailable commands:\n"); err != nil {
		return err
	}
	names := make([]string, 0, len(commands()))
	for name := range commands() {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, err := fmt.Fprintf(w, "  %-10s %s\n", name, commands()[name].description); err != nil {
			return err
		}
	}
	return nil
}

// withServices wires the services, restores the stored session and runs fn.
func withServices(cmdCtx *commandContext, fn func(*bootstrap.ServiceContainer) error) error {
	svcs, err := bootstrap.NewServices(cmdCtx.Ctx, bootstrap.ServiceDeps{Config: cmdCtx.Config, Logger: cmdCtx.Logger})
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := svcs.Close(); closeErr != nil {
			cmdCtx.Logger.Warn("close services", "error", closeErr)
		}
	}()
	if err := svcs.Auth.Init(cmdCtx.Ctx); err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	return fn(svcs)
}

func waitResolved(cmdCtx *commandContext, svcs *bootstrap.ServiceContainer) error {
	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, resolveTimeout)
	defer cancel()
	if err := svcs.Auth.Wait(ctx); err != nil {
		return fmt.Errorf("wait for identity: %w", err)
	}
	return nil
}

type loginOptions struct {
	Email    string
	Password string
}

func parseLoginFlags(args []string) (loginOptions, error) {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	var opts loginOptions
	fs.StringVar(&opts.Email, "email", "", "account email")
	fs.StringVar(&opts.Password, "password", "", "account password (read from MEDBOOK_PASSWORD or stdin when empty)")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	opts.Email = strings.TrimSpace(opts.Email)
	if opts.Email == "" {
		return opts, errors.New("-email is required")
	}
	return opts, nil
}

func readPassword(cmdCtx *commandContext, opts loginOptions) (string, error) {
	if opts.Password != "" {
		return opts.Password, nil
	}
	if env := os.Getenv("MEDBOOK_PASSWORD"); env != "" {
		return env, nil
	}
	if _, err := fmt.Fprint(cmdCtx.Out, "Password: "); err != nil {
		return "", err
	}
	line, err := bufio.NewReader(cmdCtx.In).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func runLogin(cmdCtx *commandContext, args []string) error {
	opts, err := parseLoginFlags(args)
	if err != nil {
		return err
	}
	password, err := readPassword(cmdCtx, opts)
	if err != nil {
		return err
	}

	return withServices(cmdCtx, func(svcs *bootstrap.ServiceContainer) error {
		role, err := svcs.Auth.Login(cmdCtx.Ctx, opts.Email, password)
		if err != nil {
			return errors.New(service.LoginErrorMessage(err))
		}
		if err := waitResolved(cmdCtx, svcs); err != nil {
			return err
		}
		sess := svcs.Auth.Session()
		if sess.Role != domainauth.RoleNone {
			role = sess.Role
		}
		_, err = fmt.Fprintf(cmdCtx.Out, "Signed in as %s (%s)\n", displayName(sess, opts.Email), roleLabel(role))
		return err
	})
}

func runLogout(cmdCtx *commandContext, _ []string) error {
	return withServices(cmdCtx, func(svcs *bootstrap.ServiceContainer) error {
		svcs.Auth.Logout(cmdCtx.Ctx)
		_, err := fmt.Fprintln(cmdCtx.Out, "Signed out")
		return err
	})
}

func runWhoami(cmdCtx *commandContext, _ []string) error {
	return withServices(cmdCtx, func(svcs *bootstrap.ServiceContainer) error {
		if err := waitResolved(cmdCtx, svcs); err != nil {
			return err
		}
		sess := svcs.Auth.Session()
		if !sess.HasCredential() {
			return errors.New("not signed in")
		}
		tw := tabwriter.NewWriter(cmdCtx.Out, 0, 0, 2, ' ', 0)
		rows := [][2]string{
			{"Name", displayName(sess, "")},
			{"Email", sess.Profile.Email()},
			{"Role", roleLabel(sess.Role)},
			{"ID", sess.Profile.ID()},
			{"State", string(sess.State())},
		}
		for _, row := range rows {
			if row[1] == "" {
				continue
			}
			if _, err := fmt.Fprintf(tw, "%s:\t%s\n", row[0], row[1]); err != nil {
				return err
			}
		}
		return tw.Flush()
	})
}

func runStatus(cmdCtx *commandContext, _ []string) error {
	return withServices(cmdCtx, func(svcs *bootstrap.ServiceContainer) error {
		sess := svcs.Auth.Session()
		if !sess.HasCredential() {
			_, err := fmt.Fprintln(cmdCtx.Out, "Not signed in")
			return err
		}
		_, err := fmt.Fprintf(cmdCtx.Out, "Signed in (%s), role %s\n", sess.State(), roleLabel(sess.Role))
		return err
	})
}

func runDoctors(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("doctors", flag.ContinueOnError)
	speciality := fs.String("speciality", "", "speciality to search for")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*speciality) == "" && fs.NArg() > 0 {
		*speciality = strings.Join(fs.Args(), " ")
	}

	return withServices(cmdCtx, func(svcs *bootstrap.ServiceContainer) error {
		doctors, err := svcs.Booking.SearchDoctors(cmdCtx.Ctx, *speciality)
		if err != nil {
			return fmt.Errorf("search doctors: %w", err)
		}
		if len(doctors) == 0 {
			_, err := fmt.Fprintln(cmdCtx.Out, "No doctors found")
			return err
		}
		tw := tabwriter.NewWriter(cmdCtx.Out, 0, 0, 2, ' ', 0)
		if _, err := fmt.Fprintln(tw, "ID\tNAME\tSPECIALITY"); err != nil {
			return err
		}
		for _, d := range doctors {
			name := strings.TrimSpace(d.FirstName + " " + d.LastName)
			if _, err := fmt.Fprintf(tw, "%d\t%s\t%s\n", d.ID, name, d.Speciality); err != nil {
				return err
			}
		}
		return tw.Flush()
	})
}

func displayName(sess domainauth.Session, fallback string) string {
	if name := sess.Profile.DisplayName(); name != "" {
		return name
	}
	return fallback
}

func roleLabel(role domainauth.Role) string {
	if role == domainauth.RoleNone {
		return "unknown role"
	}
	return string(role)
}
