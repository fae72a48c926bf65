package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"admissions/internal/client"
	"admissions/internal/entities"
	"admissions/internal/screen"
	"admissions/internal/shell"
	"admissions/internal/table"
	pkgerrors "admissions/pkg/errors"
	"admissions/pkg/middleware"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	root := newRootCmd(os.Stdout, os.Stderr, os.Stdin)
	if err := root.ExecuteContext(ctx); err != nil {
		var r reported
		if !errors.As(err, &r) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

// reported marks an error the user has already seen as a notification.
type reported struct{ err error }

func (r reported) Error() string { return r.err.Error() }
func (r reported) Unwrap() error { return r.err }

type app struct {
	configPath string
	serverURL  string
	noColor    bool

	stdout io.Writer
	stderr io.Writer
	stdin  io.Reader

	cfg    *Config
	term   terminal
	client *client.Client
}

func newRootCmd(stdout, stderr io.Writer, stdin io.Reader) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr, stdin: stdin}

	root := &cobra.Command{
		Use:           "adminctl",
		Short:         "Admissions console configuration from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetIn(stdin)

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to config file (default ~/.config/adminctl/config.toml)")
	root.PersistentFlags().StringVar(&a.serverURL, "server", "", "Console service URL, overrides the config file")
	root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "Disable colored output")

	root.AddCommand(a.sectionsCmd(), a.openCmd(), a.stripeCmd())
	root.AddCommand(
		entityCmd(a, entities.ProgramSchema),
		entityCmd(a, entities.CampusSchema),
		entityCmd(a, entities.RequirementSchema),
		entityCmd(a, entities.DocumentTemplateSchema),
		entityCmd(a, entities.LeadStatusSchema),
		entityCmd(a, entities.LeadPrioritySchema),
		entityCmd(a, entities.MarketingSourceSchema),
		entityCmd(a, entities.CommunicationTemplateSchema),
		entityCmd(a, entities.CallTypeSchema),
		entityCmd(a, entities.NotificationFilterSchema),
		entityCmd(a, entities.TeamSchema),
		entityCmd(a, entities.RoutingRuleSchema),
	)
	return root
}

func (a *app) init() error {
	cfg, err := loadConfig(a.configPath)
	if err != nil {
		return err
	}
	if a.serverURL != "" {
		cfg.ServerURL = a.serverURL
	}
	a.cfg = cfg
	a.term = detectTerminal(a.stdout, a.stderr, a.stdin, a.noColor)
	a.client = client.New(client.Config{
		BaseURL: cfg.ServerURL,
		Token:   cfg.Token,
		Timeout: cfg.Timeout.Duration,
	})
	return nil
}

// identity is the subject of the configured token. The server verifies the
// token; this only stamps rows and gates mutations locally.
func (a *app) identity() screen.Identity {
	return screen.IdentityFunc(func(context.Context) (string, error) {
		if a.cfg.Token == "" {
			return "", pkgerrors.ErrUnauthorized.WithMessage("not authenticated: set token in the config file or ADMINCTL_TOKEN")
		}
		sub, err := middleware.Subject(a.cfg.Token)
		if err != nil {
			return "", pkgerrors.ErrUnauthorized.WithCause(err)
		}
		return sub, nil
	})
}

func (a *app) capabilities() shell.Capabilities {
	return shell.Capabilities{
		Identity:  a.identity(),
		Notifier:  a.term.notifier(),
		Formatter: table.ParseLocale(a.cfg.Locale),
	}
}

func (a *app) backends() shell.Backends {
	c := a.client
	return shell.Backends{
		Programs:               client.NewResource(c, entities.ProgramSchema),
		Campuses:               client.NewResource(c, entities.CampusSchema),
		Requirements:           client.NewResource(c, entities.RequirementSchema),
		DocumentTemplates:      client.NewResource(c, entities.DocumentTemplateSchema),
		LeadStatuses:           client.NewResource(c, entities.LeadStatusSchema),
		LeadPriorities:         client.NewResource(c, entities.LeadPrioritySchema),
		MarketingSources:       client.NewResource(c, entities.MarketingSourceSchema),
		CommunicationTemplates: client.NewResource(c, entities.CommunicationTemplateSchema),
		CallTypes:              client.NewResource(c, entities.CallTypeSchema),
		NotificationFilters:    client.NewResource(c, entities.NotificationFilterSchema),
		Teams:                  client.NewResource(c, entities.TeamSchema),
		RoutingRules:           client.NewResource(c, entities.RoutingRuleSchema),
		Stripe:                 c,
	}
}

func (a *app) catalog() shell.Registry {
	return shell.Catalog(a.backends(), a.capabilities())
}
