// Package cli implements the tjadmin terminal commands over the POS
// engine: order lifecycle, cancellation approvals, inventory, catalog
// seeding and daily closures.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wzamorag/tjAdmin-sub001/internal/auth"
	"github.com/wzamorag/tjAdmin-sub001/internal/docstore"
	"github.com/wzamorag/tjAdmin-sub001/internal/pos"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Config  string
	User    string
	Role    string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the tjadmin CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "tjadmin",
		Short: "tjAdmin restaurant point of sale",
		Long:  "Terminal front end for the tjAdmin order, inventory and closure engine.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			level := slog.LevelInfo
			if opts.Verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: level,
			})))
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "tjadmin.yaml", "path to config file")
	cmd.PersistentFlags().StringVar(&opts.User, "user", "", "acting user id")
	cmd.PersistentFlags().StringVar(&opts.Role, "role", "mesero", "acting role (admin|cajero|mesero|bar|cocina|operaciones)")

	cmd.AddCommand(NewOrderCommand(opts))
	cmd.AddCommand(NewCancelCommand(opts))
	cmd.AddCommand(NewInventoryCommand(opts))
	cmd.AddCommand(NewClosureCommand(opts))
	cmd.AddCommand(NewCatalogCommand(opts))
	cmd.AddCommand(NewReportCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// roleIDs maps the --role flag to the numeric role ids the auth service
// hands out.
var roleIDs = map[string]auth.Role{
	"admin":       auth.RoleAdmin,
	"cajero":      auth.RoleCashier,
	"mesero":      auth.RoleServer,
	"bar":         auth.RoleBar,
	"cocina":      auth.RoleKitchen,
	"operaciones": auth.RoleOperations,
}

// openEngine loads the config, opens the store and builds an engine bound
// to the acting user from the global flags. The returned closer releases
// the store.
func openEngine(opts *RootOptions) (*pos.Engine, *Config, func() error, error) {
	cfg, err := LoadConfig(opts.Config)
	if err != nil {
		return nil, nil, nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}

	role, ok := roleIDs[strings.ToLower(opts.Role)]
	if !ok {
		return nil, nil, nil, NewExitError(ExitCommandError, fmt.Sprintf("unknown role %q", opts.Role))
	}
	user := opts.User
	if user == "" {
		user = os.Getenv("USER")
	}
	if user == "" {
		return nil, nil, nil, NewExitError(ExitCommandError, "no acting user: pass --user")
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, nil, nil, WrapExitError(ExitCommandError, "failed to load timezone", err)
	}

	slog.Debug("opening database", "path", cfg.Database)
	store, err := docstore.Open(cfg.Database)
	if err != nil {
		return nil, nil, nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	engine := pos.New(store, auth.Static{User: auth.User{ID: user, Role: role}},
		pos.WithLocation(loc),
		pos.WithAllocRetries(cfg.AllocRetries),
	)
	return engine, cfg, store.Close, nil
}
