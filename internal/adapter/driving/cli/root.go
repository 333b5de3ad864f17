// Package cli is the command-line driving adapter. Commands operate on the
// same document store as the server. A running server re-reads the store
// before each of its own writes, so CLI edits are kept; on the sqlite backend
// its reads reflect them after the next write, on the watched jsonfile backend
// right away.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/liveconfig/internal/application"
	"github.com/ericfisherdev/liveconfig/internal/domain/model"
)

// ServiceFactory opens the ConfigService the commands act on. The returned
// cleanup releases the underlying store.
type ServiceFactory func(ctx context.Context) (*application.ConfigService, func(), error)

type rootOptions struct {
	open     ServiceFactory
	userID   string
	userName string
}

// NewRootCommand builds the liveconfigctl command tree.
func NewRootCommand(open ServiceFactory) *cobra.Command {
	opts := &rootOptions{open: open}

	cmd := &cobra.Command{
		Use:           "liveconfigctl",
		Short:         "Manage the Gemini API key and voice assistant profiles",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.userID, "user-id", "", "user ID recorded as the modifier of changed profiles")
	cmd.PersistentFlags().StringVar(&opts.userName, "user-name", "", "user name recorded as the modifier of changed profiles")

	cmd.AddCommand(newConfigCommand(opts))
	cmd.AddCommand(newKeyCommand(opts))
	cmd.AddCommand(newProfilesCommand(opts))
	cmd.AddCommand(newSetupCommand(opts))

	return cmd
}

// withService opens the service, attaches the caller identity and runs fn.
func (o *rootOptions) withService(cmd *cobra.Command, fn func(ctx context.Context, svc *application.ConfigService) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	svc, cleanup, err := o.open(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if o.userID != "" {
		ctx = application.WithActor(ctx, model.Actor{UserID: o.userID, Name: o.userName})
	}
	return fn(ctx, svc)
}

func newConfigCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the stored configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Print the API key and all profiles as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withService(cmd, func(ctx context.Context, svc *application.ConfigService) error {
				cfg := svc.GetConfig(ctx)
				return writeJSON(cmd.OutOrStdout(), struct {
					GeminiAPIKey *string         `json:"gemini_api_key"`
					Profiles     []model.Profile `json:"profiles"`
				}{cfg.GeminiAPIKey, cfg.Profiles})
			})
		},
	})

	return cmd
}

func newSetupCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Complete the one-time setup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withService(cmd, func(ctx context.Context, svc *application.ConfigService) error {
				entry, err := svc.CompleteSetup(ctx)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s set up at %s\n", entry.Title, model.FormatTimestamp(entry.CreatedAt))
				return err
			})
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
