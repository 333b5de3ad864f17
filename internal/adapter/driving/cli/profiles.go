package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/ericfisherdev/liveconfig/internal/application"
	"github.com/ericfisherdev/liveconfig/internal/domain/model"
)

func newProfilesCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "profiles",
		Aliases: []string{"profile"},
		Short:   "Manage voice assistant profiles",
	}

	cmd.AddCommand(newProfilesListCommand(opts))
	cmd.AddCommand(newProfilesUpsertCommand(opts))
	cmd.AddCommand(newProfilesDeleteCommand(opts))
	cmd.AddCommand(newProfilesCheckNameCommand(opts))

	return cmd
}

func newProfilesListCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List profiles in stored order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withService(cmd, func(ctx context.Context, svc *application.ConfigService) error {
				renderProfiles(cmd.OutOrStdout(), svc.GetConfig(ctx).Profiles)
				return nil
			})
		},
	}
}

func renderProfiles(w io.Writer, profiles []model.Profile) {
	if len(profiles) == 0 {
		fmt.Fprintln(w, "No profiles found")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"ID", "Name", "Last Modified", "Modified By"})

	for _, p := range profiles {
		modified := ""
		if !p.LastModified.IsZero() {
			modified = model.FormatTimestamp(p.LastModified)
		}
		by := ""
		if p.ModifiedBy != nil {
			by = *p.ModifiedBy
		}
		t.AppendRow(table.Row{p.ID, p.Name, modified, by})
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d profiles", len(profiles)), "", ""})
	t.Render()
}

func newProfilesUpsertCommand(opts *rootOptions) *cobra.Command {
	var file, name, id string

	cmd := &cobra.Command{
		Use:   "upsert",
		Short: "Create or replace a profile from a JSON object",
		Long: `Reads a profile JSON object from --file ("-" for stdin). --name and --id
override the corresponding keys. Without an id a new profile is created.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			profile, err := readProfile(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}
			if name != "" {
				profile.Name = name
			}
			if id != "" {
				profile.ID = id
			}

			return opts.withService(cmd, func(ctx context.Context, svc *application.ConfigService) error {
				res, err := svc.UpsertProfile(ctx, profile)
				if err != nil {
					return err
				}
				verb := "updated"
				if res.Created {
					verb = "created"
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", verb, res.ID)
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", `profile JSON file, "-" for stdin`)
	cmd.Flags().StringVar(&name, "name", "", "profile name")
	cmd.Flags().StringVar(&id, "id", "", "ID of the profile to replace")

	return cmd
}

// readProfile decodes a profile from path. An empty path yields an empty profile.
func readProfile(stdin io.Reader, path string) (model.Profile, error) {
	var profile model.Profile
	if path == "" {
		return profile, nil
	}

	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return profile, fmt.Errorf("open profile file: %w", err)
		}
		defer f.Close()
		r = f
	}

	if err := json.NewDecoder(r).Decode(&profile); err != nil {
		return profile, fmt.Errorf("decode profile: %w", err)
	}
	return profile, nil
}

func newProfilesDeleteCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withService(cmd, func(ctx context.Context, svc *application.ConfigService) error {
				removed, err := svc.DeleteProfile(ctx, args[0])
				if err != nil {
					return err
				}
				msg := "deleted " + args[0]
				if !removed {
					msg = "no profile with ID " + args[0]
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), msg)
				return err
			})
		},
	}
}

func newProfilesCheckNameCommand(opts *rootOptions) *cobra.Command {
	var excludeID string

	cmd := &cobra.Command{
		Use:   "check-name NAME",
		Short: "Report whether a profile name is free (case-insensitive)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withService(cmd, func(ctx context.Context, svc *application.ConfigService) error {
				msg := "available"
				if !svc.CheckProfileName(ctx, args[0], excludeID) {
					msg = "taken"
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), msg)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&excludeID, "exclude-id", "", "ignore the profile with this ID")

	return cmd
}
