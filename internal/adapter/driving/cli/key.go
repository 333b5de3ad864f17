package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/liveconfig/internal/application"
)

// ErrKeyRejected is returned by "key verify" when the API rejects the key,
// so scripts get a non-zero exit status.
var ErrKeyRejected = errors.New("gemini api key rejected")

func newKeyCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage the shared Gemini API key",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set API_KEY",
		Short: "Store the Gemini API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			return opts.withService(cmd, func(ctx context.Context, svc *application.ConfigService) error {
				if err := svc.SetGeminiKey(ctx, &key); err != nil {
					return err
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "key saved")
				return err
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove the stored Gemini API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withService(cmd, func(ctx context.Context, svc *application.ConfigService) error {
				if err := svc.SetGeminiKey(ctx, nil); err != nil {
					return err
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "key cleared")
				return err
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "verify [API_KEY]",
		Short: "Check a key, or the stored one, against the Gemini API",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := ""
			if len(args) == 1 {
				key = args[0]
			}
			return opts.withService(cmd, func(ctx context.Context, svc *application.ConfigService) error {
				valid, err := svc.VerifyGeminiKey(ctx, key)
				if err != nil {
					return err
				}
				if !valid {
					return ErrKeyRejected
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), "key is valid")
				return err
			})
		},
	})

	return cmd
}
