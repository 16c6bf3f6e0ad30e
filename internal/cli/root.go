// Package cli implements the resumegate command: the HTTP server plus the
// owner's shell tools for the request store and the mail transport.
package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/tbourn/resume-gate/internal/config"
	"github.com/tbourn/resume-gate/internal/mail"
	"github.com/tbourn/resume-gate/internal/repo"
)

// RootOptions holds global flags and the seams commands build their
// dependencies through.
type RootOptions struct {
	EnvFile string
	Format  string // "json" | "text"
	Version string

	// LoadConfig defaults to config.Load.
	LoadConfig func() (config.Config, error)
	// OpenStore defaults to repo.Open.
	OpenStore func(config.Config) (repo.RequestStore, func() error, error)
	// NewSender defaults to mail.NewSender.
	NewSender func(config.MailConfig) mail.Sender
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the resumegate root command.
func NewRootCommand(version string) *cobra.Command {
	return newRootCommand(&RootOptions{Version: version})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	if opts.LoadConfig == nil {
		opts.LoadConfig = config.Load
	}
	if opts.OpenStore == nil {
		opts.OpenStore = repo.Open
	}
	if opts.NewSender == nil {
		opts.NewSender = mail.NewSender
	}

	cmd := &cobra.Command{
		Use:     "resumegate",
		Short:   "Approval-gated resume downloads",
		Long:    "Serves the resume download workflow: visitors request access, the owner approves or denies from an email link, approved visitors download the PDF.",
		Version: opts.Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return loadEnvFile(opts.EnvFile)
		},
		SilenceUsage:  true,
		SilenceErrors: true, // main prints the error once
	}

	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "dotenv file loaded before reading configuration")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewRequestsCommand(opts))
	cmd.AddCommand(NewMailCommand(opts))

	return cmd
}

// loadEnvFile applies path without overriding variables already set.
// A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
