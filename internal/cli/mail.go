package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewMailCommand creates the mail command group.
func NewMailCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mail",
		Short: "Mail transport tools",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "test",
		Short: "Send a test message to the owner",
		Long: `Send a test message to OWNER_EMAIL through the configured SMTP relay.

Fails when EMAIL_USER or EMAIL_PASS is not set, or when the relay rejects
the credentials.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMailTest(cmd.Context(), rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	})
	return cmd
}

// mailReport is the JSON shape of mail test.
type mailReport struct {
	Sent bool   `json:"sent"`
	To   string `json:"to"`
	Host string `json:"host"`
	Port int    `json:"port"`
}

func runMailTest(ctx context.Context, opts *RootOptions, out, errOut io.Writer) error {
	wf, err := openWorkflow(opts, errOut)
	if err != nil {
		return err
	}
	defer wf.close()

	cfg := wf.cfg.Mail
	if !cfg.Enabled() {
		return WrapExitError(ExitCommandError, "mail is not configured", fmt.Errorf("set EMAIL_USER and EMAIL_PASS"))
	}
	if err := wf.notifier.Test(ctx); err != nil {
		return WrapExitError(ExitFailure, fmt.Sprintf("send via %s:%d", cfg.Host, cfg.Port), err)
	}

	report := mailReport{Sent: true, To: wf.notifier.OwnerEmail, Host: cfg.Host, Port: cfg.Port}
	if opts.Format == "json" {
		return writeJSON(out, report)
	}
	_, err = fmt.Fprintf(out, "test email sent to %s via %s:%d\n", report.To, report.Host, report.Port)
	return err
}
