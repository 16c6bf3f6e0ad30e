package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tbourn/resume-gate/internal/config"
	"github.com/tbourn/resume-gate/internal/domain"
	"github.com/tbourn/resume-gate/internal/mail"
	"github.com/tbourn/resume-gate/internal/services"
	"github.com/tbourn/resume-gate/internal/sysutil"
)

// workflow is the service graph the shell commands run against.
type workflow struct {
	cfg      config.Config
	notifier *mail.Notifier
	requests *services.RequestService
	close    func()
}

// openWorkflow builds the same services the server uses. Logs go to errOut
// so JSON output on stdout stays clean. Decision links are left unsigned:
// the shell is already trusted.
func openWorkflow(opts *RootOptions, errOut io.Writer) (*workflow, error) {
	cfg, err := opts.LoadConfig()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	sysutil.SetupLogger(errOut, cfg.LogLevel, cfg.LogPretty)

	store, closeStore, err := opts.OpenStore(cfg)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open request store", err)
	}
	notifier := mail.NewNotifier(opts.NewSender(cfg.Mail), cfg)
	links := services.NewLinkBuilder(cfg.Links)
	links.Secret = nil

	svc := services.NewRequestService(store, notifier, links, cfg.Resume.Path)
	svc.Dispatch = func(fn func()) { fn() }

	return &workflow{
		cfg:      cfg,
		notifier: notifier,
		requests: svc,
		close: func() {
			if err := closeStore(); err != nil {
				log.Error().Err(err).Msg("store close failed")
			}
		},
	}, nil
}

// NewRequestsCommand creates the requests command group.
func NewRequestsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "requests",
		Short: "Inspect and decide download requests",
	}
	cmd.AddCommand(newRequestsListCommand(rootOpts))
	cmd.AddCommand(newRequestsDecideCommand(rootOpts))
	return cmd
}

func newRequestsListCommand(rootOpts *RootOptions) *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print stored requests in insertion order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRequestsList(cmd.Context(), rootOpts, status, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "filter by status (pending|approved|denied)")
	return cmd
}

func runRequestsList(ctx context.Context, opts *RootOptions, status string, out, errOut io.Writer) error {
	var filter domain.Status
	if status != "" {
		s, err := domain.ParseStatus(status)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("invalid --status %q", status), err)
		}
		filter = s
	}

	wf, err := openWorkflow(opts, errOut)
	if err != nil {
		return err
	}
	defer wf.close()

	reqs, outcome := wf.requests.List(ctx, filter)
	if outcome.StoreErr != nil {
		return WrapExitError(ExitFailure, "read request store", outcome.StoreErr)
	}
	if opts.Format == "json" {
		return writeJSON(out, reqs)
	}
	return writeRequestTable(out, reqs)
}

// decisionReport is the JSON shape of requests decide.
type decisionReport struct {
	ID               string        `json:"id"`
	Email            string        `json:"email"`
	Status           domain.Status `json:"status"`
	AlreadyProcessed bool          `json:"alreadyProcessed"`
	Notified         bool          `json:"notified"`
	NotifyError      string        `json:"notifyError,omitempty"`
}

func newRequestsDecideCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "decide <id> <approve|deny>",
		Short: "Approve or deny a pending request",
		Long: `Approve or deny a pending request, exactly as the owner's email link does.

The visitor is notified when the decision is stored. Requests that were
already decided are reported and left unchanged.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRequestsDecide(cmd.Context(), rootOpts, args[0], args[1], cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
}

func runRequestsDecide(ctx context.Context, opts *RootOptions, id, action string, out, errOut io.Writer) error {
	wf, err := openWorkflow(opts, errOut)
	if err != nil {
		return err
	}
	defer wf.close()

	res, err := wf.requests.Decide(ctx, services.DecideInput{ID: id, Action: action})
	switch {
	case errors.Is(err, services.ErrInvalidDecision):
		return WrapExitError(ExitCommandError, "action must be approve or deny", err)
	case errors.Is(err, services.ErrRequestNotFound):
		return WrapExitError(ExitCommandError, fmt.Sprintf("request %q", id), err)
	case err != nil:
		return WrapExitError(ExitFailure, "decide", err)
	}
	if res.Outcome.StoreErr != nil {
		return WrapExitError(ExitFailure, "decision not saved", res.Outcome.StoreErr)
	}

	report := decisionReport{
		ID:               res.Request.ID,
		Email:            res.Request.Email,
		Status:           res.Request.Status,
		AlreadyProcessed: res.AlreadyProcessed,
		Notified:         res.Outcome.Notified,
	}
	if res.Outcome.NotifyErr != nil {
		report.NotifyError = res.Outcome.NotifyErr.Error()
	}
	if opts.Format == "json" {
		return writeJSON(out, report)
	}

	if report.AlreadyProcessed {
		_, err = fmt.Fprintf(out, "%s (%s) was already %s; nothing changed\n", report.ID, report.Email, report.Status)
		return err
	}
	if _, err = fmt.Fprintf(out, "%s (%s) is now %s\n", report.ID, report.Email, report.Status); err != nil {
		return err
	}
	switch {
	case report.Notified:
		_, err = fmt.Fprintf(out, "visitor notified at %s\n", report.Email)
	case errors.Is(res.Outcome.NotifyErr, mail.ErrNotConfigured):
		_, err = fmt.Fprintln(out, "visitor not notified: mail is not configured")
	default:
		_, err = fmt.Fprintf(out, "visitor not notified: %s\n", report.NotifyError)
	}
	return err
}
