package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pratik-mahalle/docbrief/pkg/client"
	"github.com/spf13/cobra"
)

type statusReport struct {
	Access       *client.Access       `json:"access" yaml:"access"`
	Subscription *client.Subscription `json:"subscription,omitempty" yaml:"subscription,omitempty"`
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show access and subscription state",
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := loadStatus(context.Background(), apiClient)
			if err != nil {
				return err
			}
			if getOutputFormat() != "text" {
				return printOutput(cmd.OutOrStdout(), report)
			}
			writeStatus(cmd.OutOrStdout(), report)
			return nil
		},
	}
}

func loadStatus(ctx context.Context, c *client.Client) (*statusReport, error) {
	access, err := c.Access(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get access: %w", err)
	}
	report := &statusReport{Access: access}
	if access.Verdict == "unauthenticated" {
		return report, nil
	}
	sub, err := c.Subscription(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	report.Subscription = sub
	return report, nil
}

func writeStatus(w io.Writer, r *statusReport) {
	fmt.Fprintln(w, "docbrief")
	fmt.Fprintln(w, strings.Repeat("=", 40))

	t := NewTable(w)
	t.AddRow("User", r.Access.UserID)
	t.AddRow("Access", formatAccess(r.Access.Verdict))
	if s := r.Subscription; s != nil {
		t.AddRow("Subscription", s.Status)
		if s.Interval != "" {
			t.AddRow("Interval", s.Interval)
		}
		if s.CurrentPeriodEnd != nil {
			t.AddRow("Renews", s.CurrentPeriodEnd.Format("2006-01-02"))
		}
	}
	t.Render()

	if !r.Access.Allowed() && r.Access.Verdict != "unauthenticated" {
		fmt.Fprintln(w, "\nRun 'docbrief billing checkout' to subscribe.")
	}
}

func newBillingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "billing",
		Short: "Manage your subscription",
	}

	cmd.AddCommand(newBillingCheckoutCmd())
	cmd.AddCommand(newBillingPortalCmd())

	return cmd
}

func newBillingCheckoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checkout",
		Short: "Get a checkout link to start a subscription",
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := apiClient.Checkout(context.Background())
			if err != nil {
				return fmt.Errorf("failed to start checkout: %w", err)
			}
			return printSessionURL(cmd.OutOrStdout(), "Open this link to subscribe:", url)
		},
	}
}

func newBillingPortalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "portal",
		Short: "Get a link to the billing portal",
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := apiClient.Portal(context.Background())
			if err != nil {
				return fmt.Errorf("failed to open billing portal: %w", err)
			}
			return printSessionURL(cmd.OutOrStdout(), "Open this link to manage billing:", url)
		},
	}
}

func printSessionURL(w io.Writer, label, url string) error {
	if getOutputFormat() != "text" {
		return printOutput(w, client.SessionURL{URL: url})
	}
	fmt.Fprintln(w, label)
	fmt.Fprintln(w, url)
	return nil
}
