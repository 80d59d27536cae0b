package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/mentor-gateway/internal/models"
	"github.com/magabrotheeeer/mentor-gateway/internal/services/entitlement"
)

type entitlementReport struct {
	IdentityID    string                 `json:"identity_id"`
	AccountID     string                 `json:"account_id,omitempty"`
	Status        string                 `json:"status,omitempty"`
	Allowed       bool                   `json:"allowed"`
	Reason        string                 `json:"reason,omitempty"`
	Subscriptions []*models.Subscription `json:"subscriptions,omitempty"`
}

func newEntitlementCmd(a *app) *cobra.Command {
	var (
		identityID string
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "entitlement",
		Short: "Explain whether a signed-in user may chat past the free message",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}
			store, err := a.openStore(cfg)
			if err != nil {
				return err
			}
			defer func() {
				_ = store.Close()
			}()

			ctx := cmd.Context()
			status, found, statusErr := store.GetSubscriptionStatus(ctx, identityID)
			decision := entitlement.Decide(models.ClientState{HasUsedFreeMessage: true}, identityID, status, found, statusErr)

			report := entitlementReport{
				IdentityID: identityID,
				Status:     string(status),
				Allowed:    decision.Allowed,
				Reason:     string(decision.Reason),
			}
			acct, err := store.GetAccountByIdentity(ctx, identityID)
			switch {
			case err == nil:
				report.AccountID = acct.ID
				subs, err := store.ListSubscriptionsByAccount(ctx, acct.ID)
				if err != nil {
					return err
				}
				report.Subscriptions = subs
			case !errors.Is(err, models.ErrNotFound):
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			return writeReport(cmd, report, statusErr)
		},
	}
	cmd.Flags().StringVar(&identityID, "identity", "", "external identity id (token subject)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	_ = cmd.MarkFlagRequired("identity")
	return cmd
}

func writeReport(cmd *cobra.Command, r entitlementReport, statusErr error) error {
	out := cmd.OutOrStdout()
	verdict := "allowed"
	if !r.Allowed {
		verdict = "denied (" + r.Reason + ")"
	}
	fmt.Fprintf(out, "identity: %s\naccount: %s\nstatus: %s\ndecision: %s\n",
		r.IdentityID, orDash(r.AccountID), orDash(r.Status), verdict)
	if statusErr != nil {
		fmt.Fprintf(out, "status error: %v\n", statusErr)
	}
	if len(r.Subscriptions) == 0 {
		return nil
	}

	fmt.Fprintln(out)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SUBSCRIPTION\tSTATUS\tPLAN\tPERIOD END\tUPDATED")
	for _, s := range r.Subscriptions {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			s.SubscriptionID, s.Status, orDash(s.PlanID), formatTime(s.PeriodEnd), formatTime(s.UpdatedAt))
	}
	return tw.Flush()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}
