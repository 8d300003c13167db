package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/api-sage/bank-ledger/src/internal/adapter/http/models"
	"github.com/api-sage/bank-ledger/src/internal/usecase/services"
	"github.com/spf13/cobra"
)

type ReconcileOptions struct {
	*RootOptions
	Repair bool
}

func NewReconcileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReconcileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "reconcile <account-id>",
		Short: "Compare an account balance with its transaction log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("account id %q must be a positive integer", args[0])
			}

			cfg, err := opts.load()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			store, err := openStore(ctx, cfg, false)
			if err != nil {
				return err
			}
			defer store.Close()

			svc := services.NewReconciliationService(store, cfg.LockTimeout)
			run := svc.Reconcile
			if opts.Repair {
				run = svc.RebuildBalance
			}

			report, err := run(ctx, id)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(models.NewReconciliationResponse(report)); err != nil {
				return err
			}
			if !report.Consistent && !report.Repaired {
				return fmt.Errorf("account %d balance %s does not match ledger sum %s", id, report.Balance.StringFixed(2), report.LedgerSum.StringFixed(2))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.Repair, "repair", false, "rewrite the balance from the log when they disagree")
	return cmd
}
