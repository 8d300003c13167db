package cli

import (
	"fmt"

	"github.com/api-sage/bank-ledger/src/internal/adapter/http/middleware"
	"github.com/spf13/cobra"
)

func NewHashKeyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-key <channel-key>",
		Short: "Print the bcrypt hash to use as channelKeyHash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := middleware.HashKey(args[0])
			if err != nil {
				return fmt.Errorf("hash channel key: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}
