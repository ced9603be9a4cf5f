package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"funnelfit/portal-backend/internal/onboarding"
)

func newStepsCmd() *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:   "steps",
		Short: "List the wizard steps of a role",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := onboarding.ParseRole(role)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "#\tID\tTITLE")
			for i, step := range onboarding.StepsFor(r) {
				fmt.Fprintf(w, "%d\t%s\t%s\n", i+1, step.ID, step.Title)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&role, "role", "r", "", "Account type (sme or cfo)")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}
