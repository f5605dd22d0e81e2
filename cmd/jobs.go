package cmd

import (
	"fmt"

	"vetclinic-backend/services"

	"github.com/spf13/cobra"
)

var jobsCmd = &cobra.Command{
	Use:       "jobs [" + services.JobReminders + "|" + services.JobCleanup + "|" + services.JobWeeklyStats + "]",
	Short:     "Run one scheduled job now and exit",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{services.JobReminders, services.JobCleanup, services.JobWeeklyStats},
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(false)
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.reminderService(a.mailer()).Run(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("job %s: %w", args[0], err)
		}
		return nil
	},
}
