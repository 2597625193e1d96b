package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func activityCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show recent sync activity",
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = provider.Close() }()

			activities, err := provider.GetSyncActivity(cfg.Store.Partition, limit)
			if err != nil {
				return err
			}
			if len(activities) == 0 {
				fmt.Println("no sync activity recorded")
				return nil
			}

			fmt.Printf("%-20s %-8s %-37s %-37s %5s %5s %5s %s\n",
				"STARTED", "OUTCOME", "USER GROUP", "DEVICE GROUP", "ADD", "DEL", "FAIL", "DETAIL")
			for _, activity := range activities {
				fmt.Printf("%-20s %-8s %-37s %-37s %5d %5d %5d %s\n",
					activity.Started.Local().Format(time.DateTime),
					activity.Outcome, activity.UserGroupID, activity.DeviceGroupID,
					activity.Added, activity.Removed, activity.Failures, activity.Detail)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum entries to show")
	return cmd
}
