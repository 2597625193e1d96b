package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kubex/rubix-dirsync/dirsync"
)

func recordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Manage group mapping records",
	}
	cmd.AddCommand(recordsListCmd(), recordsAddCmd(), recordsSetCmd(), recordsRemoveCmd())
	return cmd
}

func recordsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List mapping records in the partition",
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = provider.Close() }()

			records, err := provider.GetMappingRecords(cfg.Store.Partition)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Println("no mapping records")
				return nil
			}

			fmt.Printf("%-37s %-37s %-9s %-9s %-20s %s\n",
				"USER GROUP", "DEVICE GROUP", "STATE", "COMPLIANT", "UPDATED", "PROFILE FILTER")
			for _, record := range records {
				fmt.Printf("%-37s %-37s %-9s %-9v %-20s %s\n",
					record.UserGroupID, record.DeviceGroupID, record.State,
					record.RequireCompliant,
					record.LastUpdate.Local().Format(time.DateTime),
					record.EnrollmentProfileFilter)
			}
			return nil
		},
	}
}

func recordsAddCmd() *cobra.Command {
	var userGroupName, deviceGroupName, profileFilter string
	var requireCompliant, inactive bool

	cmd := &cobra.Command{
		Use:   "add <user-group-id> <device-group-id>",
		Short: "Create a mapping record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = provider.Close() }()

			record := dirsync.MappingRecord{
				Partition:               cfg.Store.Partition,
				UserGroupID:             args[0],
				DeviceGroupID:           args[1],
				UserGroupName:           userGroupName,
				DeviceGroupName:         deviceGroupName,
				RequireCompliant:        requireCompliant,
				EnrollmentProfileFilter: profileFilter,
			}
			if inactive {
				record.State = dirsync.StateInactive
			}

			if err := provider.CreateMappingRecord(record); err != nil {
				return err
			}
			fmt.Printf("created mapping %s -> %s\n", args[0], args[1])
			return nil
		},
	}

	cmd.Flags().StringVar(&userGroupName, "user-group-name", "", "Display name for the user group")
	cmd.Flags().StringVar(&deviceGroupName, "device-group-name", "", "Display name for the device group")
	cmd.Flags().StringVar(&profileFilter, "profile-filter", "", "Enrollment profile fragments, ';' separated")
	cmd.Flags().BoolVar(&requireCompliant, "require-compliant", false, "Only sync compliant devices")
	cmd.Flags().BoolVar(&inactive, "inactive", false, "Create the record inactive")
	return cmd
}

func recordsSetCmd() *cobra.Command {
	var userGroupName, deviceGroupName, profileFilter, state string
	var requireCompliant bool

	cmd := &cobra.Command{
		Use:   "set <user-group-id> <device-group-id>",
		Short: "Update fields on a mapping record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var options []dirsync.MutateRecordOption
			if cmd.Flags().Changed("state") {
				switch dirsync.RecordState(state) {
				case dirsync.StateActive, dirsync.StateInactive:
					options = append(options, dirsync.WithState(dirsync.RecordState(state)))
				default:
					return fmt.Errorf("unknown state %q", state)
				}
			}
			if cmd.Flags().Changed("user-group-name") {
				options = append(options, dirsync.WithUserGroupName(userGroupName))
			}
			if cmd.Flags().Changed("device-group-name") {
				options = append(options, dirsync.WithDeviceGroupName(deviceGroupName))
			}
			if cmd.Flags().Changed("require-compliant") {
				options = append(options, dirsync.WithRequireCompliant(requireCompliant))
			}
			if cmd.Flags().Changed("profile-filter") {
				options = append(options, dirsync.WithEnrollmentProfileFilter(profileFilter))
			}
			if len(options) == 0 {
				return errors.New("nothing to update")
			}

			provider, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = provider.Close() }()

			if err := provider.MutateMappingRecord(cfg.Store.Partition, args[0], args[1], options...); err != nil {
				return err
			}
			fmt.Printf("updated mapping %s -> %s\n", args[0], args[1])
			return nil
		},
	}

	cmd.Flags().StringVar(&state, "state", "", "Record state (Active or Inactive)")
	cmd.Flags().StringVar(&userGroupName, "user-group-name", "", "Display name for the user group")
	cmd.Flags().StringVar(&deviceGroupName, "device-group-name", "", "Display name for the device group")
	cmd.Flags().StringVar(&profileFilter, "profile-filter", "", "Enrollment profile fragments, ';' separated")
	cmd.Flags().BoolVar(&requireCompliant, "require-compliant", false, "Only sync compliant devices")
	return cmd
}

func recordsRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <user-group-id> <device-group-id>",
		Aliases: []string{"rm"},
		Short:   "Delete a mapping record",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = provider.Close() }()

			if err := provider.DeleteMappingRecord(cfg.Store.Partition, args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("removed mapping %s -> %s\n", args[0], args[1])
			return nil
		},
	}
}
