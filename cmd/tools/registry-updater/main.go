// cmd/tools/registry-updater/main.go
package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"elevate-workers/pkg/registry"
)

var registryPath string

var rootCmd = &cobra.Command{
	Use:           "registry-updater",
	Short:         "Maintain the worker activity registry",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new activity to the registry",
	Long: `Add a new activity to the registry.

Examples:
  registry-updater add --id search-paths --displayName "Search Paths" \
    --description "Full-text path catalog search" --category catalog --taskType search-paths`,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		id, _ := flags.GetString("id")
		displayName, _ := flags.GetString("displayName")
		description, _ := flags.GetString("description")
		category, _ := flags.GetString("category")
		taskType, _ := flags.GetString("taskType")
		version, _ := flags.GetString("version")
		status, _ := flags.GetString("status")
		timeout, _ := flags.GetString("timeout")
		errorCodes, _ := flags.GetStringSlice("errorCodes")

		if taskType == "" {
			taskType = id
		}

		reg, err := registry.LoadOrCreate(registryPath)
		if err != nil {
			return fmt.Errorf("failed to load registry: %w", err)
		}
		err = reg.Add(registry.Activity{
			ID:                   id,
			DisplayName:          displayName,
			Description:          description,
			Category:             category,
			Version:              version,
			TaskType:             taskType,
			ImplementationStatus: status,
			InputSchema:          map[string]interface{}{},
			OutputSchema:         map[string]interface{}{},
			ErrorCodes:           errorCodes,
			Timeout:              timeout,
			Workflows:            []string{},
			Tags:                 []string{},
		})
		if err != nil {
			return err
		}
		if err := reg.Save(registryPath); err != nil {
			return err
		}
		fmt.Printf("Added activity: %s\n", id)
		return nil
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <id> <field> <value>",
	Short: "Update one field of an existing activity",
	Long: `Update one field of an existing activity.

Fields: status, version, displayName, description, category, taskType, timeout, retries

Examples:
  registry-updater update issue-certificate status verified
  registry-updater update interview-chat timeout 45s`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, field, value := args[0], args[1], args[2]

		reg, err := registry.LoadRegistry(registryPath)
		if err != nil {
			return fmt.Errorf("failed to load registry: %w", err)
		}
		if err := reg.Update(id, field, value); err != nil {
			return err
		}
		if err := reg.Save(registryPath); err != nil {
			return err
		}
		fmt.Printf("Updated activity %s, field %s to %s\n", id, field, value)
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the registry file",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := registry.LoadRegistry(registryPath)
		if err != nil {
			return fmt.Errorf("failed to load registry: %w", err)
		}
		if err := reg.Validate(); err != nil {
			return fmt.Errorf("registry validation failed: %w", err)
		}
		fmt.Printf("Registry validation passed. Found %d activities.\n", len(reg.Activities))
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List activities, optionally filtered by category",
	RunE: func(cmd *cobra.Command, args []string) error {
		category, _ := cmd.Flags().GetString("category")

		reg, err := registry.LoadRegistry(registryPath)
		if err != nil {
			return fmt.Errorf("failed to load registry: %w", err)
		}

		activities := make([]registry.Activity, 0, len(reg.Activities))
		for _, a := range reg.Activities {
			if category == "" || a.Category == category {
				activities = append(activities, a)
			}
		}
		sort.Slice(activities, func(i, j int) bool {
			if activities[i].Category != activities[j].Category {
				return activities[i].Category < activities[j].Category
			}
			return activities[i].ID < activities[j].ID
		})

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "CATEGORY\tTASK TYPE\tSTATUS\tTIMEOUT\tERROR CODES")
		for _, a := range activities {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				a.Category, a.TaskType, a.ImplementationStatus, a.Timeout, strings.Join(a.ErrorCodes, ","))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&registryPath, "path", "configs/activity-registry.json", "path to registry file")

	addCmd.Flags().String("id", "", "activity ID (e.g. search-paths)")
	addCmd.Flags().String("displayName", "", "display name (e.g. Search Paths)")
	addCmd.Flags().String("description", "", "description")
	addCmd.Flags().String("category", "", "category: "+strings.Join(registry.Categories, ", "))
	addCmd.Flags().String("taskType", "", "Zeebe job type, defaults to the id")
	addCmd.Flags().String("version", "1.0.0", "version")
	addCmd.Flags().String("status", registry.StatusPlanned, "implementation status (planned, in-progress, completed, verified)")
	addCmd.Flags().String("timeout", "10s", "job timeout")
	addCmd.Flags().StringSlice("errorCodes", nil, "comma-separated BPMN error codes")
	for _, name := range []string{"id", "displayName", "description", "category"} {
		_ = addCmd.MarkFlagRequired(name)
	}

	listCmd.Flags().String("category", "", "only list this category")

	rootCmd.AddCommand(addCmd, updateCmd, validateCmd, listCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
