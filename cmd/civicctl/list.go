package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"civic-tracker-be/models"
	"civic-tracker-be/services"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List issues as an authority profile would see them",
	Long: `List issues scoped to a state and department, newest first.

The priority summary always covers the whole scoped set; --status only
narrows the rows printed.

EXAMPLES:

  civicctl list
  civicctl list --state Maharashtra --department PWD
  civicctl list --department "Sanitation Dept" --status solved --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		state, _ := cmd.Flags().GetString("state")
		department, _ := cmd.Flags().GetString("department")
		status, _ := cmd.Flags().GetString("status")
		asJSON, _ := cmd.Flags().GetBool("json")

		if !services.ValidStatusFilter(status) {
			return fmt.Errorf("invalid status filter %q", status)
		}

		profile := models.ViewerProfile{State: state, Department: department}

		return withIssueService(cmd.Context(), func(svc *services.IssueService) error {
			all, err := svc.List(cmd.Context())
			if err != nil {
				return err
			}
			scoped := services.ScopeIssues(all, profile)
			summary := services.Summarize(scoped)
			rows := services.FilterByStatus(scoped, status)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{"summary": summary, "issues": rows})
			}
			return printIssues(cmd.OutOrStdout(), summary, rows)
		})
	},
}

func printIssues(out io.Writer, summary models.PrioritySummary, issues []models.Issue) error {
	fmt.Fprintf(out, "Total: %d  Urgent: %d  Underwork: %d  Solved: %d\n\n",
		summary.Total, summary.Urgent, summary.Underwork, summary.Solved)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tCATEGORY\tDEPARTMENT\tSTATE\tCITY\tCREATED")
	for _, issue := range issues {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			issue.ID.Hex(),
			issue.Status,
			issue.Category,
			issue.Department,
			issue.State,
			issue.City,
			issue.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	return w.Flush()
}

func init() {
	listCmd.Flags().String("state", "", "Only issues reported in this state")
	listCmd.Flags().String("department", "", "Only issues routed to this department")
	listCmd.Flags().String("status", services.StatusFilterAll, "Filter rows by status (all, submitted, not solved, underwork, solved)")
	listCmd.Flags().Bool("json", false, "Output JSON")
	rootCmd.AddCommand(listCmd)
}
