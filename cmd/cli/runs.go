package main

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/bunca/bakery-service/internal/database"
)

var (
	runsLimit  int
	runsOffset int
	runsOutput string
)

// runsCmd represents the runs command
var runsCmd = &cobra.Command{
	Annotations: map[string]string{dbAnnotation: dbAlways},
	Use:   "runs [run-id]",
	Short: "List recorded import runs or show one run",
	Example: `  bakery runs
  bakery runs --limit 50 --output json
  bakery runs 5f0c6f3e-1b7a-4f43-9d53-5c1d0e0b8a21`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRuns,
}

// shopsCmd represents the shops command
var shopsCmd = &cobra.Command{
	Annotations: map[string]string{dbAnnotation: dbAlways},
	Use:   "shops",
	Short: "List shops, including those registered automatically by imports",
	Args:  cobra.NoArgs,
	RunE:  runShops,
}

func init() {
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(shopsCmd)

	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "Maximum number of runs to list")
	runsCmd.Flags().IntVar(&runsOffset, "offset", 0, "Number of runs to skip")
	runsCmd.Flags().StringVar(&runsOutput, "output", "table", "Output format: table or json")
}

func runRuns(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	pool := database.Pool()

	if len(args) == 1 {
		run, err := database.GetRun(ctx, pool, args[0])
		if errors.Is(err, database.ErrRunNotFound) {
			return fmt.Errorf("run %s not found", args[0])
		}
		if err != nil {
			return err
		}
		if strings.ToLower(runsOutput) == "json" {
			return outputJSON(run)
		}
		outputRunDetail(run)
		return nil
	}

	runs, total, err := database.ListRuns(ctx, pool, runsLimit, runsOffset)
	if err != nil {
		return err
	}
	if strings.ToLower(runsOutput) == "json" {
		return outputJSON(map[string]any{"runs": runs, "total": total})
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintf(w, "ID\tStarted\tStatus\tApplied\tRecords\tIssues\tFile\n")
	fmt.Fprintf(w, "--\t-------\t------\t-------\t-------\t------\t----\n")
	for _, r := range runs {
		records := 0
		for _, n := range r.Counts {
			records += n
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%d\t%d\t%s\n",
			r.ID, r.StartedAt.Local().Format(time.DateTime), r.Status, r.Applied, records, r.IssueCount, r.Filename)
	}
	w.Flush()
	fmt.Printf("\nShowing %d of %d runs\n", len(runs), total)
	return nil
}

func outputRunDetail(run *database.ImportRun) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintf(w, "ID\t%s\n", run.ID)
	fmt.Fprintf(w, "File\t%s\n", run.Filename)
	fmt.Fprintf(w, "Checksum\t%s\n", run.Checksum)
	if run.StorageKey != nil {
		fmt.Fprintf(w, "Storage Key\t%s\n", *run.StorageKey)
	}
	fmt.Fprintf(w, "Status\t%s\n", run.Status)
	fmt.Fprintf(w, "Applied\t%t\n", run.Applied)
	fmt.Fprintf(w, "Started\t%s\n", run.StartedAt.Local().Format(time.DateTime))
	if run.CompletedAt != nil {
		fmt.Fprintf(w, "Completed\t%s\n", run.CompletedAt.Local().Format(time.DateTime))
	}
	keys := make([]string, 0, len(run.Counts))
	for k := range run.Counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%s\t%d\n", k, run.Counts[k])
	}
	fmt.Fprintf(w, "Issues\t%d\n", run.IssueCount)
	if run.ErrorMessage != nil {
		fmt.Fprintf(w, "Error\t%s\n", *run.ErrorMessage)
	}
	w.Flush()

	for _, e := range run.Errors {
		fmt.Println(e)
	}
}

func runShops(cmd *cobra.Command, args []string) error {
	shops, err := database.ListShops(cmd.Context(), database.Pool())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintf(w, "Code\tName\tStatus\n")
	fmt.Fprintf(w, "----\t----\t------\n")
	for _, s := range shops {
		fmt.Fprintf(w, "%s\t%s\t%s\n", s.Code, s.Name, s.Status)
	}
	return w.Flush()
}
