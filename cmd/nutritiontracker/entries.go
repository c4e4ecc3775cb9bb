package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Kanaan7/NutritionTracker/internal"
	"github.com/Kanaan7/NutritionTracker/internal/service"
)

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// describe renders an error the way the API would classify it.
func describe(err error) error {
	appErr := internal.ToAppError(err)
	if appErr.RawOutput != "" {
		return fmt.Errorf("%s (%d): %s\nraw output:\n%s", appErr.Kind, appErr.Code, appErr.Message, appErr.RawOutput)
	}
	return fmt.Errorf("%s (%d): %s", appErr.Kind, appErr.Code, appErr.Message)
}

func logCmd() *cobra.Command {
	var (
		nutrients []string
		at        string
	)
	cmd := &cobra.Command{
		Use:   "log <meal description>",
		Short: "Extract nutrients from a meal description and store the entry",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := wire()
			if err != nil {
				return err
			}
			defer d.Close()

			entry, err := d.entries.Log(cmd.Context(), &service.LogRequest{
				Text:      strings.Join(args, " "),
				Nutrients: nutrients,
				Datetime:  at,
			})
			if err != nil {
				return describe(err)
			}
			return printJSON(os.Stdout, entry)
		},
	}
	cmd.Flags().StringSliceVarP(&nutrients, "nutrients", "n", nil, "nutrient keys to extract (default calories,protein,carbs,fat)")
	cmd.Flags().StringVar(&at, "at", "", "when the meal was eaten (RFC 3339 or YYYY-MM-DD); defaults to now")
	return cmd
}

func historyCmd() *cobra.Command {
	var daily bool
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print stored entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := wire()
			if err != nil {
				return err
			}
			defer d.Close()

			if daily {
				totals, err := d.entries.DailyTotals(cmd.Context())
				if err != nil {
					return describe(err)
				}
				return printJSON(os.Stdout, totals)
			}
			entries, err := d.entries.History(cmd.Context())
			if err != nil {
				return describe(err)
			}
			return printJSON(os.Stdout, entries)
		},
	}
	cmd.Flags().BoolVar(&daily, "daily", false, "print per-day totals instead of entries")
	return cmd
}

func summaryCmd() *cobra.Command {
	var req service.SummaryRequest
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Total a window of days against the saved goals",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := wire()
			if err != nil {
				return err
			}
			defer d.Close()

			summary, err := d.entries.Summary(cmd.Context(), req)
			if err != nil {
				return describe(err)
			}
			return printJSON(os.Stdout, summary)
		},
	}
	cmd.Flags().IntVar(&req.Days, "days", service.DefaultSummaryDays, "number of days in the window")
	cmd.Flags().StringVar(&req.End, "end", "", "last day of the window (YYYY-MM-DD); defaults to today")
	cmd.Flags().StringSliceVar(&req.Keys, "keys", nil, "nutrient keys to total (defaults to the goal keys)")
	return cmd
}
