package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ashureev/restwell/internal/baseline"
	"github.com/ashureev/restwell/internal/cli/client"
	"github.com/ashureev/restwell/internal/cli/ui"
)

type assessOptions struct {
	age      int
	gender   string
	sleep    float64
	caffeine float64
	chart    string
	json     bool
}

var assessFlags assessOptions

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "compare sleep and caffeine with your age group",
	Example: `  $ restwell assess --age 20 --gender female --sleep 5
  $ restwell assess --age 45 --gender male --sleep 6.5 --caffeine 300 --chart out.svg`,
	Args: cobra.NoArgs,
	RunE: runAssess,
}

func init() {
	f := assessCmd.Flags()
	f.IntVar(&assessFlags.age, "age", 0, "age in years")
	f.StringVar(&assessFlags.gender, "gender", "", "male or female")
	f.Float64Var(&assessFlags.sleep, "sleep", 0, "hours of sleep per night")
	f.Float64Var(&assessFlags.caffeine, "caffeine", 0, "caffeine in mg/day (estimated when omitted)")
	f.StringVar(&assessFlags.chart, "chart", "", "write the chart to this .svg or .png file")
	f.BoolVar(&assessFlags.json, "json", false, "print the raw report as JSON")
}

func runAssess(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	in := baseline.Input{
		Age:        assessFlags.age,
		Gender:     assessFlags.gender,
		SleepHours: assessFlags.sleep,
	}
	if cmd.Flags().Changed("caffeine") {
		mg := assessFlags.caffeine
		in.CaffeineMg = &mg
	}
	if err := in.Validate(); err != nil {
		ui.PrintError(out, "%v", err)
		return err
	}

	var format client.ChartFormat
	if assessFlags.chart != "" {
		switch strings.ToLower(filepath.Ext(assessFlags.chart)) {
		case ".svg":
			format = client.ChartSVG
		case ".png":
			format = client.ChartPNG
		default:
			err := fmt.Errorf("chart file must end in .svg or .png: %s", assessFlags.chart)
			ui.PrintError(out, "%v", err)
			return err
		}
	}

	c, err := newClient()
	if err != nil {
		ui.PrintError(out, "failed to create client: %v", err)
		return err
	}

	report, err := c.Assess(cmd.Context(), in)
	if err != nil {
		ui.PrintError(out, "assessment failed: %v", err)
		return err
	}

	if assessFlags.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
	} else {
		fmt.Fprintln(out, ui.RenderReport(report))
	}

	if format != "" {
		data, err := c.Chart(cmd.Context(), format, in)
		if err != nil {
			ui.PrintError(out, "chart download failed: %v", err)
			return err
		}
		if err := os.WriteFile(assessFlags.chart, data, 0o644); err != nil {
			ui.PrintError(out, "failed to write chart: %v", err)
			return err
		}
		ui.PrintSuccess(out, "chart written to %s", assessFlags.chart)
	}
	return nil
}
