// Command plangen generates a training plan from a YAML selections file without running the web server.
//
//	plangen -selections selections.yaml -format markdown
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/myrjola/coachplan/internal/training"
	"github.com/myrjola/coachplan/internal/workout"
	"gopkg.in/yaml.v3"
)

const (
	exitOK      = 0
	exitError   = 1
	exitInvalid = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, time.Now))
}

func run(args []string, stdout, stderr io.Writer, now func() time.Time) int {
	fs := flag.NewFlagSet("plangen", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		selectionsPath = fs.String("selections", "", "path to the YAML wizard selections, - for stdin")
		timestamp      = fs.Bool("timestamp", false, "append the creation timestamp to the plan id")
		format         = fs.String("format", "json", "output format: json or markdown")
	)
	if err := fs.Parse(args); err != nil {
		return exitInvalid
	}
	if *selectionsPath == "" {
		_, _ = fmt.Fprintln(stderr, "plangen: -selections is required")
		fs.Usage()
		return exitInvalid
	}
	if *format != "json" && *format != "markdown" {
		_, _ = fmt.Fprintf(stderr, "plangen: unknown format %q\n", *format)
		return exitInvalid
	}

	sel, err := readSelections(*selectionsPath)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "plangen: %v\n", err)
		return exitError
	}
	if result := training.ValidateWizardInputs(sel); !result.Valid {
		for _, msg := range result.Errors {
			_, _ = fmt.Fprintf(stderr, "invalid selections: %s\n", msg)
		}
		return exitInvalid
	}
	for _, w := range training.ValidatePlanBalance(sel) {
		_, _ = fmt.Fprintf(stderr, "%s: %s\n", w.Type, w.Message)
	}

	generator := training.NewGenerator(training.DefaultCatalog(), training.DefaultLandmarks(), training.WithClock(now))
	plan := generator.GeneratePlan(sel, training.GenerateOptions{AppendTimestamp: *timestamp})

	if *format == "markdown" {
		_, _ = io.WriteString(stdout, workout.ExportMarkdown(plan))
		return exitOK
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err = enc.Encode(plan); err != nil {
		_, _ = fmt.Fprintf(stderr, "plangen: encode plan: %v\n", err)
		return exitError
	}
	return exitOK
}

func readSelections(path string) (training.WizardSelections, error) {
	var (
		sel  training.WizardSelections
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return sel, fmt.Errorf("read selections: %w", err)
	}
	if err = yaml.Unmarshal(data, &sel); err != nil {
		return sel, fmt.Errorf("unmarshal selections: %w", err)
	}
	return sel, nil
}
