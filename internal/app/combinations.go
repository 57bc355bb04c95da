package app

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"horse.fit/textra/internal/language"
	"horse.fit/textra/internal/textra"
)

const (
	outputFormatTable = "table"
	outputFormatJSON  = "json"
)

func parseOutputFormat(raw, defaultFormat string) (string, error) {
	format := strings.TrimSpace(strings.ToLower(raw))
	if format == "" {
		format = strings.TrimSpace(strings.ToLower(defaultFormat))
	}
	switch format {
	case outputFormatTable, outputFormatJSON:
		return format, nil
	default:
		return "", fmt.Errorf("--format must be table or json")
	}
}

func runCombinations(args []string) int {
	fs := flag.NewFlagSet("combinations", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	mode := fs.String("mode", "", "Only list this mode")
	from := fs.String("from", "", "Only list this source language")
	formatRaw := fs.String("format", outputFormatTable, "Output format: table or json")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	format, err := parseOutputFormat(*formatRaw, outputFormatTable)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	var selected textra.Mode
	if strings.TrimSpace(*mode) != "" {
		selected, err = textra.ParseMode(*mode)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid --mode: %v\n", err)
			return 2
		}
	}

	items := textra.DefaultCombinations().Filter(selected, language.FormatCode(*from))
	if err := writeCombinations(os.Stdout, items, format); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write combinations: %v\n", err)
		return 1
	}
	return 0
}

func writeCombinations(w io.Writer, items []textra.Combination, format string) error {
	if format == outputFormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "MODE\tFROM\tTO\tENDPOINT")
	for _, item := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s_%s_%s\n",
			item.Mode, item.Source, item.Target,
			item.Mode.Slug(), item.Source, item.Target)
	}
	return tw.Flush()
}

func runCheck(args []string) int {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	mode := fs.String("mode", string(textra.ModeGeneral), "Engine mode")
	from := fs.String("from", "", "Source language")
	to := fs.String("to", "", "Target language")
	quiet := fs.Bool("quiet", false, "Only set the exit code")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	valid, err := checkCombination(*mode, *from, *to)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if !*quiet {
		status := "unsupported"
		if valid {
			status = "supported"
		}
		fmt.Printf("%s %s -> %s: %s\n", *mode, language.FormatCode(*from), language.FormatCode(*to), status)
	}
	if !valid {
		return 1
	}
	return 0
}

func checkCombination(mode, from, to string) (bool, error) {
	opts := textra.NewOptions().SetLang(from, to)
	if err := opts.SetModeName(mode); err != nil {
		return false, err
	}
	return opts.IsCombinationValid()
}
