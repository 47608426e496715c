package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/woozymasta/heatlayers/internal/config"
	"github.com/woozymasta/heatlayers/internal/dataset"
	"github.com/woozymasta/heatlayers/internal/geo"
	"github.com/woozymasta/heatlayers/internal/histogram"

	"github.com/jessevdk/go-flags"
	"gopkg.in/yaml.v3"
)

type Options struct {
	Input      string `short:"i" long:"in"        description:"Point document ([[lat, lng, weight], ...]). Reads from stdin if empty"`
	Output     string `short:"o" long:"out"       description:"Output file path. Writes to stdout if empty"`
	ConfigFile string `short:"c" long:"config"    env:"CONFIG_FILE" description:"Configuration file to take the bounding box from"`
	Format     string `short:"f" long:"format"    description:"Output format" choice:"text" choice:"json" choice:"yaml" default:"text"`
	Bins       int    `short:"b" long:"bins"      description:"Suggested number of buckets" default:"4"`
	NoBounds   bool   `short:"n" long:"no-bounds" description:"Do not filter points to the bounding box"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	box := geo.SanFrancisco
	if opts.ConfigFile != "" {
		cfg, err := config.Load(opts.ConfigFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
			os.Exit(1)
		}
		box = cfg.Bounds
	}

	// Read Input
	var in io.Reader = os.Stdin
	if opts.Input != "" {
		f, err := os.Open(opts.Input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading input file: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()
		in = f
	}

	points, err := dataset.Decode(in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error decoding points: %v\n", err)
		os.Exit(1)
	}

	total := len(points)
	if !opts.NoBounds {
		points = geo.Filter(points, box)
	}

	bins := histogram.Build(geo.Weights(points), opts.Bins)

	outputData, err := format(bins, opts.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling data: %v\n", err)
		os.Exit(1)
	}

	if opts.Output != "" {
		err = os.WriteFile(opts.Output, outputData, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Bucketed %d of %d points into %d bins to %s (format: %s)\n",
			histogram.Total(bins), total, len(bins), opts.Output, opts.Format)
	} else {
		fmt.Print(string(outputData))
	}
}

func format(bins []histogram.Bin, kind string) ([]byte, error) {
	switch kind {
	case "yaml":
		return yaml.Marshal(bins)
	case "json":
		data, err := json.MarshalIndent(bins, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	}

	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "from\tto\tcount\t")
	for _, b := range bins {
		fmt.Fprintf(tw, "%g\t%g\t%d\t\n", b.Lower, b.Upper, b.Count)
	}
	if err := tw.Flush(); err != nil {
		return nil, err
	}

	return []byte(sb.String()), nil
}
