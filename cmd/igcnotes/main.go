package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	igcroute "github.com/lucasjlepore/igc-route"
	"github.com/lucasjlepore/igc-route/route"
)

func main() {
	var (
		level    = flag.String("level", "medium", "Route detail level: low|medium|high")
		jsonOut  = flag.Bool("json", false, "Emit full analysis as JSON")
		showLegs = flag.Bool("legs", false, "Include a leg-by-leg route table in text output")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <path-to-igc-file>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}
	lvl, err := route.ParseLevel(*level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}

	filePath := flag.Arg(0)
	analysis, err := igcroute.AnalyzeFile(filePath, igcroute.Config{Level: lvl})
	if err != nil {
		fmt.Fprintf(os.Stderr, "analysis failed: %v\n", err)
		os.Exit(1)
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(analysis); err != nil {
			fmt.Fprintf(os.Stderr, "json encode failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Println(analysis.Notes)
	if *showLegs && len(analysis.Structure.Legs) > 0 {
		fmt.Println()
		fmt.Println("Leg Summary")
		for _, leg := range analysis.Structure.Legs {
			fmt.Printf(
				"- Leg %02d | %-8s -> %-8s | %7.2f km | %5.1f deg | %+6d m | %6ds\n",
				leg.Index,
				leg.From,
				leg.To,
				leg.DistanceKm,
				leg.BearingDeg,
				leg.AltitudeChangeM,
				leg.DurationSeconds,
			)
		}
	}
}
