// Package main fits the elongation parameters r and k of one organ subtype
// to an observed length series using Nelder-Mead.
//
// The input CSV has a header and two columns: day, length.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"

	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/sprout/config"
	"github.com/pthm-cable/sprout/growth"
)

func main() {
	dataPath := flag.String("data", "", "CSV file of observed day,length pairs")
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	subtype := flag.Int("subtype", 1, "root subtype to calibrate")
	outPath := flag.String("out", "", "write fitted config YAML here (empty = print only)")
	flag.Parse()

	if *dataPath == "" {
		log.Fatal("--data is required")
	}

	days, lengths, err := readSeries(*dataPath)
	if err != nil {
		log.Fatalf("reading observed series: %v", err)
	}
	if len(days) < 2 {
		log.Fatalf("need at least 2 observations, got %d", len(days))
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	axis := findRoot(cfg, *subtype)
	if axis == nil {
		log.Fatalf("config has no root subtype %d", *subtype)
	}

	// Sum of squared residuals of the negative exponential growth curve.
	// x[0] = r, x[1] = k, both forced positive.
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			r, k := x[0], x[1]
			if r <= 0 || k <= 0 {
				return math.Inf(1)
			}
			var sse float64
			for i, t := range days {
				d := growth.TargetLength(r, k, t) - lengths[i]
				sse += d * d
			}
			return sse
		},
	}

	initX := []float64{axis.R.Mean, axis.MaxLength.Mean}
	result, err := optimize.Minimize(problem, initX, nil, &optimize.NelderMead{})
	if err != nil {
		log.Fatalf("optimization failed: %v", err)
	}
	if err := result.Status.Err(); err != nil {
		log.Fatalf("optimization did not converge: %v", err)
	}

	r, k := result.X[0], result.X[1]
	rmse := math.Sqrt(result.F / float64(len(days)))
	fmt.Printf("fitted subtype %d over %d observations\n", *subtype, len(days))
	fmt.Printf("  r = %.4f cm/day   (was %.4f)\n", r, axis.R.Mean)
	fmt.Printf("  k = %.4f cm       (was %.4f)\n", k, axis.MaxLength.Mean)
	fmt.Printf("  rmse = %.4f cm\n", rmse)

	if *outPath != "" {
		axis.R.Mean = r
		axis.MaxLength.Mean = k
		if err := cfg.WriteYAML(*outPath); err != nil {
			log.Fatalf("writing fitted config: %v", err)
		}
		fmt.Printf("fitted config saved to %s\n", *outPath)
	}
}

func findRoot(cfg *config.Config, subtype int) *config.AxisConfig {
	for i := range cfg.Roots {
		if cfg.Roots[i].SubType == subtype {
			return &cfg.Roots[i]
		}
	}
	return nil
}

func readSeries(path string) (days, lengths []float64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, err
	}
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		if len(row) < 2 {
			return nil, nil, fmt.Errorf("row %d: need day,length columns", i+1)
		}
		d, err := strconv.ParseFloat(row[0], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("row %d: bad day %q: %w", i+1, row[0], err)
		}
		l, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("row %d: bad length %q: %w", i+1, row[1], err)
		}
		days = append(days, d)
		lengths = append(lengths, l)
	}
	return days, lengths, nil
}
