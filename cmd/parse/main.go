// Command parse runs one parse against Trendyol and prints the result as JSON.
//
//	parse [-single] <product-url>
//	parse -aggregations <slug>
//	parse -products <slug> [-page N]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"trendyol/parser/internal/config"
	"trendyol/parser/internal/container"

	log "github.com/sirupsen/logrus"
)

func main() {
	single := flag.Bool("single", false, "parse only the given page, skip sibling variants")
	aggregations := flag.String("aggregations", "", "print filter aggregations for a category or search slug")
	products := flag.String("products", "", "print one page of products for a category or search slug")
	page := flag.Int("page", 1, "page number for -products")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.SetupLogging(); err != nil {
		log.Fatalf("Failed to configure logging: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	_, parser := container.NewParser(cfg)

	var out interface{}
	switch {
	case *aggregations != "":
		out = parser.GetAggregations(ctx, *aggregations)
	case *products != "":
		out = parser.GetProducts(ctx, *products, *page)
	case flag.NArg() == 1:
		if *single {
			out, err = parser.ParseSingle(ctx, flag.Arg(0))
		} else {
			out, err = parser.Parse(ctx, flag.Arg(0))
		}
		if err != nil {
			log.Fatalf("Parse failed: %v", err)
		}
	default:
		fmt.Fprintln(os.Stderr, "usage: parse [-single] <product-url> | -aggregations <slug> | -products <slug> [-page N]")
		os.Exit(2)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatalf("Failed to encode output: %v", err)
	}
}
