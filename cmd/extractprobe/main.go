package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"pricewatch/internal/config"
	"pricewatch/internal/httpx"
	"pricewatch/internal/scrape"
)

// probeKinds are always tried, in addition to whatever a material configures.
var probeKinds = []string{"table", "anchored"}

func main() {
	var (
		pageURL    string
		pageFile   string
		product    string
		pattern    string
		cfgPath    string
		timeoutSec int
		insecure   bool
	)
	flag.StringVar(&pageURL, "url", "", "page to fetch (overrides configured materials)")
	flag.StringVar(&pageFile, "file", "", "saved HTML page to read instead of fetching")
	flag.StringVar(&product, "product", "Lithium hexafluorophosphate", "product name to look for with -url/-file")
	flag.StringVar(&pattern, "pattern", "", "extra pattern strategy to try, with one capture group")
	flag.StringVar(&cfgPath, "config", os.Getenv("CONFIG_FILE"), "path to config.json (optional)")
	flag.IntVar(&timeoutSec, "timeout", 30, "HTTP timeout seconds")
	flag.BoolVar(&insecure, "insecure", true, "skip TLS verification")
	flag.Parse()

	client := httpx.New(time.Duration(timeoutSec)*time.Second, httpx.WithInsecureTLS(insecure))
	ex := &scrape.Extractor{Client: client}
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSec+5)*time.Second)
	defer cancel()

	var materials []scrape.Material
	if pageURL != "" || pageFile != "" {
		materials = []scrape.Material{{Name: product, Product: product, URL: pageURL}}
	} else {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			log.Fatalf("config: %v", err)
		}
		materials = cfg.Scrape.Materials
	}

	drift := false
	for _, m := range materials {
		var page []byte
		var err error
		switch {
		case pageFile != "":
			page, err = os.ReadFile(pageFile)
		case m.URL == "":
			log.Printf("%s: no source configured, skipping", m.Name)
			continue
		default:
			page, err = ex.FetchPage(ctx, m.URL)
		}
		if err != nil {
			log.Printf("%s: %v", m.Name, err)
			drift = true
			continue
		}
		log.Printf("%s: %d bytes", m.Name, len(page))
		if !probe(m, page, pattern) {
			drift = true
		}
	}
	if drift {
		os.Exit(1)
	}
}

// probe prints one row per strategy and reports whether the material's
// primary strategy still finds a price.
func probe(m scrape.Material, page []byte, pattern string) bool {
	configured := m.Strategies
	if len(configured) == 0 {
		configured = []scrape.StrategyConfig{{Kind: "table"}}
	}
	cfgs := append([]scrape.StrategyConfig{}, configured...)
	for _, k := range probeKinds {
		cfgs = append(cfgs, scrape.StrategyConfig{Kind: k})
	}
	if pattern != "" {
		cfgs = append(cfgs, scrape.StrategyConfig{Kind: "pattern", Pattern: pattern})
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\tSTRATEGY\tRESULT\n", m.Name)
	primaryOK := false
	for i, sc := range cfgs {
		role := "probe"
		if i < len(configured) {
			role = "configured"
		}
		s, err := scrape.NewStrategy(sc)
		if err != nil {
			fmt.Fprintf(tw, "  %s\t%s\tinvalid: %v\n", role, sc.Kind, err)
			continue
		}
		v, err := s.Extract(page, m.Product)
		switch {
		case err == nil:
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", role, s.Name(), v.StringFixed(2))
			if i == 0 {
				primaryOK = true
			}
		case errors.Is(err, scrape.ErrProductNotFound):
			fmt.Fprintf(tw, "  %s\t%s\tproduct not on page\n", role, s.Name())
		default:
			fmt.Fprintf(tw, "  %s\t%s\t%v\n", role, s.Name(), err)
		}
	}
	_ = tw.Flush()

	if !primaryOK {
		log.Printf("%s: primary strategy %q no longer finds a price; markup may have changed", m.Name, configured[0].Kind)
	}
	return primaryOK
}
