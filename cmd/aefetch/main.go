// Command aefetch fetches the A&E waiting-time feed once and prints the
// normalized hospitals, sorted the same way the API sorts them. With -file
// it reads a saved payload instead, which is handy for checking fixtures.
//
// Usage:
//
//	go run ./cmd/aefetch -sort nearest -lat 22.3193 -lng 114.1694 -triage III
//	go run ./cmd/aefetch -file testdata/aedwtdata-en.json -json
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/couchcryptid/ae-wait-service/internal/adapter/feed"
	"github.com/couchcryptid/ae-wait-service/internal/config"
	"github.com/couchcryptid/ae-wait-service/internal/domain"
	"github.com/couchcryptid/ae-wait-service/internal/hospital"
	"github.com/couchcryptid/ae-wait-service/internal/observability"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	primary  string
	fallback string
	file     string
	timeout  time.Duration
	sort     domain.SortMode
	triage   domain.TriageCategory
	lang     domain.Language
	user     *domain.Coordinate
	asJSON   bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	fs := flag.NewFlagSet("aefetch", flag.ContinueOnError)
	fs.SetOutput(stderr)

	primary := fs.String("primary", config.DefaultFeedPrimaryURL, "primary feed URL")
	fallback := fs.String("fallback", config.DefaultFeedFallbackURL, "fallback feed URL")
	file := fs.String("file", "", "read a saved feed payload instead of fetching")
	timeout := fs.Duration("timeout", 10*time.Second, "per-endpoint request timeout")
	sortMode := fs.String("sort", "waiting", "sort order: waiting, name or nearest")
	triage := fs.String("triage", "III", "triage category: I, II, III or IV_V")
	lang := fs.String("lang", "en", "display language: en or zh-HK")
	lat := fs.String("lat", "", "user latitude")
	lng := fs.String("lng", "", "user longitude")
	asJSON := fs.Bool("json", false, "print JSON instead of a table")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	opts := options{
		primary:  *primary,
		fallback: *fallback,
		file:     *file,
		timeout:  *timeout,
		asJSON:   *asJSON,
	}

	var ok bool
	if opts.sort, ok = domain.ParseSortMode(*sortMode); !ok {
		return options{}, fmt.Errorf("invalid -sort %q", *sortMode)
	}
	if opts.triage, ok = domain.ParseTriageCategory(*triage); !ok {
		return options{}, fmt.Errorf("invalid -triage %q", *triage)
	}
	if opts.lang, ok = domain.ParseLanguage(*lang); !ok {
		return options{}, fmt.Errorf("invalid -lang %q", *lang)
	}

	if *lat != "" || *lng != "" {
		la, errLat := strconv.ParseFloat(*lat, 64)
		ln, errLng := strconv.ParseFloat(*lng, 64)
		if errLat != nil || errLng != nil {
			return options{}, errors.New("-lat and -lng must both be numbers")
		}
		if math.IsNaN(la) || math.IsInf(la, 0) || la < -90 || la > 90 ||
			math.IsNaN(ln) || math.IsInf(ln, 0) || ln < -180 || ln > 180 {
			return options{}, errors.New("-lat and -lng must be finite coordinates in range")
		}
		opts.user = &domain.Coordinate{Lat: la, Lng: ln}
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(stderr, err)
		}
		return 2
	}

	directory, err := hospital.Default()
	if err != nil {
		fmt.Fprintf(stderr, "load hospital directory: %v\n", err)
		return 1
	}
	normalizer := domain.NewNormalizer(directory, domain.DefaultWaitThresholds)

	var records []domain.HospitalWaitingTime
	if opts.file != "" {
		records, err = loadFile(opts.file, normalizer)
	} else {
		records, err = fetch(ctx, opts, normalizer, stderr)
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	snap := domain.NewSnapshot(records, time.Now())
	records = domain.LocalizeHospitals(records, opts.lang)
	records = domain.WithDistances(records, opts.user)
	records = domain.SortHospitalsForLanguage(records, opts.sort, opts.triage, opts.user, opts.lang)

	if opts.asJSON {
		snap.Hospitals = records
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(snap); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		return 0
	}

	printTable(stdout, records, opts)
	if domain.IsSourceDataStaleNow(snap.UpdateTime, domain.DefaultStaleAfter) {
		fmt.Fprintf(stdout, "\nwarning: source data last updated %s is stale\n", snap.UpdateTime)
	}
	return 0
}

func fetch(ctx context.Context, opts options, normalizer *domain.Normalizer, stderr io.Writer) ([]domain.HospitalWaitingTime, error) {
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	metrics := observability.NewMetricsForTesting()
	client := feed.NewClient(normalizer, opts.timeout, logger, metrics)
	return feed.NewFetcher(client, opts.primary, opts.fallback, logger, metrics).FetchWaitingTimes(ctx)
}

func loadFile(path string, normalizer *domain.Normalizer) ([]domain.HospitalWaitingTime, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	batch, err := domain.DecodePayload(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return normalizer.NormalizeBatch(batch)
}

func printTable(w io.Writer, records []domain.HospitalWaitingTime, opts options) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "HOSPITAL\tCLUSTER\tWAIT (%s)\tSTATUS\tDISTANCE\n", opts.triage)
	for _, h := range records {
		entry := h.Triage[opts.triage]
		distance := "-"
		if h.DistanceKm != nil {
			distance = domain.FormatDistanceKm(*h.DistanceKm, opts.lang)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			h.HospitalName,
			domain.ClusterDisplayName(h.Details.Cluster, opts.lang),
			entry.WaitingTimeText,
			entry.WaitStatus,
			distance,
		)
	}
	tw.Flush() //nolint:errcheck // terminal output
}
