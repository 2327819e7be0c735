// Command searchdemo exercises the engine from the console: it indexes a
// small corpus (reporting rejected documents and carrying on), removes
// duplicates, runs ranked and filtered queries, matches documents, prints
// paginated results and the request-window statistics.
//
// Usage:
//
//	go run ./cmd/searchdemo [-stop-words "and with"] [-page-size 2]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/paginator"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/service"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/tracing"
)

var demoDocuments = []ingestion.Document{
	{ID: 1, Text: "funny pet and nasty rat", Ratings: []int{7, 2, 7}},
	{ID: 2, Text: "funny pet with curly hair", Ratings: []int{1, 2}},
	{ID: 3, Text: "funny pet with curly hair", Ratings: []int{1, 2}},
	{ID: 4, Text: "funny pet and curly hair", Ratings: []int{1, 2}},
	{ID: 5, Text: "funny funny pet and nasty nasty rat", Ratings: []int{1, 2}},
	{ID: 6, Text: "funny pet and not very nasty rat", Ratings: []int{1, 2}},
	{ID: 7, Text: "very nasty rat and not very funny pet", Ratings: []int{1, 2}},
	{ID: 8, Text: "pet with rat and rat and rat", Ratings: []int{1, 2}},
	{ID: 9, Text: "nasty rat with curly hair", Ratings: []int{1, 2}},
	{ID: 9, Text: "duplicate id is rejected", Ratings: []int{1}},
	{ID: -1, Text: "negative id is rejected", Ratings: []int{1}},
	{ID: 10, Text: "big dog sparro\x12w", Ratings: []int{1}},
	{ID: 11, Text: "curly dog and fancy collar", Status: index.StatusBanned, Ratings: []int{9}},
}

func main() {
	stopWords := flag.String("stop-words", "and with", "space-separated stop words")
	pageSize := flag.Int("page-size", 2, "documents per printed page")
	logLevel := flag.String("log-level", "info", "log level")
	flag.Parse()

	logger.Setup(*logLevel, "text")
	if err := run(os.Stdout, *stopWords, *pageSize); err != nil {
		fmt.Fprintf(os.Stderr, "searchdemo: %v\n", err)
		os.Exit(1)
	}
}

func run(out io.Writer, stopWords string, pageSize int) error {
	ctx := context.Background()
	engine, err := indexer.NewEngineFromText(stopWords)
	if err != nil {
		return err
	}
	svc := service.New(engine, service.WithRequestWindow(5))

	for i, err := range svc.AddDocuments(ctx, demoDocuments) {
		if err != nil {
			fmt.Fprintf(out, "Error adding document %d: %v\n", demoDocuments[i].ID, err)
		}
	}

	fmt.Fprintf(out, "Before duplicates removed: %d\n", svc.Stats().Index.Documents)
	removeDuplicates(ctx, out, svc)
	fmt.Fprintf(out, "After duplicates removed: %d\n", svc.Stats().Index.Documents)

	fmt.Fprintln(out, "ACTUAL by default:")
	if err := printSearch(ctx, out, svc, "curly nasty rat", index.StatusActual); err != nil {
		return err
	}
	fmt.Fprintln(out, "BANNED:")
	if err := printSearch(ctx, out, svc, "curly dog", index.StatusBanned); err != nil {
		return err
	}
	fmt.Fprintln(out, "Even ids:")
	even, err := svc.SearchFunc(ctx, "funny pet", func(id int, _ index.Status, _ int) bool { return id%2 == 0 })
	if err != nil {
		return err
	}
	printDocuments(out, even.Documents)

	if _, err := svc.Search(ctx, "curly --rat", index.StatusActual); err != nil {
		fmt.Fprintf(out, "Error in query: %v\n", err)
	}

	fmt.Fprintln(out, "Matching \"curly nasty -funny\":")
	matches, err := svc.MatchAll("curly nasty -funny")
	if err != nil {
		return err
	}
	for _, m := range matches {
		fmt.Fprintf(out, "{ document_id = %d, status = %s, words =", m.ID, m.Status)
		for _, w := range m.Words {
			fmt.Fprintf(out, " %s", w)
		}
		fmt.Fprintln(out, " }")
	}

	res, err := svc.Search(ctx, "curly dog pet", index.StatusActual)
	if err != nil {
		return err
	}
	for page := range paginator.Pages(res.Documents, pageSize) {
		printDocuments(out, page.Items)
		fmt.Fprintln(out, "Page break")
	}

	for _, q := range []string{"empty request", "sparrow", "big collar"} {
		if _, err := svc.Search(ctx, q, index.StatusActual); err != nil {
			return err
		}
	}
	stats := svc.RequestStats()
	fmt.Fprintf(out, "Total empty requests: %d of last %d\n", stats.NoResultRequests, stats.Requests)
	return nil
}

func removeDuplicates(ctx context.Context, out io.Writer, svc *service.Service) {
	defer tracing.LogDuration(slog.Default(), "remove duplicates")()
	removed, err := svc.RemoveDuplicates(ctx)
	if err != nil {
		fmt.Fprintf(out, "Error removing duplicates: %v\n", err)
		return
	}
	for _, id := range removed {
		fmt.Fprintf(out, "Found duplicate document id %d\n", id)
	}
}

func printSearch(ctx context.Context, out io.Writer, svc *service.Service, raw string, status index.Status) error {
	defer tracing.LogDuration(slog.Default(), "search "+raw)()
	res, err := svc.Search(ctx, raw, status)
	if err != nil {
		return err
	}
	printDocuments(out, res.Documents)
	return nil
}

func printDocuments(out io.Writer, docs []ranker.ScoredDoc) {
	for _, d := range docs {
		fmt.Fprintf(out, "{ document_id = %d, relevance = %g, rating = %d }\n", d.ID, d.Relevance, d.Rating)
	}
}
