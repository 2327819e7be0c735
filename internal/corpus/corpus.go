// Package corpus loads the initial document set from a YAML file or a
// PostgreSQL table. Both sources are read-only: the index itself is never
// written back.
package corpus

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"regexp"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/ingestion"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
	"github.com/lib/pq"
	"gopkg.in/yaml.v3"
)

// Corpus is a document list with optional stop words to build the engine
// from.
type Corpus struct {
	StopWords []string             `yaml:"stopWords"`
	Documents []ingestion.Document `yaml:"documents"`
}

// LoadFile reads a corpus from a YAML file:
//
//	stopWords: [and, in, on]
//	documents:
//	  - {id: 1, text: "funny pet", status: ACTUAL, ratings: [7, 2, 7]}
func LoadFile(path string) (*Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading corpus %s: %w", path, err)
	}
	var c Corpus
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing corpus %s: %w", path, err)
	}
	return &c, nil
}

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// LoadPostgres reads every row of table ordered by id. The table has columns
// id integer, text text, status text and ratings integer[].
func LoadPostgres(ctx context.Context, db *sql.DB, table string) ([]ingestion.Document, error) {
	if !tableName.MatchString(table) {
		return nil, apperrors.InvalidArgumentf("invalid corpus table name %q", table)
	}
	query := fmt.Sprintf(`SELECT id, text, status, ratings FROM %s ORDER BY id`, table)
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying corpus table %s: %w", table, err)
	}
	defer rows.Close()

	var docs []ingestion.Document
	for rows.Next() {
		var (
			doc     ingestion.Document
			status  sql.NullString
			ratings []int64
		)
		if err := rows.Scan(&doc.ID, &doc.Text, &status, pq.Array(&ratings)); err != nil {
			return nil, fmt.Errorf("scanning corpus row: %w", err)
		}
		if status.Valid && status.String != "" {
			doc.Status, err = index.ParseStatus(status.String)
			if err != nil {
				return nil, apperrors.InvalidArgumentf("document %d: %v", doc.ID, err)
			}
		}
		doc.Ratings = make([]int, len(ratings))
		for i, r := range ratings {
			doc.Ratings[i] = int(r)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating corpus rows: %w", err)
	}
	return docs, nil
}
