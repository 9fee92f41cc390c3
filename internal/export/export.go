// Package export writes mining results to files in machine-readable formats.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/market-basket/internal/apriori"
	"github.com/Veraticus/market-basket/internal/common"
	"github.com/Veraticus/market-basket/internal/model"
	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Format names an output encoding.
type Format string

// Supported formats.
const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// itemSeparator joins the items of one itemset inside a CSV cell. Cleaned
// item labels never contain it.
const itemSeparator = ";"

// Formats lists the supported formats in display order.
func Formats() []Format {
	return []Format{FormatCSV, FormatJSON, FormatYAML}
}

// ParseFormat resolves a user-supplied format name. "yml" is accepted for YAML.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q (want csv, json or yaml)", common.ErrUnsupportedFormat, s)
	}
}

// FormatFromPath infers a format from a file extension.
func FormatFromPath(path string) (Format, error) {
	i := strings.LastIndex(path, ".")
	if i < 0 || i == len(path)-1 {
		return "", fmt.Errorf("%w: %q has no extension", common.ErrUnsupportedFormat, path)
	}
	return ParseFormat(path[i+1:])
}

// Write encodes result to w in the given format.
func Write(w io.Writer, format Format, result *model.RunResult) error {
	if result == nil {
		return fmt.Errorf("export: nil result")
	}

	switch format {
	case FormatCSV:
		return writeCSV(w, result)
	case FormatJSON:
		return writeJSON(w, result)
	case FormatYAML:
		return writeYAML(w, result)
	default:
		return fmt.Errorf("%w: %q", common.ErrUnsupportedFormat, format)
	}
}

var csvHeader = []string{"kind", "antecedent", "consequent", "size", "support", "count", "confidence", "lift"}

// writeCSV emits one row per itemset followed by one row per rule. Itemset
// rows carry their items in the antecedent column.
func writeCSV(w io.Writer, result *model.RunResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, s := range result.Itemsets {
		row := []string{"itemset", strings.Join(s.Items, itemSeparator), "", strconv.Itoa(s.Len()), metric(s.Support), strconv.Itoa(s.Count), "", ""}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write itemset %v: %w", s.Items, err)
		}
	}

	for _, r := range result.Rules {
		row := []string{
			"rule",
			strings.Join(r.Antecedent, itemSeparator),
			strings.Join(r.Consequent, itemSeparator),
			strconv.Itoa(len(r.Antecedent) + len(r.Consequent)),
			metric(r.Support),
			"",
			metric(r.Confidence),
			metric(r.Lift),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write rule %s: %w", r, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

func metric(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

type document struct {
	Run      runDoc       `json:"run" yaml:"run"`
	Itemsets []itemsetDoc `json:"itemsets" yaml:"itemsets"`
	Rules    []ruleDoc    `json:"rules" yaml:"rules"`
}

type runDoc struct {
	CreatedAt     time.Time `json:"created_at" yaml:"created_at"`
	ID            string    `json:"id" yaml:"id"`
	Baskets       string    `json:"baskets" yaml:"baskets"`
	MinSupport    float64   `json:"min_support" yaml:"min_support"`
	MinConfidence float64   `json:"min_confidence" yaml:"min_confidence"`
	MaxLength     int       `json:"max_length,omitempty" yaml:"max_length,omitempty"`
	Transactions  int       `json:"transactions" yaml:"transactions"`
	Items         int       `json:"items" yaml:"items"`
	DurationMS    int64     `json:"duration_ms" yaml:"duration_ms"`
}

type itemsetDoc struct {
	Items   []string `json:"items" yaml:"items,flow"`
	Support float64  `json:"support" yaml:"support"`
	Count   int      `json:"count" yaml:"count"`
}

type ruleDoc struct {
	Antecedent []string `json:"antecedent" yaml:"antecedent,flow"`
	Consequent []string `json:"consequent" yaml:"consequent,flow"`
	Support    float64  `json:"support" yaml:"support"`
	Confidence float64  `json:"confidence" yaml:"confidence"`
	Lift       float64  `json:"lift" yaml:"lift"`
}

func newDocument(result *model.RunResult) document {
	run := result.Run
	doc := document{
		Run: runDoc{
			ID:            run.ID,
			CreatedAt:     run.CreatedAt.UTC(),
			Baskets:       run.Source,
			MinSupport:    run.MinSupport,
			MinConfidence: run.MinConfidence,
			MaxLength:     run.MaxLength,
			Transactions:  run.TransactionCount,
			Items:         run.ItemCount,
			DurationMS:    run.Duration.Milliseconds(),
		},
		Itemsets: make([]itemsetDoc, len(result.Itemsets)),
		Rules:    make([]ruleDoc, len(result.Rules)),
	}
	for i, s := range result.Itemsets {
		doc.Itemsets[i] = itemsetDoc{Items: s.Items, Support: s.Support, Count: s.Count}
	}
	for i, r := range result.Rules {
		doc.Rules[i] = ruleDoc{Antecedent: r.Antecedent, Consequent: r.Consequent, Support: r.Support, Confidence: r.Confidence, Lift: r.Lift}
	}
	return doc
}

func writeJSON(w io.Writer, result *model.RunResult) error {
	data, err := json.MarshalIndent(newDocument(result), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write json: %w", err)
	}
	return nil
}

func writeYAML(w io.Writer, result *model.RunResult) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(newDocument(result)); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finish yaml: %w", err)
	}
	return nil
}

// Read decodes a JSON or YAML export back into a run result. CSV exports are
// lossy and cannot be read back.
func Read(r io.Reader, format Format) (*model.RunResult, error) {
	var doc document
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode json: %w", err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: cannot read %q exports", common.ErrUnsupportedFormat, format)
	}
	return doc.result(), nil
}

func (d document) result() *model.RunResult {
	res := &model.RunResult{
		Run: model.MiningRun{
			ID:               d.Run.ID,
			CreatedAt:        d.Run.CreatedAt,
			Source:           d.Run.Baskets,
			MinSupport:       d.Run.MinSupport,
			MinConfidence:    d.Run.MinConfidence,
			MaxLength:        d.Run.MaxLength,
			TransactionCount: d.Run.Transactions,
			ItemCount:        d.Run.Items,
			ItemsetCount:     len(d.Itemsets),
			RuleCount:        len(d.Rules),
			Duration:         time.Duration(d.Run.DurationMS) * time.Millisecond,
		},
		Itemsets: make([]apriori.Itemset, len(d.Itemsets)),
		Rules:    make([]apriori.Rule, len(d.Rules)),
	}
	for i, s := range d.Itemsets {
		res.Itemsets[i] = apriori.Itemset{Items: s.Items, Support: s.Support, Count: s.Count}
	}
	for i, r := range d.Rules {
		res.Rules[i] = apriori.Rule{Antecedent: r.Antecedent, Consequent: r.Consequent, Support: r.Support, Confidence: r.Confidence, Lift: r.Lift}
	}
	return res
}
