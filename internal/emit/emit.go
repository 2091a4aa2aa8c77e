// Package emit turns a Store snapshot plus its LinkGraph into grouped
// JSON output records, one file per group, merging each directive's
// backlink fields in before serialization.
package emit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/mongodb/code-example-tooling/rst-link-audit/internal/rst"
)

// Record is one directive's fully-materialised output: its own options
// plus every non-empty "<field>_back" backlink field.
type Record struct {
	Name       string            `json:"name"`
	Arguments  string            `json:"arguments"`
	Options    map[string]string `json:"options"`
	Content    string            `json:"content"`
	SourceFile string            `json:"source_file"`
	LineNumber int               `json:"line_number"`
	ID         string            `json:"id"`
}

// GroupBy selects how Records are partitioned across output files.
type GroupBy int

const (
	// ByName writes one file per directive name.
	ByName GroupBy = iota
	// BySourceFile writes one file per source file.
	BySourceFile
	// All writes every record to a single file.
	All
)

// ParseGroupBy accepts the CLI's --group-by flag values.
func ParseGroupBy(s string) (GroupBy, error) {
	switch strings.ToLower(s) {
	case "name":
		return ByName, nil
	case "source-file", "sourcefile":
		return BySourceFile, nil
	case "all", "":
		return All, nil
	default:
		return All, fmt.Errorf("unknown group-by %q (want name, source-file, or all)", s)
	}
}

// Records builds one output record per directive currently in store,
// merging in any backlink fields the graph has materialised. The result
// is sorted by source file, then by line number.
func Records(store *rst.Store, graph *rst.LinkGraph) []Record {
	snapshot := store.Snapshot()
	out := make([]Record, 0, len(snapshot))
	for _, d := range snapshot {
		options := make(map[string]string, len(d.Options))
		for k, v := range d.Options {
			options[k] = v
		}
		if graph != nil {
			for field, value := range graph.BackfieldsFor(d.ID) {
				options[field] = value
			}
		}
		out = append(out, Record{
			Name:       d.Name,
			Arguments:  d.Arguments,
			Options:    options,
			Content:    d.Content,
			SourceFile: d.SourceFile,
			LineNumber: d.LineNumber,
			ID:         d.ID,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].SourceFile != out[j].SourceFile {
			return out[i].SourceFile < out[j].SourceFile
		}
		return out[i].LineNumber < out[j].LineNumber
	})
	return out
}

// WriteJSON groups records per groupBy and writes one JSON file per
// group under outDir, creating it if necessary (teacher idiom:
// os.MkdirAll + os.WriteFile, matching aggregate_outputs_to_json).
func WriteJSON(records []Record, outDir string, groupBy GroupBy) ([]string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory %s: %w", outDir, err)
	}

	groups := groupRecords(records, groupBy)

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var written []string
	for _, key := range keys {
		data, err := json.MarshalIndent(groups[key], "", "  ")
		if err != nil {
			return written, fmt.Errorf("marshaling group %q: %w", key, err)
		}
		path := filepath.Join(outDir, sanitizeFilename(key)+".json")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return written, fmt.Errorf("writing %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}

func groupRecords(records []Record, groupBy GroupBy) map[string][]Record {
	groups := map[string][]Record{}
	for _, r := range records {
		var key string
		switch groupBy {
		case ByName:
			key = r.Name
		case BySourceFile:
			key = r.SourceFile
		default:
			key = "all"
		}
		groups[key] = append(groups[key], r)
	}
	return groups
}

func sanitizeFilename(key string) string {
	replacer := strings.NewReplacer(
		string(filepath.Separator), "_",
		"/", "_",
		":", "_",
		" ", "_",
	)
	sanitized := replacer.Replace(key)
	if sanitized == "" {
		return strconv.Itoa(0)
	}
	return sanitized
}
