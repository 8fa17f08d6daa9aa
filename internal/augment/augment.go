package augment

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/benchforge/goldgraph/internal/schema"
)

var whitespaceRun = regexp.MustCompile(`\s+`)
var trailingPeriods = regexp.MustCompile(`\.*$`)

// TidyText collapses whitespace and leaves exactly one trailing period.
func TidyText(s string) string {
	if s == "" {
		return ""
	}
	s = strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
	if s == "" {
		return ""
	}
	return trailingPeriods.ReplaceAllString(s, ".")
}

// Stats summarizes one augmentation pass.
type Stats struct {
	Databases          int
	MissingFKDescs     int
	MissingColumnDescs int
}

// Database rewrites one raw payload entry in place: foreign_key_descriptions
// gets one entry per foreign key and column_descriptions is aligned with
// column_names_original. descs may be empty, in which case every summary
// still carries the reference sentence.
func Database(raw *schema.RawDatabase, descs DescriptionMap, stats *Stats) error {
	tables := raw.TableNamesOriginal
	columns := raw.ColumnNamesOriginal

	ref := func(idx int, side string, fkIdx int) (string, string, error) {
		if idx < 0 || idx >= len(columns) {
			return "", "", fmt.Errorf("foreign key %d: %s column index %d out of range", fkIdx, side, idx)
		}
		cn := columns[idx]
		if cn.TableIndex < 0 || cn.TableIndex >= len(tables) {
			return "", "", fmt.Errorf("foreign key %d: %s column %q has table index %d out of range", fkIdx, side, cn.Name, cn.TableIndex)
		}
		return tables[cn.TableIndex], cn.Name, nil
	}

	fkDescs := make([]schema.FKDescription, 0, len(raw.ForeignKeys))
	for i, pair := range raw.ForeignKeys {
		childTable, childColumn, err := ref(pair.ChildIndex, "child", i)
		if err != nil {
			return err
		}
		parentTable, parentColumn, err := ref(pair.ParentIndex, "parent", i)
		if err != nil {
			return err
		}

		childDesc := descs.Lookup(childTable, childColumn)
		parentDesc := descs.Lookup(parentTable, parentColumn)
		if childDesc == "" && parentDesc == "" {
			stats.MissingFKDescs++
		}

		fkDescs = append(fkDescs, schema.FKDescription{
			ChildTable:        childTable,
			ChildColumn:       childColumn,
			ParentTable:       parentTable,
			ParentColumn:      parentColumn,
			ChildDescription:  childDesc,
			ParentDescription: parentDesc,
			Summary:           summarize(childTable, childColumn, parentTable, parentColumn, childDesc, parentDesc),
			Usage:             fmt.Sprintf("Foreign key linking %s.%s to %s.%s", childTable, childColumn, parentTable, parentColumn),
		})
	}
	raw.ForeignKeyDescriptions = fkDescs

	colDescs := make([]string, 0, len(columns))
	for _, cn := range columns {
		if cn.TableIndex == -1 {
			colDescs = append(colDescs, "")
			continue
		}
		desc := ""
		if cn.TableIndex < len(tables) {
			desc = descs.Lookup(tables[cn.TableIndex], cn.Name)
		}
		if desc == "" {
			stats.MissingColumnDescs++
		}
		colDescs = append(colDescs, desc)
	}
	raw.ColumnDescriptions = colDescs

	stats.Databases++
	return nil
}

// summarize builds the FK summary sentence: the reference statement plus
// whichever column description adds information. The child description is
// preferred; the parent's is used when the child's duplicates or subsumes it.
func summarize(childTable, childColumn, parentTable, parentColumn, childDesc, parentDesc string) string {
	parts := []string{fmt.Sprintf("%s.%s references %s.%s.", childTable, childColumn, parentTable, parentColumn)}

	c := strings.TrimSpace(childDesc)
	p := strings.TrimSpace(parentDesc)
	switch {
	case c != "" && (p == "" || !strings.Contains(normKey(c), normKey(p))):
		parts = append(parts, c)
	case p != "":
		parts = append(parts, p)
	}

	return TidyText(strings.Join(parts, " "))
}

// Run augments every database of a payload, harvesting descriptions from
// the database directories under roots. A database without a directory is
// augmented with bare reference sentences.
func Run(raws []*schema.RawDatabase, roots []string, logger *slog.Logger) (Stats, error) {
	var stats Stats
	for _, raw := range raws {
		if raw.DBID == "" {
			continue
		}
		descs := make(DescriptionMap)
		if dir, ok := FindDBDir(roots, raw.DBID); ok {
			descs = LoadDescriptions(dir, logger)
		} else {
			logger.Warn("no database directory found", "db_id", raw.DBID)
		}
		if err := Database(raw, descs, &stats); err != nil {
			return stats, &schema.Error{DBID: raw.DBID, Message: err.Error()}
		}
		logger.Debug("database augmented", "db_id", raw.DBID, "foreign_keys", len(raw.ForeignKeyDescriptions))
	}
	return stats, nil
}
