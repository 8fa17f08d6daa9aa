package schema

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
)

// Load reads a tables.json payload: a JSON array of database entries.
func Load(path string) ([]*RawDatabase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema payload: %w", err)
	}

	var raws []*RawDatabase
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("parsing schema payload %s: %w", path, err)
	}
	return raws, nil
}

// Cache holds the resolved schemas of one payload, keyed by db_id. All
// schemas resolve at construction time so structural problems surface
// before any question is processed.
type Cache struct {
	byID map[string]*Schema
}

// NewCache resolves every raw database into a cache entry.
func NewCache(raws []*RawDatabase, logger *slog.Logger) (*Cache, error) {
	c := &Cache{byID: make(map[string]*Schema, len(raws))}
	for _, raw := range raws {
		s, err := Build(raw)
		if err != nil {
			return nil, err
		}
		if _, dup := c.byID[s.DBID]; dup {
			return nil, &Error{DBID: s.DBID, Message: "duplicate db_id in payload"}
		}
		c.byID[s.DBID] = s
		logger.Debug("schema resolved",
			"db_id", s.DBID,
			"tables", len(s.Tables),
			"foreign_keys", len(s.ForeignKeys))
	}
	return c, nil
}

// LoadCache loads a payload file and resolves it in one step.
func LoadCache(path string, logger *slog.Logger) (*Cache, error) {
	raws, err := Load(path)
	if err != nil {
		return nil, err
	}
	return NewCache(raws, logger)
}

// NotFoundError reports a db_id absent from the payload. Unlike Error it
// does not mean the payload is corrupt; callers treat it as a bad example.
type NotFoundError struct {
	DBID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("db_id %q not present in schema payload", e.DBID)
}

// Get returns the schema for a db_id.
func (c *Cache) Get(dbID string) (*Schema, error) {
	s, ok := c.byID[dbID]
	if !ok {
		return nil, &NotFoundError{DBID: dbID}
	}
	return s, nil
}

// Len returns the number of cached schemas.
func (c *Cache) Len() int {
	return len(c.byID)
}
