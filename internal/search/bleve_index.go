// Package search keeps a local full-text index of saved notices so they
// can be filtered offline.
package search

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/mapping"
	bleveQuery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/pders01/redlist/internal/notice"
)

// Hit is one matching notice.
type Hit struct {
	ID    string
	Score float64
}

type Index struct {
	idx bleve.Index
}

// Open opens the index at path, creating it when missing. An empty path
// gives an in-memory index.
func Open(path string) (*Index, error) {
	if path == "" {
		idx, err := bleve.NewMemOnly(buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("creating memory index: %w", err)
		}
		return &Index{idx: idx}, nil
	}

	idx, err := bleve.Open(path)
	if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
		if mkErr := os.MkdirAll(filepath.Dir(path), 0o755); mkErr != nil {
			return nil, fmt.Errorf("creating index directory: %w", mkErr)
		}
		idx, err = bleve.New(path, buildIndexMapping())
	}
	if err != nil {
		return nil, fmt.Errorf("opening index %s: %w", path, err)
	}
	return &Index{idx: idx}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = simple.Name

	dm := bleve.NewDocumentMapping()

	// Names are matched without stop words: "AN" or "DE" are real names.
	forename := bleve.NewTextFieldMapping()
	forename.Analyzer = simple.Name
	forename.Store = true

	name := bleve.NewTextFieldMapping()
	name.Analyzer = simple.Name
	name.Store = true

	nationality := bleve.NewTextFieldMapping()
	nationality.Analyzer = keyword.Name

	entityID := bleve.NewTextFieldMapping()
	entityID.Analyzer = keyword.Name
	entityID.Store = true

	dob := bleve.NewTextFieldMapping()
	dob.Analyzer = keyword.Name
	dob.Index = false
	dob.Store = true

	dm.AddFieldMappingsAt("forename", forename)
	dm.AddFieldMappingsAt("name", name)
	dm.AddFieldMappingsAt("nationalities", nationality)
	dm.AddFieldMappingsAt("entity_id", entityID)
	dm.AddFieldMappingsAt("date_of_birth", dob)

	im.DefaultMapping = dm
	return im
}

func document(n *notice.Notice) map[string]any {
	return map[string]any{
		"forename":      n.Forename,
		"name":          n.Name,
		"nationalities": n.Nationalities,
		"entity_id":     n.EntityID,
		"date_of_birth": n.DateOfBirth,
	}
}

// Index adds or replaces n.
func (i *Index) Index(n *notice.Notice) error {
	if n == nil || n.EntityID == "" {
		return fmt.Errorf("notice has no entity id")
	}
	return i.idx.Index(n.EntityID, document(n))
}

// Rebuild replaces the index contents with notices.
func (i *Index) Rebuild(notices []*notice.Notice) error {
	keep := make(map[string]bool, len(notices))
	batch := i.idx.NewBatch()
	for _, n := range notices {
		if n == nil || n.EntityID == "" {
			continue
		}
		keep[n.EntityID] = true
		if err := batch.Index(n.EntityID, document(n)); err != nil {
			return err
		}
	}

	ids, err := i.allIDs()
	if err != nil {
		return err
	}
	for _, id := range ids {
		if !keep[id] {
			batch.Delete(id)
		}
	}
	return i.idx.Batch(batch)
}

func (i *Index) allIDs() ([]string, error) {
	count, err := i.idx.DocCount()
	if err != nil || count == 0 {
		return nil, err
	}
	req := bleve.NewSearchRequestOptions(bleve.NewMatchAllQuery(), int(count), 0, false)
	res, err := i.idx.Search(req)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(res.Hits))
	for _, h := range res.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}

func (i *Index) Remove(id string) error {
	return i.idx.Delete(id)
}

// Search matches every token of query against names (exact and prefix),
// nationality codes and entity ids. Notices must match all tokens.
func (i *Index) Search(query string, limit int) ([]Hit, error) {
	tokens := tokenize(query)
	if len(tokens) == 0 {
		return []Hit{}, nil
	}
	if limit <= 0 {
		limit = 50
	}

	var musts []bleveQuery.Query
	for _, tok := range tokens {
		lower := strings.ToLower(tok)
		var qs []bleveQuery.Query
		for _, field := range []string{"forename", "name"} {
			qm := bleve.NewMatchQuery(lower)
			qm.SetField(field)
			qm.SetBoost(3.0)
			qs = append(qs, qm)

			qp := bleve.NewPrefixQuery(lower)
			qp.SetField(field)
			qp.SetBoost(2.0)
			qs = append(qs, qp)
		}

		qn := bleve.NewTermQuery(strings.ToUpper(tok))
		qn.SetField("nationalities")
		qs = append(qs, qn)

		qe := bleve.NewPrefixQuery(tok)
		qe.SetField("entity_id")
		qe.SetBoost(0.5)
		qs = append(qs, qe)

		musts = append(musts, bleve.NewDisjunctionQuery(qs...))
	}

	req := bleve.NewSearchRequestOptions(bleve.NewConjunctionQuery(musts...), limit, 0, false)
	res, err := i.idx.Search(req)
	if err != nil {
		return nil, err
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hits = append(hits, Hit{ID: h.ID, Score: h.Score})
	}
	return hits, nil
}

func (i *Index) DocCount() (uint64, error) {
	return i.idx.DocCount()
}

func (i *Index) Close() error {
	return i.idx.Close()
}

// tokenize splits text on anything that is not a letter, digit or '/',
// the separator used in entity ids.
func tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '/'
	})
}
