// Package schema declares the fixed document mapping every other core
// component depends on. Field modes here are the contract the query
// planner assumes; changing them breaks dedup, the prefix-regex boost,
// or tie-break sorting.
package schema

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
	"github.com/blevesearch/bleve/v2/mapping"
)

// Field names, used verbatim by internal/index and internal/query. Renaming
// one of these requires touching both.
const (
	FieldPath     = "path"
	FieldName     = "name"
	FieldNameRaw  = "name_raw"
	FieldExt      = "ext"
	FieldIdentity = "identity"
	FieldMtime    = "mtime"
	FieldSize     = "size"
	FieldInode    = "inode"
	FieldDev      = "dev"
	FieldContent  = "content"

	// PathAnalyzerName is the custom analyzer used for name/content: a
	// standard unicode tokenizer with lowercasing, no stemming. The teacher
	// repo's equivalent (store.CodeAnalyzerName) adds a code-aware stop
	// filter; this core has no stop-word list of its own (see DESIGN.md),
	// so PathAnalyzerName omits the filter rather than inventing one.
	PathAnalyzerName = "fc_path_analyzer"
)

// Build constructs the bleve index mapping shared by the indexer and the
// query planner.
func Build() (mapping.IndexMapping, error) {
	im := bleve.NewIndexMapping()

	if err := im.AddCustomAnalyzer(PathAnalyzerName, map[string]interface{}{
		"type":      custom.Name,
		"tokenizer": unicode.Name,
		"token_filters": []string{
			lowercase.Name,
		},
	}); err != nil {
		return nil, err
	}
	im.DefaultAnalyzer = PathAnalyzerName

	doc := bleve.NewDocumentMapping()

	doc.AddFieldMappingsAt(FieldPath, exactField(true))
	doc.AddFieldMappingsAt(FieldName, analyzedField(true, true))
	doc.AddFieldMappingsAt(FieldNameRaw, exactField(true))
	doc.AddFieldMappingsAt(FieldExt, exactField(false))
	doc.AddFieldMappingsAt(FieldIdentity, exactField(true))
	doc.AddFieldMappingsAt(FieldMtime, numericField(true, true))
	doc.AddFieldMappingsAt(FieldSize, numericField(true, true))
	doc.AddFieldMappingsAt(FieldInode, numericField(true, false))
	doc.AddFieldMappingsAt(FieldDev, numericField(true, false))
	doc.AddFieldMappingsAt(FieldContent, analyzedField(false, false))

	im.DefaultMapping = doc
	return im, nil
}

// exactField is bleve's analog of tantivy's STRING option: an atomic,
// un-tokenized term. Used for path/name_raw/ext/identity.
func exactField(stored bool) *mapping.FieldMapping {
	fm := bleve.NewTextFieldMapping()
	fm.Analyzer = keyword.Name
	fm.Store = stored
	fm.IncludeInAll = false
	return fm
}

// analyzedField is tantivy's TEXT option: tokenized, positions kept so
// phrase queries work. Used for name and content.
func analyzedField(stored, includeInAll bool) *mapping.FieldMapping {
	fm := bleve.NewTextFieldMapping()
	fm.Analyzer = PathAnalyzerName
	fm.Store = stored
	fm.IncludeInAll = includeInAll
	fm.IncludeTermVectors = true
	return fm
}

// numericField mirrors tantivy's NumericOptions::set_stored/set_fast: a
// stored scalar, optionally with a docvalues ("fast") column for cheap
// sort/tie-break access.
func numericField(stored, fast bool) *mapping.FieldMapping {
	fm := bleve.NewNumericFieldMapping()
	fm.Store = stored
	fm.DocValues = fast
	fm.IncludeInAll = false
	return fm
}
