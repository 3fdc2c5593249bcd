// Package query implements the planner that turns a user's term, scope,
// and optional glob into a bleve query, executes it, and returns ranked,
// filtered hits.
package query

import (
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/blevesearch/bleve/v2"
	bleveQuery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/fcindex/fcindex/internal/errors"
	"github.com/fcindex/fcindex/internal/lifecycle"
	"github.com/fcindex/fcindex/internal/schema"
)

// Scope selects which fields a query's term is matched against.
type Scope int

const (
	ScopeName Scope = iota
	ScopeContent
	ScopeBoth
)

// Request is the input to Search.
type Request struct {
	Term     string
	Scope    Scope
	PathGlob string
	Limit    int
}

// Hit is one ranked, glob-filtered result.
type Hit struct {
	Path       string
	Name       string
	Score      float64
	ModifiedAt int64
	Size       uint64
}

const (
	nameFieldBoost   = 2.0
	baseQueryBoost   = 1.5
	prefixRegexBoost = 3.0
)

// Search runs req against the active index handle and returns ranked
// hits. An empty (after trimming) term returns an empty result, not an
// error. A bad path_glob is an error; a regex-compile failure on the
// prefix boost clause is swallowed — the base query still runs.
func Search(req Request) ([]Hit, error) {
	h, ok := lifecycle.Current()
	if !ok {
		return nil, errors.NotInitialized("search called before init_index")
	}

	term := strings.TrimSpace(req.Term)
	if term == "" {
		return nil, nil
	}

	limit := req.Limit
	if limit <= 0 {
		limit = h.Settings.QueryLimit
	}
	if limit <= 0 {
		limit = 1
	}

	var glob *regexp.Regexp
	var err error
	if trimmed := strings.TrimSpace(req.PathGlob); trimmed != "" {
		glob, err = compileGlob(trimmed)
		if err != nil {
			return nil, errors.Glob("could not compile path glob", err)
		}
	}

	q := buildQuery(term, req.Scope)

	searchReq := bleve.NewSearchRequestOptions(q, limit, 0, false)
	searchReq.Fields = []string{schema.FieldPath, schema.FieldName, schema.FieldMtime, schema.FieldSize}

	res, err := h.Index.Search(searchReq)
	if err != nil {
		slog.Error("query execution failed", "term", term, "scope", req.Scope, "err", err)
		return nil, errors.Parse("query execution failed", err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, docMatch := range res.Hits {
		path, _ := docMatch.Fields[schema.FieldPath].(string)
		if glob != nil && !glob.MatchString(path) {
			continue
		}
		name, _ := docMatch.Fields[schema.FieldName].(string)
		hits = append(hits, Hit{
			Path:       path,
			Name:       name,
			Score:      docMatch.Score,
			ModifiedAt: int64(toFloat64(docMatch.Fields[schema.FieldMtime])),
			Size:       uint64(toFloat64(docMatch.Fields[schema.FieldSize])),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ModifiedAt > hits[j].ModifiedAt
	})
	return hits, nil
}

// buildQuery composes the base term match (AND between words within a
// field, a 2.0 boost on name when it's in scope, and the whole base clause
// wrapped at 1.5 when name is in scope) with an optional 3.0-boosted prefix-regex clause on
// name_raw. Multiple clauses are unioned as a disjunction ("Should").
func buildQuery(term string, scope Scope) bleveQuery.Query {
	nameInScope := scope == ScopeName || scope == ScopeBoth
	contentInScope := scope == ScopeContent || scope == ScopeBoth

	var fieldQueries []bleveQuery.Query
	if nameInScope {
		m := bleve.NewMatchQuery(term)
		m.SetField(schema.FieldName)
		m.Operator = bleveQuery.MatchQueryOperatorAnd
		m.SetBoost(nameFieldBoost)
		fieldQueries = append(fieldQueries, m)
	}
	if contentInScope {
		m := bleve.NewMatchQuery(term)
		m.SetField(schema.FieldContent)
		m.Operator = bleveQuery.MatchQueryOperatorAnd
		fieldQueries = append(fieldQueries, m)
	}

	// Multiple fields in scope (search_in=Both) are alternatives: a hit
	// needs to match name OR content, not both. AND is only the default
	// operator between the words of a single term within one field.
	var base bleveQuery.Query
	if len(fieldQueries) == 1 {
		base = fieldQueries[0]
	} else {
		base = bleve.NewDisjunctionQuery(fieldQueries...)
	}

	var clauses []bleveQuery.Query
	if nameInScope {
		boosted := bleve.NewDisjunctionQuery(base)
		boosted.SetBoost(baseQueryBoost)
		clauses = append(clauses, boosted)
	} else {
		clauses = append(clauses, base)
	}

	if nameInScope && !strings.ContainsAny(term, " \t\n") {
		if _, err := regexp.Compile(regexp.QuoteMeta(term)); err == nil {
			rq := bleve.NewRegexpQuery("^" + regexp.QuoteMeta(term) + ".*")
			rq.SetField(schema.FieldNameRaw)
			rq.SetBoost(prefixRegexBoost)
			clauses = append(clauses, rq)
		}
	}

	if len(clauses) == 1 {
		return clauses[0]
	}
	return bleve.NewDisjunctionQuery(clauses...)
}
