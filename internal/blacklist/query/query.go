// Package query translates caller-facing filters into normalized predicate
// sets.
//
// The translation is shared by the entry listing and the activity-log
// listing: each caller supplies its own field mapping, the filter shape and
// the semantics (absent field means no constraint, bounds inclusive, search
// is a case-insensitive substring OR) stay identical. Predicates are
// order-independent; stores AND them together.
package query

import (
	"sort"
	"time"

	id "flagdesk/pkg/domain"
)

// Op is a predicate operator.
type Op string

const (
	// OpEq matches exact values.
	OpEq Op = "eq"
	// OpGte matches values greater than or equal to the bound (inclusive).
	OpGte Op = "gte"
	// OpLte matches values less than or equal to the bound (inclusive).
	OpLte Op = "lte"
	// OpSearch matches a case-insensitive substring in any of the target
	// fields.
	OpSearch Op = "search"
)

// Predicate is one AND-composable condition. Field names are the storage
// column names shared by the memory and postgres stores.
type Predicate struct {
	Op     Op
	Field  string
	Fields []string // OpSearch targets; empty otherwise
	Value  any
}

// Set is a normalized predicate set. Building the same filter twice, or the
// same filter with fields populated in a different order, yields identical
// sets.
type Set []Predicate

// Fields maps the filter shape onto one listing's storage fields. Zero
// entries disable the corresponding filter dimension.
type Fields struct {
	Company string
	Status  string
	Search  []string
	Created string
	Score   string
}

// Filter is the caller-facing filter shape. Nil/empty fields mean "no
// constraint", never "match empty".
type Filter struct {
	Company  *id.CompanyID
	Status   string
	Search   string
	From     *time.Time
	To       *time.Time
	MinScore *int
	MaxScore *int
}

// Build translates a filter into a normalized predicate set.
func Build(fields Fields, f Filter) Set {
	var set Set
	if fields.Company != "" && f.Company != nil {
		set = append(set, Predicate{Op: OpEq, Field: fields.Company, Value: *f.Company})
	}
	if fields.Status != "" && f.Status != "" {
		set = append(set, Predicate{Op: OpEq, Field: fields.Status, Value: f.Status})
	}
	if len(fields.Search) > 0 && f.Search != "" {
		targets := append([]string(nil), fields.Search...)
		sort.Strings(targets)
		set = append(set, Predicate{Op: OpSearch, Fields: targets, Value: f.Search})
	}
	if fields.Created != "" {
		if f.From != nil {
			set = append(set, Predicate{Op: OpGte, Field: fields.Created, Value: *f.From})
		}
		if f.To != nil {
			set = append(set, Predicate{Op: OpLte, Field: fields.Created, Value: *f.To})
		}
	}
	if fields.Score != "" {
		if f.MinScore != nil {
			set = append(set, Predicate{Op: OpGte, Field: fields.Score, Value: *f.MinScore})
		}
		if f.MaxScore != nil {
			set = append(set, Predicate{Op: OpLte, Field: fields.Score, Value: *f.MaxScore})
		}
	}

	sort.SliceStable(set, func(i, j int) bool {
		if set[i].Field != set[j].Field {
			return set[i].Field < set[j].Field
		}
		return set[i].Op < set[j].Op
	})
	return set
}

// Order is a deterministic sort directive.
type Order struct {
	Field      string
	Descending bool
	// TiebreakField breaks ties so pagination is stable when the primary
	// field collides (equal timestamps).
	TiebreakField string
}

// Page is normalized 1-based pagination.
type Page struct {
	Limit  int
	Offset int
}

const (
	defaultLimit = 20
	maxLimit     = 100
)

// NewPage normalizes caller-supplied pagination: pages are 1-based, the
// limit is clamped to [1,100], offset = (page-1)*limit.
func NewPage(page, limit int) Page {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return Page{Limit: limit, Offset: (page - 1) * limit}
}
