package result

// Result is a single search hit.
type Result struct {
	id     string
	score  float64
	fields map[string]string
}

// New creates a search result.
func New(id string, score float64, fields map[string]string) Result {
	return Result{id: id, score: score, fields: fields}
}

// ID returns the document identifier.
func (r *Result) ID() string { return r.id }

// Score returns the relevance score.
func (r *Result) Score() float64 { return r.score }

// Fields returns the stored document fields.
func (r *Result) Fields() map[string]string { return r.fields }

// Set is the answer of one executor call: ordered hits plus the total match count.
type Set struct {
	hits  []Result
	total int
	raw   bool
}

// NewSet creates a result set.
func NewSet(hits []Result, total int) Set {
	return Set{hits: hits, total: total}
}

// Hits returns the hits in backend order.
func (s Set) Hits() []Result { return s.hits }

// Total returns the number of matching documents, which may exceed len(Hits()).
func (s Set) Total() int { return s.total }

// Raw reports whether callers asked for the whole set instead of unwrapped documents.
func (s Set) Raw() bool { return s.raw }

// WithRaw returns a copy of s carrying the raw flag.
func (s Set) WithRaw(raw bool) Set {
	s.raw = raw
	return s
}

// First returns the first hit, if any.
func (s Set) First() (Result, bool) {
	if len(s.hits) == 0 {
		return Result{}, false
	}
	return s.hits[0], true
}
