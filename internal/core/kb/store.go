package kb

import (
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/business"
)

const (
	tagWeight      = 2
	questionWeight = 1
)

var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "is": true, "are": true, "do": true, "does": true,
	"you": true, "your": true, "i": true, "me": true, "my": true, "we": true, "our": true,
	"to": true, "of": true, "for": true, "in": true, "on": true, "at": true, "and": true,
	"or": true, "what": true, "how": true, "can": true, "it": true, "be": true, "with": true,
	"about": true, "have": true, "has": true, "any": true, "please": true, "this": true,
}

// Hit is a knowledge item plus its relevance score for one query.
type Hit struct {
	Item  business.KnowledgeItem
	Score int
}

// Store holds the knowledge base of one business in memory.
type Store struct {
	mu    sync.RWMutex
	items []business.KnowledgeItem
}

func NewStore(items []business.KnowledgeItem) *Store {
	s := &Store{}
	s.Load(items)
	return s
}

// Load replaces the whole knowledge base, used whenever the business profile changes.
func (s *Store) Load(items []business.KnowledgeItem) {
	cp := make([]business.KnowledgeItem, len(items))
	copy(cp, items)

	s.mu.Lock()
	s.items = cp
	s.mu.Unlock()
}

// Add appends an item. Items with an id already in the store are ignored.
func (s *Store) Add(item business.KnowledgeItem) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.items {
		if existing.ID == item.ID {
			return false
		}
	}
	s.items = append(s.items, item)
	return true
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Items returns every item ordered by priority descending.
func (s *Store) Items() []business.KnowledgeItem {
	s.mu.RLock()
	out := make([]business.KnowledgeItem, len(s.items))
	copy(out, s.items)
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority > out[j].Priority })
	return out
}

// Search ranks items by overlap between query tokens and the item's tags and question.
// Items without overlap are left out; an empty store yields an empty slice.
func (s *Store) Search(query string) []business.KnowledgeItem {
	hits := s.Rank(query)
	out := make([]business.KnowledgeItem, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.Item)
	}
	return out
}

// Rank is Search with scores attached.
func (s *Store) Rank(query string) []Hit {
	terms := Tokenize(query)
	if len(terms) == 0 {
		return []Hit{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	hits := make([]Hit, 0)
	for _, item := range s.items {
		if score := scoreItem(terms, item); score > 0 {
			hits = append(hits, Hit{Item: item, Score: score})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Item.Priority > hits[j].Item.Priority
	})
	return hits
}

func scoreItem(terms []string, item business.KnowledgeItem) int {
	tagSet := make(map[string]bool)
	for _, tag := range item.Tags {
		for _, t := range Tokenize(strings.ReplaceAll(tag, "-", " ")) {
			tagSet[t] = true
		}
	}
	questionSet := make(map[string]bool)
	for _, t := range Tokenize(item.Question) {
		questionSet[t] = true
	}

	score := 0
	for _, term := range terms {
		if tagSet[term] {
			score += tagWeight
		}
		if questionSet[term] {
			score += questionWeight
		}
	}
	return score
}

// Tokenize lower-cases text, drops punctuation and stopwords, and strips a plural "s".
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	seen := make(map[string]bool, len(fields))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if stopwords[f] {
			continue
		}
		if len(f) > 3 && strings.HasSuffix(f, "s") && !strings.HasSuffix(f, "ss") {
			f = strings.TrimSuffix(f, "s")
		}
		if seen[f] {
			continue
		}
		seen[f] = true
		tokens = append(tokens, f)
	}
	return tokens
}
