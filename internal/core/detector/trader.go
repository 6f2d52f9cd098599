package detector

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode"

	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/llm"
)

const (
	TypeImporter = "Importer"
	TypeExporter = "Exporter"
	TypeBoth     = "Both"

	maxResults   = 10
	listedInText = 3
)

type Trader struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Country     string   `json:"country"`
	City        string   `json:"city,omitempty"`
	Type        string   `json:"type"`
	Products    []string `json:"products"`
	Description string   `json:"description,omitempty"`
	Email       string   `json:"email,omitempty"`
	Phone       string   `json:"phone,omitempty"`
	Website     string   `json:"website,omitempty"`
	Verified    bool     `json:"verified"`
	Rating      float64  `json:"rating"`
}

// Query is the structured form of a trader search.
type Query struct {
	Text     string   `json:"query"`
	Country  string   `json:"country,omitempty"`
	Products []string `json:"products,omitempty"`
	Type     string   `json:"type,omitempty"`
}

type SearchResult struct {
	Traders    []Trader `json:"traders"`
	TotalCount int      `json:"totalCount"`
}

// Every phrase below is matched as whole words; plural "s" is ignored on both sides.
var (
	traderNouns = phrases("trader", "importer", "exporter", "supplier", "distributor", "wholesaler", "trading partner", "manufacturer")
	searchVerbs = phrases("find", "search", "looking for", "need", "connect me", "source")
	tradeTerms  = phrases("import", "export", "partner", "sourcing", "b2b")
	importWords = phrases("import", "importer", "importing")
	exportWords = phrases("export", "exporter", "exporting")
)

// TraderDetector recognises B2B trading-partner lookups and searches a static directory.
type TraderDetector struct {
	traders   []Trader
	countries []string
	products  []string
}

// phrase is a search term split into normalized words.
type phrase []string

func NewTraderDetector(traders []Trader) *TraderDetector {
	d := &TraderDetector{traders: traders}

	countries := map[string]bool{}
	products := map[string]bool{}
	for _, t := range traders {
		if t.Country != "" {
			countries[strings.ToLower(t.Country)] = true
		}
		for _, p := range t.Products {
			products[strings.ToLower(p)] = true
		}
	}
	d.countries = sortedKeys(countries)
	d.products = sortedKeys(products)
	return d
}

// LoadTraders reads the trader directory from a JSON array file.
func LoadTraders(path string) ([]Trader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read traders file: %w", err)
	}
	var traders []Trader
	if err := json.Unmarshal(data, &traders); err != nil {
		return nil, fmt.Errorf("parse traders file: %w", err)
	}
	return traders, nil
}

func (d *TraderDetector) Name() string { return "trader" }

// Detect matches a trader noun, or a search verb together with a trade term.
func (d *TraderDetector) Detect(message string) bool {
	w := words(message)
	if containsAny(w, traderNouns) {
		return true
	}
	return containsAny(w, searchVerbs) && containsAny(w, tradeTerms)
}

// ParseQuery pulls country, product and trader type filters out of free text.
func (d *TraderDetector) ParseQuery(message string) Query {
	w := words(message)
	q := Query{Text: strings.TrimSpace(message)}

	for _, c := range d.countries {
		if containsPhrase(w, phrases(c)[0]) {
			q.Country = c
			break
		}
	}
	for _, p := range d.products {
		if containsPhrase(w, phrases(p)[0]) {
			q.Products = append(q.Products, p)
		}
	}

	importer := containsAny(w, importWords)
	exporter := containsAny(w, exportWords)
	switch {
	case importer && exporter:
		q.Type = TypeBoth
	case importer:
		q.Type = TypeImporter
	case exporter:
		q.Type = TypeExporter
	}
	return q
}

// Search filters the directory; verified traders come first, then by rating.
func (d *TraderDetector) Search(q Query) SearchResult {
	var matches []Trader
	for _, t := range d.traders {
		if q.Country != "" && !strings.EqualFold(t.Country, q.Country) {
			continue
		}
		if q.Type != "" && q.Type != TypeBoth && t.Type != q.Type && t.Type != TypeBoth {
			continue
		}
		if len(q.Products) > 0 && !hasAnyProduct(t, q.Products) {
			continue
		}
		matches = append(matches, t)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Verified != matches[j].Verified {
			return matches[i].Verified
		}
		return matches[i].Rating > matches[j].Rating
	})

	total := len(matches)
	if len(matches) > maxResults {
		matches = matches[:maxResults]
	}
	if matches == nil {
		matches = []Trader{}
	}
	return SearchResult{Traders: matches, TotalCount: total}
}

func (d *TraderDetector) Handle(message string) *llm.AIResponse {
	q := d.ParseQuery(message)
	return d.respond(q)
}

// HandleAction serves a search_traders call from the model with the same directory.
func (d *TraderDetector) HandleAction(a llm.SearchTraders) *llm.AIResponse {
	q := d.ParseQuery(a.Query)
	if a.Country != "" {
		q.Country = a.Country
	}
	if len(a.Products) > 0 {
		q.Products = a.Products
	}
	if a.Type != "" {
		q.Type = a.Type
	}
	return d.respond(q)
}

func (d *TraderDetector) respond(q Query) *llm.AIResponse {
	res := d.Search(q)
	log.Debug().Str("query", q.Text).Str("country", q.Country).Strs("products", q.Products).Int("total", res.TotalCount).Msg("trader search")

	args, _ := json.Marshal(struct {
		Query  Query        `json:"query"`
		Result SearchResult `json:"result"`
	}{q, res})

	resp := &llm.AIResponse{
		Message:          traderMessage(res, q),
		SuggestedContent: []string{},
		Intent:           llm.IntentTraderDiscovery,
		Confidence:       0.9,
		FunctionCall:     &llm.FunctionCall{Name: llm.FuncSearchTraders, Arguments: args},
	}
	if len(res.Traders) > 0 {
		resp.SuggestedContent = []string{"trader-search-results"}
	}
	return resp
}

func traderMessage(res SearchResult, q Query) string {
	if res.TotalCount == 0 {
		return "I couldn't find any traders matching your search. Try a different country or product category, or ask me to search more broadly."
	}

	var sb strings.Builder
	noun := "traders"
	if res.TotalCount == 1 {
		noun = "trader"
	}
	sb.WriteString(fmt.Sprintf("I found %d %s", res.TotalCount, noun))
	if len(q.Products) > 0 {
		sb.WriteString(" dealing in " + strings.Join(q.Products, ", "))
	}
	if q.Country != "" {
		sb.WriteString(" in " + titleCase(q.Country))
	}
	sb.WriteString(". Top matches:\n")

	for i, t := range res.Traders {
		if i == listedInText {
			break
		}
		place := t.Country
		if t.City != "" {
			place = t.City + ", " + t.Country
		}
		line := fmt.Sprintf("• %s (%s) - %s", t.Name, place, t.Type)
		if t.Verified {
			line += " ✓ verified"
		}
		sb.WriteString(line + "\n")
	}
	sb.WriteString("The full list is shown in the results panel.")
	return sb.String()
}

func hasAnyProduct(t Trader, wanted []string) bool {
	for _, p := range t.Products {
		for _, w := range wanted {
			if strings.EqualFold(p, w) {
				return true
			}
		}
	}
	return false
}

// words lowercases text, splits it on anything but letters and digits and
// drops a plural "s" so "exporters" and "exporter" compare equal.
func words(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for i, f := range fields {
		fields[i] = singular(f)
	}
	return fields
}

func singular(w string) string {
	if len(w) > 3 && strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss") {
		return strings.TrimSuffix(w, "s")
	}
	return w
}

func phrases(terms ...string) []phrase {
	out := make([]phrase, 0, len(terms))
	for _, t := range terms {
		out = append(out, phrase(words(t)))
	}
	return out
}

// containsPhrase reports whether p occurs in w as consecutive whole words.
func containsPhrase(w []string, p phrase) bool {
	if len(p) == 0 {
		return false
	}
	for i := 0; i+len(p) <= len(w); i++ {
		match := true
		for j := range p {
			if w[i+j] != p[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func containsAny(w []string, ps []phrase) bool {
	for _, p := range ps {
		if containsPhrase(w, p) {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	// longest first so "south africa" wins over "africa"
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) > len(out[j])
		}
		return out[i] < out[j]
	})
	return out
}

func titleCase(s string) string {
	parts := strings.Fields(s)
	for i, p := range parts {
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}
