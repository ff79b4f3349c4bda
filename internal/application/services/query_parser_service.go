package services

import (
	"regexp"
	"sort"
	"strings"

	"github.com/claimsage/backend/internal/domain/entities"
)

// QueryParserService extracts structured fields (age, gender, procedure,
// location, policy duration) from raw insurance queries. Extraction is
// regex-driven: each field has an explicit ordered rule list evaluated in
// fixed priority with early exit on the first successful rule. Parsing
// never fails; anything that cannot be extracted is simply left unset.
type QueryParserService struct {
	ageGenderRules []ageGenderRule
	ageOnlyRules   []*regexp.Regexp
	genderRules    []*regexp.Regexp
	durationRules  []*regexp.Regexp
	cities         []cityEntry
	procedureTiers []*regexp.Regexp
}

// ageGenderRule is one combined age+gender pattern. The groups are ordered
// either age-then-gender or gender-then-age depending on the shape.
type ageGenderRule struct {
	re       *regexp.Regexp
	ageFirst bool
}

type cityEntry struct {
	re        *regexp.Regexp
	canonical string
}

const (
	minAge = 0
	maxAge = 120

	// maxParsedNumber bounds every numeric token; longer digit runs are
	// noise, never a real age or duration.
	maxParsedNumber = 1000000
)

// cityGazetteer maps lowercase city names and aliases to canonical names.
var cityGazetteer = map[string]string{
	"pune": "Pune", "mumbai": "Mumbai", "delhi": "Delhi", "new delhi": "Delhi",
	"bangalore": "Bangalore", "bengaluru": "Bangalore", "chennai": "Chennai",
	"kolkata": "Kolkata", "calcutta": "Kolkata", "hyderabad": "Hyderabad",
	"ahmedabad": "Ahmedabad", "surat": "Surat", "jaipur": "Jaipur",
	"lucknow": "Lucknow", "kanpur": "Kanpur", "nagpur": "Nagpur",
	"indore": "Indore", "thane": "Thane", "bhopal": "Bhopal",
	"visakhapatnam": "Visakhapatnam", "pimpri": "Pimpri", "patna": "Patna",
	"vadodara": "Vadodara", "ghaziabad": "Ghaziabad", "ludhiana": "Ludhiana",
	"agra": "Agra", "nashik": "Nashik", "faridabad": "Faridabad",
	"meerut": "Meerut", "rajkot": "Rajkot",
}

// medicalKeywordGroups is the fixed procedure vocabulary, grouped by
// category. Order is fixed so matching stays deterministic.
var medicalKeywordGroups = [][]string{
	{"surgery", "surgical", "operation", "operative"},
	{"replacement", "implant", "prosthetic"},
	{"reconstruction", "reconstructive", "repair"},
	{"treatment", "therapy", "therapeutic"},
	{"biopsy", "scan", "test", "screening", "examination"},
	{"angioplasty", "bypass", "stent", "cardiac"},
	{"transplant", "transplantation"},
	{"procedure", "intervention"},
}

// NewQueryParserService compiles all extraction rules up front.
func NewQueryParserService() *QueryParserService {
	svc := &QueryParserService{}

	// Combined age+gender shapes, highest priority first:
	// "46M" / "46 f", "46 male", "male 46", "age: 46, male", "male, age 46".
	svc.ageGenderRules = []ageGenderRule{
		{regexp.MustCompile(`\b(\d{1,3})\s*[/\-,]?\s*([mf])\b`), true},
		{regexp.MustCompile(`\b(\d{1,3})\s+(male|female)\b`), true},
		{regexp.MustCompile(`\b(male|female)\s+(\d{1,3})\b`), false},
		{regexp.MustCompile(`\bage[:\s]*(\d{1,3})[,\s]*(male|female)?\b`), true},
		{regexp.MustCompile(`\b(male|female)[,\s]*age[:\s]*(\d{1,3})\b`), false},
	}

	svc.ageOnlyRules = []*regexp.Regexp{
		regexp.MustCompile(`\bage[:\s]*(\d{1,3})\b`),
		regexp.MustCompile(`\b(\d{1,3})\s*(?:years?|yrs?)\s*old\b`),
		regexp.MustCompile(`\b(\d{1,3})\s*yo\b`),
	}

	svc.genderRules = []*regexp.Regexp{
		regexp.MustCompile(`\b(male|female)\b`),
		regexp.MustCompile(`\b([mf])\b`),
	}

	// Policy duration shapes. The short-unit rule relies on the trailing
	// word boundary so the bare "m"/"y"/"d" cannot collide with words like
	// "male", "more", or "young".
	svc.durationRules = []*regexp.Regexp{
		regexp.MustCompile(`\b(\d+)\s*-?\s*(months?|mo|years?|yrs?|days?)\b`),
		regexp.MustCompile(`\b(?:policy|plan|coverage)\s*(?:of|for)?\s*(\d+)\s*(months?|mo|years?|yrs?|days?)\b`),
		regexp.MustCompile(`\b(\d+)\s*-?\s*([myd])\b`),
	}

	// Longest gazetteer names first so "new delhi" wins over "delhi".
	names := make([]string, 0, len(cityGazetteer))
	for name := range cityGazetteer {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
	for _, name := range names {
		svc.cities = append(svc.cities, cityEntry{
			re:        regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\b`),
			canonical: cityGazetteer[name],
		})
	}

	var allKeywords []string
	for _, group := range medicalKeywordGroups {
		allKeywords = append(allKeywords, group...)
	}
	kw := strings.Join(allKeywords, "|")

	// Four tiers: body-part + keyword, keyword + of/on/for + body-part,
	// bare keyword, and compound replacement/reconstruction/repair phrases.
	// All tiers are evaluated; the longest matched span wins.
	svc.procedureTiers = []*regexp.Regexp{
		regexp.MustCompile(`\b[a-z]+\s+(?:` + kw + `)\b`),
		regexp.MustCompile(`\b(?:` + kw + `)\s+(?:of|on|for)\s+[a-z]+\b`),
		regexp.MustCompile(`\b(?:` + kw + `)\b`),
		regexp.MustCompile(`\b[a-z]+\s+(?:replacement|reconstruction|repair)(?:\s+surgery)?\b`),
	}

	return svc
}

// Parse extracts structured fields from a raw query. Empty or unparseable
// input yields an all-unknown record with the raw text preserved.
func (s *QueryParserService) Parse(query string) *entities.ParsedQuery {
	parsed := &entities.ParsedQuery{RawQuery: query}

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return parsed
	}

	s.parseAgeGender(q, parsed)
	s.parsePolicyDuration(q, parsed)
	s.parseLocation(q, parsed)
	s.parseProcedure(q, parsed)

	return parsed
}

func (s *QueryParserService) parseAgeGender(q string, parsed *entities.ParsedQuery) {
	for _, rule := range s.ageGenderRules {
		match := rule.re.FindStringSubmatch(q)
		if match == nil {
			continue
		}

		ageStr, genderStr := match[1], match[2]
		if !rule.ageFirst {
			ageStr, genderStr = match[2], match[1]
		}

		age, ok := parseAge(ageStr)
		if !ok {
			// Out-of-range ages are noise, not a match; keep trying.
			continue
		}

		parsed.Age = &age
		if g := parseGender(genderStr); g != "" {
			parsed.Gender = g
		}
		break
	}

	if parsed.Age == nil {
		for _, re := range s.ageOnlyRules {
			match := re.FindStringSubmatch(q)
			if match == nil {
				continue
			}
			if age, ok := parseAge(match[1]); ok {
				parsed.Age = &age
				break
			}
		}
	}

	if parsed.Gender == "" {
		for _, re := range s.genderRules {
			match := re.FindStringSubmatch(q)
			if match == nil {
				continue
			}
			if g := parseGender(match[1]); g != "" {
				parsed.Gender = g
				break
			}
		}
	}
}

func (s *QueryParserService) parsePolicyDuration(q string, parsed *entities.ParsedQuery) {
	for _, re := range s.durationRules {
		match := re.FindStringSubmatch(q)
		if match == nil {
			continue
		}
		num, ok := parseInt(match[1])
		if !ok {
			continue
		}
		months := monthsFromUnit(num, match[2])
		if months < 1 {
			// A zero-length policy is noise, not a match; keep trying.
			continue
		}
		parsed.PolicyDurationMonths = &months
		break
	}
}

func (s *QueryParserService) parseLocation(q string, parsed *entities.ParsedQuery) {
	for _, city := range s.cities {
		if city.re.MatchString(q) {
			parsed.Location = city.canonical
			break
		}
	}
}

func (s *QueryParserService) parseProcedure(q string, parsed *entities.ParsedQuery) {
	best := ""
	for _, re := range s.procedureTiers {
		for _, match := range re.FindAllString(q, -1) {
			span := strings.TrimSpace(match)
			// Strictly longer wins, so the first-found span keeps ties.
			if len(span) > len(best) {
				best = span
			}
		}
	}
	if best != "" {
		parsed.Procedure = titleCase(strings.Join(strings.Fields(best), " "))
	}
}

func parseAge(s string) (int, bool) {
	age, ok := parseInt(s)
	if !ok || age < minAge || age > maxAge {
		return 0, false
	}
	return age, true
}

func parseGender(s string) entities.Gender {
	switch {
	case strings.HasPrefix(s, "m"):
		return entities.GenderMale
	case strings.HasPrefix(s, "f"):
		return entities.GenderFemale
	}
	return ""
}

func parseInt(s string) (int, bool) {
	n := 0
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
		if n > maxParsedNumber {
			return 0, false
		}
	}
	return n, true
}

func titleCase(text string) string {
	words := strings.Fields(text)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
