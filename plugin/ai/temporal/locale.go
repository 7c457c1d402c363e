package temporal

import (
	"embed"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/hrygo/quand/plugin/ai/aitime"
)

//go:embed locales/*.yaml
var localeFS embed.FS

// DefaultLocale is used when a caller does not name one.
const DefaultLocale = "fr"

// Grammars maps the grammar names a locale file may reference to loaders.
var Grammars = map[string]aitime.Loader{
	"french": aitime.LoadFrench,
}

// LocaleConfig is the on-disk shape of a locale file.
type LocaleConfig struct {
	Key      string         `yaml:"key"`
	Grammar  string         `yaml:"grammar"`
	Weekdays map[string]int `yaml:"weekdays"`
	Months   map[string]int `yaml:"months"`
	Numbers  map[string]int `yaml:"numbers"`
	Keywords struct {
		Meal         []string `yaml:"meal"`
		Professional []string `yaml:"professional"`
	} `yaml:"keywords"`
	PeriodWords     []string `yaml:"periodWords"`
	NextWeekPhrases []string `yaml:"nextWeekPhrases"`
	Patterns        struct {
		NumericDate        string `yaml:"numericDate"`
		NumericStop        string `yaml:"numericStop"`
		Disjunction        string `yaml:"disjunction"`
		WeekOf             string `yaml:"weekOf"`
		PeriodStart        string `yaml:"periodStart"`
		PeriodEnd          string `yaml:"periodEnd"`
		PeriodStartCurrent string `yaml:"periodStartCurrent"`
		PeriodEndCurrent   string `yaml:"periodEndCurrent"`
		RelativeDays       string `yaml:"relativeDays"`
		RelativeWeeks      string `yaml:"relativeWeeks"`
	} `yaml:"patterns"`
}

// Locale holds the vocabulary and compiled matchers of one language, plus
// the grammar adapter that resolves its relative phrases.
type Locale struct {
	Key      string
	Weekdays map[string]time.Weekday
	Months   map[string]time.Month
	Numbers  map[string]int
	Grammar  *GrammarAdapter

	weekday            *regexp.Regexp
	month              *regexp.Regexp
	meal               *regexp.Regexp
	professional       *regexp.Regexp
	periodWord         *regexp.Regexp
	nextWeek           *regexp.Regexp
	numericDate        *regexp.Regexp
	weekOf             *regexp.Regexp
	periodStart        *regexp.Regexp
	periodEnd          *regexp.Regexp
	periodStartCurrent *regexp.Regexp
	periodEndCurrent   *regexp.Regexp
	relativeDays       *regexp.Regexp
	relativeWeeks      *regexp.Regexp

	// Anchored at the start of the text that follows or separates a match.
	numericStop *regexp.Regexp
	disjunction *regexp.Regexp
}

// ParseLocale decodes and compiles a locale file.
func ParseLocale(data []byte, grammars map[string]aitime.Loader) (*Locale, error) {
	var cfg LocaleConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to decode locale")
	}
	return NewLocale(cfg, grammars)
}

// NewLocale compiles cfg. The grammar named by cfg.Grammar must be present
// in grammars; it is loaded lazily on first use.
func NewLocale(cfg LocaleConfig, grammars map[string]aitime.Loader) (*Locale, error) {
	key := normalizeLocaleKey(cfg.Key)
	if key == "" {
		return nil, errors.New("locale key is required")
	}
	loader, ok := grammars[cfg.Grammar]
	if !ok {
		return nil, errors.Errorf("locale %s: unknown grammar %q", key, cfg.Grammar)
	}
	if len(cfg.Weekdays) == 0 || len(cfg.Months) == 0 {
		return nil, errors.Errorf("locale %s: weekday and month names are required", key)
	}

	l := &Locale{
		Key:      key,
		Weekdays: make(map[string]time.Weekday, len(cfg.Weekdays)),
		Months:   make(map[string]time.Month, len(cfg.Months)),
		Numbers:  make(map[string]int, len(cfg.Numbers)),
		Grammar:  NewGrammarAdapter(key, loader),
	}
	for name, n := range cfg.Weekdays {
		if n < 0 || n > 6 {
			return nil, errors.Errorf("locale %s: weekday %q out of range", key, name)
		}
		l.Weekdays[strings.ToLower(name)] = time.Weekday(n)
	}
	for name, n := range cfg.Months {
		if n < 1 || n > 12 {
			return nil, errors.Errorf("locale %s: month %q out of range", key, name)
		}
		l.Months[strings.ToLower(name)] = time.Month(n)
	}
	for name, n := range cfg.Numbers {
		l.Numbers[strings.ToLower(name)] = n
	}

	weekdayAlt := alternation(keys(l.Weekdays))
	monthAlt := alternation(keys(l.Months))
	numberAlt := `\d{1,2}`
	if len(l.Numbers) > 0 {
		numberAlt = `\d{1,2}|` + alternation(keys(l.Numbers))
	}
	expand := strings.NewReplacer(
		"{weekday}", weekdayAlt,
		"{month}", monthAlt,
		"{number}", numberAlt,
	)

	words := []struct {
		dst  **regexp.Regexp
		name string
		body string
	}{
		{&l.weekday, "weekday", weekdayAlt},
		{&l.month, "month", monthAlt},
		{&l.meal, "meal keywords", alternation(cfg.Keywords.Meal)},
		{&l.professional, "professional keywords", alternation(cfg.Keywords.Professional)},
		{&l.periodWord, "period words", alternation(cfg.PeriodWords)},
		{&l.nextWeek, "next-week phrases", alternation(cfg.NextWeekPhrases)},
		{&l.numericDate, "numericDate", expand.Replace(cfg.Patterns.NumericDate)},
		{&l.weekOf, "weekOf", expand.Replace(cfg.Patterns.WeekOf)},
		{&l.periodStart, "periodStart", expand.Replace(cfg.Patterns.PeriodStart)},
		{&l.periodEnd, "periodEnd", expand.Replace(cfg.Patterns.PeriodEnd)},
		{&l.periodStartCurrent, "periodStartCurrent", expand.Replace(cfg.Patterns.PeriodStartCurrent)},
		{&l.periodEndCurrent, "periodEndCurrent", expand.Replace(cfg.Patterns.PeriodEndCurrent)},
		{&l.relativeDays, "relativeDays", expand.Replace(cfg.Patterns.RelativeDays)},
		{&l.relativeWeeks, "relativeWeeks", expand.Replace(cfg.Patterns.RelativeWeeks)},
	}
	for _, w := range words {
		if w.body == "" {
			continue
		}
		re, err := aitime.CompileWordPattern(w.body)
		if err != nil {
			return nil, errors.Wrapf(err, "locale %s: invalid %s pattern", key, w.name)
		}
		*w.dst = re
	}
	if l.numericDate == nil {
		return nil, errors.Errorf("locale %s: numericDate pattern is required", key)
	}

	var err error
	if l.numericStop, err = compileAnchored(cfg.Patterns.NumericStop); err != nil {
		return nil, errors.Wrapf(err, "locale %s: invalid numericStop pattern", key)
	}
	if l.disjunction, err = compileAnchored(cfg.Patterns.Disjunction); err != nil {
		return nil, errors.Wrapf(err, "locale %s: invalid disjunction pattern", key)
	}
	return l, nil
}

// Number parses a digit string or a number word of the locale.
func (l *Locale) Number(s string) (int, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, ok := l.Numbers[s]; ok {
		return n, true
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, s != ""
}

// HasWeekday reports whether text names a weekday.
func (l *Locale) HasWeekday(text string) bool {
	return matchesWord(l.weekday, text)
}

// HasPeriodWord reports whether text names a span longer than a day.
func (l *Locale) HasPeriodWord(text string) bool {
	return matchesWord(l.periodWord, text)
}

// IsNextWeek reports whether text denotes the whole following week.
func (l *Locale) IsNextWeek(text string) bool {
	return matchesWord(l.nextWeek, text)
}

func matchesWord(re *regexp.Regexp, text string) bool {
	if re == nil || text == "" {
		return false
	}
	return len(aitime.FindAllWords(re, strings.ToLower(text))) > 0
}

// Registry is a concurrency-safe set of locales keyed by language.
type Registry struct {
	mu      sync.RWMutex
	locales map[string]*Locale
}

// NewRegistry creates a registry holding the given locales.
func NewRegistry(locales ...*Locale) *Registry {
	r := &Registry{locales: make(map[string]*Locale)}
	for _, l := range locales {
		r.Register(l)
	}
	return r
}

// LoadRegistry compiles every embedded locale file.
func LoadRegistry() (*Registry, error) {
	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, errors.Wrap(err, "failed to list embedded locales")
	}
	r := NewRegistry()
	for _, entry := range entries {
		data, err := localeFS.ReadFile("locales/" + entry.Name())
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read locale %s", entry.Name())
		}
		l, err := ParseLocale(data, Grammars)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to load locale %s", entry.Name())
		}
		r.Register(l)
	}
	return r, nil
}

// Register adds or replaces a locale.
func (r *Registry) Register(l *Locale) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locales[l.Key] = l
}

// Get looks up a locale. Region subtags fall back to the base language,
// so "fr-FR" and "fr_CA" resolve to "fr". An empty key means DefaultLocale.
func (r *Registry) Get(key string) (*Locale, bool) {
	key = normalizeLocaleKey(key)
	if key == "" {
		key = DefaultLocale
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if l, ok := r.locales[key]; ok {
		return l, true
	}
	if base, _, found := strings.Cut(key, "-"); found {
		l, ok := r.locales[base]
		return l, ok
	}
	return nil, false
}

// Keys lists registered locale keys in sorted order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.locales))
	for k := range r.locales {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func normalizeLocaleKey(key string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(key)), "_", "-")
}

// alternation quotes words and joins them longest first, so that
// "petit-déjeuner" wins over "déjeuner".
func alternation(words []string) string {
	if len(words) == 0 {
		return ""
	}
	sorted := append([]string(nil), words...)
	sort.Slice(sorted, func(i, j int) bool {
		if len(sorted[i]) != len(sorted[j]) {
			return len(sorted[i]) > len(sorted[j])
		}
		return sorted[i] < sorted[j]
	})
	quoted := make([]string, len(sorted))
	for i, w := range sorted {
		quoted[i] = regexp.QuoteMeta(strings.ToLower(w))
	}
	return strings.Join(quoted, "|")
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func compileAnchored(body string) (*regexp.Regexp, error) {
	if body == "" {
		return nil, nil
	}
	return regexp.Compile(`(?i)` + body)
}
