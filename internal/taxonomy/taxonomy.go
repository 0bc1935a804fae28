// Package taxonomy holds the named options expenses are tagged with
// (categories and payment modes) and the category to necessity lookup used by
// reports.
package taxonomy

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

var ErrInvalidOption = errors.New("invalid option")

const (
	Need = "Need"
	Want = "Want"
)

// Option is a selectable value with the icon the UI shows next to it.
type Option struct {
	Name string
	Icon string
}

type Taxonomy struct {
	mu         sync.RWMutex
	categories []Option
	modes      []Option
	necessity  map[string]string // lower-cased category -> tag
}

func DefaultCategories() []Option {
	return []Option{
		{Name: "Food", Icon: "silverware-fork-knife"},
		{Name: "Groceries", Icon: "cart"},
		{Name: "Rent", Icon: "home"},
		{Name: "Bills", Icon: "receipt"},
		{Name: "Travel", Icon: "airplane"},
		{Name: "Transport", Icon: "bus"},
		{Name: "Shopping", Icon: "shopping"},
		{Name: "Entertainment", Icon: "movie"},
		{Name: "Health", Icon: "hospital-box"},
		{Name: "Education", Icon: "school"},
		{Name: "Gifts", Icon: "gift"},
		{Name: "Others", Icon: "dots-horizontal"},
	}
}

func DefaultModes() []Option {
	return []Option{
		{Name: "Cash", Icon: "cash"},
		{Name: "Card", Icon: "credit-card"},
		{Name: "UPI", Icon: "cellphone"},
		{Name: "Net Banking", Icon: "bank"},
		{Name: "Wallet", Icon: "wallet"},
	}
}

func DefaultNecessity() map[string]string {
	return map[string]string{
		"Food":          Need,
		"Groceries":     Need,
		"Rent":          Need,
		"Bills":         Need,
		"Transport":     Need,
		"Health":        Need,
		"Education":     Need,
		"Travel":        Want,
		"Shopping":      Want,
		"Entertainment": Want,
		"Gifts":         Want,
	}
}

func New(categories, modes []Option, necessity map[string]string) *Taxonomy {
	t := &Taxonomy{
		categories: dedupeOptions(categories),
		modes:      dedupeOptions(modes),
		necessity:  make(map[string]string, len(necessity)),
	}
	for cat, tag := range necessity {
		cat, tag = strings.TrimSpace(cat), strings.TrimSpace(tag)
		if cat == "" || tag == "" {
			continue
		}
		t.necessity[strings.ToLower(cat)] = tag
	}
	return t
}

func Default() *Taxonomy {
	return New(DefaultCategories(), DefaultModes(), DefaultNecessity())
}

// NewFromFiles reads categories.txt, modes.txt and necessity.txt from base.
// Missing or empty files fall back to the defaults.
//
//	categories.txt / modes.txt:  Name|icon
//	necessity.txt:               Category=Tag
func NewFromFiles(base string) *Taxonomy {
	cats := parseOptions(readLines(filepath.Join(base, "categories.txt")))
	modes := parseOptions(readLines(filepath.Join(base, "modes.txt")))
	necessity := parseNecessity(readLines(filepath.Join(base, "necessity.txt")))
	if len(cats) == 0 {
		cats = DefaultCategories()
	}
	if len(modes) == 0 {
		modes = DefaultModes()
	}
	if len(necessity) == 0 {
		necessity = DefaultNecessity()
	}
	return New(cats, modes, necessity)
}

func (t *Taxonomy) Categories() []Option {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]Option(nil), t.categories...)
}

func (t *Taxonomy) Modes() []Option {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]Option(nil), t.modes...)
}

// Necessity returns the tag configured for category, matched case-insensitively.
func (t *Taxonomy) Necessity(category string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	tag, ok := t.necessity[strings.ToLower(strings.TrimSpace(category))]
	return tag, ok
}

// AddCategory extends the option set; the list is extensible but duplicate
// names are ignored.
func (t *Taxonomy) AddCategory(o Option, necessity string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.categories = dedupeOptions(append(t.categories, o))
	if necessity = strings.TrimSpace(necessity); necessity != "" {
		t.necessity[strings.ToLower(strings.TrimSpace(o.Name))] = necessity
	}
}

func (t *Taxonomy) AddMode(o Option) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.modes = dedupeOptions(append(t.modes, o))
}

// ParseCategory reads "Name|icon=Tag". Icon and tag are optional.
func ParseCategory(s string) (Option, string, error) {
	spec, tag, _ := strings.Cut(s, "=")
	o, err := ParseMode(spec)
	if err != nil {
		return Option{}, "", err
	}
	return o, strings.TrimSpace(tag), nil
}

// ParseMode reads "Name|icon". The icon is optional.
func ParseMode(s string) (Option, error) {
	opts := parseOptions([]string{s})
	if opts[0].Name == "" {
		return Option{}, fmt.Errorf("%w: %q has no name", ErrInvalidOption, s)
	}
	return opts[0], nil
}

// SaveFiles writes the options to base in the layout NewFromFiles reads.
func (t *Taxonomy) SaveFiles(base string) error {
	t.mu.RLock()
	cats := formatOptions(t.categories)
	modes := formatOptions(t.modes)
	tagged := make([]string, 0, len(t.necessity))
	named := map[string]string{}
	for _, o := range t.categories {
		named[strings.ToLower(o.Name)] = o.Name
	}
	for key, tag := range t.necessity {
		name := named[key]
		if name == "" {
			name = key
		}
		tagged = append(tagged, name+"="+tag)
	}
	t.mu.RUnlock()
	sort.Strings(tagged)

	if err := os.MkdirAll(base, 0o755); err != nil {
		return fmt.Errorf("create taxonomy dir: %w", err)
	}
	files := map[string][]string{
		"categories.txt": cats,
		"modes.txt":      modes,
		"necessity.txt":  tagged,
	}
	for name, lines := range files {
		body := strings.Join(lines, "\n") + "\n"
		if err := os.WriteFile(filepath.Join(base, name), []byte(body), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	return nil
}

func formatOptions(opts []Option) []string {
	out := make([]string, len(opts))
	for i, o := range opts {
		out[i] = o.Name
		if o.Icon != "" {
			out[i] += "|" + o.Icon
		}
	}
	return out
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}

func parseOptions(lines []string) []Option {
	out := make([]Option, 0, len(lines))
	for _, line := range lines {
		name, icon, _ := strings.Cut(line, "|")
		out = append(out, Option{Name: strings.TrimSpace(name), Icon: strings.TrimSpace(icon)})
	}
	return out
}

func parseNecessity(lines []string) map[string]string {
	out := map[string]string{}
	for _, line := range lines {
		cat, tag, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		out[strings.TrimSpace(cat)] = strings.TrimSpace(tag)
	}
	return out
}

// dedupeOptions drops blank and repeated names, keeping the first occurrence
// and the input order.
func dedupeOptions(in []Option) []Option {
	seen := map[string]struct{}{}
	out := make([]Option, 0, len(in))
	for _, o := range in {
		o.Name = strings.TrimSpace(o.Name)
		if o.Name == "" {
			continue
		}
		key := strings.ToLower(o.Name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, o)
	}
	return out
}
