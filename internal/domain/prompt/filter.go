package prompt

import (
	"slices"
	"sort"
	"strings"
)

// Filter narrows a prompt list the way the browse page does.
// Zero values match everything.
type Filter struct {
	Search   string
	Category string
	Tags     []string
}

func (f Filter) Matches(p Prompt) bool {
	if f.Search != "" {
		term := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(p.Title), term) &&
			!strings.Contains(strings.ToLower(p.Description), term) {
			return false
		}
	}
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	for _, tag := range f.Tags {
		if !slices.Contains(p.Tags, tag) {
			return false
		}
	}
	return true
}

func (f Filter) Apply(prompts []Prompt) []Prompt {
	out := make([]Prompt, 0, len(prompts))
	for _, p := range prompts {
		if f.Matches(p) {
			out = append(out, p)
		}
	}
	return out
}

// Categories returns the distinct categories in first-seen order.
func Categories(prompts []Prompt) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, p := range prompts {
		if seen[p.Category] {
			continue
		}
		seen[p.Category] = true
		out = append(out, p.Category)
	}
	return out
}

// Tags returns the distinct tags across prompts, sorted.
func Tags(prompts []Prompt) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, p := range prompts {
		for _, t := range p.Tags {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	sort.Strings(out)
	return out
}

func FindByID(prompts []Prompt, id string) (Prompt, bool) {
	for _, p := range prompts {
		if p.ID == id {
			return p, true
		}
	}
	return Prompt{}, false
}
