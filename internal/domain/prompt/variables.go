package prompt

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// placeholderPattern matches a single-level {name}; nested braces never match.
var placeholderPattern = regexp.MustCompile(`\{([^{}]+)\}`)

// ExtractVariables returns one Variable per unique placeholder name in content,
// in order of first appearance.
func ExtractVariables(content string) []Variable {
	matches := placeholderPattern.FindAllStringSubmatch(content, -1)
	seen := make(map[string]bool, len(matches))
	vars := make([]Variable, 0, len(matches))
	for _, m := range matches {
		name := m[1]
		if seen[name] {
			continue
		}
		seen[name] = true
		label := HumanizeName(name)
		vars = append(vars, Variable{
			ID:          name,
			Name:        label,
			Description: "Enter value for " + label,
			Type:        KindText,
			Placeholder: "e.g., value for " + name,
		})
	}
	return vars
}

// HumanizeName turns variable_name into Variable Name.
func HumanizeName(name string) string {
	words := strings.Split(name, "_")
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		if size == 0 {
			continue
		}
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

// Render replaces each {name} that has an entry in values with that value,
// literally and in one pass, so substituted text is never rescanned.
// Placeholders without an entry are left untouched.
func Render(content string, values map[string]string) string {
	if len(values) == 0 {
		return content
	}
	return placeholderPattern.ReplaceAllStringFunc(content, func(match string) string {
		if v, ok := values[match[1:len(match)-1]]; ok {
			return v
		}
		return match
	})
}

// ValidateVariables checks every variable kind against the fixed enumeration.
func ValidateVariables(vars []Variable) error {
	for _, v := range vars {
		if !v.Type.Valid() {
			return &InvalidKindError{VariableID: v.ID, Kind: v.Type}
		}
	}
	return nil
}
