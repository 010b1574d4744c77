package logstore

import (
	"errors"
	"io"

	"gopkg.in/yaml.v3"
)

// RulesFromYAML reads mapping rules from r. Unknown fields are rejected so
// typos in config files surface as errors instead of silently dead rules.
// An empty document yields zero-value Rules.
func RulesFromYAML(r io.Reader) (Rules, error) {
	var rules Rules

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	if err := dec.Decode(&rules); err != nil {
		if errors.Is(err, io.EOF) {
			return Rules{}, nil
		}
		return Rules{}, errors.Join(ErrInvalidRules, err)
	}

	return rules, nil
}

// Merge overlays o on top of r and returns the result. Aliases and search
// paths for the same column are concatenated with o's entries first, logger
// allowlists are concatenated. Neither receiver nor argument is modified.
func (r Rules) Merge(o Rules) Rules {
	merged := Rules{
		Aliases:     make(map[string][]string, len(r.Aliases)+len(o.Aliases)),
		SearchPaths: make(map[string][]string, len(r.SearchPaths)+len(o.SearchPaths)),
	}

	for col, aliases := range r.Aliases {
		merged.Aliases[col] = append([]string(nil), aliases...)
	}
	for col, aliases := range o.Aliases {
		merged.Aliases[col] = append(append([]string(nil), aliases...), merged.Aliases[col]...)
	}

	for col, paths := range r.SearchPaths {
		merged.SearchPaths[col] = append([]string(nil), paths...)
	}
	for col, paths := range o.SearchPaths {
		merged.SearchPaths[col] = append(append([]string(nil), paths...), merged.SearchPaths[col]...)
	}

	merged.Loggers = append(append([]string(nil), r.Loggers...), o.Loggers...)

	return merged
}
