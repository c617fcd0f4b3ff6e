package scheduler

import "strings"

// ExpertiseStrategy selects how trainer tags are compared to a subject.
type ExpertiseStrategy string

const (
	// StrategySynonym compares tags to the subject name using the synonym table.
	StrategySynonym ExpertiseStrategy = "synonym"
	// StrategySubjectID only substring-matches tags against the subject identifier.
	StrategySubjectID ExpertiseStrategy = "subject_id"
)

// Valid reports whether s is a known strategy.
func (s ExpertiseStrategy) Valid() bool {
	return s == StrategySynonym || s == StrategySubjectID
}

// SubjectRef is the part of a subject the matchers look at.
type SubjectRef struct {
	ID   string
	Name string
}

// ExpertiseMatcher decides whether a trainer's tags cover a subject.
type ExpertiseMatcher interface {
	Matches(expertise []string, subject SubjectRef) bool
}

// MatcherFor returns the matcher implementing strategy.
func MatcherFor(strategy ExpertiseStrategy) ExpertiseMatcher {
	if strategy == StrategySubjectID {
		return SubjectIDMatcher{}
	}
	return SynonymMatcher{}
}

var synonymGroups = [][]string{
	{"js", "javascript"},
	{"node", "nodejs", "node.js"},
	{"db", "database", "sql"},
	{"react", "reactjs", "react.js"},
	{"py", "python"},
	{"ml", "machine learning"},
	{"ai", "artificial intelligence"},
}

// SynonymMatcher matches on the subject name: equality, substring either way,
// or membership of both sides in one synonym group.
type SynonymMatcher struct{}

// Matches implements ExpertiseMatcher.
func (SynonymMatcher) Matches(expertise []string, subject SubjectRef) bool {
	name := normalise(subject.Name)
	if name == "" {
		name = normalise(subject.ID)
	}
	if name == "" {
		return false
	}
	for _, raw := range expertise {
		tag := normalise(raw)
		if tag == "" {
			continue
		}
		if tag == name || strings.Contains(name, tag) || strings.Contains(tag, name) {
			return true
		}
		if synonymMatch(tag, name) {
			return true
		}
	}
	return false
}

func synonymMatch(tag, name string) bool {
	for _, group := range synonymGroups {
		if !containsTerm(group, tag) {
			continue
		}
		for _, term := range group {
			if term == name || strings.Contains(name, term) {
				return true
			}
		}
	}
	for _, group := range synonymGroups {
		if !containsTerm(group, name) {
			continue
		}
		for _, term := range group {
			if term == tag || strings.Contains(tag, term) {
				return true
			}
		}
	}
	return false
}

func containsTerm(group []string, term string) bool {
	for _, item := range group {
		if item == term {
			return true
		}
	}
	return false
}

// SubjectIDMatcher is the looser check used by the optimizer, where subject
// names may be unknown: a tag must be a substring of the subject id or vice versa.
type SubjectIDMatcher struct{}

// Matches implements ExpertiseMatcher.
func (SubjectIDMatcher) Matches(expertise []string, subject SubjectRef) bool {
	id := normalise(subject.ID)
	if id == "" {
		return false
	}
	for _, raw := range expertise {
		tag := normalise(raw)
		if tag == "" {
			continue
		}
		if strings.Contains(id, tag) || strings.Contains(tag, id) {
			return true
		}
	}
	return false
}

func normalise(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
