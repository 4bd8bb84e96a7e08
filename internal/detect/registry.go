package detect

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"go.yaml.in/yaml/v3"
)

// Set names one of the two ordered detector sets.
type Set string

const (
	SetSecret Set = "secret"
	SetPII    Set = "pii"
)

// Definition is the uncompiled form of a detector, as written in the builtin
// tables or in a custom detectors file.
type Definition struct {
	Name        string   `yaml:"name"`
	Set         Set      `yaml:"set"`
	Pattern     string   `yaml:"pattern"`
	Severity    Severity `yaml:"severity"`
	Remediation string   `yaml:"remediation"`
	// Group selects the capture group reported as the match; 0 is the whole match.
	Group int `yaml:"group,omitempty"`
}

// Detector is a compiled, immutable detection rule.
type Detector struct {
	Name        string
	Set         Set
	Pattern     *regexp.Regexp
	Severity    Severity
	Remediation string
	Group       int
}

// FindAll returns every non-overlapping match of the detector in content,
// leftmost first. When Group is set, the captured text is returned instead of
// the full match; matches where the group did not participate are dropped.
func (d Detector) FindAll(content string) []string {
	if d.Group == 0 {
		return d.Pattern.FindAllString(content, -1)
	}
	var out []string
	for _, sub := range d.Pattern.FindAllStringSubmatch(content, -1) {
		if d.Group < len(sub) && sub[d.Group] != "" {
			out = append(out, sub[d.Group])
		}
	}
	return out
}

// Registry is the read-only catalogue of secret and PII detectors.
type Registry struct {
	secrets []Detector
	pii     []Detector
}

// Default builds the registry from the builtin tables.
func Default() (*Registry, error) {
	return Build(nil)
}

// MustDefault is like Default but panics if a builtin pattern is invalid.
func MustDefault() *Registry {
	r, err := Default()
	if err != nil {
		panic(err)
	}
	return r
}

// Build compiles the builtin tables followed by extra definitions. Extra
// detectors run after the builtins of their set. Any invalid definition fails
// the whole build.
func Build(extra []Definition) (*Registry, error) {
	r := &Registry{}
	seen := map[Set]map[string]bool{SetSecret: {}, SetPII: {}}

	add := func(def Definition) error {
		d, err := compile(def)
		if err != nil {
			return err
		}
		if seen[d.Set][d.Name] {
			return fmt.Errorf("detector %q: duplicate name in %s set", d.Name, d.Set)
		}
		seen[d.Set][d.Name] = true
		if d.Set == SetSecret {
			r.secrets = append(r.secrets, d)
		} else {
			r.pii = append(r.pii, d)
		}
		return nil
	}

	for _, def := range builtinSecrets {
		def.Set = SetSecret
		if err := add(def); err != nil {
			return nil, err
		}
	}
	for _, def := range builtinPII {
		def.Set = SetPII
		if err := add(def); err != nil {
			return nil, err
		}
	}
	for _, def := range extra {
		if err := add(def); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func compile(def Definition) (Detector, error) {
	name := strings.TrimSpace(def.Name)
	if name == "" {
		return Detector{}, errors.New("detector with empty name")
	}
	set := Set(strings.ToLower(string(def.Set)))
	if set != SetSecret && set != SetPII {
		return Detector{}, fmt.Errorf("detector %q: unknown set %q (want %q or %q)", name, def.Set, SetSecret, SetPII)
	}
	sev, err := ParseSeverity(string(def.Severity))
	if err != nil {
		return Detector{}, fmt.Errorf("detector %q: %w", name, err)
	}
	if def.Pattern == "" {
		return Detector{}, fmt.Errorf("detector %q: empty pattern", name)
	}
	re, err := regexp.Compile(def.Pattern)
	if err != nil {
		return Detector{}, fmt.Errorf("detector %q: invalid pattern: %w", name, err)
	}
	if def.Group < 0 || def.Group > re.NumSubexp() {
		return Detector{}, fmt.Errorf("detector %q: group %d out of range (pattern has %d)", name, def.Group, re.NumSubexp())
	}
	return Detector{
		Name:        name,
		Set:         set,
		Pattern:     re,
		Severity:    sev,
		Remediation: def.Remediation,
		Group:       def.Group,
	}, nil
}

// SecretDetectors returns the secret detectors in evaluation order.
func (r *Registry) SecretDetectors() []Detector {
	return append([]Detector(nil), r.secrets...)
}

// PIIDetectors returns the PII detectors in evaluation order.
func (r *Registry) PIIDetectors() []Detector {
	return append([]Detector(nil), r.pii...)
}

// All returns secret detectors followed by PII detectors.
func (r *Registry) All() []Detector {
	out := make([]Detector, 0, len(r.secrets)+len(r.pii))
	out = append(out, r.secrets...)
	return append(out, r.pii...)
}

// detectorsFile is the on-disk layout of a custom detectors file.
type detectorsFile struct {
	Detectors []Definition `yaml:"detectors"`
}

// LoadDefinitions reads extra detector definitions from a YAML file.
// Returns nil and no error if path is empty.
func LoadDefinitions(path string) ([]Definition, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading detectors file: %w", err)
	}
	var f detectorsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing detectors file: %w", err)
	}
	return f.Detectors, nil
}
