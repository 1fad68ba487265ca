package registry

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hamed0406/uptimeboard/internal/domain"
)

// Registry is the immutable, ordered set of monitored targets.
type Registry struct {
	order   []string
	targets map[string]domain.Target
}

func New(targets []domain.Target) (*Registry, error) {
	r := &Registry{
		order:   make([]string, 0, len(targets)),
		targets: make(map[string]domain.Target, len(targets)),
	}
	var self string
	for i, t := range targets {
		t.Key = strings.TrimSpace(t.Key)
		if t.Key == "" {
			return nil, fmt.Errorf("target %d is missing key", i)
		}
		if _, dup := r.targets[t.Key]; dup {
			return nil, fmt.Errorf("duplicate target key %q", t.Key)
		}
		if t.URL != "" && !isValidHTTPURL(t.URL) {
			return nil, fmt.Errorf("target %s has invalid url %q", t.Key, t.URL)
		}
		if t.IsSelf() {
			if self != "" {
				return nil, fmt.Errorf("targets %s and %s both point at the hosting service; only one self target is allowed", self, t.Key)
			}
			self = t.Key
		}
		if t.Name == "" {
			t.Name = t.Key
		}
		if t.Category == "" {
			t.Category = "other"
		}
		r.order = append(r.order, t.Key)
		r.targets[t.Key] = t
	}
	if len(r.order) == 0 {
		return nil, errors.New("registry must define at least one target")
	}
	return r, nil
}

type fileFormat struct {
	Targets []domain.Target `yaml:"targets"`
}

// Load reads targets from a yaml file. An empty path yields the default set.
func Load(path string) (*Registry, error) {
	if path == "" {
		return Default(), nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read targets: %w", err)
	}
	var f fileFormat
	if err := yaml.Unmarshal(content, &f); err != nil {
		return nil, fmt.Errorf("parse targets: %w", err)
	}
	return New(f.Targets)
}

// Default returns the built-in target set.
func Default() *Registry {
	r, err := New(defaultTargets)
	if err != nil {
		panic("default targets invalid: " + err.Error())
	}
	return r
}

func (r *Registry) Lookup(key string) (domain.Target, bool) {
	t, ok := r.targets[key]
	return t, ok
}

// Keys returns target keys in declaration order.
func (r *Registry) Keys() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

func (r *Registry) Targets() []domain.Target {
	out := make([]domain.Target, 0, len(r.order))
	for _, k := range r.order {
		out = append(out, r.targets[k])
	}
	return out
}

func (r *Registry) Len() int { return len(r.order) }

func isValidHTTPURL(s string) bool {
	u, err := url.ParseRequestURI(s)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}
