package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
)

// Prefs is a namespaced, typed view over a Store. Keys are stored as
// "<namespace>:<key>".
type Prefs struct {
	store     Store
	namespace string
}

func NewPrefs(store Store, namespace string) *Prefs {
	return &Prefs{store: store, namespace: namespace}
}

func (p *Prefs) Namespace() string {
	return p.namespace
}

func (p *Prefs) key(k string) string {
	return p.namespace + ":" + k
}

// GetString returns the stored value or def when the key is absent.
func (p *Prefs) GetString(ctx context.Context, key, def string) (string, error) {
	data, err := p.store.Get(ctx, p.key(key))
	if errors.Is(err, ErrNotFound) {
		return def, nil
	}
	if err != nil {
		return def, err
	}
	return string(data), nil
}

func (p *Prefs) SetString(ctx context.Context, key, value string) error {
	return p.store.Set(ctx, p.key(key), []byte(value))
}

func (p *Prefs) GetBool(ctx context.Context, key string, def bool) (bool, error) {
	s, err := p.GetString(ctx, key, "")
	if err != nil || s == "" {
		return def, err
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return def, nil
	}
	return b, nil
}

func (p *Prefs) SetBool(ctx context.Context, key string, value bool) error {
	return p.SetString(ctx, key, strconv.FormatBool(value))
}

// GetStringSet returns the stored set in sorted order, or nil.
func (p *Prefs) GetStringSet(ctx context.Context, key string) ([]string, error) {
	var set []string
	ok, err := p.GetJSON(ctx, key, &set)
	if err != nil || !ok {
		return nil, err
	}
	return set, nil
}

// SetStringSet stores values deduplicated and sorted.
func (p *Prefs) SetStringSet(ctx context.Context, key string, values []string) error {
	seen := make(map[string]struct{}, len(values))
	set := make([]string, 0, len(values))
	for _, v := range values {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		set = append(set, v)
	}
	sort.Strings(set)
	return p.SetJSON(ctx, key, set)
}

// GetJSON decodes the stored value into out. It reports false when the key
// is absent or the payload is not valid JSON for out.
func (p *Prefs) GetJSON(ctx context.Context, key string, out any) (bool, error) {
	data, err := p.store.Get(ctx, p.key(key))
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, nil
	}
	return true, nil
}

func (p *Prefs) SetJSON(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return p.store.Set(ctx, p.key(key), data)
}

func (p *Prefs) Remove(ctx context.Context, keys ...string) error {
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = p.key(k)
	}
	return p.store.Delete(ctx, full...)
}

// Clear removes every key of the namespace.
func (p *Prefs) Clear(ctx context.Context) error {
	return p.store.DeletePrefix(ctx, p.namespace+":")
}
