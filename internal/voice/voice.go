// Package voice implements the Voice Registry: directory-loaded,
// JSON-descriptor voice metadata, immutable once loaded, per spec.md §4.4.
package voice

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Gender mirrors spec.md §3's {male, female, neutral} enum.
type Gender string

const (
	Male    Gender = "male"
	Female  Gender = "female"
	Neutral Gender = "neutral"
)

// Voice is immutable after Load, per spec.md §3.
type Voice struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Language     string    `json:"language"`
	Gender       Gender    `json:"gender"`
	StyleVector  []float32 `json:"style_vector"`
	DefaultSpeed float32   `json:"default_speed"`
	DefaultPitch float32   `json:"default_pitch"`
	Description  string    `json:"description,omitempty"`
	PreviewURL   string    `json:"preview_url,omitempty"`
}

// LoadError reports one descriptor's parse/validation failure during a
// directory load, so the caller can see partial success, per spec.md §4.4
// and §7's "partial success is preserved where possible".
type LoadError struct {
	Path string
	Err  error
}

func (e LoadError) Error() string { return fmt.Sprintf("%s: %v", e.Path, e.Err) }

// Registry holds loaded voices. Thread-safe for concurrent reads;
// mutating operations (Load/Unload/SetDefault) serialize on the same
// mutex, matching the teacher's one-lock-per-owned-resource discipline.
type Registry struct {
	mu         sync.RWMutex
	voices     map[string]*Voice
	defaultID  string
	styleDim   int // the Inference Session's declared style input length; 0 = unchecked
}

// NewRegistry returns an empty registry. styleDim, when > 0, makes
// LoadFile/LoadDir reject any voice whose style vector length differs,
// per spec.md §5 invariant 4 ("mismatch is fatal at load").
func NewRegistry(styleDim int) *Registry {
	return &Registry{voices: make(map[string]*Voice), styleDim: styleDim}
}

// LoadDir walks dir for *.json voice descriptors. Parse or validation
// failures on individual files do not abort the rest of the walk; they're
// collected and returned alongside the count of voices actually loaded.
func (r *Registry) LoadDir(dir string) (loaded int, failures []LoadError) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, []LoadError{{Path: dir, Err: err}}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := r.LoadFile(path); err != nil {
			failures = append(failures, LoadError{Path: path, Err: err})
			continue
		}
		loaded++
	}
	return loaded, failures
}

// LoadFile parses one JSON voice descriptor and registers it. A voice
// loaded while no default is set (the first one, or the first after the
// default was unloaded) becomes the default unless SetDefault is called
// explicitly afterward.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("voice: read %s: %w", path, err)
	}
	var v Voice
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("voice: parse %s: %w", path, err)
	}
	if v.ID == "" {
		return fmt.Errorf("voice: %s: missing id", path)
	}
	if r.styleDim > 0 && len(v.StyleVector) != r.styleDim {
		return fmt.Errorf("voice: %s: style vector length %d != expected %d", path, len(v.StyleVector), r.styleDim)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.voices[v.ID] = &v
	if r.defaultID == "" {
		r.defaultID = v.ID
	}
	return nil
}

// Unload removes a voice from the registry. If it was the default, the
// default is cleared (the caller must SetDefault explicitly).
func (r *Registry) Unload(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.voices, id)
	if r.defaultID == id {
		r.defaultID = ""
	}
}

// Get returns the voice registered under id, or false if none is.
func (r *Registry) Get(id string) (*Voice, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.voices[id]
	return v, ok
}

// List returns every loaded voice, sorted by id for deterministic output.
func (r *Registry) List() []*Voice {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Voice, 0, len(r.voices))
	for _, v := range r.voices {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SetDefault overrides the default voice id. Returns an error if id is
// not registered.
func (r *Registry) SetDefault(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.voices[id]; !ok {
		return fmt.Errorf("voice: set_default: unknown voice %q", id)
	}
	r.defaultID = id
	return nil
}

// GetDefaultID returns the current default voice id, or "" if none is set.
func (r *Registry) GetDefaultID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaultID
}

// Export re-serializes a loaded voice as its JSON descriptor form.
func (r *Registry) Export(id string) ([]byte, error) {
	r.mu.RLock()
	v, ok := r.voices[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("voice: export: unknown voice %q", id)
	}
	return json.MarshalIndent(v, "", "  ")
}

// MemoryUsage estimates the registry's resident size in bytes: each
// voice's style vector (4 bytes/float32) plus a fixed per-entry overhead
// for its string fields, matching the byte-accounting approach the cache
// accountant (component F) uses for its own ceilings.
func (r *Registry) MemoryUsage() int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	const perEntryOverhead = 128
	var total int64
	for _, v := range r.voices {
		total += int64(len(v.StyleVector))*4 + int64(len(v.Name)+len(v.Description)+len(v.PreviewURL)) + perEntryOverhead
	}
	return total
}
