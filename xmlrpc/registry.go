// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package xmlrpc

import (
	"sort"
	"sync"

	"github.com/Query-farm/vgi-xmlrpc/wire"
)

// Reserved introspection method names.
const (
	MethodListMethods  = "system.listMethods"
	MethodSignature    = "system.methodSignature"
	MethodHelp         = "system.methodHelp"
	MethodExist        = "system.methodExist"
	MethodCapabilities = "getCapabilities"
)

var reservedMethods = []string{
	MethodListMethods,
	MethodSignature,
	MethodHelp,
	MethodExist,
	MethodCapabilities,
}

// IsReserved reports whether name is one of the five introspection methods.
func IsReserved(name string) bool {
	switch name {
	case MethodListMethods, MethodSignature, MethodHelp, MethodExist, MethodCapabilities:
		return true
	}
	return false
}

// registryEntry stores the registration details for one method name.
type registryEntry struct {
	signatures [][]wire.ValueType
	help       string
	hasHelp    bool
}

// Registry records the methods served by one route tree. Entries are
// never removed. A Registry is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*registryEntry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*registryEntry)}
}

// entry returns the entry for name, creating it. Callers hold mu.
func (r *Registry) entry(name string) *registryEntry {
	e, ok := r.entries[name]
	if !ok {
		e = &registryEntry{}
		r.entries[name] = e
	}
	return e
}

// Register adds name to the known set. It is idempotent.
func (r *Registry) Register(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entry(name)
}

// AddSignature appends a parameter signature for name. Existing
// signatures are kept, including identical ones.
func (r *Registry) AddSignature(name string, types []wire.ValueType) {
	sig := append([]wire.ValueType{}, types...)
	r.mu.Lock()
	defer r.mu.Unlock()
	e := r.entry(name)
	e.signatures = append(e.signatures, sig)
}

// AddHelp sets the help text for name, replacing any previous text.
func (r *Registry) AddHelp(name, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := r.entry(name)
	e.help = text
	e.hasHelp = true
}

// ensureSignature adds types to name unless an identical signature is
// already present.
func (r *Registry) ensureSignature(name string, types []wire.ValueType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := r.entry(name)
	for _, sig := range e.signatures {
		if sameSignature(sig, types) {
			return
		}
	}
	e.signatures = append(e.signatures, append([]wire.ValueType{}, types...))
}

// IsKnown reports whether name was registered or is reserved.
func (r *Registry) IsKnown(name string) bool {
	if IsReserved(name) {
		return true
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[name]
	return ok
}

// Signatures returns a copy of the signatures declared for name, in
// declaration order. The result is empty, not nil, when none exist.
func (r *Registry) Signatures(name string) [][]wire.ValueType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	if !ok {
		return [][]wire.ValueType{}
	}
	out := make([][]wire.ValueType, len(e.signatures))
	for i, sig := range e.signatures {
		out[i] = append([]wire.ValueType{}, sig...)
	}
	return out
}

// Help returns the help text registered for name.
func (r *Registry) Help(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	if !ok || !e.hasHelp {
		return "", false
	}
	return e.help, true
}

// Methods returns the registered method names in sorted order. Reserved
// names appear only once they have been registered.
func (r *Registry) Methods() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

func sameSignature(a, b []wire.ValueType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
