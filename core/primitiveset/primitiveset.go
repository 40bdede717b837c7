// Copyright 2024 The Tink Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package primitiveset holds PrimitiveSet, the ordered collection of
// per-key primitive instances that registry.Wrap collapses into a single
// aggregate primitive. Building a PrimitiveSet from a keyset is a
// keyset-level concern and stays out of this module; PrimitiveSet itself
// is populated directly by whatever owns that concern.
package primitiveset

import (
	"fmt"

	"github.com/tink-crypto/tink-go-core/core/cryptofmt"
	tinkpb "github.com/tink-crypto/tink-go-core/proto/tinkpb"
)

// Entry is one (key, primitive) pair inside a PrimitiveSet.
type Entry[B any] struct {
	KeyID      uint32
	Primitive  B
	Prefix     string
	PrefixType tinkpb.OutputPrefixType
	Status     tinkpb.KeyStatusType
	TypeURL    string
}

// PrimitiveSet is an ordered collection of primitive instances, one per
// key in a keyset, with a designated primary entry. Entries are indexed
// by their output prefix so that a ciphertext or tag can be routed back
// to the keys that might have produced it.
type PrimitiveSet[B any] struct {
	Primary              *Entry[B]
	EntriesInKeysetOrder []*Entry[B]
	Annotations          map[string]string

	byPrefix map[string][]*Entry[B]
	raw      []*Entry[B]
}

// New returns an empty PrimitiveSet.
func New[B any]() *PrimitiveSet[B] {
	return &PrimitiveSet[B]{
		byPrefix: make(map[string][]*Entry[B]),
	}
}

// Add inserts a primitive built from key into the set and returns its
// Entry. The key's OutputPrefixType determines whether the entry is
// indexed by prefix or filed among the raw (unprefixed) entries.
func (ps *PrimitiveSet[B]) Add(p B, key *tinkpb.Keyset_Key) (*Entry[B], error) {
	if key == nil {
		return nil, fmt.Errorf("primitiveset: key must not be nil")
	}
	prefix, err := cryptofmt.OutputPrefix(key)
	if err != nil {
		return nil, fmt.Errorf("primitiveset: %v", err)
	}
	e := &Entry[B]{
		KeyID:      key.KeyId,
		Primitive:  p,
		Prefix:     prefix,
		PrefixType: key.OutputPrefixType,
		Status:     key.Status,
		TypeURL:    key.GetKeyData().GetTypeUrl(),
	}
	if prefix == cryptofmt.RawPrefix {
		ps.raw = append(ps.raw, e)
	} else {
		ps.byPrefix[prefix] = append(ps.byPrefix[prefix], e)
	}
	ps.EntriesInKeysetOrder = append(ps.EntriesInKeysetOrder, e)
	return e, nil
}

// EntriesForPrefix returns every entry sharing the given ciphertext/tag
// prefix, in the order they were added.
func (ps *PrimitiveSet[B]) EntriesForPrefix(prefix string) ([]*Entry[B], error) {
	entries, ok := ps.byPrefix[prefix]
	if !ok {
		return nil, fmt.Errorf("primitiveset: no entries found for prefix")
	}
	return entries, nil
}

// RawEntries returns every entry registered with OutputPrefixType_RAW.
func (ps *PrimitiveSet[B]) RawEntries() ([]*Entry[B], error) {
	if len(ps.raw) == 0 {
		return nil, fmt.Errorf("primitiveset: no raw entries found")
	}
	return ps.raw, nil
}
