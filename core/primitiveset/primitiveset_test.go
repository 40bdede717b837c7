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

package primitiveset_test

import (
	"testing"

	"github.com/tink-crypto/tink-go-core/core/primitiveset"
	"github.com/tink-crypto/tink-go-core/internal/testutil"
	tinkpb "github.com/tink-crypto/tink-go-core/proto/tinkpb"
)

func keysetKey(id uint32, prefix tinkpb.OutputPrefixType) *tinkpb.Keyset_Key {
	return &tinkpb.Keyset_Key{
		KeyData:          &tinkpb.KeyData{TypeUrl: testutil.TestAEADTypeURL},
		KeyId:            id,
		Status:           tinkpb.KeyStatusType_ENABLED,
		OutputPrefixType: prefix,
	}
}

func TestAddIndexesByPrefix(t *testing.T) {
	ps := primitiveset.New[*testutil.TestAEAD]()

	tinkEntry, err := ps.Add(&testutil.TestAEAD{Key: []byte("a")}, keysetKey(1, tinkpb.OutputPrefixType_TINK))
	if err != nil {
		t.Fatalf("Add(TINK) err = %v, want nil", err)
	}
	rawEntry, err := ps.Add(&testutil.TestAEAD{Key: []byte("b")}, keysetKey(2, tinkpb.OutputPrefixType_RAW))
	if err != nil {
		t.Fatalf("Add(RAW) err = %v, want nil", err)
	}

	entries, err := ps.EntriesForPrefix(tinkEntry.Prefix)
	if err != nil {
		t.Fatalf("EntriesForPrefix() err = %v, want nil", err)
	}
	if len(entries) != 1 || entries[0] != tinkEntry {
		t.Errorf("EntriesForPrefix() = %v, want [%v]", entries, tinkEntry)
	}

	raw, err := ps.RawEntries()
	if err != nil {
		t.Fatalf("RawEntries() err = %v, want nil", err)
	}
	if len(raw) != 1 || raw[0] != rawEntry {
		t.Errorf("RawEntries() = %v, want [%v]", raw, rawEntry)
	}

	if len(ps.EntriesInKeysetOrder) != 2 {
		t.Errorf("len(EntriesInKeysetOrder) = %d, want 2", len(ps.EntriesInKeysetOrder))
	}
}

func TestEntriesForPrefixUnknownPrefix(t *testing.T) {
	ps := primitiveset.New[*testutil.TestAEAD]()
	if _, err := ps.EntriesForPrefix("nope"); err == nil {
		t.Error("EntriesForPrefix() err = nil, want error for unknown prefix")
	}
}

func TestRawEntriesEmpty(t *testing.T) {
	ps := primitiveset.New[*testutil.TestAEAD]()
	if _, err := ps.Add(&testutil.TestAEAD{Key: []byte("a")}, keysetKey(1, tinkpb.OutputPrefixType_TINK)); err != nil {
		t.Fatalf("Add() err = %v, want nil", err)
	}
	if _, err := ps.RawEntries(); err == nil {
		t.Error("RawEntries() err = nil, want error when no raw entries exist")
	}
}

func TestAddNilKeyRejected(t *testing.T) {
	ps := primitiveset.New[*testutil.TestAEAD]()
	if _, err := ps.Add(&testutil.TestAEAD{Key: []byte("a")}, nil); err == nil {
		t.Error("Add() err = nil, want error for nil key")
	}
}
