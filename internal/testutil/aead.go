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

// Package testutil holds fake key managers and primitives exercising the
// registry without depending on any real cryptographic implementation.
// Test doubles here mirror the shapes real managers (e.g. the AEAD and
// signature key managers) use, so tests read the same way production
// code does.
package testutil

import (
	"crypto/rand"
	"errors"
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/tink-crypto/tink-go-core/core/registry"
)

// TestAEADTypeURL is the key-type URL TestAEADKeyManager is canonical for.
const TestAEADTypeURL = "type.example.com/tink.testutil.AEADKey"

var errInvalidTestAEADKey = errors.New("testaead_key_manager: invalid key")

// TestAEAD XORs plaintext with a repeating key; it exists to give tests
// an AEAD-shaped primitive that is trivial to assert against, not to be
// secure.
type TestAEAD struct {
	Key []byte
}

// Encrypt XORs plaintext with the key, repeating the key as needed, and
// ignores associatedData.
func (a *TestAEAD) Encrypt(plaintext, associatedData []byte) ([]byte, error) {
	return xorWithKey(a.Key, plaintext), nil
}

// Decrypt is Encrypt's inverse, since XOR is its own inverse.
func (a *TestAEAD) Decrypt(ciphertext, associatedData []byte) ([]byte, error) {
	return xorWithKey(a.Key, ciphertext), nil
}

func xorWithKey(key, data []byte) []byte {
	if len(key) == 0 {
		return append([]byte(nil), data...)
	}
	out := make([]byte, len(data))
	for i := range data {
		out[i] = data[i] ^ key[i%len(key)]
	}
	return out
}

// TestAEADKeyManager produces TestAEAD primitives from a serialized
// wrapperspb.BytesValue key.
type TestAEADKeyManager struct{}

var _ registry.KeyManager = (*TestAEADKeyManager)(nil)

// Primitive parses serializedKey as a wrapperspb.BytesValue and returns
// the TestAEAD it describes.
func (km *TestAEADKeyManager) Primitive(serializedKey []byte) (any, error) {
	if len(serializedKey) == 0 {
		return nil, errInvalidTestAEADKey
	}
	keyProto := &wrapperspb.BytesValue{}
	if err := proto.Unmarshal(serializedKey, keyProto); err != nil {
		return nil, fmt.Errorf("testaead_key_manager: could not parse key: %v", err)
	}
	if len(keyProto.GetValue()) == 0 {
		return nil, errInvalidTestAEADKey
	}
	return &TestAEAD{Key: keyProto.GetValue()}, nil
}

// NewKey generates a fresh random key, 16 bytes unless serializedKeyFormat
// supplies a different length as its first byte.
func (km *TestAEADKeyManager) NewKey(serializedKeyFormat []byte) (proto.Message, error) {
	keyLen := 16
	if len(serializedKeyFormat) > 0 {
		keyLen = int(serializedKeyFormat[0])
	}
	key := make([]byte, keyLen)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("testaead_key_manager: %v", err)
	}
	return wrapperspb.Bytes(key), nil
}

// DoesSupport reports whether typeURL is TestAEADTypeURL.
func (km *TestAEADKeyManager) DoesSupport(typeURL string) bool {
	return typeURL == TestAEADTypeURL
}

// TypeURL returns TestAEADTypeURL.
func (km *TestAEADKeyManager) TypeURL() string {
	return TestAEADTypeURL
}

// AlwaysFailingAEAD rejects every Encrypt and Decrypt call, for tests that
// need a wrapped primitive whose underlying key is unusable.
type AlwaysFailingAEAD struct {
	Err error
}

// Encrypt always fails.
func (a *AlwaysFailingAEAD) Encrypt(plaintext, associatedData []byte) ([]byte, error) {
	return nil, a.err()
}

// Decrypt always fails.
func (a *AlwaysFailingAEAD) Decrypt(ciphertext, associatedData []byte) ([]byte, error) {
	return nil, a.err()
}

func (a *AlwaysFailingAEAD) err() error {
	if a.Err != nil {
		return a.Err
	}
	return errors.New("testaead: always fails")
}
