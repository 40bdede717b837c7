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

package testutil

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/tink-crypto/tink-go-core/core/registry"
	tinkpb "github.com/tink-crypto/tink-go-core/proto/tinkpb"
)

// TestPrivateKeyTypeURL and TestPublicKeyTypeURL are the key-type URLs of
// an asymmetric pair used to exercise RegisterAsymmetricKeyManagers and
// GetPublicKeyData.
const (
	TestPrivateKeyTypeURL = "type.example.com/tink.testutil.PrivateKey"
	TestPublicKeyTypeURL  = "type.example.com/tink.testutil.PublicKey"
)

var (
	errInvalidTestPrivateKey = errors.New("testprivatekey_manager: invalid key")
	errInvalidTestPublicKey  = errors.New("testpublickey_manager: invalid key")
)

// Signer produces a signature over data.
type Signer interface {
	Sign(data []byte) ([]byte, error)
}

// Verifier checks a signature produced by the matching Signer.
type Verifier interface {
	Verify(sig, data []byte) error
}

// TestSigner signs by hashing the public value derived from the private
// key material (its sha256) together with the message; it is
// deterministic and trivially checkable, not secure.
type TestSigner struct {
	Key []byte
}

// Sign returns sha256(sha256(key) || data), which TestVerifier recomputes
// from the public value.
func (s *TestSigner) Sign(data []byte) ([]byte, error) {
	pub := sha256.Sum256(s.Key)
	h := sha256.Sum256(append(append([]byte(nil), pub[:]...), data...))
	return h[:], nil
}

// TestVerifier checks a TestSigner signature given the matching public
// value derived at key-generation time.
type TestVerifier struct {
	PublicValue []byte
}

// Verify recomputes sha256(PublicValue || data) and compares to sig.
func (v *TestVerifier) Verify(sig, data []byte) error {
	want := sha256.Sum256(append(append([]byte(nil), v.PublicValue...), data...))
	if !bytes.Equal(want[:], sig) {
		return errors.New("testverifier: signature mismatch")
	}
	return nil
}

// TestPrivateKeyManager produces TestSigner primitives and derives the
// matching TestPublicKeyTypeURL public key data, using a structpb.Struct
// as the wire encoding of its keys: {"d": base64, "public_key": {"n":
// base64, "params": {"encoding": "DER"}}}.
type TestPrivateKeyManager struct{}

var _ registry.PrivateKeyManager = (*TestPrivateKeyManager)(nil)

// TypeURL returns TestPrivateKeyTypeURL.
func (km *TestPrivateKeyManager) TypeURL() string { return TestPrivateKeyTypeURL }

// DoesSupport reports whether typeURL is TestPrivateKeyTypeURL.
func (km *TestPrivateKeyManager) DoesSupport(typeURL string) bool {
	return typeURL == TestPrivateKeyTypeURL
}

// NewKey generates a fresh private key and derives its public value (here,
// the sha256 of the private value, standing in for real key derivation).
func (km *TestPrivateKeyManager) NewKey(serializedKeyFormat []byte) (proto.Message, error) {
	priv := make([]byte, 32)
	if _, err := rand.Read(priv); err != nil {
		return nil, fmt.Errorf("testprivatekey_manager: %v", err)
	}
	pub := sha256.Sum256(priv)
	return structpb.NewStruct(map[string]any{
		"d": base64.StdEncoding.EncodeToString(priv),
		"public_key": map[string]any{
			"n":      base64.StdEncoding.EncodeToString(pub[:]),
			"params": map[string]any{"encoding": "DER"},
		},
	})
}

// Primitive parses serializedKey as a structpb.Struct and returns the
// TestSigner it describes.
func (km *TestPrivateKeyManager) Primitive(serializedKey []byte) (any, error) {
	priv, err := km.parsePrivate(serializedKey)
	if err != nil {
		return nil, err
	}
	return &TestSigner{Key: priv}, nil
}

func (km *TestPrivateKeyManager) parsePrivate(serializedKey []byte) ([]byte, error) {
	if len(serializedKey) == 0 {
		return nil, errInvalidTestPrivateKey
	}
	s := &structpb.Struct{}
	if err := proto.Unmarshal(serializedKey, s); err != nil {
		return nil, fmt.Errorf("testprivatekey_manager: could not parse key: %v", err)
	}
	d, ok := s.GetFields()["d"]
	if !ok {
		return nil, errInvalidTestPrivateKey
	}
	priv, err := base64.StdEncoding.DecodeString(d.GetStringValue())
	if err != nil {
		return nil, fmt.Errorf("testprivatekey_manager: could not parse key: %v", err)
	}
	return priv, nil
}

// PublicKeyData derives the public KeyData embedded under
// serializedPrivKey's "public_key" field, requiring DER encoding.
func (km *TestPrivateKeyManager) PublicKeyData(serializedPrivKey []byte) (*tinkpb.KeyData, error) {
	if len(serializedPrivKey) == 0 {
		return nil, errInvalidTestPrivateKey
	}
	s := &structpb.Struct{}
	if err := proto.Unmarshal(serializedPrivKey, s); err != nil {
		return nil, fmt.Errorf("testprivatekey_manager: could not parse key: %v", err)
	}
	pubField, ok := s.GetFields()["public_key"]
	if !ok {
		return nil, errInvalidTestPrivateKey
	}
	pubStruct := pubField.GetStructValue()
	encoding := pubStruct.GetFields()["params"].GetStructValue().GetFields()["encoding"].GetStringValue()
	if encoding != "DER" {
		return nil, fmt.Errorf("testprivatekey_manager: unsupported public key encoding %q", encoding)
	}
	serialized, err := proto.Marshal(pubStruct)
	if err != nil {
		return nil, fmt.Errorf("testprivatekey_manager: %v", err)
	}
	return &tinkpb.KeyData{
		TypeUrl:         TestPublicKeyTypeURL,
		Value:           serialized,
		KeyMaterialType: tinkpb.KeyData_ASYMMETRIC_PUBLIC,
	}, nil
}

// TestPublicKeyManager produces TestVerifier primitives from the public
// KeyData TestPrivateKeyManager.PublicKeyData derives.
type TestPublicKeyManager struct{}

var _ registry.KeyManager = (*TestPublicKeyManager)(nil)

// TypeURL returns TestPublicKeyTypeURL.
func (km *TestPublicKeyManager) TypeURL() string { return TestPublicKeyTypeURL }

// DoesSupport reports whether typeURL is TestPublicKeyTypeURL.
func (km *TestPublicKeyManager) DoesSupport(typeURL string) bool {
	return typeURL == TestPublicKeyTypeURL
}

// NewKey is unsupported: public halves are only ever derived from a
// private key via PublicKeyData, never minted directly.
func (km *TestPublicKeyManager) NewKey(serializedKeyFormat []byte) (proto.Message, error) {
	return nil, errors.New("testpublickey_manager: public keys can only be derived, not created")
}

// Primitive parses serializedKey as a structpb.Struct and returns the
// TestVerifier it describes.
func (km *TestPublicKeyManager) Primitive(serializedKey []byte) (any, error) {
	if len(serializedKey) == 0 {
		return nil, errInvalidTestPublicKey
	}
	s := &structpb.Struct{}
	if err := proto.Unmarshal(serializedKey, s); err != nil {
		return nil, fmt.Errorf("testpublickey_manager: could not parse key: %v", err)
	}
	n, ok := s.GetFields()["n"]
	if !ok {
		return nil, errInvalidTestPublicKey
	}
	pub, err := base64.StdEncoding.DecodeString(n.GetStringValue())
	if err != nil {
		return nil, fmt.Errorf("testpublickey_manager: could not parse key: %v", err)
	}
	return &TestVerifier{PublicValue: pub}, nil
}
