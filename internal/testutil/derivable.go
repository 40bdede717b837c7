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
	"crypto/rand"
	"errors"
	"fmt"
	"reflect"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/tink-crypto/tink-go-core/core/registry"
	tinkpb "github.com/tink-crypto/tink-go-core/proto/tinkpb"
	"github.com/tink-crypto/tink-go-core/tink"
)

// DerivableAESTypeURL is the key-type URL DerivableAESLikeKeyManager is
// canonical for.
const DerivableAESTypeURL = "type.example.com/tink.testutil.DerivableAESKey"

var errInvalidDerivableAESKey = errors.New("derivable_aes_key_manager: invalid key")

// RawKeyViewer exposes the raw key bytes behind a primitive, a second
// primitive type a single AES-like key can instantiate alongside AEAD.
type RawKeyViewer interface {
	RawKeyBytes() []byte
}

type rawKeyView struct {
	key []byte
}

func (v *rawKeyView) RawKeyBytes() []byte {
	return append([]byte(nil), v.key...)
}

// DerivableAESLikeKeyManager is a list-style manager: one AES-like key
// schema that can instantiate either a TestAEAD or a RawKeyViewer,
// exercising registry.RegisterInternalKeyManager and its multi-primitive
// adaptor.
type DerivableAESLikeKeyManager struct{}

var _ registry.DerivableKeyManager = (*DerivableAESLikeKeyManager)(nil)

// TypeURL returns DerivableAESTypeURL.
func (dm *DerivableAESLikeKeyManager) TypeURL() string {
	return DerivableAESTypeURL
}

// KeyMaterialType reports these keys as symmetric.
func (dm *DerivableAESLikeKeyManager) KeyMaterialType() tinkpb.KeyMaterialType {
	return tinkpb.KeyData_SYMMETRIC
}

func (dm *DerivableAESLikeKeyManager) parseKey(serializedKey []byte) ([]byte, error) {
	if len(serializedKey) == 0 {
		return nil, errInvalidDerivableAESKey
	}
	keyProto := &wrapperspb.BytesValue{}
	if err := proto.Unmarshal(serializedKey, keyProto); err != nil {
		return nil, fmt.Errorf("derivable_aes_key_manager: could not parse key: %v", err)
	}
	if len(keyProto.GetValue()) == 0 {
		return nil, errInvalidDerivableAESKey
	}
	return keyProto.GetValue(), nil
}

// ValidateKeyFormat accepts every key format, including an empty one.
func (dm *DerivableAESLikeKeyManager) ValidateKeyFormat(serializedFormat []byte) error {
	return nil
}

// ValidateKey rejects a key that does not parse.
func (dm *DerivableAESLikeKeyManager) ValidateKey(serializedKey []byte) error {
	_, err := dm.parseKey(serializedKey)
	return err
}

// CreateKey generates a fresh random key, 16 bytes unless serializedFormat
// supplies a different length as its first byte, serialized as a
// wrapperspb.BytesValue.
func (dm *DerivableAESLikeKeyManager) CreateKey(serializedFormat []byte) ([]byte, error) {
	keyLen := 16
	if len(serializedFormat) > 0 {
		keyLen = int(serializedFormat[0])
	}
	key := make([]byte, keyLen)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("derivable_aes_key_manager: %v", err)
	}
	return proto.Marshal(wrapperspb.Bytes(key))
}

// Primitives declares the two primitive types this manager's keys can
// instantiate: TestAEAD and RawKeyViewer.
func (dm *DerivableAESLikeKeyManager) Primitives() []registry.PrimitiveConstructor {
	return []registry.PrimitiveConstructor{
		{
			PrimitiveType: reflect.TypeOf((*tink.AEAD)(nil)).Elem(),
			Create: func(serializedKey []byte) (any, error) {
				key, err := dm.parseKey(serializedKey)
				if err != nil {
					return nil, err
				}
				return &TestAEAD{Key: key}, nil
			},
		},
		{
			PrimitiveType: reflect.TypeOf((*RawKeyViewer)(nil)).Elem(),
			Create: func(serializedKey []byte) (any, error) {
				key, err := dm.parseKey(serializedKey)
				if err != nil {
					return nil, err
				}
				return &rawKeyView{key: key}, nil
			},
		},
	}
}
