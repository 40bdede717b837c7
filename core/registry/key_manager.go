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

package registry

import (
	"reflect"

	"google.golang.org/protobuf/proto"

	tinkpb "github.com/tink-crypto/tink-go-core/proto/tinkpb"
)

// KeyManager is the legacy, single-primitive manager contract. A manager
// registered with RegisterKeyManager declares the single primitive type it
// produces through that call's type parameter, not through this
// interface.
type KeyManager interface {
	// Primitive instantiates the primitive this manager produces from a
	// serialized key.
	Primitive(serializedKey []byte) (any, error)
	// NewKey generates a fresh key from a serialized key format.
	NewKey(serializedKeyFormat []byte) (proto.Message, error)
	// DoesSupport reports whether this manager handles typeURL.
	DoesSupport(typeURL string) bool
	// TypeURL returns the key-type URL this manager is canonical for.
	TypeURL() string
}

// PrivateKeyManager is a KeyManager that can additionally derive the
// public half of an asymmetric key pair.
type PrivateKeyManager interface {
	KeyManager
	// PublicKeyData derives and serializes the public key matching
	// serializedPrivKey.
	PublicKeyData(serializedPrivKey []byte) (*tinkpb.KeyData, error)
}

// PrimitiveConstructor is one entry in a DerivableKeyManager's declared
// primitive list: a primitive-type tag paired with the code that builds
// that primitive from a parsed key. PrimitiveType is normally obtained
// with a small helper such as:
//
//	reflect.TypeOf((*tink.AEAD)(nil)).Elem()
type PrimitiveConstructor struct {
	PrimitiveType reflect.Type
	Create        func(serializedKey []byte) (any, error)
}

// DerivableKeyManager is the list-style manager contract introduced
// alongside legacy KeyManagers: one key schema that can produce more than
// one primitive type. RegisterInternalKeyManager synthesizes one
// legacy-shaped adaptor per entry in Primitives().
type DerivableKeyManager interface {
	// TypeURL returns the key-type URL this manager is canonical for.
	TypeURL() string
	// KeyMaterialType classifies the keys this manager creates.
	KeyMaterialType() tinkpb.KeyMaterialType
	// ValidateKeyFormat rejects a malformed serialized key format.
	ValidateKeyFormat(serializedFormat []byte) error
	// ValidateKey rejects a malformed serialized key.
	ValidateKey(serializedKey []byte) error
	// CreateKey generates a fresh, serialized key from a serialized key
	// format.
	CreateKey(serializedFormat []byte) ([]byte, error)
	// Primitives lists the primitive types this manager's keys can
	// instantiate.
	Primitives() []PrimitiveConstructor
}

// TypedKeyManager is what KeyManagerFor[P] hands back: a type-safe
// accessor for one primitive type produced from a key-type URL,
// regardless of whether the underlying registration was legacy or
// list-style.
type TypedKeyManager[P any] interface {
	// GetPrimitive instantiates P from a serialized key.
	GetPrimitive(serializedKey []byte) (P, error)
}

type erasedKeyManager[P any] struct {
	create func(serializedKey []byte) (any, error)
}

func (k *erasedKeyManager[P]) GetPrimitive(serializedKey []byte) (P, error) {
	var zero P
	v, err := k.create(serializedKey)
	if err != nil {
		return zero, err
	}
	p, ok := v.(P)
	if !ok {
		return zero, invalidArgumentf("primitive has unexpected type %T, want %s", v, primitiveTag[P]())
	}
	return p, nil
}

// primitiveTag returns the stable, comparable identity of interface type P
// used throughout the registry's tables: its reflect.Type.
func primitiveTag[P any]() reflect.Type {
	return reflect.TypeOf((*P)(nil)).Elem()
}

func supportedNames(factories map[reflect.Type]erasedFactory) []string {
	names := make([]string, 0, len(factories))
	for t := range factories {
		names = append(names, t.String())
	}
	return names
}
