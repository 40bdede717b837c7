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

// Package registry is a process-wide, concurrency-safe binding of
// key-type URLs and primitive identities to key managers, primitive
// wrappers, and catalogues. It is the one place a caller asks "how do I
// turn this serialized key into a usable primitive" without having to
// know which concrete key manager owns that key type. The registry
// performs no I/O, no serialization of keysets, and no logging of its
// own; it is a lookup table guarded by a single mutex.
package registry

import (
	"reflect"
	"sync"

	"google.golang.org/protobuf/proto"

	tinkpb "github.com/tink-crypto/tink-go-core/proto/tinkpb"
)

// erasedFactory builds a primitive from a serialized key without
// revealing which concrete primitive interface it targets; the key into
// a keyManagerEntry.factories map supplies that context.
type erasedFactory func(serializedKey []byte) (any, error)

// keyManagerEntry is everything the registry retains about one key-type
// URL, merged across every RegisterKeyManager / RegisterInternalKeyManager
// / RegisterAsymmetricKeyManagers call that has targeted it.
type keyManagerEntry struct {
	ownerType       reflect.Type
	newKeyAllowed   bool
	keyMaterial     tinkpb.KeyMaterialType
	pairedTypeURL   string
	factories       map[reflect.Type]erasedFactory
	newKeyDataFn    func(serializedFormat []byte) (*tinkpb.KeyData, error)
	publicKeyDataFn func(serializedPrivKey []byte) (*tinkpb.KeyData, error)
}

type registry struct {
	mu          sync.RWMutex
	keyManagers map[string]*keyManagerEntry
	wrappers    map[reflect.Type]*wrapperEntry
	catalogues  map[catalogueKey]any
}

func newRegistry() *registry {
	return &registry{
		keyManagers: make(map[string]*keyManagerEntry),
		wrappers:    make(map[reflect.Type]*wrapperEntry),
		catalogues:  make(map[catalogueKey]any),
	}
}

var defaultReg = newRegistry()

// Reset clears every registration. It exists for tests; production code
// never calls it, since un-registering a key manager that a live keyset
// depends on silently breaks that keyset.
func Reset() {
	defaultReg.mu.Lock()
	defer defaultReg.mu.Unlock()
	defaultReg.keyManagers = make(map[string]*keyManagerEntry)
	defaultReg.wrappers = make(map[reflect.Type]*wrapperEntry)
	defaultReg.catalogues = make(map[catalogueKey]any)
}

// upsertKeyManager merges a new binding for typeURL into any existing
// entry, enforcing canonical-type stability (I4), the one-way
// new_key_allowed latch (I3), and asymmetric/legacy separation (I5):
// unless asymmetricPairing is set (i.e. the caller is
// RegisterAsymmetricKeyManagers itself), a type URL that is already half
// of a bound asymmetric pair cannot be re-registered through the legacy
// or list-style paths. Callers must hold r.mu for writing.
func (r *registry) upsertKeyManager(typeURL string, ownerType reflect.Type, newKeyAllowed bool, keyMaterial tinkpb.KeyMaterialType, factories map[reflect.Type]erasedFactory, newKeyDataFn func([]byte) (*tinkpb.KeyData, error), publicKeyDataFn func([]byte) (*tinkpb.KeyData, error), asymmetricPairing bool) error {
	existing, ok := r.keyManagers[typeURL]
	if !ok {
		r.keyManagers[typeURL] = &keyManagerEntry{
			ownerType:       ownerType,
			newKeyAllowed:   newKeyAllowed,
			keyMaterial:     keyMaterial,
			factories:       factories,
			newKeyDataFn:    newKeyDataFn,
			publicKeyDataFn: publicKeyDataFn,
		}
		return nil
	}

	if !asymmetricPairing && existing.pairedTypeURL != "" {
		return alreadyExistsf("key manager for type url %q is already registered as part of an asymmetric key pair, cannot be re-registered as a standalone key manager", typeURL)
	}
	if existing.ownerType != ownerType {
		return alreadyExistsf("key manager for type url %q is already registered with implementation %s, cannot re-register with %s", typeURL, existing.ownerType, ownerType)
	}
	if newKeyAllowed && !existing.newKeyAllowed {
		return alreadyExistsf("forbidden new key operation: key manager for type url %q was registered with new key generation disabled and cannot be re-registered with it enabled", typeURL)
	}

	existing.newKeyAllowed = existing.newKeyAllowed && newKeyAllowed
	for pType, fn := range factories {
		existing.factories[pType] = fn
	}
	if newKeyDataFn != nil {
		existing.newKeyDataFn = newKeyDataFn
	}
	if publicKeyDataFn != nil {
		existing.publicKeyDataFn = publicKeyDataFn
	}
	return nil
}

// RegisterKeyManager registers km as the legacy, single-primitive
// manager for its TypeURL, producing primitives of type P. newKeyAllowed
// controls whether NewKeyData may mint fresh keys of this type; once
// registered with newKeyAllowed=false, a type URL can never be
// re-registered with it set to true.
func RegisterKeyManager[P any](km KeyManager, newKeyAllowed bool) error {
	typeURL := km.TypeURL()
	ownerType := reflect.TypeOf(km)
	material := tinkpb.KeyData_SYMMETRIC
	var publicKeyDataFn func([]byte) (*tinkpb.KeyData, error)
	if pkm, ok := km.(PrivateKeyManager); ok {
		material = tinkpb.KeyData_ASYMMETRIC_PRIVATE
		publicKeyDataFn = pkm.PublicKeyData
	}
	factories := map[reflect.Type]erasedFactory{primitiveTag[P](): km.Primitive}
	newKeyDataFn := legacyNewKeyDataFn(typeURL, material, km.NewKey)

	r := defaultReg
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.upsertKeyManager(typeURL, ownerType, newKeyAllowed, material, factories, newKeyDataFn, publicKeyDataFn, false)
}

func legacyNewKeyDataFn(typeURL string, material tinkpb.KeyMaterialType, newKey func([]byte) (proto.Message, error)) func([]byte) (*tinkpb.KeyData, error) {
	return func(serializedFormat []byte) (*tinkpb.KeyData, error) {
		msg, err := newKey(serializedFormat)
		if err != nil {
			return nil, invalidArgumentf("could not create new key for type url %q: %v", typeURL, err)
		}
		serialized, err := proto.Marshal(msg)
		if err != nil {
			return nil, invalidArgumentf("could not serialize new key for type url %q: %v", typeURL, err)
		}
		return &tinkpb.KeyData{TypeUrl: typeURL, Value: serialized, KeyMaterialType: material}, nil
	}
}

// RegisterInternalKeyManager registers a list-style manager whose keys can
// instantiate more than one primitive type, synthesizing one factory
// entry per DerivableKeyManager.Primitives() element.
func RegisterInternalKeyManager(dm DerivableKeyManager, newKeyAllowed bool) error {
	typeURL := dm.TypeURL()
	ownerType := reflect.TypeOf(dm)
	material := dm.KeyMaterialType()

	factories := make(map[reflect.Type]erasedFactory, len(dm.Primitives()))
	for _, pc := range dm.Primitives() {
		factories[pc.PrimitiveType] = pc.Create
	}
	newKeyDataFn := func(serializedFormat []byte) (*tinkpb.KeyData, error) {
		if err := dm.ValidateKeyFormat(serializedFormat); err != nil {
			return nil, invalidArgumentf("invalid key format for type url %q: %v", typeURL, err)
		}
		serialized, err := dm.CreateKey(serializedFormat)
		if err != nil {
			return nil, invalidArgumentf("could not create new key for type url %q: %v", typeURL, err)
		}
		if err := dm.ValidateKey(serialized); err != nil {
			return nil, invalidArgumentf("created key for type url %q is invalid: %v", typeURL, err)
		}
		return &tinkpb.KeyData{TypeUrl: typeURL, Value: serialized, KeyMaterialType: material}, nil
	}

	r := defaultReg
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.upsertKeyManager(typeURL, ownerType, newKeyAllowed, material, factories, newKeyDataFn, nil, false)
}

// RegisterAsymmetricKeyManagers registers private and public as a bound
// pair: once paired, re-registering either half paired with a different
// counterpart type URL is rejected (I5).
func RegisterAsymmetricKeyManagers[Priv, Pub any](private PrivateKeyManager, public KeyManager, newKeyAllowed bool) error {
	privURL := private.TypeURL()
	pubURL := public.TypeURL()
	if _, ok := public.(PrivateKeyManager); ok {
		return invalidArgumentf("public key manager for type url %q must not be a PrivateKeyManager", pubURL)
	}

	r := defaultReg
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.keyManagers[privURL]; ok && existing.pairedTypeURL != "" && existing.pairedTypeURL != pubURL {
		return invalidArgumentf("private key manager for type url %q is already paired with %q, cannot be re-registered paired with %q", privURL, existing.pairedTypeURL, pubURL)
	}
	if existing, ok := r.keyManagers[pubURL]; ok && existing.pairedTypeURL != "" && existing.pairedTypeURL != privURL {
		return invalidArgumentf("public key manager for type url %q is already paired with %q, cannot be re-registered paired with %q", pubURL, existing.pairedTypeURL, privURL)
	}

	privFactories := map[reflect.Type]erasedFactory{primitiveTag[Priv](): private.Primitive}
	pubFactories := map[reflect.Type]erasedFactory{primitiveTag[Pub](): public.Primitive}

	privNewKeyDataFn := legacyNewKeyDataFn(privURL, tinkpb.KeyData_ASYMMETRIC_PRIVATE, private.NewKey)
	pubNewKeyDataFn := legacyNewKeyDataFn(pubURL, tinkpb.KeyData_ASYMMETRIC_PUBLIC, public.NewKey)

	if err := r.upsertKeyManager(privURL, reflect.TypeOf(private), newKeyAllowed, tinkpb.KeyData_ASYMMETRIC_PRIVATE, privFactories, privNewKeyDataFn, private.PublicKeyData, true); err != nil {
		return err
	}
	if err := r.upsertKeyManager(pubURL, reflect.TypeOf(public), newKeyAllowed, tinkpb.KeyData_ASYMMETRIC_PUBLIC, pubFactories, pubNewKeyDataFn, nil, true); err != nil {
		return err
	}
	r.keyManagers[privURL].pairedTypeURL = pubURL
	r.keyManagers[pubURL].pairedTypeURL = privURL
	return nil
}

// KeyManagerFor returns a type-safe view over the key manager registered
// for typeURL, scoped to primitive type P.
func KeyManagerFor[P any](typeURL string) (TypedKeyManager[P], error) {
	r := defaultReg
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.keyManagers[typeURL]
	if !ok {
		return nil, notFoundf("no key manager registered for type url %q", typeURL)
	}
	fn, ok := entry.factories[primitiveTag[P]()]
	if !ok {
		return nil, invalidArgumentf("primitive %s is not among supported primitives %v for type url %q", primitiveTag[P](), supportedNames(entry.factories), typeURL)
	}
	return &erasedKeyManager[P]{create: fn}, nil
}

// NewKeyData generates a fresh KeyData from template using the key
// manager registered for template's type URL.
func NewKeyData(template *tinkpb.KeyTemplate) (*tinkpb.KeyData, error) {
	if template == nil {
		return nil, invalidArgumentf("key template must not be nil")
	}
	r := defaultReg
	r.mu.RLock()
	entry, ok := r.keyManagers[template.TypeUrl]
	var newKeyAllowed bool
	var newKeyDataFn func([]byte) (*tinkpb.KeyData, error)
	if ok {
		newKeyAllowed, newKeyDataFn = entry.newKeyAllowed, entry.newKeyDataFn
	}
	r.mu.RUnlock()
	if !ok {
		return nil, notFoundf("no key manager registered for type url %q", template.TypeUrl)
	}
	if !newKeyAllowed {
		return nil, invalidArgumentf("key manager for type url %q does not allow creating new keys", template.TypeUrl)
	}
	return newKeyDataFn(template.Value)
}

// PrimitiveFromKeyData instantiates primitive type P from keyData using
// the key manager registered for its type URL.
func PrimitiveFromKeyData[P any](keyData *tinkpb.KeyData) (P, error) {
	var zero P
	if keyData == nil {
		return zero, invalidArgumentf("key data must not be nil")
	}
	km, err := KeyManagerFor[P](keyData.TypeUrl)
	if err != nil {
		return zero, err
	}
	return km.GetPrimitive(keyData.Value)
}

// GetPublicKeyData derives the public KeyData matching a serialized
// private key of the given type URL.
func GetPublicKeyData(typeURL string, serializedPrivateKey []byte) (*tinkpb.KeyData, error) {
	r := defaultReg
	r.mu.RLock()
	entry, ok := r.keyManagers[typeURL]
	var publicKeyDataFn func([]byte) (*tinkpb.KeyData, error)
	if ok {
		publicKeyDataFn = entry.publicKeyDataFn
	}
	r.mu.RUnlock()
	if !ok {
		return nil, notFoundf("no key manager registered for type url %q", typeURL)
	}
	if publicKeyDataFn == nil {
		return nil, invalidArgumentf("key manager for type url %q is not a PrivateKeyFactory, it cannot derive public key data", typeURL)
	}
	return publicKeyDataFn(serializedPrivateKey)
}
