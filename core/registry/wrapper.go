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

	"github.com/tink-crypto/tink-go-core/core/primitiveset"
)

// PrimitiveWrapper collapses a PrimitiveSet of per-key primitives B into a
// single aggregate primitive P, e.g. turning a set of AEAD instances (one
// per key in a keyset) into one AEAD that tries the primary key and falls
// back to matching raw/prefixed keys on decrypt.
type PrimitiveWrapper[B, P any] interface {
	Wrap(ps *primitiveset.PrimitiveSet[B]) (P, error)
}

// wrapperEntry erases the concrete B, P pair so every registered wrapper
// can live in a single map keyed by P's reflect.Type (invariant I2: at
// most one wrapper per primitive type).
type wrapperEntry struct {
	ownerType reflect.Type
	wrap      any
}

// RegisterPrimitiveWrapper registers wrapper as the sole PrimitiveWrapper
// for primitive type P. Re-registering a wrapper of the same type for P is
// allowed; registering a different wrapper type for an already-bound P is
// rejected.
func RegisterPrimitiveWrapper[B, P any](wrapper PrimitiveWrapper[B, P]) error {
	r := defaultReg
	r.mu.Lock()
	defer r.mu.Unlock()

	pType := primitiveTag[P]()
	ownerType := reflect.TypeOf(wrapper)

	if existing, ok := r.wrappers[pType]; ok {
		if existing.ownerType != ownerType {
			return alreadyExistsf("a wrapper of type %s has already been registered for primitive %s, cannot register %s", existing.ownerType, pType, ownerType)
		}
	}
	r.wrappers[pType] = &wrapperEntry{
		ownerType: ownerType,
		wrap: func(ps *primitiveset.PrimitiveSet[B]) (P, error) {
			return wrapper.Wrap(ps)
		},
	}
	return nil
}

// Wrap applies the registered PrimitiveWrapper for P to ps, producing the
// aggregate primitive a caller uses in place of juggling ps's entries
// directly.
func Wrap[B, P any](ps *primitiveset.PrimitiveSet[B]) (P, error) {
	r := defaultReg
	var zero P
	r.mu.RLock()
	entry, ok := r.wrappers[primitiveTag[P]()]
	r.mu.RUnlock()
	if !ok {
		return zero, invalidArgumentf("No wrapper registered for primitive %s", primitiveTag[P]())
	}
	fn, ok := entry.wrap.(func(*primitiveset.PrimitiveSet[B]) (P, error))
	if !ok {
		return zero, invalidArgumentf("wrapper registered for primitive %s does not accept primitive sets of %T", primitiveTag[P](), *new(B))
	}
	return fn(ps)
}
