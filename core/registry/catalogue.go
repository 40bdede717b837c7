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

import "reflect"

// catalogueKey identifies one catalogue by the name it was registered
// under together with the primitive type it serves; the same name may be
// reused for catalogues of unrelated primitive types.
type catalogueKey struct {
	name          string
	primitiveType reflect.Type
}

// AddCatalogue registers catalogue under name for primitive type P.
// Re-registering the same name with an identical catalogue value is a
// no-op; registering a different value under an already-bound name is
// rejected.
func AddCatalogue[P any](name string, catalogue any) error {
	r := defaultReg
	r.mu.Lock()
	defer r.mu.Unlock()

	key := catalogueKey{name: name, primitiveType: primitiveTag[P]()}
	if existing, ok := r.catalogues[key]; ok {
		if !reflect.DeepEqual(existing, catalogue) {
			return alreadyExistsf("catalogue named %q for primitive %s has already been registered", name, key.primitiveType)
		}
		return nil
	}
	r.catalogues[key] = catalogue
	return nil
}

// CatalogueFor retrieves the catalogue registered under name for
// primitive type P.
func CatalogueFor[P any](name string) (P, error) {
	r := defaultReg
	var zero P
	r.mu.RLock()
	defer r.mu.RUnlock()

	key := catalogueKey{name: name, primitiveType: primitiveTag[P]()}
	v, ok := r.catalogues[key]
	if !ok {
		return zero, notFoundf("no catalogue named %q registered for primitive %s", name, key.primitiveType)
	}
	p, ok := v.(P)
	if !ok {
		return zero, invalidArgumentf("catalogue named %q has type %T, want %s", name, v, key.primitiveType)
	}
	return p, nil
}
