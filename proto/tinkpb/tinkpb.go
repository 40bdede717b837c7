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

// Package tinkpb holds the wire-envelope shapes the registry exchanges with
// callers: KeyData and KeyTemplate. The real Tink schema defines these as
// protobuf messages nested inside a much larger keyset descriptor; since
// protobuf serialization of key material and keyset-level management are
// both out of scope for the registry core (see spec §1), this package
// keeps only the field shapes the registry actually reads, as plain Go
// structs. Field and constant names mirror the upstream schema so code
// reading from either feels the same.
package tinkpb

// KeyMaterialType classifies the kind of key material a KeyData value
// carries.
type KeyMaterialType int32

const (
	KeyData_UNKNOWN_KEYMATERIAL KeyMaterialType = iota
	KeyData_SYMMETRIC
	KeyData_ASYMMETRIC_PRIVATE
	KeyData_ASYMMETRIC_PUBLIC
	KeyData_REMOTE
)

func (t KeyMaterialType) String() string {
	switch t {
	case KeyData_SYMMETRIC:
		return "SYMMETRIC"
	case KeyData_ASYMMETRIC_PRIVATE:
		return "ASYMMETRIC_PRIVATE"
	case KeyData_ASYMMETRIC_PUBLIC:
		return "ASYMMETRIC_PUBLIC"
	case KeyData_REMOTE:
		return "REMOTE"
	default:
		return "UNKNOWN_KEYMATERIAL"
	}
}

// KeyData is a typed, serialized key.
type KeyData struct {
	TypeUrl         string
	Value           []byte
	KeyMaterialType KeyMaterialType
}

// GetTypeUrl is a nil-safe accessor, in the style of protoc-generated
// getters the teacher relies on throughout (key.GetD(), km.GetPublicKey()).
func (kd *KeyData) GetTypeUrl() string {
	if kd == nil {
		return ""
	}
	return kd.TypeUrl
}

// GetValue is a nil-safe accessor.
func (kd *KeyData) GetValue() []byte {
	if kd == nil {
		return nil
	}
	return kd.Value
}

// OutputPrefixType controls what, if anything, a primitive prepends to its
// output so that it can be identified within a keyset.
type OutputPrefixType int32

const (
	OutputPrefixType_UNKNOWN_PREFIX OutputPrefixType = iota
	OutputPrefixType_TINK
	OutputPrefixType_LEGACY
	OutputPrefixType_RAW
	OutputPrefixType_CRUNCHY
)

func (t OutputPrefixType) String() string {
	switch t {
	case OutputPrefixType_TINK:
		return "TINK"
	case OutputPrefixType_LEGACY:
		return "LEGACY"
	case OutputPrefixType_RAW:
		return "RAW"
	case OutputPrefixType_CRUNCHY:
		return "CRUNCHY"
	default:
		return "UNKNOWN_PREFIX"
	}
}

// KeyTemplate is the recipe NewKeyData uses to generate a fresh KeyData.
type KeyTemplate struct {
	TypeUrl          string
	Value            []byte
	OutputPrefixType OutputPrefixType
}

// KeyStatusType is the enablement state of one key within a keyset.
type KeyStatusType int32

const (
	KeyStatusType_UNKNOWN_STATUS KeyStatusType = iota
	KeyStatusType_ENABLED
	KeyStatusType_DISABLED
	KeyStatusType_DESTROYED
)

// Keyset_Key is the subset of a keyset entry's fields that PrimitiveSet
// needs to index a primitive by its key ID and output prefix. Keyset-level
// concerns (loading, persistence, primary selection) remain out of scope;
// this struct exists only so PrimitiveSet.Add has something to read from.
type Keyset_Key struct {
	KeyData          *KeyData
	Status           KeyStatusType
	KeyId            uint32
	OutputPrefixType OutputPrefixType
}

// GetKeyData is a nil-safe accessor.
func (k *Keyset_Key) GetKeyData() *KeyData {
	if k == nil {
		return nil
	}
	return k.KeyData
}
