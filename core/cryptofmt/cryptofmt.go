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

// Package cryptofmt computes the short binary prefix primitives prepend to
// their output so that a PrimitiveSet can route a ciphertext or tag back to
// the key that produced it. It does not touch the cryptographic content
// itself, only the identification framing around it.
package cryptofmt

import (
	"encoding/binary"
	"fmt"

	tinkpb "github.com/tink-crypto/tink-go-core/proto/tinkpb"
)

const (
	// NonRawPrefixSize is the size, in bytes, of the prefix attached to
	// TINK and LEGACY outputs: one version byte followed by a 4-byte
	// big-endian key ID.
	NonRawPrefixSize = 5
	// LegacyStartByte marks a LEGACY/CRUNCHY-tagged prefix.
	LegacyStartByte = byte(0)
	// TinkStartByte marks a TINK-tagged prefix.
	TinkStartByte = byte(1)
	// RawPrefix is the empty prefix RAW-tagged keys use.
	RawPrefix = ""
)

// OutputPrefix computes the prefix a key contributes to its primitive's
// output, based on its OutputPrefixType and key ID.
func OutputPrefix(key *tinkpb.Keyset_Key) (string, error) {
	if key == nil {
		return "", fmt.Errorf("cryptofmt: key must not be nil")
	}
	switch key.OutputPrefixType {
	case tinkpb.OutputPrefixType_TINK:
		return tagged(TinkStartByte, key.KeyId), nil
	case tinkpb.OutputPrefixType_LEGACY, tinkpb.OutputPrefixType_CRUNCHY:
		return tagged(LegacyStartByte, key.KeyId), nil
	case tinkpb.OutputPrefixType_RAW:
		return RawPrefix, nil
	default:
		return "", fmt.Errorf("cryptofmt: unknown output prefix type %v", key.OutputPrefixType)
	}
}

func tagged(startByte byte, keyID uint32) string {
	buf := make([]byte, NonRawPrefixSize)
	buf[0] = startByte
	binary.BigEndian.PutUint32(buf[1:], keyID)
	return string(buf)
}
