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

// Package gcpkms implements a remote key manager over Google Cloud KMS:
// keys are identified by resource name and every AEAD operation is a
// round trip to GCP, never local key material. Its key type is
// KeyData_REMOTE.
package gcpkms

import (
	"encoding/base64"
	"errors"
	"fmt"

	cloudkms "google.golang.org/api/cloudkms/v1"
	"google.golang.org/protobuf/proto"

	"github.com/tink-crypto/tink-go-core/core/registry"
	tinkpb "github.com/tink-crypto/tink-go-core/proto/tinkpb"
)

// TypeURL is the key-type URL this manager is canonical for.
const TypeURL = "type.example.com/tink.testutil.GCPKMSAEADKey"

// AEAD performs AEAD-shaped encryption via a Cloud KMS CryptoKey resource
// name.
type AEAD struct {
	service *cloudkms.Service
	keyURI  string
}

// NewAEAD binds an AEAD to one Cloud KMS CryptoKey.
func NewAEAD(service *cloudkms.Service, keyURI string) (*AEAD, error) {
	if service == nil {
		return nil, errors.New("gcpkms: service must not be nil")
	}
	if keyURI == "" {
		return nil, errors.New("gcpkms: key URI must not be blank")
	}
	return &AEAD{service: service, keyURI: keyURI}, nil
}

// Encrypt calls projects.locations.keyRings.cryptoKeys.encrypt.
func (a *AEAD) Encrypt(plaintext, associatedData []byte) ([]byte, error) {
	req := &cloudkms.EncryptRequest{
		Plaintext:                   base64.StdEncoding.EncodeToString(plaintext),
		AdditionalAuthenticatedData: base64.StdEncoding.EncodeToString(associatedData),
	}
	resp, err := a.service.Projects.Locations.KeyRings.CryptoKeys.Encrypt(a.keyURI, req).Do()
	if err != nil {
		return nil, fmt.Errorf("gcpkms: encrypt: %w", err)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(resp.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("gcpkms: encrypt: could not decode ciphertext: %w", err)
	}
	return ciphertext, nil
}

// Decrypt calls projects.locations.keyRings.cryptoKeys.decrypt.
func (a *AEAD) Decrypt(ciphertext, associatedData []byte) ([]byte, error) {
	req := &cloudkms.DecryptRequest{
		Ciphertext:                   base64.StdEncoding.EncodeToString(ciphertext),
		AdditionalAuthenticatedData: base64.StdEncoding.EncodeToString(associatedData),
	}
	resp, err := a.service.Projects.Locations.KeyRings.CryptoKeys.Decrypt(a.keyURI, req).Do()
	if err != nil {
		return nil, fmt.Errorf("gcpkms: decrypt: %w", err)
	}
	plaintext, err := base64.StdEncoding.DecodeString(resp.Plaintext)
	if err != nil {
		return nil, fmt.Errorf("gcpkms: decrypt: could not decode plaintext: %w", err)
	}
	return plaintext, nil
}

// KeyManager registers Cloud KMS CryptoKey resource names as remote AEAD
// key data. Serialized keys are the resource name itself.
type KeyManager struct {
	Service *cloudkms.Service
}

var _ registry.KeyManager = (*KeyManager)(nil)

// TypeURL returns TypeURL.
func (km *KeyManager) TypeURL() string { return TypeURL }

// DoesSupport reports whether typeURL is TypeURL.
func (km *KeyManager) DoesSupport(typeURL string) bool { return typeURL == TypeURL }

// Primitive builds an AEAD bound to the Cloud KMS resource name in
// serializedKey.
func (km *KeyManager) Primitive(serializedKey []byte) (any, error) {
	if len(serializedKey) == 0 {
		return nil, errors.New("gcpkms: key URI must not be empty")
	}
	return NewAEAD(km.Service, string(serializedKey))
}

// NewKey is unsupported: this manager only binds existing Cloud KMS keys.
func (km *KeyManager) NewKey(serializedKeyFormat []byte) (proto.Message, error) {
	return nil, errors.New("gcpkms: creating new remote keys is not supported, provision the key in Cloud KMS first")
}

// KeyMaterialType reports these keys as remote.
func (km *KeyManager) KeyMaterialType() tinkpb.KeyMaterialType {
	return tinkpb.KeyData_REMOTE
}
