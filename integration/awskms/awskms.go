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

// Package awskms implements a remote key manager over AWS KMS: keys are
// identified by ARN and every AEAD operation is a round trip to AWS,
// never local key material. Its key type is KeyData_REMOTE.
package awskms

import (
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/kms"
	"github.com/aws/aws-sdk-go/service/kms/kmsiface"
	"google.golang.org/protobuf/proto"

	"github.com/tink-crypto/tink-go-core/core/registry"
	tinkpb "github.com/tink-crypto/tink-go-core/proto/tinkpb"
)

// TypeURL is the key-type URL this manager is canonical for.
const TypeURL = "type.example.com/tink.testutil.AWSKMSAEADKey"

// AEAD performs AEAD-shaped encryption via an AWS KMS key ARN.
type AEAD struct {
	client kmsiface.KMSAPI
	keyARN string
}

// NewAEAD binds an AEAD to one AWS KMS key.
func NewAEAD(client kmsiface.KMSAPI, keyARN string) (*AEAD, error) {
	if client == nil {
		return nil, errors.New("awskms: client must not be nil")
	}
	if keyARN == "" {
		return nil, errors.New("awskms: key ARN must not be blank")
	}
	return &AEAD{client: client, keyARN: keyARN}, nil
}

// Encrypt calls kms:Encrypt, passing associatedData through as the
// encryption context's "associatedData" entry.
func (a *AEAD) Encrypt(plaintext, associatedData []byte) ([]byte, error) {
	out, err := a.client.Encrypt(&kms.EncryptInput{
		KeyId:             aws.String(a.keyARN),
		Plaintext:         plaintext,
		EncryptionContext: encryptionContext(associatedData),
	})
	if err != nil {
		return nil, fmt.Errorf("awskms: encrypt: %w", err)
	}
	return out.CiphertextBlob, nil
}

// Decrypt calls kms:Decrypt with the same encryption context Encrypt used.
func (a *AEAD) Decrypt(ciphertext, associatedData []byte) ([]byte, error) {
	out, err := a.client.Decrypt(&kms.DecryptInput{
		KeyId:             aws.String(a.keyARN),
		CiphertextBlob:    ciphertext,
		EncryptionContext: encryptionContext(associatedData),
	})
	if err != nil {
		return nil, fmt.Errorf("awskms: decrypt: %w", err)
	}
	return out.Plaintext, nil
}

func encryptionContext(associatedData []byte) map[string]*string {
	if len(associatedData) == 0 {
		return nil
	}
	return map[string]*string{"associatedData": aws.String(string(associatedData))}
}

// KeyManager registers AWS KMS key ARNs as remote AEAD key data.
// Serialized keys are the key ARN itself, never local key material.
type KeyManager struct {
	Client kmsiface.KMSAPI
}

var _ registry.KeyManager = (*KeyManager)(nil)

// TypeURL returns TypeURL.
func (km *KeyManager) TypeURL() string { return TypeURL }

// DoesSupport reports whether typeURL is TypeURL.
func (km *KeyManager) DoesSupport(typeURL string) bool { return typeURL == TypeURL }

// Primitive builds an AEAD bound to the KMS key ARN in serializedKey.
func (km *KeyManager) Primitive(serializedKey []byte) (any, error) {
	if len(serializedKey) == 0 {
		return nil, errors.New("awskms: key ARN must not be empty")
	}
	return NewAEAD(km.Client, string(serializedKey))
}

// NewKey is unsupported: this manager only binds existing AWS KMS keys.
func (km *KeyManager) NewKey(serializedKeyFormat []byte) (proto.Message, error) {
	return nil, errors.New("awskms: creating new remote keys is not supported, provision the key in AWS first")
}

// KeyMaterialType reports these keys as remote.
func (km *KeyManager) KeyMaterialType() tinkpb.KeyMaterialType {
	return tinkpb.KeyData_REMOTE
}
