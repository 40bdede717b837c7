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

// Package vaultkms implements a remote key manager whose "keys" are
// references to a HashiCorp Vault transit backend: the key material never
// leaves Vault, and every AEAD operation is a round trip to it. Its key
// type is KeyData_REMOTE, so the registry never attempts to parse key
// bytes locally.
package vaultkms

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/hashicorp/vault/api"
	"google.golang.org/protobuf/proto"

	"github.com/tink-crypto/tink-go-core/core/registry"
	tinkpb "github.com/tink-crypto/tink-go-core/proto/tinkpb"
)

// TypeURL is the key-type URL this manager is canonical for. Its
// "key" is the transit key's path within Vault, not key material.
const TypeURL = "type.example.com/tink.testutil.VaultAEADKey"

// AEAD performs AEAD-shaped encryption by round-tripping through a Vault
// transit backend's encrypt/decrypt endpoints.
type AEAD struct {
	client    *api.Client
	mountPath string
	keyName   string
}

// NewAEAD builds an AEAD bound to one Vault transit key.
func NewAEAD(client *api.Client, mountPath, keyName string) (*AEAD, error) {
	if client == nil {
		return nil, errors.New("vaultkms: client must not be nil")
	}
	if keyName == "" {
		return nil, errors.New("vaultkms: key name must not be blank")
	}
	if mountPath == "" {
		mountPath = "transit"
	}
	return &AEAD{client: client, mountPath: strings.TrimSuffix(mountPath, "/"), keyName: keyName}, nil
}

// Encrypt sends plaintext to Vault's transit encrypt endpoint and returns
// the ciphertext token Vault replies with, as raw bytes. associatedData is
// unused: Vault transit has no AAD concept in its basic encrypt call.
func (a *AEAD) Encrypt(plaintext, associatedData []byte) ([]byte, error) {
	p := path.Join(a.mountPath, "encrypt", a.keyName)
	secret, err := a.client.Logical().WriteWithContext(context.Background(), p, map[string]any{
		"plaintext": base64.StdEncoding.EncodeToString(plaintext),
	})
	if err != nil {
		return nil, fmt.Errorf("vaultkms: encrypt: %w", err)
	}
	ciphertext, ok := secret.Data["ciphertext"].(string)
	if !ok {
		return nil, errors.New("vaultkms: encrypt: missing ciphertext in response")
	}
	return []byte(ciphertext), nil
}

// Decrypt sends ciphertext (a Vault ciphertext token, as bytes) to Vault's
// transit decrypt endpoint and returns the recovered plaintext.
func (a *AEAD) Decrypt(ciphertext, associatedData []byte) ([]byte, error) {
	p := path.Join(a.mountPath, "decrypt", a.keyName)
	secret, err := a.client.Logical().WriteWithContext(context.Background(), p, map[string]any{
		"ciphertext": string(ciphertext),
	})
	if err != nil {
		return nil, fmt.Errorf("vaultkms: decrypt: %w", err)
	}
	encoded, ok := secret.Data["plaintext"].(string)
	if !ok {
		return nil, errors.New("vaultkms: decrypt: missing plaintext in response")
	}
	plaintext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("vaultkms: decrypt: could not decode plaintext: %w", err)
	}
	return plaintext, nil
}

// KeyManager registers Vault transit keys as remote AEAD key data. Its
// serialized key is the transit key name; NewKey is unsupported and
// returns an error, so only existing Vault keys are used.
type KeyManager struct {
	Client    *api.Client
	MountPath string
}

var _ registry.KeyManager = (*KeyManager)(nil)

// TypeURL returns TypeURL.
func (km *KeyManager) TypeURL() string { return TypeURL }

// DoesSupport reports whether typeURL is TypeURL.
func (km *KeyManager) DoesSupport(typeURL string) bool { return typeURL == TypeURL }

// Primitive builds an AEAD bound to the transit key named by
// serializedKey.
func (km *KeyManager) Primitive(serializedKey []byte) (any, error) {
	if len(serializedKey) == 0 {
		return nil, errors.New("vaultkms: key name must not be empty")
	}
	return NewAEAD(km.Client, km.MountPath, string(serializedKey))
}

// NewKey is unsupported: this manager only binds existing Vault keys, it
// never provisions new ones.
func (km *KeyManager) NewKey(serializedKeyFormat []byte) (proto.Message, error) {
	return nil, errors.New("vaultkms: creating new remote keys is not supported, provision the key in Vault first")
}

// KeyMaterialType reports these keys as remote.
func (km *KeyManager) KeyMaterialType() tinkpb.KeyMaterialType {
	return tinkpb.KeyData_REMOTE
}
