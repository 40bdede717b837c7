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

package registry_test

import (
	"strings"
	"testing"

	"github.com/tink-crypto/tink-go-core/core/registry"
	"github.com/tink-crypto/tink-go-core/internal/testutil"
	tinkpb "github.com/tink-crypto/tink-go-core/proto/tinkpb"
	"github.com/tink-crypto/tink-go-core/tink"
)

func TestRegisterKeyManagerAndGetPrimitive(t *testing.T) {
	registry.Reset()
	if err := registry.RegisterKeyManager[tink.AEAD](new(testutil.TestAEADKeyManager), true); err != nil {
		t.Fatalf("RegisterKeyManager() err = %v, want nil", err)
	}

	keyData, err := registry.NewKeyData(&tinkpb.KeyTemplate{TypeUrl: testutil.TestAEADTypeURL})
	if err != nil {
		t.Fatalf("NewKeyData() err = %v, want nil", err)
	}
	if keyData.GetTypeUrl() != testutil.TestAEADTypeURL {
		t.Errorf("keyData.TypeUrl = %q, want %q", keyData.GetTypeUrl(), testutil.TestAEADTypeURL)
	}

	aead, err := registry.PrimitiveFromKeyData[tink.AEAD](keyData)
	if err != nil {
		t.Fatalf("PrimitiveFromKeyData() err = %v, want nil", err)
	}
	ct, err := aead.Encrypt([]byte("hello"), nil)
	if err != nil {
		t.Fatalf("Encrypt() err = %v, want nil", err)
	}
	pt, err := aead.Decrypt(ct, nil)
	if err != nil {
		t.Fatalf("Decrypt() err = %v, want nil", err)
	}
	if string(pt) != "hello" {
		t.Errorf("Decrypt() = %q, want %q", pt, "hello")
	}
}

func TestRegisterKeyManagerRejectsDifferentImplementation(t *testing.T) {
	registry.Reset()
	if err := registry.RegisterKeyManager[tink.AEAD](new(testutil.TestAEADKeyManager), true); err != nil {
		t.Fatalf("RegisterKeyManager() err = %v, want nil", err)
	}

	other := &otherAEADKeyManager{}
	err := registry.RegisterKeyManager[tink.AEAD](other, true)
	if registry.CodeOf(err) != registry.CodeAlreadyExists {
		t.Fatalf("RegisterKeyManager() code = %v, want ALREADY_EXISTS", registry.CodeOf(err))
	}
}

func TestNewKeyAllowedLatchIsMonotone(t *testing.T) {
	registry.Reset()
	if err := registry.RegisterKeyManager[tink.AEAD](new(testutil.TestAEADKeyManager), false); err != nil {
		t.Fatalf("RegisterKeyManager() err = %v, want nil", err)
	}

	// Re-registering with new_key_allowed=true after it latched false must
	// fail, and the existing false value must stick.
	err := registry.RegisterKeyManager[tink.AEAD](new(testutil.TestAEADKeyManager), true)
	if registry.CodeOf(err) != registry.CodeAlreadyExists {
		t.Fatalf("RegisterKeyManager() code = %v, want ALREADY_EXISTS", registry.CodeOf(err))
	}
	if !strings.Contains(err.Error(), "forbidden new key operation") {
		t.Errorf("RegisterKeyManager() err = %q, want substring %q", err, "forbidden new key operation")
	}

	_, err = registry.NewKeyData(&tinkpb.KeyTemplate{TypeUrl: testutil.TestAEADTypeURL})
	if registry.CodeOf(err) != registry.CodeInvalidArgument {
		t.Fatalf("NewKeyData() code = %v, want INVALID_ARGUMENT", registry.CodeOf(err))
	}
	if !strings.Contains(err.Error(), "does not allow") {
		t.Errorf("NewKeyData() err = %q, want substring %q", err, "does not allow")
	}
}

func TestNewKeyAllowedCanTightenAcrossReregistration(t *testing.T) {
	registry.Reset()
	km := new(testutil.TestAEADKeyManager)
	if err := registry.RegisterKeyManager[tink.AEAD](km, true); err != nil {
		t.Fatalf("RegisterKeyManager() err = %v, want nil", err)
	}
	if err := registry.RegisterKeyManager[tink.AEAD](km, false); err != nil {
		t.Fatalf("RegisterKeyManager() (tightening) err = %v, want nil", err)
	}
	_, err := registry.NewKeyData(&tinkpb.KeyTemplate{TypeUrl: testutil.TestAEADTypeURL})
	if registry.CodeOf(err) != registry.CodeInvalidArgument {
		t.Fatalf("NewKeyData() code = %v, want INVALID_ARGUMENT after tightening", registry.CodeOf(err))
	}
}

func TestKeyManagerForUnsupportedPrimitive(t *testing.T) {
	registry.Reset()
	if err := registry.RegisterKeyManager[tink.AEAD](new(testutil.TestAEADKeyManager), true); err != nil {
		t.Fatalf("RegisterKeyManager() err = %v, want nil", err)
	}
	_, err := registry.KeyManagerFor[tink.MAC](testutil.TestAEADTypeURL)
	if registry.CodeOf(err) != registry.CodeInvalidArgument {
		t.Fatalf("KeyManagerFor() code = %v, want INVALID_ARGUMENT", registry.CodeOf(err))
	}
	if !strings.Contains(err.Error(), "not among supported primitives") {
		t.Errorf("KeyManagerFor() err = %q, want substring %q", err, "not among supported primitives")
	}
}

func TestWrapWithNoRegisteredWrapper(t *testing.T) {
	registry.Reset()
	_, err := registry.Wrap[tink.AEAD, tink.AEAD](nil)
	if registry.CodeOf(err) != registry.CodeInvalidArgument {
		t.Fatalf("Wrap() code = %v, want INVALID_ARGUMENT", registry.CodeOf(err))
	}
	if !strings.Contains(err.Error(), "No wrapper registered") {
		t.Errorf("Wrap() err = %q, want substring %q", err, "No wrapper registered")
	}
}

func TestGetPublicKeyDataRequiresPrivateKeyFactory(t *testing.T) {
	registry.Reset()
	if err := registry.RegisterKeyManager[tink.AEAD](new(testutil.TestAEADKeyManager), true); err != nil {
		t.Fatalf("RegisterKeyManager() err = %v, want nil", err)
	}
	_, err := registry.GetPublicKeyData(testutil.TestAEADTypeURL, []byte("irrelevant"))
	if registry.CodeOf(err) != registry.CodeInvalidArgument {
		t.Fatalf("GetPublicKeyData() code = %v, want INVALID_ARGUMENT", registry.CodeOf(err))
	}
	if !strings.Contains(err.Error(), "PrivateKeyFactory") {
		t.Errorf("GetPublicKeyData() err = %q, want substring %q", err, "PrivateKeyFactory")
	}
}

func TestAsymmetricPairRoundTrip(t *testing.T) {
	registry.Reset()
	priv := new(testutil.TestPrivateKeyManager)
	pub := new(testutil.TestPublicKeyManager)
	if err := registry.RegisterAsymmetricKeyManagers[testutil.Signer, testutil.Verifier](priv, pub, true); err != nil {
		t.Fatalf("RegisterAsymmetricKeyManagers() err = %v, want nil", err)
	}

	privKeyData, err := registry.NewKeyData(&tinkpb.KeyTemplate{TypeUrl: testutil.TestPrivateKeyTypeURL})
	if err != nil {
		t.Fatalf("NewKeyData() err = %v, want nil", err)
	}
	pubKeyData, err := registry.GetPublicKeyData(testutil.TestPrivateKeyTypeURL, privKeyData.GetValue())
	if err != nil {
		t.Fatalf("GetPublicKeyData() err = %v, want nil", err)
	}

	signer, err := registry.PrimitiveFromKeyData[testutil.Signer](privKeyData)
	if err != nil {
		t.Fatalf("PrimitiveFromKeyData(signer) err = %v, want nil", err)
	}
	verifier, err := registry.PrimitiveFromKeyData[testutil.Verifier](pubKeyData)
	if err != nil {
		t.Fatalf("PrimitiveFromKeyData(verifier) err = %v, want nil", err)
	}

	msg := []byte("a message")
	sig, err := signer.Sign(msg)
	if err != nil {
		t.Fatalf("Sign() err = %v, want nil", err)
	}
	if err := verifier.Verify(sig, msg); err != nil {
		t.Errorf("Verify() err = %v, want nil", err)
	}
}

func TestAsymmetricPairCannotBeRepairedWithDifferentCounterpart(t *testing.T) {
	registry.Reset()
	priv := new(testutil.TestPrivateKeyManager)
	pub := new(testutil.TestPublicKeyManager)
	if err := registry.RegisterAsymmetricKeyManagers[testutil.Signer, testutil.Verifier](priv, pub, true); err != nil {
		t.Fatalf("RegisterAsymmetricKeyManagers() err = %v, want nil", err)
	}

	otherPub := &otherPublicKeyManager{}
	err := registry.RegisterAsymmetricKeyManagers[testutil.Signer, testutil.Verifier](priv, otherPub, true)
	if registry.CodeOf(err) != registry.CodeAlreadyExists {
		t.Fatalf("RegisterAsymmetricKeyManagers() code = %v, want ALREADY_EXISTS", registry.CodeOf(err))
	}
}

func TestAsymmetricPairCannotChangeCounterpartTypeURL(t *testing.T) {
	registry.Reset()
	priv := new(testutil.TestPrivateKeyManager)
	pub := new(testutil.TestPublicKeyManager)
	if err := registry.RegisterAsymmetricKeyManagers[testutil.Signer, testutil.Verifier](priv, pub, true); err != nil {
		t.Fatalf("RegisterAsymmetricKeyManagers() err = %v, want nil", err)
	}

	otherPub := &otherPublicKeyManagerDifferentURL{}
	err := registry.RegisterAsymmetricKeyManagers[testutil.Signer, testutil.Verifier](priv, otherPub, true)
	if registry.CodeOf(err) != registry.CodeInvalidArgument {
		t.Fatalf("RegisterAsymmetricKeyManagers() code = %v, want INVALID_ARGUMENT", registry.CodeOf(err))
	}
	if !strings.Contains(err.Error(), "cannot be re-registered") {
		t.Errorf("RegisterAsymmetricKeyManagers() err = %q, want substring %q", err, "cannot be re-registered")
	}
}

func TestLegacyRegistrationCannotOverlayAsymmetricEntry(t *testing.T) {
	registry.Reset()
	priv := new(testutil.TestPrivateKeyManager)
	pub := new(testutil.TestPublicKeyManager)
	if err := registry.RegisterAsymmetricKeyManagers[testutil.Signer, testutil.Verifier](priv, pub, true); err != nil {
		t.Fatalf("RegisterAsymmetricKeyManagers() err = %v, want nil", err)
	}

	err := registry.RegisterKeyManager[testutil.Signer](priv, true)
	if registry.CodeOf(err) != registry.CodeAlreadyExists {
		t.Fatalf("RegisterKeyManager() code = %v, want ALREADY_EXISTS", registry.CodeOf(err))
	}
}

func TestListStyleRegistrationCannotOverlayAsymmetricEntry(t *testing.T) {
	registry.Reset()
	priv := new(testutil.TestPrivateKeyManager)
	pub := new(testutil.TestPublicKeyManager)
	if err := registry.RegisterAsymmetricKeyManagers[testutil.Signer, testutil.Verifier](priv, pub, true); err != nil {
		t.Fatalf("RegisterAsymmetricKeyManagers() err = %v, want nil", err)
	}

	dm := &derivableAtPrivateKeyTypeURL{}
	err := registry.RegisterInternalKeyManager(dm, true)
	if registry.CodeOf(err) != registry.CodeAlreadyExists {
		t.Fatalf("RegisterInternalKeyManager() code = %v, want ALREADY_EXISTS", registry.CodeOf(err))
	}
}

func TestMalformedPrivateKeyIsRejected(t *testing.T) {
	registry.Reset()
	priv := new(testutil.TestPrivateKeyManager)
	pub := new(testutil.TestPublicKeyManager)
	if err := registry.RegisterAsymmetricKeyManagers[testutil.Signer, testutil.Verifier](priv, pub, true); err != nil {
		t.Fatalf("RegisterAsymmetricKeyManagers() err = %v, want nil", err)
	}
	_, err := registry.GetPublicKeyData(testutil.TestPrivateKeyTypeURL, []byte{0xff, 0xff, 0xff})
	if err == nil {
		t.Fatal("GetPublicKeyData() err = nil, want error for malformed key")
	}
	if !strings.Contains(err.Error(), "Could not parse") && !strings.Contains(err.Error(), "could not parse") {
		t.Errorf("GetPublicKeyData() err = %q, want a parse-failure message", err)
	}
}

func TestDerivableKeyManagerExposesMultiplePrimitives(t *testing.T) {
	registry.Reset()
	dm := new(testutil.DerivableAESLikeKeyManager)
	if err := registry.RegisterInternalKeyManager(dm, true); err != nil {
		t.Fatalf("RegisterInternalKeyManager() err = %v, want nil", err)
	}

	keyData, err := registry.NewKeyData(&tinkpb.KeyTemplate{TypeUrl: testutil.DerivableAESTypeURL})
	if err != nil {
		t.Fatalf("NewKeyData() err = %v, want nil", err)
	}

	if _, err := registry.PrimitiveFromKeyData[tink.AEAD](keyData); err != nil {
		t.Errorf("PrimitiveFromKeyData[AEAD]() err = %v, want nil", err)
	}
	if _, err := registry.PrimitiveFromKeyData[testutil.RawKeyViewer](keyData); err != nil {
		t.Errorf("PrimitiveFromKeyData[RawKeyViewer]() err = %v, want nil", err)
	}
	if _, err := registry.PrimitiveFromKeyData[tink.MAC](keyData); registry.CodeOf(err) != registry.CodeInvalidArgument {
		t.Errorf("PrimitiveFromKeyData[MAC]() code = %v, want INVALID_ARGUMENT", registry.CodeOf(err))
	}
}

type otherAEADKeyManager struct{ testutil.TestAEADKeyManager }

type otherPublicKeyManager struct{ testutil.TestPublicKeyManager }

type otherPublicKeyManagerDifferentURL struct{ testutil.TestPublicKeyManager }

func (km *otherPublicKeyManagerDifferentURL) TypeURL() string {
	return "type.example.com/tink.testutil.OtherPublicKey"
}

func (km *otherPublicKeyManagerDifferentURL) DoesSupport(u string) bool {
	return u == km.TypeURL()
}

type derivableAtPrivateKeyTypeURL struct{ testutil.DerivableAESLikeKeyManager }

func (dm *derivableAtPrivateKeyTypeURL) TypeURL() string {
	return testutil.TestPrivateKeyTypeURL
}
