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

package testutil

import "errors"

// AlwaysFailingMAC rejects every ComputeMAC and VerifyMAC call.
type AlwaysFailingMAC struct {
	Err error
}

// ComputeMAC always fails.
func (m *AlwaysFailingMAC) ComputeMAC(data []byte) ([]byte, error) {
	return nil, m.err()
}

// VerifyMAC always fails.
func (m *AlwaysFailingMAC) VerifyMAC(mac, data []byte) error {
	return m.err()
}

func (m *AlwaysFailingMAC) err() error {
	if m.Err != nil {
		return m.Err
	}
	return errors.New("testmac: always fails")
}
