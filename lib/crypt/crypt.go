/**
 * Copyright 2025 Adobe. All rights reserved.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License. You may obtain a copy
 * of the License at http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software distributed under
 * the License is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR REPRESENTATIONS
 * OF ANY KIND, either express or implied. See the License for the specific language
 * governing permissions and limitations under the License.
 */

// Package crypt hashes the passwords of the sandbox users
package crypt

import (
	"crypto/rand"
	"crypto/subtle"
	"math/big"

	"golang.org/x/crypto/argon2"

	"github.com/cpmntech/vulcan/lib/log"
)

const (
	AlgoArgon2       = "Argon2"
	Argon2Memory     = 19 * 1024
	Argon2Time       = 2
	Argon2Threads    = 1
	Argon2SaltBytes  = 8
	Argon2HashLength = 32

	RandStringCharsetB58 = "abcdefghijkmnopqrstuvwxyz" +
		"ABCDEFGHJKLMNPQRSTUVWXYZ123456789" // Base58
)

// Hash of the password with its salt
type Hash struct {
	Algo string
	Salt []byte
	Hash []byte
}

// RandBytes creates random bytes of specified size
func RandBytes(size int) (data []byte) {
	data = make([]byte, size)
	if _, err := rand.Read(data); err != nil {
		log.WithFunc("crypt", "RandBytes").Error("Unable to generate random bytes", "err", err)
	}
	return
}

// RandString creates random base58 string of specified size
func RandString(size int) string {
	data := make([]byte, size)
	charsetLen := big.NewInt(int64(len(RandStringCharsetB58)))
	for i := range data {
		pos, err := rand.Int(rand.Reader, charsetLen)
		if err != nil {
			log.WithFunc("crypt", "RandString").Error("Failed to generate random string", "err", err)
			continue
		}
		data[i] = RandStringCharsetB58[pos.Int64()]
	}
	return string(data)
}

// NewHash generates salted hash for the password, random salt is used when nil
func NewHash(password string, salt []byte) (hash Hash) {
	hash.Algo = AlgoArgon2
	if salt != nil {
		hash.Salt = salt
	} else {
		hash.Salt = RandBytes(Argon2SaltBytes)
	}
	hash.Hash = argon2.IDKey([]byte(password), hash.Salt, Argon2Time, Argon2Memory, Argon2Threads, Argon2HashLength)
	return
}

// IsEqual compares the password to the hash
func (hash *Hash) IsEqual(password string) bool {
	if hash.IsEmpty() {
		return false
	}
	other := NewHash(password, hash.Salt)
	return subtle.ConstantTimeCompare(hash.Hash, other.Hash) == 1
}

// IsEmpty tells if the hash was never generated
func (hash *Hash) IsEmpty() bool {
	return hash.Algo == ""
}
