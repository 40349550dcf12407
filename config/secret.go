package config

import (
	"strings"
)

// Secret is a reference to a secret value, e.g. "env:EVM_GENESIS_KEY".
type Secret string

type SecretType string

const (
	Env   SecretType = "env"
	File  SecretType = "file"
	Raw   SecretType = "raw"
	Vault SecretType = "vault"
)

func NewRawSecret(secret string) Secret {
	return Secret(string(Raw) + ":" + secret)
}

// Type is the source prefix of the reference, or "" if it has none.
func (s Secret) Type() SecretType {
	prefix, _, ok := strings.Cut(string(s), ":")
	if !ok || !HasTypePrefix(string(s)) {
		return ""
	}
	return SecretType(prefix)
}

func (s Secret) Load() (string, error) {
	return GetSecret(string(s))
}

func (s Secret) LoadOrBlank() string {
	deref, _ := GetSecret(string(s))
	return deref
}

// String masks raw values so configs can be logged.
func (s Secret) String() string {
	if s.Type() == Raw {
		return string(Raw) + ":***"
	}
	return string(s)
}

func HasTypePrefix(secretRef string) bool {
	switch SecretType(strings.Split(secretRef, ":")[0]) {
	case Env, Vault, Raw, File:
		return true
	}
	return false
}
