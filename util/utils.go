package util

import (
	"crypto/rand"
	"math/big"
)

// RandomBytes returns n cryptographically random bytes, typically used to
// draw voter secret keys. It panics if the system entropy source fails.
func RandomBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}

// TrimHex strips the optional "0x"/"0X" prefix from a hex string.
func TrimHex(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}

// bn254ScalarField is the scalar field modulus of the BN254 curve, the
// field all census leaves, nullifiers and vote hashes live in.
var bn254ScalarField, _ = new(big.Int).SetString("21888242871839275222246405745257275088548364400416034343698204186575808495617", 10)

// BigToFF reduces the given integer into the BN254 scalar field using the
// Euclidean modulus, so arbitrary 32-byte values can be used as field
// elements. Values already in the field are returned untouched.
func BigToFF(iv *big.Int) *big.Int {
	z := big.NewInt(0)
	switch c := iv.Cmp(bn254ScalarField); {
	case c == 0:
		return z
	case c < 0 && iv.Sign() >= 0:
		return iv
	default:
		return z.Mod(iv, bn254ScalarField)
	}
}
