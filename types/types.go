package types

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/vocdoni/zk-franchise-proof/util"
)

// HexBytes is a []byte which encodes as hexadecimal in JSON. The leading
// "0x" prefix is accepted when decoding and never emitted.
type HexBytes []byte

// String returns the hexadecimal representation of the bytes.
func (b HexBytes) String() string {
	return hex.EncodeToString(b)
}

// SetString decodes a hex string, with or without the 0x prefix.
func (b *HexBytes) SetString(s string) error {
	s = util.TrimHex(s)
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return err
	}
	*b = decoded
	return nil
}

// MarshalJSON implements json.Marshaler.
func (b HexBytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *HexBytes) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return b.SetString(s)
}

// BigInt wraps big.Int to provide decimal-string JSON encoding, since field
// elements overflow JSON numbers.
type BigInt big.Int

// MathBigInt converts b to a standard *big.Int.
func (b *BigInt) MathBigInt() *big.Int {
	return (*big.Int)(b)
}

// SetBigInt sets b to the value of a standard *big.Int and returns it.
func (b *BigInt) SetBigInt(i *big.Int) *BigInt {
	(*big.Int)(b).Set(i)
	return b
}

// SetUint64 sets b to the given uint64 value and returns it.
func (b *BigInt) SetUint64(v uint64) *BigInt {
	(*big.Int)(b).SetUint64(v)
	return b
}

// String returns the decimal representation of b.
func (b *BigInt) String() string {
	return (*big.Int)(b).String()
}

// MarshalJSON implements json.Marshaler.
func (b *BigInt) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

// UnmarshalJSON implements json.Unmarshaler. It accepts both a decimal
// string and a bare JSON number.
func (b *BigInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if _, ok := (*big.Int)(b).SetString(s, 10); !ok {
		return fmt.Errorf("invalid big integer %q", s)
	}
	return nil
}

// CensusProof is the authentication path of one leaf of a published census
// tree, as served by the census API. Siblings are ordered from the leaf
// towards the root, and IsLeft marks the steps where the sibling is the
// left operand of the compression function.
type CensusProof struct {
	Root     HexBytes  `json:"root"`
	Index    uint64    `json:"index"`
	Leaf     *BigInt   `json:"leaf"`
	Siblings []*BigInt `json:"siblings"`
	IsLeft   []bool    `json:"isLeft"`
}
