package cell

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// jsonCell is the on-disk shape of the CLI's reference cell loader: a bit
// length, the payload packed as hex (left-justified, high bit first, zero
// padded to a full byte), and a list of child cells in ref order. This is
// a convenience for manual testing and demos, not a real container
// deserializer (BOC parsing is explicitly out of scope).
type jsonCell struct {
	BitLen int         `json:"bit_len"`
	Hex    string      `json:"hex"`
	Refs   []*jsonCell `json:"refs,omitempty"`
}

// LoadJSON parses the CLI's reference cell format into a Cell tree rooted
// at the single top-level object in data.
func LoadJSON(data []byte) (*Cell, error) {
	var root jsonCell
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("cell: decode json: %w", err)
	}
	return root.build()
}

func (j *jsonCell) build() (*Cell, error) {
	want := (j.BitLen + 7) / 8
	bits, err := hex.DecodeString(j.Hex)
	if err != nil {
		return nil, fmt.Errorf("cell: decode hex payload: %w", err)
	}
	if len(bits) != want {
		return nil, fmt.Errorf("cell: hex payload is %d bytes, bit_len %d needs %d", len(bits), j.BitLen, want)
	}

	refs := make([]*Cell, len(j.Refs))
	for i, r := range j.Refs {
		c, err := r.build()
		if err != nil {
			return nil, err
		}
		refs[i] = c
	}
	return New(bits, j.BitLen, refs), nil
}
