package entry

import (
	"fmt"
	"math/big"

	"github.com/gotvm/decompiler/cell"
)

// decodeHashmap parses a Hashmap binary trie rooted at s, whose keys are
// all exactly keyLen bits wide, into a flat methodId -> value-slice table.
// Every edge carries a label (hml_short / hml_long / hml_same encoding);
// once a root-to-leaf path has consumed exactly keyLen label bits, the
// leaf's remaining slice is that key's value.
func decodeHashmap(s *cell.Slice, keyLen int) (map[int32]*cell.Slice, error) {
	out := make(map[int32]*cell.Slice)
	if err := decodeHashmapNode(s, keyLen, new(big.Int), 0, out); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeHashmapNode(s *cell.Slice, keyLen int, prefix *big.Int, prefixLen int, out map[int32]*cell.Slice) error {
	label, labelLen, err := loadLabel(s, keyLen-prefixLen)
	if err != nil {
		return err
	}
	full := new(big.Int).Lsh(prefix, uint(labelLen))
	full.Or(full, label)
	total := prefixLen + labelLen

	switch {
	case total == keyLen:
		out[toSignedKey(full, keyLen)] = s.Clone()
		return nil
	case total > keyLen:
		return fmt.Errorf("entry: hashmap label overruns key width (%d > %d)", total, keyLen)
	}

	left, err := s.LoadRef()
	if err != nil {
		return err
	}
	right, err := s.LoadRef()
	if err != nil {
		return err
	}

	leftPrefix := new(big.Int).Lsh(full, 1)
	if err := decodeHashmapNode(left, keyLen, leftPrefix, total+1, out); err != nil {
		return err
	}
	rightPrefix := new(big.Int).Lsh(full, 1)
	rightPrefix.SetBit(rightPrefix, 0, 1)
	return decodeHashmapNode(right, keyLen, rightPrefix, total+1, out)
}

// loadLabel reads one Hashmap edge label, whose length is bounded by
// maxLen (the number of key bits not yet consumed on this path).
func loadLabel(s *cell.Slice, maxLen int) (*big.Int, int, error) {
	tag, err := s.LoadUint(1)
	if err != nil {
		return nil, 0, err
	}
	if tag == 0 {
		// hml_short$0: unary length (n ones then a terminating zero),
		// then n label bits.
		n := 0
		for {
			b, err := s.LoadUint(1)
			if err != nil {
				return nil, 0, err
			}
			if b == 0 {
				break
			}
			n++
		}
		v, err := s.LoadBigUint(n)
		if err != nil {
			return nil, 0, err
		}
		return v, n, nil
	}

	kind, err := s.LoadUint(1)
	if err != nil {
		return nil, 0, err
	}
	lenBits := lengthFieldWidth(maxLen)

	if kind == 0 {
		// hml_long$10: n encoded directly over lenBits, then n label bits.
		n, err := s.LoadUint(lenBits)
		if err != nil {
			return nil, 0, err
		}
		v, err := s.LoadBigUint(int(n))
		if err != nil {
			return nil, 0, err
		}
		return v, int(n), nil
	}

	// hml_same$11: a single repeated bit value, then n over lenBits.
	bit, err := s.LoadUint(1)
	if err != nil {
		return nil, 0, err
	}
	n, err := s.LoadUint(lenBits)
	if err != nil {
		return nil, 0, err
	}
	v := new(big.Int)
	for i := 0; i < int(n); i++ {
		v.Lsh(v, 1)
		if bit == 1 {
			v.SetBit(v, 0, 1)
		}
	}
	return v, int(n), nil
}

// lengthFieldWidth returns the number of bits needed to encode any value in
// [0, maxLen]: ceil(log2(maxLen+1)).
func lengthFieldWidth(maxLen int) int {
	w := 0
	for (1 << w) <= maxLen {
		w++
	}
	return w
}

// toSignedKey reinterprets the width-bit unsigned trie key as a two's
// complement signed method id, matching how dictionary keys are surfaced
// as ordinary (possibly negative) TVM integers.
func toSignedKey(v *big.Int, width int) int32 {
	if width > 0 && width <= 63 && v.Bit(width-1) == 1 {
		full := new(big.Int).Lsh(big.NewInt(1), uint(width))
		v = new(big.Int).Sub(v, full)
	}
	return int32(v.Int64())
}
