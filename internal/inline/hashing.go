package inline

import (
	"strconv"
	"strings"
)

// ocrClass is one run of the OCR shape encoding: the class letter and the
// accumulated weight of the characters mapped into it.
type ocrClass struct {
	Class  byte
	Weight int
}

// OCRKey is the run-length shape encoding of a word. Adjacent runs always
// carry distinct classes and weights of at least one.
type OCRKey []ocrClass

// ocrClassTable assigns each character its shape class and weight.
// Unmapped characters fall into the '#' sink class with weight one.
var ocrClassTable = map[byte]ocrClass{
	// Lower case
	'a': {'o', 1}, 'b': {'o', 1}, 'c': {'c', 1}, 'd': {'o', 1}, 'e': {'c', 1}, 'f': {'i', 1},
	'g': {'o', 1}, 'h': {'i', 2}, 'i': {'i', 1}, 'j': {'i', 1}, 'k': {'i', 1}, 'l': {'i', 1},
	'm': {'i', 3}, 'n': {'i', 2}, 'o': {'o', 1}, 'p': {'o', 1}, 'q': {'o', 1}, 'r': {'i', 1},
	's': {'s', 1}, 't': {'i', 1}, 'u': {'i', 2}, 'v': {'v', 1}, 'w': {'v', 2}, 'x': {'v', 1},
	'y': {'v', 1}, 'z': {'z', 1},

	// Upper case
	'A': {'a', 1}, 'B': {'i', 1}, 'C': {'c', 1}, 'D': {'i', 1}, 'E': {'i', 1}, 'F': {'i', 1},
	'G': {'c', 1}, 'H': {'i', 2}, 'I': {'i', 1}, 'J': {'i', 1}, 'K': {'i', 1}, 'L': {'i', 1},
	'M': {'i', 3}, 'N': {'i', 2}, 'O': {'o', 1}, 'P': {'i', 1}, 'Q': {'o', 1}, 'R': {'i', 1},
	'S': {'s', 1}, 'T': {'i', 1}, 'U': {'i', 2}, 'V': {'v', 1}, 'W': {'v', 2}, 'X': {'v', 1},
	'Y': {'v', 1}, 'Z': {'z', 1},

	// Numbers and special chars
	'0': {'o', 1}, '1': {'i', 1}, '5': {'s', 1}, '6': {'o', 1}, '9': {'o', 1}, '!': {'i', 1},
	'\'': {'\'', 1}, '-': {'-', 1},
}

// AnagramHash fingerprints a word as the sum of its codepoints raised to
// the fifth power. The hash is invariant under character permutation and
// shifts by a known delta when one character is added or removed.
func AnagramHash(word string) int64 {
	var sum int64
	for _, r := range word {
		c := int64(r)
		sum += c * c * c * c * c
	}
	return sum
}

// OCRKeyHash run-length encodes a word over the shape classes, merging the
// weights of adjacent characters sharing a class.
func OCRKeyHash(word string) OCRKey {
	var key OCRKey

	for i := 0; i < len(word); i++ {
		class, ok := ocrClassTable[word[i]]
		if !ok {
			class = ocrClass{'#', 1}
		}

		if len(key) > 0 && key[len(key)-1].Class == class.Class {
			key[len(key)-1].Weight += class.Weight
		} else {
			key = append(key, class)
		}
	}

	return key
}

// String serialises the key to its map form, "c1w1c2w2...".
func (k OCRKey) String() string {
	var b strings.Builder
	for _, class := range k {
		b.WriteByte(class.Class)
		b.WriteString(strconv.Itoa(class.Weight))
	}
	return b.String()
}

func (k OCRKey) clone() OCRKey {
	dup := make(OCRKey, len(k))
	copy(dup, k)
	return dup
}
