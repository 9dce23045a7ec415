package assets

import (
	"fmt"
	"slices"
)

// LabelEncoder is a fitted category encoder: the code of a category is its
// position in the trained class list.
type LabelEncoder struct {
	column  string
	classes []string
	codes   map[string]int
}

func NewLabelEncoder(column string, classes []string) (*LabelEncoder, error) {
	codes := make(map[string]int, len(classes))
	for i, c := range classes {
		if _, dup := codes[c]; dup {
			return nil, fmt.Errorf("encoder %s: duplicate class %q", column, c)
		}
		codes[c] = i
	}
	return &LabelEncoder{column: column, classes: slices.Clone(classes), codes: codes}, nil
}

func (e *LabelEncoder) Column() string { return e.column }

// Categories returns the known category set in code order.
func (e *LabelEncoder) Categories() []string {
	return slices.Clone(e.classes)
}

// Encode returns the trained code and whether the category is known.
func (e *LabelEncoder) Encode(category string) (int, bool) {
	code, ok := e.codes[category]
	return code, ok
}

// EncoderBundle maps column name to its fitted encoder.
type EncoderBundle struct {
	encoders map[string]*LabelEncoder
}

func NewEncoderBundle(classes map[string][]string) (*EncoderBundle, error) {
	b := &EncoderBundle{encoders: make(map[string]*LabelEncoder, len(classes))}
	for column, cls := range classes {
		enc, err := NewLabelEncoder(column, cls)
		if err != nil {
			return nil, err
		}
		b.encoders[column] = enc
	}
	return b, nil
}

func (b *EncoderBundle) Encoder(column string) (*LabelEncoder, bool) {
	if b == nil {
		return nil, false
	}
	enc, ok := b.encoders[column]
	return enc, ok
}

func (b *EncoderBundle) Columns() []string {
	if b == nil {
		return nil
	}
	cols := make([]string, 0, len(b.encoders))
	for c := range b.encoders {
		cols = append(cols, c)
	}
	slices.Sort(cols)
	return cols
}
