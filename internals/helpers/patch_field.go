package helper

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

/*
PatchField adalah util 3-state untuk PATCH:
- field tidak dikirim  -> Present=false
- field dikirim nilai  -> Present=true,  Value != nil
- field dikirim null   -> Present=true,  Value == nil
*/
type PatchField[T any] struct {
	Present bool `json:"-"`
	Value   *T   `json:"-"`
}

func (p *PatchField[T]) UnmarshalJSON(b []byte) error {
	p.Present = true
	if string(b) == "null" {
		p.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	p.Value = &v
	return nil
}

func (p PatchField[T]) IsNull() bool       { return p.Present && p.Value == nil }
func (p PatchField[T]) ShouldUpdate() bool { return p.Present }

// Set builds a present field, mostly for tests and internal callers.
func Set[T any](v T) PatchField[T] { return PatchField[T]{Present: true, Value: &v} }

// Clear builds a present field holding null.
func Clear[T any]() PatchField[T] { return PatchField[T]{Present: true} }

// NumberField sama seperti PatchField[float64] tetapi menerima "" (dan string numerik)
// dari form input. String kosong dianggap null.
type NumberField struct {
	PatchField[float64]
}

func (n *NumberField) UnmarshalJSON(b []byte) error {
	n.Present = true
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		n.Value = nil
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			n.Value = nil
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return errors.Errorf("invalid number %q", s)
		}
		n.Value = &f
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	n.Value = &f
	return nil
}
