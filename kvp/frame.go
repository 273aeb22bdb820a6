// Copyright (C) 2019  David N. Cohen

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package kvp implements the nested key-value property frame that
// Transaction, Split, and ScheduledTransaction carry, following
// GnuCash's KvpFrame: string, numeric (rational), timestamp, GUID, and
// nested-frame values, addressed by a "/"-separated path.
package kvp

import (
	"strings"
	"time"

	"src.d10.dev/ledgercore/numeric"
)

// Kind identifies the type of value held in a Slot.
type Kind int

const (
	KindNone Kind = iota
	KindString
	KindNumeric
	KindTime
	KindGUID
	KindFrame
)

// Value is a single slot's payload. Exactly one field is meaningful,
// selected by Kind.
type Value struct {
	Kind    Kind
	Str     string
	Num     numeric.Numeric
	Time    time.Time
	GUID    string // string form; package guid.GUID.String()
	Frame   *Frame
}

func StringValue(s string) Value         { return Value{Kind: KindString, Str: s} }
func NumericValue(n numeric.Numeric) Value { return Value{Kind: KindNumeric, Num: n} }
func TimeValue(t time.Time) Value        { return Value{Kind: KindTime, Time: t} }
func GUIDValue(g string) Value           { return Value{Kind: KindGUID, GUID: g} }
func FrameValue(f *Frame) Value          { return Value{Kind: KindFrame, Frame: f} }

// Frame is a nested property bag, keyed by path segments.
type Frame struct {
	slot map[string]Value
}

func New() *Frame {
	return &Frame{slot: make(map[string]Value)}
}

// Delete clears every slot. A nil Frame is valid and already empty.
func (this *Frame) Delete() {
	if this == nil {
		return
	}
	this.slot = make(map[string]Value)
}

// IsEmpty reports whether the frame has no top-level slots.
func (this *Frame) IsEmpty() bool {
	return this == nil || len(this.slot) == 0
}

// Copy returns a deep copy of this frame (nested frames are copied
// recursively), matching the "copy the KVP frame" step of Transaction
// begin/rollback snapshots (spec.md §4.3).
func (this *Frame) Copy() *Frame {
	out := New()
	if this == nil {
		return out
	}
	for k, v := range this.slot {
		if v.Kind == KindFrame {
			v.Frame = v.Frame.Copy()
		}
		out.slot[k] = v
	}
	return out
}

// Compare reports whether two frames hold identical slots (nested
// frames compared recursively). Numeric slots compare by exact
// rational value, ignoring denominator presentation.
func Compare(a, b *Frame) bool {
	am, bm := frameMap(a), frameMap(b)
	if len(am) != len(bm) {
		return false
	}
	for k, av := range am {
		bv, ok := bm[k]
		if !ok || av.Kind != bv.Kind {
			return false
		}
		switch av.Kind {
		case KindString:
			if av.Str != bv.Str {
				return false
			}
		case KindNumeric:
			if !numeric.Equal(av.Num, bv.Num) {
				return false
			}
		case KindTime:
			if !av.Time.Equal(bv.Time) {
				return false
			}
		case KindGUID:
			if av.GUID != bv.GUID {
				return false
			}
		case KindFrame:
			if !Compare(av.Frame, bv.Frame) {
				return false
			}
		}
	}
	return true
}

func frameMap(f *Frame) map[string]Value {
	if f == nil {
		return map[string]Value{}
	}
	return f.slot
}

func splitPath(path string) []string {
	return strings.Split(path, "/")
}

// GetSlot returns the value at path (e.g. "void-reason" or
// "GNC_SX/credit-formula"), and whether it was present.
func (this *Frame) GetSlot(path string) (Value, bool) {
	if this == nil {
		return Value{}, false
	}
	seg := splitPath(path)
	f := this
	for i, s := range seg {
		if i == len(seg)-1 {
			v, ok := f.slot[s]
			return v, ok
		}
		v, ok := f.slot[s]
		if !ok || v.Kind != KindFrame {
			return Value{}, false
		}
		f = v.Frame
	}
	return Value{}, false
}

// SetSlot writes a value at path, creating intermediate frames as
// needed. Setting the zero Value (KindNone) deletes the slot.
func (this *Frame) SetSlot(path string, v Value) {
	seg := splitPath(path)
	f := this
	for i, s := range seg {
		if i == len(seg)-1 {
			if v.Kind == KindNone {
				delete(f.slot, s)
			} else {
				f.slot[s] = v
			}
			return
		}
		child, ok := f.slot[s]
		if !ok || child.Kind != KindFrame {
			child = FrameValue(New())
			f.slot[s] = child
		}
		f = child.Frame
	}
}

// DeleteSlot removes the value at path, if any.
func (this *Frame) DeleteSlot(path string) {
	this.SetSlot(path, Value{})
}

// Convenience typed accessors, used pervasively by the engine for the
// literal on-disk slot names enumerated in spec.md §9 (trans-read-only,
// void-*, gains-source, GNC_SX/*, split-type).

func (this *Frame) GetString(path string) (string, bool) {
	v, ok := this.GetSlot(path)
	if !ok || v.Kind != KindString {
		return "", false
	}
	return v.Str, true
}

func (this *Frame) SetString(path, s string) {
	this.SetSlot(path, StringValue(s))
}

func (this *Frame) GetNumeric(path string) (numeric.Numeric, bool) {
	v, ok := this.GetSlot(path)
	if !ok || v.Kind != KindNumeric {
		return numeric.Numeric{}, false
	}
	return v.Num, true
}

func (this *Frame) SetNumeric(path string, n numeric.Numeric) {
	this.SetSlot(path, NumericValue(n))
}

func (this *Frame) GetGUID(path string) (string, bool) {
	v, ok := this.GetSlot(path)
	if !ok || v.Kind != KindGUID {
		return "", false
	}
	return v.GUID, true
}

func (this *Frame) SetGUID(path, guid string) {
	this.SetSlot(path, GUIDValue(guid))
}

func (this *Frame) GetTime(path string) (time.Time, bool) {
	v, ok := this.GetSlot(path)
	if !ok || v.Kind != KindTime {
		return time.Time{}, false
	}
	return v.Time, true
}

func (this *Frame) SetTime(path string, t time.Time) {
	this.SetSlot(path, TimeValue(t))
}
