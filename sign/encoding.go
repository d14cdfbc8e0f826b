package sign

import (
	"math/big"

	"github.com/rafaelescrich/go-dstu4145/errs"
	"github.com/rafaelescrich/go-dstu4145/group"
)

// Format selects a signature encoding.
type Format int

const (
	// FormatShort is 0x04, 2*w, r, s with both components big-endian and
	// w bytes wide.
	FormatShort Format = iota

	// FormatRaw is r || s, big-endian, w bytes each.
	FormatRaw

	// FormatShortLE is FormatShort with little-endian components, the
	// layout carried by Dstu4145le certificates.
	FormatShortLE

	// FormatRawLE is FormatRaw with little-endian components.
	FormatRawLE
)

const octetStringTag = 0x04

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatShort:
		return "short"
	case FormatRaw:
		return "raw"
	case FormatShortLE:
		return "short-le"
	case FormatRawLE:
		return "raw-le"
	}
	return "unknown"
}

// ParseFormat returns the format with the given name.
func ParseFormat(name string) (Format, error) {
	for _, f := range []Format{FormatShort, FormatRaw, FormatShortLE, FormatRawLE} {
		if f.String() == name {
			return f, nil
		}
	}
	return 0, errs.New(errs.ErrUnknownFormat, "sign: unknown signature format "+name)
}

func (f Format) littleEndian() bool {
	return f == FormatShortLE || f == FormatRawLE
}

func (f Format) short() bool {
	return f == FormatShort || f == FormatShortLE
}

// Bytes encodes the signature. The component width w is the byte length of
// the longer of r and s; the shorter one is zero-padded.
func (sig *Signature) Bytes(f Format) ([]byte, error) {
	if f < FormatShort || f > FormatRawLE {
		return nil, errs.New(errs.ErrUnknownFormat, "sign: unknown signature format")
	}

	r, s := sig.R.Int(), sig.S.Int()
	w := (r.BitLen() + 7) / 8
	if sw := (s.BitLen() + 7) / 8; sw > w {
		w = sw
	}

	rb := r.FillBytes(make([]byte, w))
	sb := s.FillBytes(make([]byte, w))
	if f.littleEndian() {
		reverse(rb)
		reverse(sb)
	}

	out := make([]byte, 0, 2+2*w)
	if f.short() {
		if 2*w > 0x7F {
			return nil, errs.New(errs.ErrInvalidSignature, "sign: signature too long for the short form")
		}
		out = append(out, octetStringTag, byte(2*w))
	}
	out = append(out, rb...)
	return append(out, sb...), nil
}

// Parse decodes a signature produced by Bytes. The returned signature has no
// Hash.
func Parse(curve *group.Curve, b []byte, f Format) (*Signature, error) {
	if f < FormatShort || f > FormatRawLE {
		return nil, errs.New(errs.ErrUnknownFormat, "sign: unknown signature format")
	}

	body := b
	if f.short() {
		if len(b) < 2 || b[0] != octetStringTag || int(b[1]) != len(b)-2 {
			return nil, errs.New(errs.ErrInvalidSignature, "sign: malformed short signature header")
		}
		body = b[2:]
	}
	if len(body) == 0 || len(body)%2 != 0 {
		return nil, errs.New(errs.ErrInvalidSignature, "sign: signature body must hold two equal halves")
	}

	w := len(body) / 2
	rb := append([]byte(nil), body[:w]...)
	sb := append([]byte(nil), body[w:]...)
	if f.littleEndian() {
		reverse(rb)
		reverse(sb)
	}

	order := curve.Order()
	r, ok := order.Check(new(big.Int).SetBytes(rb))
	if !ok {
		return nil, errs.New(errs.ErrInvalidSignature, "sign: r is out of range")
	}
	s, ok := order.Check(new(big.Int).SetBytes(sb))
	if !ok {
		return nil, errs.New(errs.ErrInvalidSignature, "sign: s is out of range")
	}
	return &Signature{R: r, S: s}, nil
}

func reverse(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}
