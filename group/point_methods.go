package group

import "github.com/rafaelescrich/go-dstu4145/field"

// X returns the x coordinate of the point.
func (p *Point) X() *field.Element {
	return p.x.Clone()
}

// Y returns the y coordinate of the point.
func (p *Point) Y() *field.Element {
	return p.y.Clone()
}

// CompressedLE returns the compressed point as ceil(m/8) little-endian
// bytes, the form used for public keys in certificates.
func (p *Point) CompressedLE() []byte {
	return p.Compress().LEBytes()
}
