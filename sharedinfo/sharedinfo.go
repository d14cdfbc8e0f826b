// Package sharedinfo encodes the SharedInfo structure mixed into the key
// encryption key derivation of DSTU 4145 key agreement:
//
//	SharedInfo ::= SEQUENCE {
//	    keyInfo     AlgorithmIdentifier,
//	    entityUInfo [0] EXPLICIT OCTET STRING OPTIONAL,
//	    suppPubInfo [2] EXPLICIT OCTET STRING }
//
// keyInfo names the GOST 28147-89 CFB key wrap with NULL parameters and
// suppPubInfo carries the wrapped key length in bits (256) as four
// big-endian bytes.
package sharedinfo

import (
	encasn1 "encoding/asn1"

	"github.com/pkg/errors"
	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"
)

// OIDGost28147CFBWrap identifies the Gost28147-cfb-wrap key wrap algorithm.
var OIDGost28147CFBWrap = encasn1.ObjectIdentifier{1, 2, 804, 2, 1, 1, 1, 1, 1, 1, 5}

// SuppPubInfo is the key length field: 256 bits.
var SuppPubInfo = []byte{0x00, 0x00, 0x01, 0x00}

var (
	tagEntityUInfo = asn1.Tag(0).Constructed().ContextSpecific()
	tagSuppPubInfo = asn1.Tag(2).Constructed().ContextSpecific()
)

// Info is the decoded form of SharedInfo.
type Info struct {
	Algorithm   encasn1.ObjectIdentifier
	EntityUInfo []byte
	SuppPubInfo []byte
}

// Encode returns the DER SharedInfo for the key wrap algorithm with the
// optional user keying material ukm. A nil or empty ukm omits entityUInfo.
func Encode(ukm []byte) ([]byte, error) {
	var b cryptobyte.Builder
	b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
			b.AddASN1ObjectIdentifier(OIDGost28147CFBWrap)
			b.AddASN1NULL()
		})
		if len(ukm) > 0 {
			b.AddASN1(tagEntityUInfo, func(b *cryptobyte.Builder) {
				b.AddASN1OctetString(ukm)
			})
		}
		b.AddASN1(tagSuppPubInfo, func(b *cryptobyte.Builder) {
			b.AddASN1OctetString(SuppPubInfo)
		})
	})
	out, err := b.Bytes()
	if err != nil {
		return nil, errors.Wrap(err, "sharedinfo: building DER")
	}
	return out, nil
}

// Decode parses a DER SharedInfo.
func Decode(der []byte) (*Info, error) {
	var (
		input   = cryptobyte.String(der)
		seq     cryptobyte.String
		keyInfo cryptobyte.String
		info    Info
	)
	if !input.ReadASN1(&seq, asn1.SEQUENCE) || !input.Empty() {
		return nil, errors.New("sharedinfo: malformed SharedInfo sequence")
	}
	if !seq.ReadASN1(&keyInfo, asn1.SEQUENCE) || !keyInfo.ReadASN1ObjectIdentifier(&info.Algorithm) {
		return nil, errors.New("sharedinfo: malformed keyInfo")
	}
	if keyInfo.PeekASN1Tag(asn1.NULL) {
		keyInfo.SkipASN1(asn1.NULL)
	}

	var (
		entity    cryptobyte.String
		hasEntity bool
	)
	if !seq.ReadOptionalASN1(&entity, &hasEntity, tagEntityUInfo) {
		return nil, errors.New("sharedinfo: malformed entityUInfo")
	}
	if hasEntity {
		var ukm cryptobyte.String
		if !entity.ReadASN1(&ukm, asn1.OCTET_STRING) {
			return nil, errors.New("sharedinfo: entityUInfo is not an octet string")
		}
		info.EntityUInfo = append([]byte(nil), ukm...)
	}

	var supp, suppValue cryptobyte.String
	if !seq.ReadASN1(&supp, tagSuppPubInfo) || !supp.ReadASN1(&suppValue, asn1.OCTET_STRING) {
		return nil, errors.New("sharedinfo: malformed suppPubInfo")
	}
	info.SuppPubInfo = append([]byte(nil), suppValue...)
	if !seq.Empty() {
		return nil, errors.New("sharedinfo: trailing data")
	}
	return &info, nil
}
