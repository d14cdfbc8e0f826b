package ecdh

import (
	"crypto/rand"
	"io"

	"github.com/pkg/errors"

	"github.com/rafaelescrich/go-dstu4145/errs"
	"github.com/rafaelescrich/go-dstu4145/group"
	"github.com/rafaelescrich/go-dstu4145/scalar"
)

// Sizes of the random values generated for an envelope.
const (
	CEKSize = 32
	UKMSize = 64
	IVSize  = 8
)

// Algorithms are the symmetric primitives of key transport. The GOST
// 28147-89 implementations live outside this module.
type Algorithms struct {
	KDF        KDF
	SharedInfo SharedInfoEncoder

	Wrap    func(kek, cek, iv []byte) ([]byte, error)
	Unwrap  func(kek, wrapped []byte) ([]byte, error)
	Encrypt func(data, cek, iv []byte) ([]byte, error)
	Decrypt func(data, cek, iv []byte) ([]byte, error)
}

func (a *Algorithms) check(encrypt bool) error {
	if a == nil || a.KDF == nil {
		return errs.New(errs.ErrIncompleteParams, "ecdh: no key derivation function")
	}
	if encrypt && (a.Wrap == nil || a.Encrypt == nil) {
		return errs.New(errs.ErrIncompleteParams, "ecdh: no key wrap or cipher")
	}
	if !encrypt && (a.Unwrap == nil || a.Decrypt == nil) {
		return errs.New(errs.ErrIncompleteParams, "ecdh: no key unwrap or cipher")
	}
	return nil
}

// Envelope is data encrypted under a random content encryption key (CEK)
// that is wrapped with the key encryption key shared with the recipient.
type Envelope struct {
	IV         []byte
	WrappedCEK []byte
	Data       []byte
	UKM        []byte
}

// Encrypt encrypts data for peer. Random values are read from r, or from
// crypto/rand when r is nil.
func Encrypt(r io.Reader, curve *group.Curve, d *scalar.Scalar, peer interface{}, data []byte, algo *Algorithms) (*Envelope, error) {
	if err := algo.check(true); err != nil {
		return nil, err
	}
	if r == nil {
		r = rand.Reader
	}

	random := make([]byte, CEKSize+UKMSize+IVSize)
	if _, err := io.ReadFull(r, random); err != nil {
		return nil, errs.Error{
			Err:         errs.ErrRandomSource,
			Description: errors.Wrap(err, "ecdh: reading envelope randomness").Error(),
		}
	}
	cek := random[:CEKSize:CEKSize]
	ukm := random[CEKSize : CEKSize+UKMSize : CEKSize+UKMSize]
	iv := random[CEKSize+UKMSize:]

	kek, err := SharedKey(curve, d, peer, ukm, algo.KDF, algo.SharedInfo)
	if err != nil {
		return nil, err
	}
	wrapped, err := algo.Wrap(kek, cek, iv)
	if err != nil {
		return nil, errors.WithMessage(err, "ecdh: wrapping content key")
	}
	ciphertext, err := algo.Encrypt(data, cek, iv)
	if err != nil {
		return nil, errors.WithMessage(err, "ecdh: encrypting data")
	}

	return &Envelope{IV: iv, WrappedCEK: wrapped, Data: ciphertext, UKM: ukm}, nil
}

// Decrypt opens an envelope sent by peer.
func Decrypt(curve *group.Curve, d *scalar.Scalar, peer interface{}, env *Envelope, algo *Algorithms) ([]byte, error) {
	if err := algo.check(false); err != nil {
		return nil, err
	}
	if env == nil {
		return nil, errs.New(errs.ErrIncompleteParams, "ecdh: nil envelope")
	}

	kek, err := SharedKey(curve, d, peer, env.UKM, algo.KDF, algo.SharedInfo)
	if err != nil {
		return nil, err
	}
	cek, err := algo.Unwrap(kek, env.WrappedCEK)
	if err != nil {
		return nil, errors.WithMessage(err, "ecdh: unwrapping content key")
	}
	plaintext, err := algo.Decrypt(env.Data, cek, env.IV)
	if err != nil {
		return nil, errors.WithMessage(err, "ecdh: decrypting data")
	}
	return plaintext, nil
}
