//go:build !nopdf

package verifier

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5" //nolint:gosec // required by the PDF standard security handler
	"crypto/rc4" //nolint:gosec // required by the PDF standard security handler
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"
	"hash"
)

const pdfMaxPasswordLen = 127

var pdfPasswordPad = [32]byte{ //nolint:gochecknoglobals // Padding string from the PDF reference
	0x28, 0xbf, 0x4e, 0x5e, 0x4e, 0x75, 0x8a, 0x41,
	0x64, 0x00, 0x4e, 0x56, 0xff, 0xfa, 0x01, 0x08,
	0x2e, 0x2e, 0x00, 0xb6, 0xd0, 0x68, 0x3e, 0x80,
	0x2f, 0x0c, 0xa9, 0xfe, 0x64, 0x53, 0x69, 0x7a,
}

func padPDFPassword(pass []byte) []byte {
	out := make([]byte, 32)
	n := copy(out, pass)
	copy(out[n:], pdfPasswordPad[:32-n])

	return out
}

// rc4Apply XORs data in place with the RC4 keystream of key.
func rc4Apply(key, data []byte) {
	c, err := rc4.NewCipher(key) //nolint:gosec // see import
	if err != nil {
		panic(err) // key length is always 1..256 here
	}
	c.XORKeyStream(data, data)
}

// userKey derives the file key from a padded password (revisions 2-4).
func (s *pdfSecurity) userKey(padded []byte) []byte {
	h := md5.New() //nolint:gosec // see import
	h.Write(padded)
	h.Write(s.o)
	var p [4]byte
	binary.LittleEndian.PutUint32(p[:], uint32(s.p)) //nolint:gosec // bit pattern of /P
	h.Write(p[:])
	h.Write(s.id0)
	if s.revision >= 4 && !s.encryptMetadata {
		h.Write([]byte{0xff, 0xff, 0xff, 0xff})
	}

	key := h.Sum(nil)[:s.keyLen]
	if s.revision >= 3 {
		for range 50 {
			sum := md5.Sum(key) //nolint:gosec // see import
			key = sum[:s.keyLen]
		}
	}

	return key
}

// userEntry computes the /U value a padded password would produce (revisions 2-4).
// Only the first 16 bytes are significant for revisions 3 and 4.
func (s *pdfSecurity) userEntry(padded []byte) []byte {
	key := s.userKey(padded)

	if s.revision == 2 {
		out := make([]byte, 32)
		copy(out, pdfPasswordPad[:])
		rc4Apply(key, out)

		return out
	}

	h := md5.New() //nolint:gosec // see import
	h.Write(pdfPasswordPad[:])
	h.Write(s.id0)
	out := h.Sum(nil)

	tmp := make([]byte, len(key))
	for i := range 20 {
		for j := range key {
			tmp[j] = key[j] ^ byte(i)
		}
		rc4Apply(tmp, out)
	}

	return out
}

func (s *pdfSecurity) checkUserLegacy(pass []byte) bool {
	if s.revision == 2 {
		return bytes.Equal(s.userEntry(padPDFPassword(pass)), s.u)
	}

	return bytes.Equal(s.userEntry(padPDFPassword(pass))[:16], s.u[:16])
}

// ownerKey derives the RC4 key protecting /O from an owner password (revisions 2-4).
func (s *pdfSecurity) ownerKey(pass []byte) []byte {
	sum := md5.Sum(padPDFPassword(pass)) //nolint:gosec // see import
	digest := sum[:]
	if s.revision >= 3 {
		for range 50 {
			next := md5.Sum(digest) //nolint:gosec // see import
			digest = next[:]
		}
	}

	n := 5
	if s.revision >= 3 {
		n = s.keyLen
	}

	return digest[:n]
}

// checkOwnerLegacy recovers the padded user password from /O and checks it.
func (s *pdfSecurity) checkOwnerLegacy(pass []byte) bool {
	key := s.ownerKey(pass)
	user := make([]byte, len(s.o))
	copy(user, s.o)

	if s.revision == 2 {
		rc4Apply(key, user)
	} else {
		tmp := make([]byte, len(key))
		for i := 19; i >= 0; i-- {
			for j := range key {
				tmp[j] = key[j] ^ byte(i)
			}
			rc4Apply(tmp, user)
		}
	}

	return s.checkUserLegacy(user)
}

// hashR6 is the iterated SHA-2/AES hash of revision 6 (ISO 32000-2, algorithm 2.B).
func hashR6(pass, salt, udata []byte) []byte {
	h := sha256.New()
	h.Write(pass)
	h.Write(salt)
	h.Write(udata)
	k := h.Sum(nil)

	var e []byte
	for round := 0; round < 64 || int(e[len(e)-1]) > round-32; round++ {
		seq := make([]byte, 0, len(pass)+len(k)+len(udata))
		seq = append(seq, pass...)
		seq = append(seq, k...)
		seq = append(seq, udata...)
		k1 := bytes.Repeat(seq, 64)

		block, err := aes.NewCipher(k[:16])
		if err != nil {
			panic(err) // 16-byte key
		}
		e = make([]byte, len(k1))
		cipher.NewCBCEncrypter(block, k[16:32]).CryptBlocks(e, k1)

		// The 128-bit big-endian value mod 3 equals the byte sum mod 3.
		sum := 0
		for _, b := range e[:16] {
			sum += int(b)
		}

		var next hash.Hash
		switch sum % 3 {
		case 0:
			next = sha256.New()
		case 1:
			next = sha512.New384()
		default:
			next = sha512.New()
		}
		next.Write(e)
		k = next.Sum(nil)
	}

	return k[:32]
}

func (s *pdfSecurity) hashModern(pass, salt, udata []byte) []byte {
	if s.revision == 6 {
		return hashR6(pass, salt, udata)
	}

	h := sha256.New()
	h.Write(pass)
	h.Write(salt)
	h.Write(udata)

	return h.Sum(nil)
}

// check reports whether pass is the user or the owner password.
func (s *pdfSecurity) check(candidate string) bool {
	pass := []byte(candidate)

	if s.revision >= 5 {
		if len(pass) > pdfMaxPasswordLen {
			pass = pass[:pdfMaxPasswordLen]
		}
		if bytes.Equal(s.hashModern(pass, s.u[32:40], nil), s.u[:32]) {
			return true
		}

		return bytes.Equal(s.hashModern(pass, s.o[32:40], s.u[:48]), s.o[:32])
	}

	if len(pass) > 32 {
		pass = pass[:32]
	}

	return s.checkUserLegacy(pass) || s.checkOwnerLegacy(pass)
}
