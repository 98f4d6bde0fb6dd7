//go:build !nooffice

package verifier

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha1" //nolint:gosec // required by ECMA-376 document encryption
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/binary"
	"encoding/xml"
	"errors"
	"fmt"
	"hash"
	"strings"
	"unicode/utf16"
)

// officeKeyCheck verifies a password against the key-check material of one document.
type officeKeyCheck interface {
	verify(password string) bool
}

const (
	passwordKeyEncryptorURI = "http://schemas.microsoft.com/office/2006/keyEncryptor/password"
	standardSpinCount       = 50000
	algAES128               = 0x660E
	algAES192               = 0x660F
	algAES256               = 0x6610
	algRC4                  = 0x6801
)

var (
	agileVerifierInputBlock = []byte{0xfe, 0xa7, 0xd2, 0x76, 0x3b, 0x4b, 0x9e, 0x79} //nolint:gochecknoglobals // ECMA-376 block key
	agileVerifierValueBlock = []byte{0xd7, 0xaa, 0x0f, 0x6d, 0x30, 0x61, 0x34, 0x4e} //nolint:gochecknoglobals // ECMA-376 block key
)

// parseEncryptionInfo dispatches on the EncryptionInfo version header.
func parseEncryptionInfo(info []byte) (officeKeyCheck, error) {
	if len(info) < 8 {
		return nil, errors.New("EncryptionInfo stream is truncated")
	}

	major := binary.LittleEndian.Uint16(info[0:2])
	minor := binary.LittleEndian.Uint16(info[2:4])

	switch {
	case major == 4 && minor == 4:
		return parseAgileInfo(info[8:])
	case (major == 2 || major == 3 || major == 4) && minor == 2:
		return parseStandardInfo(info[4:])
	case (major == 3 || major == 4) && minor == 3:
		return nil, errors.New("extensible encryption is not supported")
	default:
		return nil, fmt.Errorf("unknown EncryptionInfo version %d.%d", major, minor)
	}
}

func utf16LE(s string) []byte {
	units := utf16.Encode([]rune(s))
	out := make([]byte, 2*len(units))
	for i, u := range units {
		binary.LittleEndian.PutUint16(out[2*i:], u)
	}

	return out
}

// iteratedHash is H0 = H(salt + password), Hn = H(LE32(n-1) + Hn-1).
func iteratedHash(newHash func() hash.Hash, salt []byte, password string, spinCount int) []byte {
	h := newHash()
	h.Write(salt)
	h.Write(utf16LE(password))
	sum := h.Sum(nil)

	var it [4]byte
	for i := range spinCount {
		binary.LittleEndian.PutUint32(it[:], uint32(i)) //nolint:gosec // spin counts fit in 32 bits
		h.Reset()
		h.Write(it[:])
		h.Write(sum)
		sum = h.Sum(sum[:0])
	}

	return sum
}

type agileEncryptedKey struct {
	SpinCount                  int    `xml:"spinCount,attr"`
	SaltSize                   int    `xml:"saltSize,attr"`
	BlockSize                  int    `xml:"blockSize,attr"`
	KeyBits                    int    `xml:"keyBits,attr"`
	HashSize                   int    `xml:"hashSize,attr"`
	CipherAlgorithm            string `xml:"cipherAlgorithm,attr"`
	CipherChaining             string `xml:"cipherChaining,attr"`
	HashAlgorithm              string `xml:"hashAlgorithm,attr"`
	SaltValue                  string `xml:"saltValue,attr"`
	EncryptedVerifierHashInput string `xml:"encryptedVerifierHashInput,attr"`
	EncryptedVerifierHashValue string `xml:"encryptedVerifierHashValue,attr"`
}

type agileDescriptor struct {
	XMLName       xml.Name `xml:"encryption"`
	KeyEncryptors []struct {
		URI          string            `xml:"uri,attr"`
		EncryptedKey agileEncryptedKey `xml:"encryptedKey"`
	} `xml:"keyEncryptors>keyEncryptor"`
}

// agileCheck holds the decoded password key encryptor of an agile descriptor.
type agileCheck struct {
	newHash   func() hash.Hash
	spinCount int
	keyBytes  int
	saltSize  int
	hashSize  int
	salt      []byte
	iv        []byte
	hashInput []byte
	hashValue []byte
}

func hashByName(name string) (func() hash.Hash, error) {
	switch strings.ToUpper(strings.ReplaceAll(name, "-", "")) {
	case "SHA1":
		return sha1.New, nil
	case "SHA256":
		return sha256.New, nil
	case "SHA384":
		return sha512.New384, nil
	case "SHA512":
		return sha512.New, nil
	default:
		return nil, fmt.Errorf("unsupported hash algorithm %q", name)
	}
}

func parseAgileInfo(descriptor []byte) (officeKeyCheck, error) {
	var d agileDescriptor
	if err := xml.Unmarshal(bytes.TrimRight(descriptor, "\x00"), &d); err != nil {
		return nil, fmt.Errorf("invalid agile encryption descriptor: %w", err)
	}

	for _, ke := range d.KeyEncryptors {
		if ke.URI != passwordKeyEncryptorURI {
			continue
		}

		return newAgileCheck(ke.EncryptedKey)
	}

	return nil, errors.New("agile descriptor has no password key encryptor")
}

func newAgileCheck(k agileEncryptedKey) (*agileCheck, error) {
	if !strings.EqualFold(k.CipherAlgorithm, "AES") {
		return nil, fmt.Errorf("unsupported cipher %q", k.CipherAlgorithm)
	}
	if !strings.EqualFold(k.CipherChaining, "ChainingModeCBC") {
		return nil, fmt.Errorf("unsupported chaining mode %q", k.CipherChaining)
	}
	if k.KeyBits%8 != 0 || k.KeyBits < 128 || k.KeyBits > 256 {
		return nil, fmt.Errorf("unsupported key size %d", k.KeyBits)
	}

	newHash, err := hashByName(k.HashAlgorithm)
	if err != nil {
		return nil, err
	}

	c := &agileCheck{
		newHash:   newHash,
		spinCount: k.SpinCount,
		keyBytes:  k.KeyBits / 8,
		saltSize:  k.SaltSize,
		hashSize:  k.HashSize,
	}

	fields := []struct {
		dst  *[]byte
		name string
		val  string
	}{
		{&c.salt, "saltValue", k.SaltValue},
		{&c.hashInput, "encryptedVerifierHashInput", k.EncryptedVerifierHashInput},
		{&c.hashValue, "encryptedVerifierHashValue", k.EncryptedVerifierHashValue},
	}
	for _, f := range fields {
		b, err := base64.StdEncoding.DecodeString(f.val)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", f.name, err)
		}
		*f.dst = b
	}

	if len(c.hashInput)%aes.BlockSize != 0 || len(c.hashValue)%aes.BlockSize != 0 {
		return nil, errors.New("encrypted verifier is not a whole number of blocks")
	}
	if len(c.hashInput) < c.saltSize || len(c.hashValue) < c.hashSize {
		return nil, errors.New("encrypted verifier is shorter than declared")
	}

	c.iv = fitBytes(c.salt, aes.BlockSize, 0x36)

	return c, nil
}

// fitBytes truncates b to n bytes or pads it with pad.
func fitBytes(b []byte, n int, pad byte) []byte {
	out := bytes.Repeat([]byte{pad}, n)
	copy(out, b)

	return out
}

func (c *agileCheck) blockKey(base, block []byte) []byte {
	h := c.newHash()
	h.Write(base)
	h.Write(block)

	return fitBytes(h.Sum(nil), c.keyBytes, 0x36)
}

func (c *agileCheck) decrypt(key, data []byte) []byte {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil
	}
	out := make([]byte, len(data))
	cipher.NewCBCDecrypter(block, c.iv).CryptBlocks(out, data)

	return out
}

func (c *agileCheck) verify(password string) bool {
	base := iteratedHash(c.newHash, c.salt, password, c.spinCount)

	input := c.decrypt(c.blockKey(base, agileVerifierInputBlock), c.hashInput)
	value := c.decrypt(c.blockKey(base, agileVerifierValueBlock), c.hashValue)
	if input == nil || value == nil {
		return false
	}

	h := c.newHash()
	h.Write(input[:c.saltSize])

	return bytes.Equal(h.Sum(nil), value[:c.hashSize])
}

// standardCheck holds the EncryptionVerifier of standard (CryptoAPI AES) encryption.
type standardCheck struct {
	keyBytes              int
	salt                  []byte
	encryptedVerifier     []byte
	verifierHashSize      int
	encryptedVerifierHash []byte
}

func parseStandardInfo(b []byte) (officeKeyCheck, error) {
	// Flags (4) and header size (4) precede the EncryptionHeader.
	if len(b) < 8 {
		return nil, errors.New("standard EncryptionInfo is truncated")
	}
	headerSize := int(binary.LittleEndian.Uint32(b[4:8]))
	header := b[8:]
	if headerSize < 32 || len(header) < headerSize {
		return nil, errors.New("standard EncryptionHeader is truncated")
	}

	algID := binary.LittleEndian.Uint32(header[8:12])
	keyBits := int(binary.LittleEndian.Uint32(header[16:20]))

	switch algID {
	case algAES128, algAES192, algAES256:
	case algRC4:
		return nil, errors.New("CryptoAPI RC4 encryption is not supported")
	default:
		return nil, fmt.Errorf("unsupported cipher algorithm 0x%04x", algID)
	}
	if keyBits == 0 {
		keyBits = 128
	}
	if keyBits != 128 && keyBits != 192 && keyBits != 256 {
		return nil, fmt.Errorf("unsupported key size %d", keyBits)
	}

	v := header[headerSize:]
	if len(v) < 4+16+16+4+32 {
		return nil, errors.New("standard EncryptionVerifier is truncated")
	}
	saltSize := int(binary.LittleEndian.Uint32(v[0:4]))
	if saltSize != 16 {
		return nil, fmt.Errorf("unexpected salt size %d", saltSize)
	}

	return &standardCheck{
		keyBytes:              keyBits / 8,
		salt:                  v[4:20],
		encryptedVerifier:     v[20:36],
		verifierHashSize:      int(binary.LittleEndian.Uint32(v[36:40])),
		encryptedVerifierHash: v[40:72],
	}, nil
}

// standardKey derives the AES key of standard encryption.
func (c *standardCheck) standardKey(password string) []byte {
	h := iteratedHash(sha1.New, c.salt, password, standardSpinCount)

	final := sha1.New() //nolint:gosec // see import
	final.Write(h)
	final.Write([]byte{0, 0, 0, 0})
	hfinal := final.Sum(nil)

	derive := func(fill byte) []byte {
		buf := bytes.Repeat([]byte{fill}, 64)
		for i, b := range hfinal {
			buf[i] ^= b
		}
		sum := sha1.Sum(buf) //nolint:gosec // see import
		return sum[:]
	}

	x3 := append(derive(0x36), derive(0x5c)...)

	return x3[:c.keyBytes]
}

func (c *standardCheck) verify(password string) bool {
	block, err := aes.NewCipher(c.standardKey(password))
	if err != nil {
		return false
	}

	verifier := make([]byte, len(c.encryptedVerifier))
	for i := 0; i < len(verifier); i += aes.BlockSize {
		block.Decrypt(verifier[i:i+aes.BlockSize], c.encryptedVerifier[i:i+aes.BlockSize])
	}
	verifierHash := make([]byte, len(c.encryptedVerifierHash))
	for i := 0; i < len(verifierHash); i += aes.BlockSize {
		block.Decrypt(verifierHash[i:i+aes.BlockSize], c.encryptedVerifierHash[i:i+aes.BlockSize])
	}

	size := c.verifierHashSize
	if size <= 0 || size > sha1.Size {
		size = sha1.Size
	}
	sum := sha1.Sum(verifier) //nolint:gosec // see import

	return bytes.Equal(sum[:size], verifierHash[:size])
}
