//go:build !nooffice

package verifier

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha1" //nolint:gosec // fixture for ECMA-376 standard encryption
	"crypto/sha512"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unclesp1d3r/containercrack/lib/crackerrors"
	"github.com/yeka/zip"
)

func cbcEncrypt(t *testing.T, key, iv, data []byte) []byte {
	t.Helper()
	block, err := aes.NewCipher(key)
	require.NoError(t, err)
	out := make([]byte, len(data))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, data)

	return out
}

// agileInfo builds an agile EncryptionInfo stream for password.
func agileInfo(t *testing.T, password string, spinCount int) []byte {
	t.Helper()

	salt := []byte("0123456789ABCDEF")
	verifierInput := []byte("verifier-input-!")

	c := &agileCheck{newHash: sha512.New, keyBytes: 32, saltSize: 16, hashSize: 64, iv: salt}
	base := iteratedHash(sha512.New, salt, password, spinCount)

	encInput := cbcEncrypt(t, c.blockKey(base, agileVerifierInputBlock), salt, verifierInput)
	sum := sha512.Sum512(verifierInput)
	encValue := cbcEncrypt(t, c.blockKey(base, agileVerifierValueBlock), salt, sum[:])

	b64 := base64.StdEncoding.EncodeToString
	descriptor := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<encryption xmlns="http://schemas.microsoft.com/office/2006/encryption" xmlns:p="http://schemas.microsoft.com/office/2006/keyEncryptor/password">
<keyData saltSize="16" blockSize="16" keyBits="256" hashSize="64" cipherAlgorithm="AES" cipherChaining="ChainingModeCBC" hashAlgorithm="SHA512" saltValue="AAAAAAAAAAAAAAAAAAAAAA=="/>
<keyEncryptors><keyEncryptor uri="http://schemas.microsoft.com/office/2006/keyEncryptor/password">
<p:encryptedKey spinCount="%d" saltSize="16" blockSize="16" keyBits="256" hashSize="64" cipherAlgorithm="AES" cipherChaining="ChainingModeCBC" hashAlgorithm="SHA512" saltValue="%s" encryptedVerifierHashInput="%s" encryptedVerifierHashValue="%s" encryptedKeyValue="AAAAAAAAAAAAAAAAAAAAAA=="/>
</keyEncryptor></keyEncryptors></encryption>`, spinCount, b64(salt), b64(encInput), b64(encValue))

	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.LittleEndian, uint16(4))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(4))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(0x40))
	buf.WriteString(descriptor)

	return buf.Bytes()
}

// standardInfo builds a standard (AES-128) EncryptionInfo stream for password.
func standardInfo(t *testing.T, password string) []byte {
	t.Helper()

	salt := []byte("fedcba9876543210")
	verifier := []byte("random-verifier!")

	c := &standardCheck{keyBytes: 16, salt: salt}
	block, err := aes.NewCipher(c.standardKey(password))
	require.NoError(t, err)

	encVerifier := make([]byte, 16)
	block.Encrypt(encVerifier, verifier)

	sum := sha1.Sum(verifier) //nolint:gosec // fixture
	hashBlock := make([]byte, 32)
	copy(hashBlock, sum[:])
	encHash := make([]byte, 32)
	block.Encrypt(encHash[:16], hashBlock[:16])
	block.Encrypt(encHash[16:], hashBlock[16:])

	le32 := func(buf *bytes.Buffer, v uint32) { _ = binary.Write(buf, binary.LittleEndian, v) }

	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.LittleEndian, uint16(4))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(2))
	le32(&buf, 0x24) // flags: fCryptoAPI | fAES
	le32(&buf, 32)   // header size
	le32(&buf, 0x24)
	le32(&buf, 0)
	le32(&buf, algAES128)
	le32(&buf, 0x8004)
	le32(&buf, 128)
	le32(&buf, 0x18)
	le32(&buf, 0)
	le32(&buf, 0)
	le32(&buf, 16)
	buf.Write(salt)
	buf.Write(encVerifier)
	le32(&buf, 20)
	buf.Write(encHash)

	return buf.Bytes()
}

func TestAgileCheck(t *testing.T) {
	check, err := parseEncryptionInfo(agileInfo(t, "hunter2", 1000))
	require.NoError(t, err)

	assert.True(t, check.verify("hunter2"))
	assert.False(t, check.verify("hunter3"))
	assert.False(t, check.verify(""))
}

func TestAgileCheck_Unicode(t *testing.T) {
	check, err := parseEncryptionInfo(agileInfo(t, "pässwörd€", 10))
	require.NoError(t, err)

	assert.True(t, check.verify("pässwörd€"))
	assert.False(t, check.verify("passwort"))
}

func TestStandardCheck(t *testing.T) {
	check, err := parseEncryptionInfo(standardInfo(t, "hunter2"))
	require.NoError(t, err)

	assert.True(t, check.verify("hunter2"))
	assert.False(t, check.verify("Hunter2"))
}

func TestParseEncryptionInfo_Errors(t *testing.T) {
	le := func(major, minor uint16) []byte {
		b := make([]byte, 8)
		binary.LittleEndian.PutUint16(b[0:], major)
		binary.LittleEndian.PutUint16(b[2:], minor)
		return b
	}

	tests := []struct {
		name string
		info []byte
	}{
		{name: "truncated", info: []byte{4, 0}},
		{name: "unknown version", info: le(9, 9)},
		{name: "extensible", info: le(4, 3)},
		{name: "bad xml", info: append(le(4, 4), []byte("<encryption")...)},
		{name: "no password encryptor", info: append(le(4, 4), []byte("<encryption><keyEncryptors></keyEncryptors></encryption>")...)},
		{name: "standard truncated", info: append(le(3, 2), 0x24, 0, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseEncryptionInfo(tt.info)
			assert.Error(t, err)
		})
	}
}

func TestOfficeBackend_PlainPackage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.docx")

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	fw, err := w.Create("[Content_Types].xml")
	require.NoError(t, err)
	_, err = fw.Write([]byte("<Types/>"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	ok, err := Verify(path, "whatever")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestOfficeBackend_Errors(t *testing.T) {
	dir := t.TempDir()

	truncated := filepath.Join(dir, "truncated.xlsx")
	require.NoError(t, os.WriteFile(truncated, []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}, 0o600))

	text := filepath.Join(dir, "notes.pptx")
	require.NoError(t, os.WriteFile(text, []byte("just some text"), 0o600))

	_, err := OfficeBackend{}.Open(truncated)
	require.Error(t, err)
	assert.Equal(t, crackerrors.KindCorrupt, crackerrors.KindOf(err))

	_, err = OfficeBackend{}.Open(text)
	require.Error(t, err)
	assert.Equal(t, crackerrors.KindUnsupportedFormat, crackerrors.KindOf(err))
}
