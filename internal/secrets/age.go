// Package secrets keeps the bind password out of plain text with age.
package secrets

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"filippo.io/age"
	"filippo.io/age/armor"
)

// AgeEncryptor encrypts and decrypts with the X25519 identities of one key
// file.
type AgeEncryptor struct {
	identities []age.Identity
	recipients []age.Recipient
}

// NewAgeEncryptor loads the identities in keyPath.
func NewAgeEncryptor(keyPath string) (*AgeEncryptor, error) {
	f, err := os.Open(keyPath)
	if err != nil {
		return nil, fmt.Errorf("open age identity: %w", err)
	}
	defer f.Close()

	ids, err := age.ParseIdentities(f)
	if err != nil {
		return nil, fmt.Errorf("parse age identity %s: %w", keyPath, err)
	}
	enc := &AgeEncryptor{identities: ids}
	for _, id := range ids {
		if x, ok := id.(*age.X25519Identity); ok {
			enc.recipients = append(enc.recipients, x.Recipient())
		}
	}
	return enc, nil
}

// GenerateKey writes a new X25519 identity to keyPath. It refuses to
// overwrite an existing file.
func GenerateKey(keyPath string) (*age.X25519Identity, error) {
	id, err := age.GenerateX25519Identity()
	if err != nil {
		return nil, fmt.Errorf("generate age identity: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(keyPath), 0o700); err != nil {
		return nil, fmt.Errorf("create key dir: %w", err)
	}
	f, err := os.OpenFile(keyPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, fmt.Errorf("create age identity: %w", err)
	}
	_, err = fmt.Fprintf(f, "# public key: %s\n%s\n", id.Recipient(), id)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, fmt.Errorf("write age identity: %w", err)
	}
	return id, nil
}

// Encrypt encrypts plaintext to the loaded identities in ASCII armor.
func (e *AgeEncryptor) Encrypt(plaintext []byte) ([]byte, error) {
	if len(e.recipients) == 0 {
		return nil, errors.New("age identity has no x25519 recipients")
	}
	var buf bytes.Buffer
	aw := armor.NewWriter(&buf)
	w, err := age.Encrypt(aw, e.recipients...)
	if err != nil {
		return nil, fmt.Errorf("age encrypt: %w", err)
	}
	if _, err := w.Write(plaintext); err != nil {
		return nil, fmt.Errorf("age encrypt: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("age encrypt: %w", err)
	}
	if err := aw.Close(); err != nil {
		return nil, fmt.Errorf("age armor: %w", err)
	}
	return buf.Bytes(), nil
}

// Decrypt decrypts an armored or binary age file.
func (e *AgeEncryptor) Decrypt(ciphertext []byte) ([]byte, error) {
	var src io.Reader = bytes.NewReader(ciphertext)
	if bytes.HasPrefix(bytes.TrimSpace(ciphertext), []byte(armor.Header)) {
		src = armor.NewReader(src)
	}
	r, err := age.Decrypt(src, e.identities...)
	if err != nil {
		return nil, fmt.Errorf("age decrypt: %w", err)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("age decrypt: %w", err)
	}
	return out, nil
}

// ReadPassword returns the first line of the password file at path. When
// dec is non-nil the file is decrypted first.
func ReadPassword(path string, dec *AgeEncryptor) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read password file: %w", err)
	}
	if dec != nil {
		if data, err = dec.Decrypt(data); err != nil {
			return "", fmt.Errorf("password file %s: %w", path, err)
		}
	}
	line, err := bufio.NewReader(bytes.NewReader(data)).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
