// Package archive provides the optional post-backup packaging: a zip
// archive per completed target, optionally encrypted with a passphrase.
package archive

import (
	"fmt"
	"io"
	"os"

	"filippo.io/age"
	"github.com/mholt/archiver/v3"
)

// Create packages the given directory into a sibling zip archive and
// returns the archive path. An existing archive with the same name is
// replaced.
func Create(dir string) (string, error) {
	zipPath := dir + ".zip"
	if err := os.RemoveAll(zipPath); err != nil {
		return "", fmt.Errorf("remove stale archive: %w", err)
	}
	if err := archiver.Archive([]string{dir}, zipPath); err != nil {
		return "", fmt.Errorf("create archive %s: %w", zipPath, err)
	}
	return zipPath, nil
}

// Encrypt encrypts the archive with a scrypt passphrase recipient, writes
// <path>.age and removes the plaintext archive on success.
func Encrypt(path, passphrase string) (string, error) {
	if passphrase == "" {
		return "", fmt.Errorf("empty passphrase")
	}

	recipient, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return "", fmt.Errorf("create recipient: %w", err)
	}

	in, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open archive: %w", err)
	}
	defer in.Close()

	outPath := path + ".age"
	out, err := os.OpenFile(outPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return "", fmt.Errorf("create encrypted archive: %w", err)
	}

	w, err := age.Encrypt(out, recipient)
	if err != nil {
		out.Close()
		os.Remove(outPath)
		return "", fmt.Errorf("start encryption: %w", err)
	}
	if _, err := io.Copy(w, in); err != nil {
		out.Close()
		os.Remove(outPath)
		return "", fmt.Errorf("encrypt archive: %w", err)
	}
	if err := w.Close(); err != nil {
		out.Close()
		os.Remove(outPath)
		return "", fmt.Errorf("finalize encryption: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(outPath)
		return "", fmt.Errorf("close encrypted archive: %w", err)
	}

	if err := os.Remove(path); err != nil {
		return "", fmt.Errorf("remove plaintext archive: %w", err)
	}
	return outPath, nil
}

// Decrypt streams the decrypted content of an encrypted archive into w.
// Counterpart to Encrypt for verifying archives after a run.
func Decrypt(path, passphrase string, w io.Writer) error {
	identity, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return fmt.Errorf("create identity: %w", err)
	}

	in, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open encrypted archive: %w", err)
	}
	defer in.Close()

	r, err := age.Decrypt(in, identity)
	if err != nil {
		return fmt.Errorf("decrypt archive: %w", err)
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("read decrypted data: %w", err)
	}
	return nil
}
