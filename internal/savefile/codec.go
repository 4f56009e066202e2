package savefile

import (
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"golang.org/x/crypto/sha3"
)

var Log = logrus.New()

// HashSuffix is appended to a save path to name its digest file.
const HashSuffix = ".hash"

func HashPath(path string) string {
	return path + HashSuffix
}

// Digest is the hex encoded SHA3-512 of data.
func Digest(data []byte) string {
	sum := sha3.Sum512(data)
	return hex.EncodeToString(sum[:])
}

// Codec writes and reads save documents together with their detached
// digests.
type Codec struct {
	fs afero.Fs
}

func New(fs afero.Fs) *Codec {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Codec{fs: fs}
}

// Save writes doc to path and its digest to [HashPath](path), replacing
// whatever was there.
func (c *Codec) Save(path string, doc *Document) error {
	data, err := Encode(doc)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedDocument, err)
	}

	if err := c.replace(path, data, ErrUnableToDeleteExistingFile, ErrUnableToOpenFile); err != nil {
		return err
	}

	digest := Digest(data)
	if err := c.replace(HashPath(path), []byte(digest+"\n"), ErrUnableToDeleteExistingHashFile, ErrUnableToOpenFileToWriteHash); err != nil {
		return err
	}

	Log.WithFields(logrus.Fields{
		"path":   path,
		"bytes":  len(data),
		"digest": digest[:16],
	}).Debug("saved game")

	return nil
}

func (c *Codec) replace(path string, data []byte, errDelete, errOpen error) error {
	exists, err := afero.Exists(c.fs, path)
	if err != nil {
		return fmt.Errorf("%w: %w", errOpen, err)
	}
	if exists {
		if err := c.fs.Remove(path); err != nil {
			return fmt.Errorf("%w: %w", errDelete, err)
		}
	}

	f, err := c.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("%w: %w", errOpen, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("%w: %w", errOpen, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %w", errOpen, err)
	}
	return nil
}

// Load reads the document at path after checking it against its digest.
func (c *Codec) Load(path string) (*Document, error) {
	data, err := c.verified(path)
	if err != nil {
		return nil, err
	}
	doc, err := Decode(data)
	if err != nil {
		return nil, err
	}
	Log.WithField("path", path).Debug("loaded game")
	return doc, nil
}

// Verify checks the digest of the save at path without decoding it.
func (c *Codec) Verify(path string) error {
	_, err := c.verified(path)
	return err
}

func (c *Codec) verified(path string) ([]byte, error) {
	if ok, err := afero.Exists(c.fs, path); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnableToOpenFile, err)
	} else if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFileDoesNotExist, path)
	}
	hashPath := HashPath(path)
	if ok, err := afero.Exists(c.fs, hashPath); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnableToOpenHashFile, err)
	} else if !ok {
		return nil, fmt.Errorf("%w: %s", ErrHashFileDoesNotExist, hashPath)
	}

	data, err := afero.ReadFile(c.fs, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnableToOpenFile, err)
	}
	stored, err := afero.ReadFile(c.fs, hashPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnableToOpenHashFile, err)
	}

	want := strings.TrimSpace(string(stored))
	if subtle.ConstantTimeCompare([]byte(Digest(data)), []byte(want)) != 1 {
		Log.WithField("path", path).Warn("hash verification failed")
		return nil, fmt.Errorf("%w: %s", ErrHashVerificationFailed, path)
	}
	return data, nil
}
