package audio

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
)

var (
	// ErrUnsupportedScheme rejects sound locators that are not local files.
	ErrUnsupportedScheme = errors.New("unsupported sound locator scheme")
	// ErrUnsupportedFormat rejects containers no decoder handles.
	ErrUnsupportedFormat = errors.New("unsupported sound format")
)

// ResolveRef turns a sound locator into a local file path. It accepts
// absolute or relative paths, "~/" paths and file:// URIs.
func ResolveRef(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", errors.New("empty sound locator")
	}

	if strings.Contains(ref, "://") {
		u, err := url.Parse(ref)
		if err != nil {
			return "", fmt.Errorf("parse sound locator %q: %w", ref, err)
		}
		if !strings.EqualFold(u.Scheme, "file") {
			return "", fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
		}
		if u.Host != "" && u.Host != "localhost" {
			return "", fmt.Errorf("%w: remote file host %q", ErrUnsupportedScheme, u.Host)
		}
		return filepath.Clean(u.Path), nil
	}

	if ref == "~" || strings.HasPrefix(ref, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		return filepath.Join(home, strings.TrimPrefix(strings.TrimPrefix(ref, "~"), "/")), nil
	}

	return filepath.Clean(ref), nil
}

type decodeFunc func(f *os.File) (beep.StreamSeekCloser, beep.Format, error)

var decoders = map[string]decodeFunc{
	".wav":  func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return wav.Decode(f) },
	".mp3":  func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return mp3.Decode(f) },
	".flac": func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return flac.Decode(f) },
	".ogg":  func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return vorbis.Decode(f) },
	".oga":  func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return vorbis.Decode(f) },
}

func decoderFor(path string) (decodeFunc, error) {
	ext := strings.ToLower(filepath.Ext(path))
	decode, ok := decoders[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return decode, nil
}

// checkFile verifies path names a readable regular file with a known container.
func checkFile(path string) error {
	if _, err := decoderFor(path); err != nil {
		return err
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat sound %q: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("sound %q is a directory", path)
	}
	return nil
}

// decodedFile owns both the decoder and the file handle beneath it.
type decodedFile struct {
	beep.StreamSeekCloser
	file *os.File
}

func (d *decodedFile) Close() error {
	err := d.StreamSeekCloser.Close()
	if closeErr := d.file.Close(); closeErr != nil && !errors.Is(closeErr, os.ErrClosed) {
		err = errors.Join(err, closeErr)
	}
	return err
}

// decodeFile opens and decodes path.
func decodeFile(path string) (beep.StreamSeekCloser, beep.Format, error) {
	decode, err := decoderFor(path)
	if err != nil {
		return nil, beep.Format{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("open sound %q: %w", path, err)
	}

	stream, format, err := decode(f)
	if err != nil {
		_ = f.Close()
		return nil, beep.Format{}, fmt.Errorf("decode sound %q: %w", path, err)
	}
	if format.SampleRate <= 0 {
		_ = stream.Close()
		_ = f.Close()
		return nil, beep.Format{}, fmt.Errorf("decode sound %q: invalid sample rate", path)
	}
	return &decodedFile{StreamSeekCloser: stream, file: f}, format, nil
}

// Probe decodes the header of the sound at ref and reports its format.
func Probe(ref string) (beep.Format, error) {
	path, err := ResolveRef(ref)
	if err != nil {
		return beep.Format{}, err
	}
	stream, format, err := decodeFile(path)
	if err != nil {
		return beep.Format{}, err
	}
	_ = stream.Close()
	return format, nil
}
