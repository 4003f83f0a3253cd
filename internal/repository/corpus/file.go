package corpus

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"

	"github.com/kailas-cloud/lexai/internal/domain"
)

func loadFile(loc Locator) (domain.Corpus, error) {
	f, err := os.Open(filepath.Clean(loc.Target))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.Corpus{}, &NotFoundError{Locator: loc.Raw}
		}
		return domain.Corpus{}, fmt.Errorf("open corpus %s: %w", loc.Raw, err)
	}
	defer f.Close()

	var r io.Reader = bufio.NewReader(f)
	if loc.Gzip() {
		zr, err := gzip.NewReader(r)
		if err != nil {
			return domain.Corpus{}, fmt.Errorf("corpus %s: gzip header: %w: %w", loc.Raw, domain.ErrCorpusSchema, err)
		}
		defer zr.Close()
		r = zr
	}
	return decodePayload(loc.Raw, r)
}

func writeFile(loc Locator, c domain.Corpus) (err error) {
	path := filepath.Clean(loc.Target)
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create corpus dir: %w", err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".corpus-*")
	if err != nil {
		return fmt.Errorf("create temp corpus file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	bw := bufio.NewWriter(tmp)
	var w io.Writer = bw
	var zw *gzip.Writer
	if loc.Gzip() {
		zw = gzip.NewWriter(bw)
		w = zw
	}
	if err := encodePayload(w, c); err != nil {
		_ = tmp.Close()
		return err
	}
	if zw != nil {
		if err := zw.Close(); err != nil {
			_ = tmp.Close()
			return fmt.Errorf("flush gzip: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("flush corpus file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close corpus file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("publish corpus file: %w", err)
	}
	return nil
}
