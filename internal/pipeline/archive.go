package pipeline

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// archive replaces the GeneMark-ES and TransDecoder working directories
// with <dir>.tar.gz files.
func (p *Pipeline) archive() ([]string, error) {
	var out []string
	for _, dir := range []string{p.cfg.geneMarkDir(), p.cfg.transDecoderDir()} {
		dst := dir + ".tar.gz"
		if err := tarDir(dir, dst); err != nil {
			return out, fmt.Errorf("archive %s: %w", dir, err)
		}
		if err := os.RemoveAll(dir); err != nil {
			return out, fmt.Errorf("remove %s: %w", dir, err)
		}
		p.logger.Info("archived working directory", zap.String("archive", dst))
		out = append(out, dst)
	}
	return out, nil
}

// tarDir writes the regular files and directories under src to a
// gzipped tarball at dst, with paths relative to the parent of src.
func tarDir(src, dst string) (err error) {
	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)

	base := filepath.Dir(src)
	err = filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(base, path)
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(rel)
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		in, err := os.Open(path)
		if err != nil {
			return err
		}
		defer in.Close()
		_, err = io.Copy(tw, in)
		return err
	})
	if err != nil {
		return err
	}
	if err := tw.Close(); err != nil {
		return err
	}
	return gz.Close()
}
