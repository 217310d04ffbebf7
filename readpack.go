// Package readpack copies nanopore read containers.
//
// A readpack file stores reads in batches. Every batch carries its own
// pore-type and end-reason dictionaries and a file-wide list of run infos
// describes the acquisition runs the reads belong to. Copying a file re-reads
// every batch, rebuilds one destination pore-type dictionary and writes the
// reads with a chosen signal compression.
//
// # Basic Usage
//
//	stats, err := readpack.CopyFile("in.readpack", "out.readpack", readpack.CopyConfig{
//	    SignalCompression: format.SignalVBZ,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("copied %d reads in %d batches\n", stats.Rows, stats.Batches)
//
// # Package Structure
//
//   - container: the file reader and writer
//   - copier: dictionary merging and the batch copy loop
//   - section: the on-disk header, batch index and footer
//   - encoding, compress: column, signal and block codecs
//
// CopyFile wraps the common case; use container and copier directly for
// custom sources or destinations.
package readpack

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"

	"github.com/arloliu/readpack/container"
	"github.com/arloliu/readpack/copier"
	"github.com/arloliu/readpack/format"
	"github.com/arloliu/readpack/internal/metrics"
)

// CopyConfig configures CopyFile. The zero value copies with VBZ signals,
// zstd rows, the default creator and PolicyContinue.
type CopyConfig struct {
	SignalCompression format.SignalCompression
	RowCompression    format.CompressionType
	Creator           string
	ErrorPolicy       copier.ErrorPolicy
	Logger            *zap.Logger
	Metrics           *metrics.CopyMetrics
}

func (c CopyConfig) writerOptions() []container.WriterOption {
	var opts []container.WriterOption
	if c.SignalCompression != 0 {
		opts = append(opts, container.WithSignalCompression(c.SignalCompression))
	}
	if c.RowCompression != 0 {
		opts = append(opts, container.WithRowCompression(c.RowCompression))
	}
	if c.Creator != "" {
		opts = append(opts, container.WithCreator(c.Creator))
	}

	return opts
}

// CopyFile copies every read and run info of the container at in into a new
// container at out. An existing file at out is removed first.
//
// Failing to open in or to create out is returned immediately. Errors inside
// batches follow cfg.ErrorPolicy. An error closing either file fails the copy,
// since an unclosed destination has no footer.
func CopyFile(in, out string, cfg CopyConfig) (copier.Stats, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r, err := container.Open(in)
	if err != nil {
		return copier.Stats{}, fmt.Errorf("open input: %w", err)
	}

	if err := os.Remove(out); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return copier.Stats{}, errors.Join(fmt.Errorf("remove existing output: %w", err), r.Close())
	}

	w, err := container.Create(out, cfg.writerOptions()...)
	if err != nil {
		return copier.Stats{}, errors.Join(fmt.Errorf("create output: %w", err), r.Close())
	}

	logger.Info("copying",
		zap.String("input", in),
		zap.String("output", out),
		zap.Uint64("reads", r.ReadCount()),
		zap.Stringer("signal_compression", w.Header().Flag.GetSignalCompression()))

	c, err := copier.New(copier.FromReader(r), w,
		copier.WithLogger(logger),
		copier.WithErrorPolicy(cfg.ErrorPolicy),
		copier.WithMetrics(cfg.Metrics))
	if err != nil {
		return copier.Stats{}, errors.Join(err, w.Close(), r.Close())
	}

	stats, runErr := c.Run()
	if err := errors.Join(runErr, closeWith("output", w.Close()), closeWith("input", r.Close())); err != nil {
		return stats, err
	}

	return stats, nil
}

func closeWith(name string, err error) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("close %s: %w", name, err)
}
