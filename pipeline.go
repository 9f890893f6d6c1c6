package csimage

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// Extension is the file extension given to containers written by Scan.
const Extension = ".csimage"

const scanWorkers = 8

var sourceExtensions = map[string]struct{}{
	".bmp":  {},
	".gif":  {},
	".jpeg": {},
	".jpg":  {},
	".png":  {},
	".tif":  {},
	".tiff": {},
	".webp": {},
}

func outputPath(file string) string {
	return strings.TrimSuffix(file, filepath.Ext(file)) + Extension
}

func (c *Converter) findFiles(ctx context.Context, base string) (<-chan string, <-chan error) {
	out := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		errc <- filepath.Walk(base, func(file string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			// Ignore hidden files and directories below base, this also
			// skips our own temporary files
			if file != base && info.Name()[0] == '.' {
				if info.Mode().IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if !info.Mode().IsRegular() {
				return nil
			}

			if _, ok := sourceExtensions[strings.ToLower(filepath.Ext(file))]; !ok {
				return nil
			}

			select {
			case out <- file:
			case <-ctx.Done():
				return ctx.Err()
			}

			return nil
		})
	}()
	return out, errc
}

type scanState struct {
	mu     sync.Mutex
	stats  []Stats
	failed int
	total  int
}

func (c *Converter) scanFile(file string, o Options, manifest *Manifest, state *scanState) error {
	dst := outputPath(file)

	var sha string
	if manifest != nil {
		var err error
		if sha, err = hashFile(file); err != nil {
			return err
		}

		r, err := manifest.Lookup(file)
		if err != nil {
			return err
		}
		if r != nil && r.SHA1 == sha && r.Options == o.String() && r.Output == dst {
			if _, err := os.Stat(dst); err == nil {
				c.reporter.Infof("Skipping unchanged %s", file)
				return nil
			}
		}
	}

	res, err := c.ConvertFile(file, dst, o)

	state.mu.Lock()
	state.total++
	if err == nil {
		state.stats = append(state.stats, res.Stats)
	}
	state.mu.Unlock()

	if err != nil {
		var ioErr *IOError
		if errors.As(err, &ioErr) {
			return err
		}
		// Already reported, carry on with the next file
		state.mu.Lock()
		state.failed++
		state.mu.Unlock()
		return nil
	}

	if manifest == nil {
		return nil
	}

	h := res.Container.Header
	return manifest.Put(&Record{
		Source:           file,
		SHA1:             sha,
		Options:          o.String(),
		Output:           dst,
		Format:           h.Format,
		Compression:      h.Compression,
		Checksum:         h.Checksum,
		UncompressedSize: int64(h.UncompressedSize),
		FinalSize:        int64(h.FinalSize),
	})
}

func (c *Converter) scanWorker(ctx context.Context, in <-chan string, o Options, manifest *Manifest, state *scanState) <-chan error {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for {
			select {
			case <-ctx.Done():
				return
			case file, ok := <-in:
				if !ok {
					return
				}
				if err := c.scanFile(file, o, manifest, state); err != nil {
					errc <- err
					return
				}
			}
		}
	}()
	return errc
}

// waitForPipeline returns the first error from errs. The pipeline is
// cancelled on that error and every channel is drained before returning so
// no stage is still running afterwards.
func (c *Converter) waitForPipeline(cancelFunc context.CancelFunc, errs ...<-chan error) error {
	var first error
	for err := range mergeErrors(errs...) {
		if err == nil {
			continue
		}
		if first == nil {
			first = err
			cancelFunc()
			continue
		}

		// Write failures were reported when they happened
		var ioErr *IOError
		if errors.Is(err, context.Canceled) || errors.As(err, &ioErr) {
			continue
		}
		c.reporter.Errorf("%v", err)
	}
	return first
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// Scan converts every supported image under path, writing each container
// next to its source with the Extension suffix. If manifest is not nil,
// sources whose contents and options are unchanged since the last recorded
// conversion are skipped.
//
// Images that fail to decode or cannot be converted with o are reported
// and skipped; Scan carries on and returns an error once every file has
// been tried. A write failure stops the scan, Scan returns once every file
// already being converted has finished.
func (c *Converter) Scan(path string, o Options, manifest *Manifest) ([]Stats, error) {
	dir, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	state := new(scanState)

	var errcList []<-chan error

	files, errc := c.findFiles(ctx, dir)
	errcList = append(errcList, errc)

	for i := 0; i < scanWorkers; i++ {
		errcList = append(errcList, c.scanWorker(ctx, files, o, manifest, state))
	}

	if err := c.waitForPipeline(cancelFunc, errcList...); err != nil {
		return nil, err
	}

	sort.Slice(state.stats, func(i, j int) bool { return state.stats[i].Path < state.stats[j].Path })

	if state.failed > 0 {
		return state.stats, errors.Errorf("csimage: %d of %d images failed to convert", state.failed, state.total)
	}

	return state.stats, nil
}
