package main

import (
	"errors"
	"fmt"

	"gitlab.com/efronlicht/samplesite/render"
	"gitlab.com/efronlicht/samplesite/sample"
	"go.uber.org/zap"
)

// output names, as they appear in logs and metric labels.
const (
	outArchive  = "archive"
	outFeed     = "rss"
	outSitemap  = "sitemap"
	outHomepage = "homepage"
)

// discover scans dir for samples on behalf of output, counting what it finds.
func (p *program) discover(output, dir string) ([]sample.File, error) {
	files, err := sample.Discover(dir, p.logger.Named(output))
	if err != nil {
		return nil, err
	}
	p.metrics.Discovered.WithLabelValues(output).Set(float64(len(files)))
	for _, f := range files {
		if f.Err != nil {
			p.metrics.ExtractionFailures.WithLabelValues(output).Inc()
		}
	}
	return files, nil
}

// skip reports an output that won't be generated because its input is missing.
// That isn't an error for the run: other outputs don't depend on it.
func (p *program) skip(output string, err error) error {
	p.logger.Error("skipping output", zap.String("output", output), zap.Error(err))
	p.metrics.Skipped.WithLabelValues(output).Inc()
	return nil
}

// write b to path, then report success on stdout.
func (p *program) write(output, path string, b []byte, items int, msg string) error {
	if err := render.WriteFile(path, b); err != nil {
		p.logger.Error("write failed", zap.String("output", output), zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%s: %w", output, err)
	}
	p.metrics.Rendered.WithLabelValues(output).Set(float64(items))
	p.logger.Info("generated", zap.String("output", output), zap.String("path", path), zap.Int("items", items), zap.Int("bytes", len(b)))
	fmt.Fprintln(p.stdout, msg)
	return nil
}

func (p *program) buildArchive(site render.Site, samplesDir, out string) error {
	files, err := p.discover(outArchive, samplesDir)
	if errors.Is(err, sample.ErrDirNotFound) {
		return p.skip(outArchive, err)
	} else if err != nil {
		return err
	}
	b, err := render.Archive(site, files)
	if err != nil {
		return err
	}
	return p.write(outArchive, out, b, len(files), fmt.Sprintf("Generated %s with %d samples", out, len(files)))
}

func (p *program) buildFeed(site render.Site, samplesDir, out string) error {
	files, err := p.discover(outFeed, samplesDir)
	if errors.Is(err, sample.ErrDirNotFound) {
		return p.skip(outFeed, err)
	} else if err != nil {
		return err
	}
	b, err := render.Feed(site, files)
	if err != nil {
		return err
	}
	n := len(sample.Recent(files, site.FeedLimit))
	return p.write(outFeed, out, b, n, fmt.Sprintf("Generated RSS feed %s with %d items", out, n))
}

// buildSitemap still writes the static pages when the samples directory is missing.
func (p *program) buildSitemap(site render.Site, samplesDir, out string) error {
	files, err := p.discover(outSitemap, samplesDir)
	if errors.Is(err, sample.ErrDirNotFound) {
		p.logger.Warn("no samples: sitemap lists the static pages only", zap.Error(err))
	} else if err != nil {
		return err
	}
	b, err := render.Sitemap(site, files)
	if err != nil {
		return err
	}
	n := len(files) + 3
	return p.write(outSitemap, out, b, n, fmt.Sprintf("Generated sitemap %s with %d URLs", out, n))
}

// patchHomepage rewrites the homepage in place. A missing samples directory gets the "browse archive" section.
func (p *program) patchHomepage(site render.Site, samplesDir, index string) error {
	doc, err := render.ReadHomepage(index)
	if errors.Is(err, render.ErrHomepageNotFound) {
		return p.skip(outHomepage, err)
	} else if err != nil {
		return err
	}
	files, err := p.discover(outHomepage, samplesDir)
	if errors.Is(err, sample.ErrDirNotFound) {
		p.logger.Warn("no samples: linking the archive instead", zap.Error(err))
	} else if err != nil {
		return err
	}
	b, err := render.Homepage(site, doc, files)
	if errors.Is(err, render.ErrNoAnchor) {
		return p.skip(outHomepage, fmt.Errorf("%s: %w", index, err))
	} else if err != nil {
		return err
	}
	newest, ok := sample.Newest(files)
	if !ok {
		return p.write(outHomepage, index, b, 0, fmt.Sprintf("Updated %s with archive link (no samples found)", index))
	}
	return p.write(outHomepage, index, b, 1, fmt.Sprintf("Updated %s with latest sample: %s", index, newest.Title))
}
