// samplesite generates the pages derived from a directory of HTML samples:
// the archive gallery, the RSS feed, the sitemap, and the "latest sample" section of the homepage.
// Each output can be built on its own; `all` builds every one from the site config.
//
//	USAGE:
//	  samplesite archive  SAMPLES_DIR OUTPUT
//	  samplesite rss      SAMPLES_DIR OUTPUT [BASE_URL]
//	  samplesite sitemap  SAMPLES_DIR OUTPUT [BASE_URL]
//	  samplesite homepage SAMPLES_DIR INDEX_FILE
//	  samplesite [--config site.yaml] all
//
// Exit status is 0 on success, and also when an output is skipped because its input is missing;
// 2 for a wrong number of arguments; 1 when an output can't be written.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"
	"gitlab.com/efronlicht/samplesite/config"
	"gitlab.com/efronlicht/samplesite/observability/logging"
	"gitlab.com/efronlicht/samplesite/observability/meta"
	"gitlab.com/efronlicht/samplesite/observability/metrics"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

// run the command line args, returning the exit status.
func run(args []string, stdout, stderr io.Writer) int {
	p := &program{stdout: stdout, stderr: stderr}
	err := p.app().Run(args)
	if err == nil {
		return 0
	}
	if msg := err.Error(); msg != "" {
		fmt.Fprintln(stderr, msg)
	}
	var ec cli.ExitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	return 1
}

// program is the state shared by every subcommand: set up in Before, torn down in After.
type program struct {
	stdout, stderr io.Writer
	cfg            config.Config
	logger         *zap.Logger
	metrics        *metrics.Run
	closeLog       func()
}

func (p *program) app() *cli.App {
	return &cli.App{
		Name:        "samplesite",
		Usage:       "generate the archive, feed, sitemap and homepage section for a directory of HTML samples",
		Writer:      p.stdout,
		ErrWriter:   p.stderr,
		HideVersion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML site `FILE`", EnvVars: []string{"SAMPLESITE_CONFIG"}},
			&cli.StringFlag{Name: "metrics-file", Usage: "write prometheus metrics to `FILE` on exit"},
		},
		Before: p.setup,
		After:  p.teardown,
		// no subcommand, or one we don't know.
		Action: func(c *cli.Context) error {
			_ = cli.ShowAppHelp(c)
			return cli.Exit("", 2)
		},
		ExitErrHandler: func(*cli.Context, error) {}, // run() owns the exit status
		Commands: []*cli.Command{
			{
				Name:      "archive",
				Usage:     "write the gallery page listing every sample",
				ArgsUsage: "SAMPLES_DIR OUTPUT",
				Action:    p.archiveCmd,
			},
			{
				Name:      "rss",
				Usage:     "write an RSS 2.0 feed of the most recent samples",
				ArgsUsage: "SAMPLES_DIR OUTPUT [BASE_URL]",
				Action:    p.feedCmd,
			},
			{
				Name:      "sitemap",
				Usage:     "write sitemap.xml for the site and every sample",
				ArgsUsage: "SAMPLES_DIR OUTPUT [BASE_URL]",
				Action:    p.sitemapCmd,
			},
			{
				Name:      "homepage",
				Usage:     "insert or refresh the latest-sample section of the homepage, in place",
				ArgsUsage: "SAMPLES_DIR INDEX_FILE",
				Action:    p.homepageCmd,
			},
			{
				Name:   "all",
				Usage:  "build every output using the paths in the site config",
				Action: p.allCmd,
			},
		},
	}
}

func (p *program) setup(c *cli.Context) error {
	// config.Load reports env fallbacks through the standard log package,
	// so a logger on p.stderr has to exist before the configured one can be built.
	bootLevel, err := zapcore.ParseLevel(os.Getenv(config.EnvLogLevel))
	if err != nil {
		bootLevel = zapcore.InfoLevel
	}
	_, closeBoot := logging.New(p.stderr, bootLevel)
	cfg, err := config.Load(c.String("config"))
	closeBoot()
	if err != nil {
		return err
	}
	if f := c.String("metrics-file"); f != "" {
		cfg.MetricsFile = f
	}
	p.cfg = cfg
	run := meta.New(c.App.Name)
	logger, closeLog := logging.New(p.stderr, cfg.LogLevel)
	p.logger, p.closeLog = logger.With(zap.String("run_id", run.RunID)), closeLog
	p.logger.Info("run metadata", zap.Object("meta", run))
	p.metrics = metrics.New()
	return nil
}

func (p *program) teardown(*cli.Context) error {
	if p.logger == nil { // setup never finished
		return nil
	}
	defer p.closeLog()
	if p.cfg.MetricsFile == "" {
		return nil
	}
	if err := p.metrics.WriteTextfile(p.cfg.MetricsFile); err != nil {
		p.logger.Error("metrics not written", zap.Error(err))
		return err
	}
	p.logger.Debug("wrote metrics", zap.String("path", p.cfg.MetricsFile))
	return nil
}

// usage is the error for a wrong number of positional arguments.
func usage(c *cli.Context) error {
	return cli.Exit(fmt.Sprintf("usage: %s %s %s", c.App.Name, c.Command.Name, c.Command.ArgsUsage), 2)
}

func (p *program) archiveCmd(c *cli.Context) error {
	if c.NArg() != 2 {
		return usage(c)
	}
	return p.buildArchive(p.cfg.Site, c.Args().Get(0), c.Args().Get(1))
}

func (p *program) feedCmd(c *cli.Context) error {
	if c.NArg() < 2 || c.NArg() > 3 {
		return usage(c)
	}
	site := p.cfg.Site
	if c.NArg() == 3 {
		site.BaseURL = c.Args().Get(2)
	}
	return p.buildFeed(site, c.Args().Get(0), c.Args().Get(1))
}

func (p *program) sitemapCmd(c *cli.Context) error {
	if c.NArg() < 2 || c.NArg() > 3 {
		return usage(c)
	}
	site := p.cfg.Site
	if c.NArg() == 3 {
		site.BaseURL = c.Args().Get(2)
	}
	return p.buildSitemap(site, c.Args().Get(0), c.Args().Get(1))
}

func (p *program) homepageCmd(c *cli.Context) error {
	if c.NArg() != 2 {
		return usage(c)
	}
	return p.patchHomepage(p.cfg.Site, c.Args().Get(0), c.Args().Get(1))
}

// allCmd builds every output. A failure to write one doesn't stop the others.
func (p *program) allCmd(c *cli.Context) error {
	if c.NArg() != 0 {
		return usage(c)
	}
	site, paths := p.cfg.Site, p.cfg.Paths
	return errors.Join(
		p.buildArchive(site, paths.Samples, paths.Archive),
		p.buildFeed(site, paths.Samples, paths.Feed),
		p.buildSitemap(site, paths.Samples, paths.Sitemap),
		p.patchHomepage(site, paths.Samples, paths.Homepage),
	)
}
