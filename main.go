package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/disintegration/imaging"

	"github.com/mahirjain10/image-dimension-converter/config"
	"github.com/mahirjain10/image-dimension-converter/internal/handlers"
	"github.com/mahirjain10/image-dimension-converter/internal/naming"
	"github.com/mahirjain10/image-dimension-converter/internal/preview"
	"github.com/mahirjain10/image-dimension-converter/internal/types"
	"github.com/mahirjain10/image-dimension-converter/internal/utils"
	"github.com/mahirjain10/image-dimension-converter/internal/watcher"
)

const usage = `usage:
  image-dimension-converter [flags] <image_path> [output_folder]
  image-dimension-converter watch [flags] <dir> [output_folder]
  image-dimension-converter preview [-o thumb.png] <image_path>...
  image-dimension-converter names [-pattern p] [-start n] [-dims] [-image path]

An image file named watch, preview or names is read as a sub-command; give
it with a path prefix instead, e.g. ./watch.`

type App struct {
	config        *config.Config
	resizeHandler *handlers.ResizeHandler
	previewer     *preview.Previewer
}

// NewApp loads the configuration and builds the shared services
func NewApp(profile string) (*App, error) {
	cfg, err := config.InitializeEnvs(profile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize config: %w", err)
	}

	return &App{
		config:        cfg,
		resizeHandler: handlers.NewResizeHandler(log.Default()),
		previewer:     preview.NewPreviewer(preview.NewCache(cfg.PreviewCacheSize)),
	}, nil
}

// requestFlags are the flags shared by the resize and watch commands. They
// override the loaded configuration only when set on the command line.
type requestFlags struct {
	profile string
	sizes   string
	pattern string
	format  string
	start   int
	dims    bool
	asJSON  bool
}

func bindRequestFlags(fs *flag.FlagSet) *requestFlags {
	f := &requestFlags{}
	fs.StringVar(&f.profile, "profile", "", "YAML profile with default settings")
	fs.StringVar(&f.sizes, "sizes", "", "comma separated sizes, e.g. 16,32,64")
	fs.StringVar(&f.pattern, "pattern", "", "naming pattern using {name} and {num}")
	fs.StringVar(&f.format, "format", "", "output format: original, png, jpeg, gif, ico, webp")
	fs.IntVar(&f.start, "start", 1, "first value of {num}")
	fs.BoolVar(&f.dims, "dims", true, "append _WxH to custom names")
	fs.BoolVar(&f.asJSON, "json", false, "print the report as JSON")
	return f
}

// apply copies the flags that were explicitly set onto cfg.
func (f *requestFlags) apply(fs *flag.FlagSet, cfg *config.Config) error {
	var err error
	fs.Visit(func(fl *flag.Flag) {
		if err != nil {
			return
		}
		switch fl.Name {
		case "sizes":
			cfg.Sizes, err = config.ParseSizes(f.sizes)
		case "pattern":
			cfg.NamingPattern = f.pattern
		case "format":
			cfg.Format = f.format
		case "start":
			cfg.StartNumber = f.start
		case "dims":
			cfg.IncludeDimensions = f.dims
		}
	})
	return err
}

// checkRequest rejects requests the resize routine should never see.
func checkRequest(req types.ResizeRequest) error {
	if len(req.Sizes) == 0 {
		return errors.New("please specify at least one size")
	}
	for _, s := range req.Sizes {
		if s <= 0 {
			return fmt.Errorf("invalid size %d: sizes must be positive", s)
		}
	}
	if req.NamingPattern != "" {
		if err := naming.Validate(req.NamingPattern); err != nil {
			return fmt.Errorf("invalid naming pattern: %w", err)
		}
	}
	return nil
}

// prepare parses the flags of the resize and watch commands, then builds the
// app with the flags applied over its configuration.
func prepare(fs *flag.FlagSet, args []string) (*App, *requestFlags, []string, error) {
	f := bindRequestFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, nil, nil, err
	}

	app, err := NewApp(f.profile)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := f.apply(fs, app.config); err != nil {
		return nil, nil, nil, err
	}
	return app, f, fs.Args(), nil
}

func (a *App) request(inputPath string, rest []string) (types.ResizeRequest, error) {
	if len(rest) > 0 {
		a.config.OutputDir = rest[0]
	}
	req, err := a.config.ResizeRequest(inputPath)
	if err != nil {
		return req, err
	}
	return req, checkRequest(req)
}

func runResize(args []string) error {
	fs := flag.NewFlagSet("image-dimension-converter", flag.ContinueOnError)
	app, f, rest, err := prepare(fs, args)
	if err != nil {
		return err
	}
	if len(rest) < 1 || len(rest) > 2 {
		return errors.New(usage)
	}

	req, err := app.request(rest[0], rest[1:])
	if err != nil {
		return err
	}

	report, err := app.resizeHandler.Resize(req)
	if f.asJSON {
		printJSON(report)
	}
	return err
}

func runWatch(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	app, f, rest, err := prepare(fs, args)
	if err != nil {
		return err
	}
	if len(rest) < 1 || len(rest) > 2 {
		return errors.New(usage)
	}

	tmpl, err := app.request("", rest[1:])
	if err != nil {
		return err
	}

	debounce := time.Duration(app.config.WatchDebounceMs) * time.Millisecond
	w, err := watcher.NewWatcher(rest[0], tmpl, app.resizeHandler, app.previewer, debounce)
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case ev, ok := <-w.Events():
			if !ok {
				return nil
			}
			if f.asJSON {
				printJSON(ev.Report)
			}
		case <-sig:
			log.Println("Stopping watcher")
			return w.Stop()
		}
	}
}

func runPreview(args []string) error {
	fs := flag.NewFlagSet("preview", flag.ContinueOnError)
	out := fs.String("o", "", "save the last thumbnail to this file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New(usage)
	}

	app, err := NewApp("")
	if err != nil {
		return err
	}

	var last *preview.Entry
	for _, path := range fs.Args() {
		entry, cached, err := app.previewer.Load(path)
		if err != nil {
			return err
		}
		suffix := ""
		if cached {
			suffix = " (cached)"
		}
		fmt.Printf("%s: %s%s\n", path, entry.Dimensions(), suffix)
		last = entry
	}

	if *out != "" {
		if err := imaging.Save(last.Thumbnail, *out); err != nil {
			return fmt.Errorf("failed to save thumbnail: %w", err)
		}
		log.Printf("Saved thumbnail %s", *out)
	}
	return nil
}

func runNames(args []string) error {
	fs := flag.NewFlagSet("names", flag.ContinueOnError)
	pattern := fs.String("pattern", "", "naming pattern using {name} and {num}")
	start := fs.Int("start", 1, "first value of {num}")
	dims := fs.Bool("dims", true, "append _WxH to custom names")
	image := fs.String("image", "", "use this file's name in the preview")
	if err := fs.Parse(args); err != nil {
		return err
	}

	lines, err := nameExamples(*pattern, *start, *dims, *image)
	if err != nil {
		return err
	}
	for _, line := range lines {
		fmt.Println(line)
	}
	return nil
}

// nameExamples renders the filenames a pattern would produce. With an image
// path the preview uses its name, otherwise a fixed set of sample names.
func nameExamples(pattern string, start int, dims bool, imagePath string) ([]string, error) {
	if pattern == "" {
		name := "sample"
		if imagePath != "" {
			name, _ = utils.SplitName(imagePath)
		}
		return []string{naming.Scheme{}.Filename(name, 0, 64, ".png")}, nil
	}
	if err := naming.Validate(pattern); err != nil {
		return nil, err
	}
	if imagePath != "" {
		name, _ := utils.SplitName(imagePath)
		example, err := naming.Preview(pattern, name, start, dims)
		if err != nil {
			return nil, err
		}
		return []string{example}, nil
	}
	return naming.Samples(pattern, start, dims)
}

func printJSON(report *types.Report) {
	if report == nil {
		return
	}
	data, err := utils.SerializeJSON(report)
	if err != nil {
		log.Printf("Error serializing report: %v", err)
		return
	}
	fmt.Println(string(data))
}

func run(args []string) error {
	if len(args) > 0 {
		switch args[0] {
		case "watch":
			return runWatch(args[1:])
		case "preview":
			return runPreview(args[1:])
		case "names":
			return runNames(args[1:])
		}
	}
	return runResize(args)
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		log.Fatalf("Error: %v", err)
	}
}
