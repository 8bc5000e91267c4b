package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/nobonobo/lowpoly-church/postfx"
	"github.com/nobonobo/lowpoly-church/raster"
	"github.com/nobonobo/lowpoly-church/schema"
	"github.com/nobonobo/lowpoly-church/stage"
)

const watchDebounce = 200 * time.Millisecond

// frameVerb matches the integer verb of numbered output names, such as
// %d or %03d.
var frameVerb = regexp.MustCompile(`%[0-9]*d`)

type snapshotOptions struct {
	output     string
	frames     int
	fps        float64
	width      int
	height     int
	pixelRatio float64
	workers    int
	shadowMap  int
	watch      bool
}

func newSnapshotCommand(root *rootOptions) *cobra.Command {
	opts := &snapshotOptions{}
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Render the scene headless to an image",
		Long: "Render the scene headless to an image. With --frames the animation is\n" +
			"advanced by 1/fps seconds per frame. If the output name contains a\n" +
			"%d verb every frame is written, otherwise only the last one.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.frames < 1 {
				return errors.New("--frames must be at least 1")
			}
			if opts.fps <= 0 {
				return errors.New("--fps must be positive")
			}
			if opts.watch && root.layoutFile == "" {
				return errors.New("--watch requires --layout")
			}
			if err := opts.snapshot(root); err != nil {
				return err
			}
			if !opts.watch {
				return nil
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return opts.watchLayout(ctx, root)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&opts.output, "output", "o", "church.png", "output image (.png or .jpg)")
	flags.IntVar(&opts.frames, "frames", 1, "frames to render")
	flags.Float64Var(&opts.fps, "fps", 30, "frames per second of animation time")
	flags.IntVar(&opts.width, "width", 0, "viewport width, defaults to the layout output")
	flags.IntVar(&opts.height, "height", 0, "viewport height, defaults to the layout output")
	flags.Float64Var(&opts.pixelRatio, "pixel-ratio", 0, "device pixel ratio, defaults to the layout output")
	flags.IntVar(&opts.workers, "workers", 0, "render workers, defaults to GOMAXPROCS")
	flags.IntVar(&opts.shadowMap, "shadow-map", 0, "shadow map resolution")
	flags.BoolVarP(&opts.watch, "watch", "w", false, "render again whenever the layout file changes")
	return cmd
}

func (o *snapshotOptions) rendererOptions() []raster.Option {
	var result []raster.Option
	if o.workers > 0 {
		result = append(result, raster.WithWorkers(o.workers))
	}
	if o.shadowMap > 0 {
		result = append(result, raster.WithShadowMapSize(o.shadowMap))
	}
	return result
}

func (o *snapshotOptions) stageOptions(l *schema.Layout) []stage.Option {
	var result []stage.Option
	if o.width > 0 || o.height > 0 {
		width, height := l.Output.Width, l.Output.Height
		if o.width > 0 {
			width = o.width
		}
		if o.height > 0 {
			height = o.height
		}
		result = append(result, stage.WithSize(width, height))
	}
	if o.pixelRatio > 0 {
		result = append(result, stage.WithPixelRatio(o.pixelRatio))
	}
	return result
}

// frameSource is the last stage of the render chain.
type frameSource interface {
	Frame() *image.RGBA
}

func (o *snapshotOptions) snapshot(root *rootOptions) error {
	l, err := root.load()
	if err != nil {
		return err
	}

	renderer := raster.New(o.rendererOptions()...)
	var output frameSource = renderer
	stageOpts := o.stageOptions(l)
	if composer := postfx.ForLayout(l, renderer); composer != nil {
		stageOpts = append(stageOpts, stage.WithComposer(composer))
		output = composer
	}
	ctx, err := stage.New(l, renderer, stageOpts...)
	if err != nil {
		return err
	}

	numbered := frameVerb.MatchString(o.output)
	start := time.Now()
	dt := 1 / o.fps
	for i := range o.frames {
		step := dt
		if i == 0 {
			step = 0
		}
		if err := ctx.Frame(step); err != nil {
			return err
		}
		if numbered {
			if err := save(fmt.Sprintf(o.output, i), output.Frame()); err != nil {
				return err
			}
		}
	}
	if !numbered {
		if err := save(o.output, output.Frame()); err != nil {
			return err
		}
	}

	width, height := ctx.Size()
	slog.Info("Rendered snapshot",
		slog.String("layout", l.Name),
		slog.String("output", o.output),
		slog.Int("frames", o.frames),
		slog.Int("width", width),
		slog.Int("height", height),
		slog.Float64("pixelRatio", ctx.PixelRatio()),
		slog.Duration("took", time.Since(start)),
	)
	return nil
}

func save(path string, img *image.RGBA) error {
	if img == nil {
		return errors.New("no frame was rendered")
	}
	var encoder imgio.Encoder
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		encoder = imgio.PNGEncoder()
	case ".jpg", ".jpeg":
		encoder = imgio.JPEGEncoder(95)
	default:
		return fmt.Errorf("unsupported image extension %q", filepath.Ext(path))
	}
	if err := imgio.Save(path, img, encoder); err != nil {
		return fmt.Errorf("failed to save %q: %w", path, err)
	}
	return nil
}

// watchLayout renders again after every burst of changes to the layout
// file. The directory is watched because editors often replace files
// instead of writing them in place.
func (o *snapshotOptions) watchLayout(ctx context.Context, root *rootOptions) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	target, err := filepath.Abs(root.layoutFile)
	if err != nil {
		return fmt.Errorf("failed to resolve layout path: %w", err)
	}
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch %q: %w", filepath.Dir(target), err)
	}
	slog.Info("Watching layout", slog.String("file", target))

	timer := time.NewTimer(watchDebounce)
	timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				continue
			}
			timer.Reset(watchDebounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Watcher error", slog.String("error", err.Error()))
		case <-timer.C:
			if err := o.snapshot(root); err != nil {
				// keep watching so the next save can fix the layout
				slog.Error("Snapshot failed", slog.String("error", err.Error()))
			}
		}
	}
}
