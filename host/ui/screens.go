package ui

import (
	"fmt"
	"iter"
	"strings"

	"github.com/mokiat/gog/opt"
	"github.com/mokiat/lacking/ui"
	co "github.com/mokiat/lacking/ui/component"
	"github.com/mokiat/lacking/ui/layout"
	"github.com/mokiat/lacking/ui/std"

	"github.com/nobonobo/lowpoly-church/host/resources"
)

const (
	fontBold    = "ui:///roboto-bold.ttf"
	fontRegular = "ui:///roboto-regular.ttf"
	fontItalic  = "ui:///roboto-italic.ttf"

	errorLineLength = 80
)

func fill() layout.Data {
	return layout.Data{
		Left:   opt.V(0),
		Right:  opt.V(0),
		Top:    opt.V(0),
		Bottom: opt.V(0),
	}
}

func label(font *ui.Font, size float32, text string) co.Instance {
	return co.New(std.Label, func() {
		co.WithData(std.LabelData{
			Font:      font,
			FontSize:  opt.V(size),
			FontColor: opt.V(ui.White()),
			Text:      text,
		})
	})
}

var ErrorScreen = co.Define[*errorScreenComponent]()

type ErrorScreenData struct {
	App *applicationComponent
}

var _ ui.ElementKeyboardHandler = (*errorScreenComponent)(nil)

type errorScreenComponent struct {
	co.BaseComponent

	titleFont   *ui.Font
	messageFont *ui.Font
	message     string
}

func (c *errorScreenComponent) OnCreate() {
	c.message = formatError(loadingError)
	c.titleFont = co.OpenFont(c.Scope(), fontBold)
	c.messageFont = co.OpenFont(c.Scope(), fontRegular)
}

func (c *errorScreenComponent) Render() co.Instance {
	return co.New(std.Container, func() {
		co.WithData(std.ContainerData{
			BackgroundColor: opt.V(ui.RGB(0x30, 0x10, 0x10)),
			Layout:          layout.Anchor(),
		})

		co.WithChild("handler", co.New(std.Element, func() {
			co.WithLayoutData(fill())
			co.WithData(std.ElementData{
				Essence:       c,
				Enabled:       opt.V(true),
				CanAutoFocus:  opt.V(true),
				CreateFocused: true,
			})
		}))

		co.WithChild("content", co.New(std.Element, func() {
			co.WithLayoutData(layout.Data{
				HorizontalCenter: opt.V(0),
				VerticalCenter:   opt.V(0),
			})
			co.WithData(std.ElementData{
				Layout: layout.Vertical(layout.VerticalSettings{
					ContentAlignment: layout.HorizontalAlignmentCenter,
					ContentSpacing:   40,
				}),
			})
			co.WithChild("title", label(c.titleFont, 48, "ERROR"))
			co.WithChild("message", label(c.messageFont, 24, c.message))
		}))
	})
}

func (c *errorScreenComponent) OnKeyboardEvent(element *ui.Element, event ui.KeyboardEvent) bool {
	if event.Action == ui.KeyboardActionUp && event.Code == ui.KeyCodeEscape {
		co.Window(c.Scope()).Close()
	}
	return true
}

// wrapRunes splits text into lines of at most width runes.
func wrapRunes(text string, width int) iter.Seq[string] {
	return func(yield func(string) bool) {
		runes := []rune(text)
		for len(runes) > width {
			if !yield(string(runes[:width])) {
				return
			}
			runes = runes[width:]
		}
		yield(string(runes))
	}
}

func formatError(err error) string {
	if err == nil {
		err = fmt.Errorf("unknown error")
	}
	var builder strings.Builder
	fmt.Fprintln(&builder, "The viewer has encountered an error. Press ESCAPE to exit.")
	fmt.Fprintln(&builder)
	fmt.Fprint(&builder, "Error: ")
	for line := range wrapRunes(err.Error(), errorLineLength) {
		fmt.Fprintln(&builder, line)
	}
	return builder.String()
}

var LicensesScreen = co.Define[*licensesScreenComponent]()

type LicensesScreenData struct {
	App *applicationComponent
}

type licensesScreenComponent struct {
	co.BaseComponent

	app *applicationComponent
}

func (c *licensesScreenComponent) OnCreate() {
	c.app = co.GetData[LicensesScreenData](c.Properties()).App
}

func (c *licensesScreenComponent) Render() co.Instance {
	return co.New(std.Container, func() {
		co.WithData(std.ContainerData{
			BackgroundColor: opt.V(ui.RGB(0x11, 0x11, 0x11)),
			Layout:          layout.Anchor(),
		})

		co.WithChild("header", co.New(std.Element, func() {
			co.WithLayoutData(layout.Data{
				Top:              opt.V(15),
				HorizontalCenter: opt.V(0),
			})
			co.WithData(std.ElementData{
				Layout: layout.Vertical(layout.VerticalSettings{
					ContentAlignment: layout.HorizontalAlignmentCenter,
					ContentSpacing:   5,
				}),
			})
			co.WithChild("title", label(co.OpenFont(c.Scope(), fontBold), 32, "Open-Source Licenses"))
			co.WithChild("sub-title", label(co.OpenFont(c.Scope(), fontItalic), 20, "- scroll to view all -"))
		}))

		co.WithChild("back", co.New(std.Button, func() {
			co.WithLayoutData(layout.Data{
				Bottom:           opt.V(20),
				HorizontalCenter: opt.V(0),
			})
			co.WithData(std.ButtonData{
				Text: "Back",
			})
			co.WithCallbackData(std.ButtonCallbackData{
				OnClick: c.onBackClicked,
			})
		}))

		co.WithChild("licenses", co.New(std.ScrollPane, func() {
			co.WithLayoutData(layout.Data{
				Top:    opt.V(90),
				Bottom: opt.V(80),
				Left:   opt.V(0),
				Right:  opt.V(0),
			})
			co.WithData(std.ScrollPaneData{
				DisableHorizontal: true,
				CreateFocused:     true,
			})

			co.WithChild("text", co.New(std.Element, func() {
				co.WithLayoutData(layout.Data{
					GrowHorizontally: true,
				})
				co.WithData(std.ElementData{
					Padding: ui.Spacing{Left: 40, Right: 40, Top: 20, Bottom: 20},
					Layout:  layout.Anchor(),
				})
				co.WithChild("content", label(co.OpenFont(c.Scope(), fontRegular), 16, resources.Licenses))
			}))
		}))
	})
}

func (c *licensesScreenComponent) onBackClicked() {
	c.app.SetActiveView(ViewNameHome)
}
