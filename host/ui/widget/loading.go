package widget

import (
	"strings"
	"time"

	"github.com/mokiat/gog/opt"
	"github.com/mokiat/gomath/sprec"
	"github.com/mokiat/lacking/ui"
	co "github.com/mokiat/lacking/ui/component"
	"github.com/mokiat/lacking/ui/std"
)

const (
	loadingDots     = 3
	loadingTick     = 400 * time.Millisecond
	loadingFontSize = 36.0
)

var Loading = co.Define[*loadingComponent]()

type LoadingData struct {
	Text  string
	Color ui.Color
}

var defaultLoadingData = LoadingData{
	Text:  "Loading",
	Color: ui.White(),
}

// loadingComponent draws Text followed by a growing row of dots. The
// element is sized for the longest frame so that the text does not shift.
type loadingComponent struct {
	co.BaseComponent

	data    LoadingData
	elapsed time.Duration
	frames  [][]rune

	font    *ui.Font
	maxSize sprec.Vec2
}

func (c *loadingComponent) OnCreate() {
	c.font = co.OpenFont(c.Scope(), "ui:///roboto-bold.ttf")
}

func (c *loadingComponent) OnUpsert() {
	c.data = co.GetOptionalData(c.Properties(), defaultLoadingData)
	c.frames = c.frames[:0]
	for dots := 0; dots <= loadingDots; dots++ {
		c.frames = append(c.frames, []rune(c.data.Text+strings.Repeat(".", dots)))
	}
	longest := c.frames[len(c.frames)-1]
	c.maxSize = sprec.Vec2{
		X: c.font.LineWidth(longest, loadingFontSize),
		Y: c.font.LineHeight(loadingFontSize),
	}
}

func (c *loadingComponent) Render() co.Instance {
	return co.New(std.Element, func() {
		co.WithData(std.ElementData{
			Essence:   c,
			IdealSize: opt.V(ui.NewSize(int(c.maxSize.X), int(c.maxSize.Y))),
		})
		co.WithLayoutData(c.Properties().LayoutData())
		co.WithChildren(c.Properties().Children())
	})
}

func (c *loadingComponent) OnRender(element *ui.Element, canvas *ui.Canvas) {
	c.elapsed += canvas.ElapsedTime()
	frame := c.frames[int(c.elapsed/loadingTick)%len(c.frames)]

	bounds := canvas.DrawBounds(element, false)
	canvas.Push()
	canvas.Translate(bounds.Position)
	// left aligned within the widest frame
	canvas.Translate(sprec.Vec2{
		X: (bounds.Size.X - c.maxSize.X) / 2,
		Y: (bounds.Size.Y - c.maxSize.Y) / 2,
	})
	canvas.FillTextLine(frame, sprec.ZeroVec2(), ui.Typography{
		Font:  c.font,
		Size:  loadingFontSize,
		Color: c.data.Color,
	})
	canvas.Pop()

	element.Invalidate()
}
