package widget

import (
	"log/slog"

	"github.com/mokiat/gog/opt"
	"github.com/mokiat/lacking/ui"
	co "github.com/mokiat/lacking/ui/component"
	"github.com/mokiat/lacking/ui/std"
	"github.com/skip2/go-qrcode"
)

var QRCode = co.Define[*qrCodeComponent]()

type QRCodeData struct {
	Text string
	Size int
}

var defaultQRCodeData = QRCodeData{
	Size: 128,
}

type QRCodeCallbackData struct {
	OnClick std.OnActionFunc
}

var defaultQRCodeCallbackData = QRCodeCallbackData{
	OnClick: func() {},
}

var (
	_ ui.ElementRenderHandler = (*qrCodeComponent)(nil)
	_ ui.ElementMouseHandler  = (*qrCodeComponent)(nil)
)

// qrCodeComponent shows Text as a QR code. The image is regenerated only
// when the text or the size change.
type qrCodeComponent struct {
	co.BaseComponent

	data     QRCodeData
	callback QRCodeCallbackData
	image    *ui.Image
}

func (c *qrCodeComponent) OnUpsert() {
	data := co.GetOptionalData(c.Properties(), defaultQRCodeData)
	c.callback = co.GetOptionalCallbackData(c.Properties(), defaultQRCodeCallbackData)
	if data == c.data && c.image != nil {
		return
	}
	c.data = data
	c.updateImage()
}

func (c *qrCodeComponent) OnDelete() {
	if c.image != nil {
		c.image.Destroy()
		c.image = nil
	}
}

func (c *qrCodeComponent) updateImage() {
	if c.image != nil {
		c.image.Destroy()
		c.image = nil
	}
	if c.data.Text == "" {
		return
	}
	code, err := qrcode.New(c.data.Text, qrcode.Medium)
	if err != nil {
		slog.Warn("Failed to encode QR code", "text", c.data.Text, "err", err)
		return
	}
	img, err := c.Scope().Context().CreateImage(code.Image(c.data.Size))
	if err != nil {
		slog.Warn("Failed to create QR code image", "err", err)
		return
	}
	c.image = img
}

func (c *qrCodeComponent) Render() co.Instance {
	return co.New(std.Element, func() {
		co.WithLayoutData(c.Properties().LayoutData())
		co.WithData(std.ElementData{
			Essence:   c,
			Padding:   ui.Spacing{Left: 5, Right: 5, Top: 5, Bottom: 5},
			IdealSize: opt.V(ui.NewSize(c.data.Size, c.data.Size)),
		})
		co.WithChildren(c.Properties().Children())
	})
}

func (c *qrCodeComponent) OnRender(element *ui.Element, canvas *ui.Canvas) {
	bounds := canvas.DrawBounds(element, false)
	canvas.Reset()
	canvas.Rectangle(bounds.Position, bounds.Size)
	canvas.Fill(ui.Fill{
		Rule:        ui.FillRuleSimple,
		Color:       ui.White(),
		Image:       c.image,
		ImageOffset: bounds.Position,
		ImageSize:   bounds.Size,
	})
}

func (c *qrCodeComponent) OnMouseEvent(element *ui.Element, event ui.MouseEvent) bool {
	if event.Action == ui.MouseActionUp && event.Button == ui.MouseButtonLeft {
		c.callback.OnClick()
		return true
	}
	return false
}
