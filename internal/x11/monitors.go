package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
)

// Monitor is one lit CRTC and the name of its first output.
type Monitor struct {
	Name    string
	X, Y    int
	Width   int
	Height  int
	Primary bool
}

// Monitors lists the active RandR outputs in CRTC order.
func (c *Connection) Monitors() ([]Monitor, error) {
	xc := c.XUtil.Conn()
	if err := randr.Init(xc); err != nil {
		return nil, fmt.Errorf("randr unavailable: %w", err)
	}

	res, err := randr.GetScreenResourcesCurrent(xc, c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var primary randr.Output
	if p, err := randr.GetOutputPrimary(xc, c.Root).Reply(); err == nil {
		primary = p.Output
	}

	monitors := make([]Monitor, 0, len(res.Crtcs))
	for idx, crtc := range res.Crtcs {
		info, err := randr.GetCrtcInfo(xc, crtc, res.ConfigTimestamp).Reply()
		if err != nil || info.Mode == 0 || len(info.Outputs) == 0 {
			continue
		}

		m := Monitor{
			Name:   fmt.Sprintf("crtc-%d", idx),
			X:      int(info.X),
			Y:      int(info.Y),
			Width:  int(info.Width),
			Height: int(info.Height),
		}
		for _, out := range info.Outputs {
			if out == primary && primary != 0 {
				m.Primary = true
			}
		}
		if oi, err := randr.GetOutputInfo(xc, info.Outputs[0], res.ConfigTimestamp).Reply(); err == nil && len(oi.Name) > 0 {
			m.Name = string(oi.Name)
		}
		monitors = append(monitors, m)
	}
	return monitors, nil
}
