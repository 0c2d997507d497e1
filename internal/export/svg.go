package export

import (
	"fmt"
	"os"
	"strings"

	"github.com/san-kum/gravsim/internal/render"
)

const background = "#000000"

// FrameToSVG draws sprites in order as circles on a black background.
func FrameToSVG(sprites []render.Sprite, vp render.Viewport) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, vp.Width, vp.Height, vp.Width, vp.Height, background))

	for _, s := range sprites {
		cx, cy := vp.ToScreen(s.Center)
		color := s.Color
		if color == "" {
			color = "#ffffff"
		}
		sb.WriteString(fmt.Sprintf(`<circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s" fill-opacity="%.3f"/>
`, cx, cy, vp.Radius(s.Radius), color, s.Alpha))
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

func WriteSVG(path string, sprites []render.Sprite, vp render.Viewport) error {
	return os.WriteFile(path, []byte(FrameToSVG(sprites, vp)), 0644)
}
