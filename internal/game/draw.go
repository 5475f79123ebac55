package game

import (
	"fmt"
	"image/color"

	"chosenoffset.com/tilemap/internal/render"
)

// Draw renders the game to the screen.
func (g *Game) Draw(screen render.Image) {
	screen.Fill(g.Background)
	g.Layer.Draw(screen, g.Textures)

	g.drawCenterMarker(screen)
	g.drawUI(screen)
	if g.ShowDebug {
		g.drawHUD(screen)
	}
}

func (g *Game) drawCenterMarker(screen render.Image) {
	if g.Map == nil {
		return
	}
	w, h := screen.Size()
	radius := float32(float64(g.Map.TileSize())*g.Map.Zoom()) / 2
	g.Renderer.StrokeCircle(screen, float32(w)/2, float32(h)/2, radius, 2, color.RGBA{255, 255, 100, 200})
}

func (g *Game) drawUI(screen render.Image) {
	// Draw on-screen messages
	y := 80.0
	for _, msg := range g.Messages {
		alpha := uint8(255 * (msg.TimeLeft / msg.MaxTime))
		g.Renderer.DrawText(screen, msg.Text, 20, int(y), color.RGBA{255, 255, 255, alpha}, 1.0)
		y += 20
	}
}

func (g *Game) drawHUD(screen render.Image) {
	if g.Map == nil {
		return
	}
	cx, cy := g.Map.CenterTile()
	lines := []string{
		fmt.Sprintf("center (%d, %d)", cx, cy),
		fmt.Sprintf("zoom %.3f", g.Map.Zoom()),
		fmt.Sprintf("tiles %d", g.Map.Len()),
	}
	if line := g.centerTileInfo(cx, cy); line != "" {
		lines = append(lines, line)
	}

	y := 10
	for _, line := range lines {
		g.Renderer.DrawText(screen, line, 10, y, color.White, 1.0)
		_, h := g.Renderer.MeasureText(line, 1.0)
		y += h + 4
	}
}

// centerTileInfo describes the content under the center marker.
func (g *Game) centerTileInfo(x, y int) string {
	content, ok := g.Map.Content(x, y)
	if !ok {
		return "loading..."
	}
	if g.Tiles == nil {
		return content
	}
	def, err := g.Tiles.GetTile(content)
	if err != nil {
		return content + " (no texture)"
	}
	kind := def.GetTilePropertyString("kind", "unknown")
	if !def.GetTilePropertyBool("walkable", false) {
		return fmt.Sprintf("%s [%s, blocked]", content, kind)
	}
	return fmt.Sprintf("%s [%s, move cost %d]", content, kind, def.GetTilePropertyInt("move_cost", 1))
}
