package visibility

// lineClear walks the Bresenham line from (x0, y0) to (x1, y1) and reports
// whether no vision-blocking cell lies strictly between the endpoints. The
// endpoints themselves are never tested, so a blocking tile is still
// visible from an adjacent open tile.
func lineClear(src TileSource, x0, y0, x1, y1 int) bool {
	dx := absInt(x1 - x0)
	dy := -absInt(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}

	err := dx + dy
	x, y := x0, y0

	for {
		if x == x1 && y == y1 {
			return true
		}
		if (x != x0 || y != y0) && src.BlocksVision(x, y) {
			return false
		}

		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
