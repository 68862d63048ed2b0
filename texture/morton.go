package texture

// Spread the low three bits of v so they occupy the even bit positions
func spread3(v int) int {
	v &= 0x7
	v = (v | v<<2) & 0x13
	v = (v | v<<1) & 0x15
	return v
}

// morton returns the storage index of the pixel at (x, y) within a tile
func morton(x, y int) int {
	return spread3(x) | spread3(y)<<1
}

// Raster index within a tile to storage index
var tileOrder [tilePixels]int

func init() {
	for y := 0; y < tileHeight; y++ {
		for x := 0; x < tileWidth; x++ {
			tileOrder[y*tileWidth+x] = morton(x, y)
		}
	}
}

// pixelIndex returns the storage index of the pixel at (x, y) in a texture
// that is width pixels wide
func pixelIndex(x, y, width int) int {
	tile := (y/tileHeight)*(width/tileWidth) + x/tileWidth
	return tile*tilePixels + tileOrder[(y%tileHeight)*tileWidth+x%tileWidth]
}
