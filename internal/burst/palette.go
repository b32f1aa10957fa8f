package burst

import "image/color"

// palette is the neon set notes and connections draw from.
var palette = []color.RGBA{
	{R: 0x00, G: 0xff, B: 0x00, A: 0xff},
	{R: 0x00, G: 0xff, B: 0xff, A: 0xff},
	{R: 0xff, G: 0x00, B: 0xff, A: 0xff},
	{R: 0xff, G: 0xff, B: 0x00, A: 0xff},
}

var glyphs = []rune{'♪', '♫', '♩', '♬', '♭', '♮', '♯'}
