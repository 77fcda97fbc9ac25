package renderer

import _ "embed"

//go:embed shaders/grass.vs
var grassVS string

//go:embed shaders/grass.fs
var grassFS string

//go:embed shaders/background.fs
var backgroundFS string
