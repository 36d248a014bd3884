package api

import "github.com/joeydtaylor/steeze-bridge/pkg/module"

// Math is served as /math/add.
var Math = module.New("math").
	Export("add", Add, "val1", "val2")

func init() { module.MustRegister(Math) }

// Add returns val1 + val2.
func Add(val1, val2 int) int { return val1 + val2 }
