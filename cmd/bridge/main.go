// Program bridge serves the modules in internal/api over HTTP.
package main

import (
	_ "github.com/joeydtaylor/steeze-bridge/internal/api"
	"github.com/joeydtaylor/steeze-bridge/pkg/serverfx"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		serverfx.Module(serverfx.DefaultOptions()),
	).Run()
}
