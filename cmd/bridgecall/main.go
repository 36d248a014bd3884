// Program bridgecall calls functions exposed by a bridge server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/creachadair/command"
	"github.com/joeydtaylor/steeze-bridge/pkg/client"
	"github.com/joeydtaylor/steeze-bridge/pkg/codec"
	"github.com/joeydtaylor/steeze-bridge/pkg/manifest"
)

var flags struct {
	Server  string
	Prefix  string
	Post    bool
	CBOR    bool
	Timeout time.Duration
}

func main() {
	root := &command.C{
		Name:  filepath.Base(os.Args[0]),
		Usage: "[flags] command [args...]",
		Help:  "Call functions exposed by a bridge server.",

		SetFlags: func(_ *command.Env, fs *flag.FlagSet) {
			fs.StringVar(&flags.Server, "server", envOr("BRIDGE_SERVER", "http://localhost:3000"), "Server base URL")
			fs.StringVar(&flags.Prefix, "prefix", manifest.DefaultDefinitionPrefix, "Definition path prefix")
			fs.BoolVar(&flags.Post, "post", false, "Send arguments as a JSON POST body")
			fs.BoolVar(&flags.CBOR, "cbor", false, "Request CBOR responses")
			fs.DurationVar(&flags.Timeout, "timeout", 30*time.Second, "Timeout per command")
		},

		Commands: []*command.C{
			{
				Name:  "call",
				Usage: "<module> <function> [arg...]",
				Help: `Call a function of a module.

The module definition is fetched first, and the arguments are paired with the
declared parameter names in order. Extra arguments are ignored.`,
				Run: runCall,
			},
			{
				Name:  "def",
				Usage: "<module>",
				Help:  "Print the definition of a module.",
				Run:   runDef,
			},
			command.VersionCommand(),
			command.HelpCommand(nil),
		},
	}
	command.RunOrFail(root.NewEnv(nil).MergeFlags(true), os.Args[1:])
}

func runCall(env *command.Env) error {
	if len(env.Args) < 2 {
		return env.Usagef("missing module or function name")
	}
	ctx, cancel := commandContext()
	defer cancel()

	p, err := client.NewRemote(ctx, flags.Server, env.Args[0], options()...)
	if err != nil {
		return err
	}
	fn := p.Func(env.Args[1])
	if fn == nil {
		return fmt.Errorf("%w: %s.%s", client.ErrUnknownFunction, env.Args[0], env.Args[1])
	}
	args := make([]any, len(env.Args)-2)
	for i, a := range env.Args[2:] {
		args[i] = a
	}
	res, err := fn.Call(ctx, args...)
	if err != nil {
		return err
	}
	var v any
	if err := res.Decode(&v); err != nil {
		return err
	}
	return printJSON(v)
}

func runDef(env *command.Env) error {
	if len(env.Args) != 1 {
		return env.Usagef("expected one module name")
	}
	ctx, cancel := commandContext()
	defer cancel()

	p, err := client.NewRemote(ctx, flags.Server, env.Args[0], options()...)
	if err != nil {
		return err
	}
	return printJSON(p.Definition())
}

func options() []client.Option {
	opts := []client.Option{client.WithDefinitionPrefix(flags.Prefix)}
	if flags.Post {
		opts = append(opts, client.WithMethod(http.MethodPost))
	}
	if flags.CBOR {
		opts = append(opts, client.WithCodec(codec.CBOR))
	}
	return opts
}

func commandContext() (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	ctx, cancel := context.WithTimeout(ctx, flags.Timeout)
	return ctx, func() { cancel(); stop() }
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
