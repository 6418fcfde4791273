/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

// Command pxrutil inspects the block registry and the type conversion table
// of a pxr host process.
//
// Usage:
//
//	pxrutil [flags] blocks
//	pxrutil [flags] exists <path>
//	pxrutil [flags] make [-call name] <path> [args...]
//	pxrutil [flags] conversions <type>
//
// Every root flag can also be set through a PXR_ prefixed environment
// variable, e.g. PXR_LOG_LEVEL=debug.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"dirpx.dev/pxr"
	"dirpx.dev/pxr/blocks"
	"dirpx.dev/pxr/config"
	"dirpx.dev/pxr/logging"

	_ "dirpx.dev/pxr/bridge"
	"dirpx.dev/pxr/internal/mathblocks"
	_ "dirpx.dev/pxr/managed"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "pxrutil:", err)
		}
		os.Exit(1)
	}
}

// rootConfig holds the flags shared by every subcommand.
type rootConfig struct {
	configPath string
	logLevel   string
	env        string
	out        io.Writer
	log        logging.Logger
}

func (c *rootConfig) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "", "pxr.toml configuration file")
	fs.StringVar(&c.logLevel, "log-level", "", "log level (debug, info, warn, error); overrides the config file")
	fs.StringVar(&c.env, "env", "managed", "environment kind used by make (managed, bridge)")
}

// setup applies the configuration file and logging flags to the process.
func (c *rootConfig) setup() error {
	cfg := config.DefaultConfig()
	lc := logging.DefaultLoggerConfig()
	if c.configPath != "" {
		f, err := config.Load(c.configPath)
		if err != nil {
			return err
		}
		cfg = f.Config()
		lc = f.LoggerConfig()
	}
	if c.logLevel != "" {
		lvl, err := logging.ParseLevel(c.logLevel)
		if err != nil {
			return err
		}
		lc.Level = lvl
	}
	lc.Component = "pxrutil"

	c.log = logging.NewLogger(lc)
	logging.SetDefault(c.log)
	pxr.SetConfig(cfg)
	blocks.Initialize(blocks.WithLogger(c.log))

	if err := mathblocks.Err(); err != nil {
		c.log.Warn("pxrutil.registrations", "error", err)
	}
	return nil
}

func run(ctx context.Context, args []string, out io.Writer) error {
	root := &rootConfig{out: out}
	fs := flag.NewFlagSet("pxrutil", flag.ContinueOnError)
	root.register(fs)

	cmd := &ffcli.Command{
		Name:       "pxrutil",
		ShortUsage: "pxrutil [flags] <subcommand> [args...]",
		ShortHelp:  "Inspect the pxr block registry and type conversions.",
		FlagSet:    fs,
		Options:    []ff.Option{ff.WithEnvVarPrefix("PXR")},
		Subcommands: []*ffcli.Command{
			blocksCommand(root),
			existsCommand(root),
			makeCommand(root),
			conversionsCommand(root),
		},
		Exec: func(context.Context, []string) error {
			return flag.ErrHelp
		},
	}
	if err := cmd.Parse(args); err != nil {
		return err
	}
	if err := root.setup(); err != nil {
		return err
	}
	return cmd.Run(ctx)
}
