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

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"slices"
	"strconv"
	"text/tabwriter"

	"github.com/peterbourgon/ff/v3/ffcli"

	"dirpx.dev/pxr"
	"dirpx.dev/pxr/blocks"
	"dirpx.dev/pxr/proxy"
)

var errUsage = errors.New("wrong number of arguments")

func blocksCommand(root *rootConfig) *ffcli.Command {
	return &ffcli.Command{
		Name:       "blocks",
		ShortUsage: "pxrutil blocks",
		ShortHelp:  "List registered block paths.",
		Exec: func(_ context.Context, args []string) error {
			if len(args) != 0 {
				return errUsage
			}
			w := tabwriter.NewWriter(root.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PATH\tCATEGORY\tFACTORY")
			for _, p := range blocks.Paths() {
				e, err := blocks.Lookup(p[len(blocks.Prefix):])
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", e.Path, e.Category, e.Factory)
			}
			return w.Flush()
		},
	}
}

func existsCommand(root *rootConfig) *ffcli.Command {
	return &ffcli.Command{
		Name:       "exists",
		ShortUsage: "pxrutil exists <path>",
		ShortHelp:  "Report whether a block path is registered.",
		Exec: func(_ context.Context, args []string) error {
			if len(args) != 1 {
				return errUsage
			}
			ok := blocks.DoesBlockExist(args[0])
			fmt.Fprintln(root.out, ok)
			if !ok {
				return fmt.Errorf("%w: %q", blocks.ErrUnknownFactoryPath, args[0])
			}
			return nil
		},
	}
}

func makeCommand(root *rootConfig) *ffcli.Command {
	fs := flag.NewFlagSet("pxrutil make", flag.ContinueOnError)
	call := fs.String("call", "", "method to call on the new element; its result is printed")
	return &ffcli.Command{
		Name:       "make",
		ShortUsage: "pxrutil make [-call name] <path> [args...]",
		ShortHelp:  "Instantiate a block and optionally call a method on it.",
		LongHelp: "Arguments are parsed as int, then float, then bool, and are " +
			"otherwise passed as strings.",
		FlagSet: fs,
		Exec: func(ctx context.Context, args []string) error {
			if len(args) < 1 {
				return errUsage
			}
			env, err := proxy.NewEnvironment(root.env)
			if err != nil {
				return err
			}
			defer env.Close()

			el, err := blocks.MakeIn(env, args[0], parseArgs(args[1:])...)
			if err != nil {
				return err
			}
			if *call == "" {
				fmt.Fprintf(root.out, "%s in %s\n", el.TypeName(), env.Name())
				return nil
			}
			res, err := el.CallContext(ctx, *call)
			if err != nil {
				return err
			}
			fmt.Fprintln(root.out, res.String())
			return nil
		},
	}
}

func conversionsCommand(root *rootConfig) *ffcli.Command {
	return &ffcli.Command{
		Name:       "conversions",
		ShortUsage: "pxrutil conversions <type>",
		ShortHelp:  "List the types a type converts to and from.",
		Exec: func(_ context.Context, args []string) error {
			if len(args) != 1 {
				return errUsage
			}
			to, from := conversions(args[0])
			fmt.Fprintf(root.out, "%s converts to: %s\n", args[0], list(to))
			fmt.Fprintf(root.out, "%s converts from: %s\n", args[0], list(from))
			return nil
		},
	}
}

// conversions returns the sorted target and source type identifiers of the
// conversions registered for typeName.
func conversions(typeName string) (to, from []string) {
	for _, c := range pxr.Converters().Entries() {
		src, dst := pxr.TypeNameOf(c.From), pxr.TypeNameOf(c.To)
		switch typeName {
		case src:
			to = append(to, dst)
		case dst:
			from = append(from, src)
		}
	}
	slices.Sort(to)
	slices.Sort(from)
	return to, from
}

func list(names []string) string {
	if len(names) == 0 {
		return "(none)"
	}
	out := names[0]
	for _, n := range names[1:] {
		out += ", " + n
	}
	return out
}

// parseArgs turns command line words into typed values.
func parseArgs(words []string) []any {
	out := make([]any, len(words))
	for i, w := range words {
		if n, err := strconv.Atoi(w); err == nil {
			out[i] = n
		} else if f, err := strconv.ParseFloat(w, 64); err == nil {
			out[i] = f
		} else if b, err := strconv.ParseBool(w); err == nil {
			out[i] = b
		} else {
			out[i] = w
		}
	}
	return out
}
