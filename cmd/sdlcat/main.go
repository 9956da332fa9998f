//
// Copyright (c) 2011-2019 Canonical Ltd
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command sdlcat reads a document from stdin in small chunks, driving
// the streaming parser the same way a caller consuming model output
// token-by-token would, and prints each intent_ready event, any
// diagnostics (to stderr) and, with --dump-yaml, the final resolved
// document as YAML.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/willabides/sdl"
	"github.com/willabides/sdl/internal/yamldump"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		chunkSize  int
		dumpYAML   bool
		trace      bool
		indentSize int
		strict     bool
	)

	cmd := &cobra.Command{
		Use:   "sdlcat",
		Short: "Stream stdin through the parser and print structural events",
		RunE: func(cmd *cobra.Command, args []string) error {
			var logger *logrus.Logger
			if trace {
				logger = logrus.New()
				logger.SetLevel(logrus.DebugLevel)
			}
			p := sdl.NewParser(sdl.Config{
				IndentSize: indentSize,
				Strict:     strict,
				Logger:     logger,
			})
			if trace {
				fmt.Fprintln(cmd.OutOrStdout(), "session:", p.ID())
			}
			p.OnIntentReady(func(ev sdl.IntentEvent) {
				fmt.Fprintf(cmd.OutOrStdout(), "intent_ready type=%s\n", ev.Type)
			})

			reader := bufio.NewReader(cmd.InOrStdin())
			buf := make([]byte, chunkSize)
			for {
				n, err := reader.Read(buf)
				if n > 0 {
					p.Write(buf[:n])
				}
				if err == io.EOF {
					break
				}
				if err != nil {
					return err
				}
			}
			res := p.End()

			for _, d := range p.Diagnostics() {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s (line %d)\n", d.Severity, d.Message, d.Line)
			}

			if dumpYAML {
				out, err := yamldump.Dump(res.Value)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(out)
				return err
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&chunkSize, "chunk-size", 64, "bytes read from stdin per Write call")
	cmd.Flags().BoolVar(&dumpYAML, "dump-yaml", false, "print the final document as YAML")
	cmd.Flags().BoolVar(&trace, "trace", false, "print the session id and enable debug logging")
	cmd.Flags().IntVar(&indentSize, "indent-size", 2, "spaces per indentation level")
	cmd.Flags().BoolVar(&strict, "strict", false, "promote warning diagnostics to errors")
	return cmd
}
