// Copyright (c) 2019 Perlin
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies of
// the Software, and to permit persons to whom the Software is furnished to do so,
// subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS
// FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR
// COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
// IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
// CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.

package log

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

var (
	output = &multiWriter{
		writers: map[string]io.Writer{
			LoggerDefault: NewConsoleWriter(os.Stderr),
		},
	}
	logger = zerolog.New(output).With().Timestamp().Logger()

	deploy   zerolog.Logger
	artifact zerolog.Logger
	chain    zerolog.Logger
	keystore zerolog.Logger
	history  zerolog.Logger
)

const (
	LoggerDefault = "votedeploy"

	KeyModule = "mod"
	KeyEvent  = "event"

	ModuleDeploy   = "deploy"
	ModuleArtifact = "artifact"
	ModuleChain    = "chain"
	ModuleKeystore = "keystore"
	ModuleHistory  = "history"
)

func init() { // nolint:gochecknoinits
	zerolog.MessageFieldName = "message"
	zerolog.LevelFieldName = "level"
	zerolog.ErrorFieldName = "error"

	setupChildLoggers(zerolog.InfoLevel)
}

func setupChildLoggers(level zerolog.Level) {
	deploy = logger.With().Str(KeyModule, ModuleDeploy).Logger().Level(level)
	artifact = logger.With().Str(KeyModule, ModuleArtifact).Logger().Level(level)
	chain = logger.With().Str(KeyModule, ModuleChain).Logger().Level(level)
	keystore = logger.With().Str(KeyModule, ModuleKeystore).Logger().Level(level)
	history = logger.With().Str(KeyModule, ModuleHistory).Logger().Level(level)
}

// SetLevel changes the level of every module logger. Unknown levels are
// reported back and leave the current level untouched.
func SetLevel(level string) error {
	l, err := zerolog.ParseLevel(level)
	if err != nil {
		return err
	}

	setupChildLoggers(l)

	return nil
}

// SetWriter registers (or replaces) an output under key. A nil writer
// removes it.
func SetWriter(key string, writer io.Writer) {
	output.Set(key, writer)
}

// Deploy returns the deploy logger, tagged with event when it is not empty.
func Deploy(event string) zerolog.Logger {
	if event == "" {
		return deploy
	}

	return deploy.With().Str(KeyEvent, event).Logger()
}

func Artifact() zerolog.Logger {
	return artifact
}

// Chain returns the chain logger, tagged with event when it is not empty.
func Chain(event string) zerolog.Logger {
	if event == "" {
		return chain
	}

	return chain.With().Str(KeyEvent, event).Logger()
}

func Keystore() zerolog.Logger {
	return keystore
}

func History() zerolog.Logger {
	return history
}
