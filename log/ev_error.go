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
	"fmt"

	"github.com/rs/zerolog"
)

type ErrorEvent struct {
	Error   error  `json:"error"`
	Message string `json:"message"`

	*zerolog.Event `json:"-"`
}

func NewError(logger *zerolog.Logger) *ErrorEvent {
	return &ErrorEvent{
		Event: logger.Error(),
	}
}

func NewErrorFull(logger *zerolog.Logger, err error, msg string) *ErrorEvent {
	return &ErrorEvent{
		Error:   err,
		Message: msg,
		Event:   logger.Error(),
	}
}

func Error(logger *zerolog.Logger, err error, msg string) {
	NewErrorFull(logger, err, msg).Send()
}

func ErrorF(logger *zerolog.Logger, err error, msgF string, v ...interface{}) {
	NewErrorFull(logger, err, fmt.Sprintf(msgF, v...)).Send()
}

func (err *ErrorEvent) Send() {
	err.Msg("")
}

func (err *ErrorEvent) Err(setError error) *ErrorEvent {
	err.Error = setError
	return err
}

func (err *ErrorEvent) Msgf(f string, v ...interface{}) {
	err.Msg(fmt.Sprintf(f, v...))
}

func (err *ErrorEvent) Msg(msg string) {
	if msg != "" {
		err.Message = msg
	}

	err.MarshalEvent(err.Event)
}

func (err *ErrorEvent) MarshalEvent(ev *zerolog.Event) {
	ev.Err(err.Error).Msg(err.Message)
}
