/*
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

package cli

import (
	"fmt"
	"io"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// logr verbosity V(n) is zap level -n: debug shows getters, trace shows
// every pseudo-file access.
var logLevels = map[string]zapcore.Level{
	"error": zapcore.ErrorLevel,
	"warn":  zapcore.WarnLevel,
	"info":  zapcore.InfoLevel,
	"debug": zapcore.DebugLevel,
	"trace": zapcore.Level(-2),
}

func ParseLogLevel(level string) (zapcore.Level, error) {
	lvl, ok := logLevels[level]
	if !ok {
		return 0, fmt.Errorf("--log-level: %q is not one of error|warn|info|debug|trace", level)
	}
	return lvl, nil
}

// NewLogger returns a console logger writing to w.
func NewLogger(level string, w io.Writer) (logr.Logger, error) {
	lvl, err := ParseLogLevel(level)
	if err != nil {
		return logr.Discard(), err
	}
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(w),
		zap.NewAtomicLevelAt(lvl),
	)
	return zapr.NewLogger(zap.New(core)).WithName("cpux"), nil
}
