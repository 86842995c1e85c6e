package telemetry

import "github.com/a18532086/a32jit/internal/engineerr"

func setEngineerrLogf(f func(string, ...interface{})) {
	engineerr.Logf = f
}
