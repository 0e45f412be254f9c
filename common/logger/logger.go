package logger

import (
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Get returns the process logger. Components that log should receive it
// explicitly rather than reach for the global.
func Get() zerolog.Logger {
	return log.Logger
}

// Debugf function
func Debugf(format string, v ...interface{}) {
	log.Debug().Msgf(format, v...)
}

// Infof function
func Infof(format string, v ...interface{}) {
	log.Info().Msgf(format, v...)
}

// Warnf function
func Warnf(format string, v ...interface{}) {
	log.Warn().Msgf(format, v...)
}

// Errors logs an error. In debug mode the eris stack trace is included.
func Errors(err error) {
	if err == nil {
		return
	}
	if DebugMode {
		log.Error().Msg(eris.ToString(err, true))
		return
	}
	log.Error().Msg(err.Error())
}
