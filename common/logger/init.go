package logger

import (
	"bytes"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const (
	DefaultTimeFormat           = "15:04:05.000"
	DefaultCallerSkipFrameCount = 3 // set to 3 because logger wrapped in logger.go

	NoColor   = true
	UseCaller = false // for developer, if you want to expose line of code of caller
	flagDebug = "debug"
)

var (
	logBuffer bytes.Buffer

	// DebugMode flag for determining debug mode
	DebugMode = false
)

func init() {
	zerolog.TimeFieldFormat = DefaultTimeFormat
	zerolog.CallerSkipFrameCount = DefaultCallerSkipFrameCount

	log.Logger = newLogger(&logBuffer)
}

func newLogger(out io.Writer) zerolog.Logger {
	consoleWriter := zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    NoColor,
		TimeFormat: DefaultTimeFormat,
	}
	lgr := zerolog.New(zerolog.MultiLevelWriter(consoleWriter)).With().Timestamp().Logger()

	if UseCaller {
		lgr = lgr.With().Caller().Logger()
	}
	return lgr
}

// PrintLogs print all stacked log
func PrintLogs() {
	if DebugMode {
		// Extract the logs from the buffer and print them
		logs := logBuffer.String()
		if len(logs) > 0 {
			fmt.Println("\n----- Log -----") //nolint:forbidigo // debug output goes to the terminal
			fmt.Println(logs)                 //nolint:forbidigo // debug output goes to the terminal
		}
	}
}

// SetDebugMode Allow particular logger/message to be printed
// This function will extract flag --debug from command
func SetDebugMode(cmd *cobra.Command) {
	val, err := cmd.Flags().GetBool(flagDebug)
	if err == nil {
		DebugMode = val
	}
}

// AddLogFlag set flag --debug
func AddLogFlag(cmd ...*cobra.Command) {
	for _, c := range cmd {
		c.PersistentFlags().Bool(flagDebug, false, "Run in debug mode")
	}
}
