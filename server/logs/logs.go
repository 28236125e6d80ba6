/******************************************************************************
 *
 *  Description :
 *    Package exposes info, warning and error loggers.
 *
 *****************************************************************************/
package logs

import (
	"io"
	"log"
	"os"
)

var (
	Info    *log.Logger
	Warning *log.Logger
	Error   *log.Logger
)

func Init() {
	InitWithWriter(os.Stdout)
}

// InitWithWriter sets up the loggers against the given destination.
// Used by tests to capture output.
func InitWithWriter(out io.Writer) {
	Info = log.New(out, "I", log.LstdFlags|log.Lshortfile)
	Warning = log.New(out, "W", log.LstdFlags|log.Lshortfile)
	Error = log.New(out, "E", log.LstdFlags|log.Lshortfile)
}
