package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/gnzdotmx/vidscribe/internal/config"
	"github.com/gnzdotmx/vidscribe/internal/mod"
	"github.com/gnzdotmx/vidscribe/internal/utils"
)

// reportError prints the operator guidance for err's failure class
func reportError(w io.Writer, err error, input string) {
	switch mod.Classify(err) {
	case mod.ErrMissingDependency:
		fmt.Fprintf(w, "\n%s\n", utils.Error("Error: "+err.Error()))

	case mod.ErrInputNotFound:
		tried := input
		if path, normErr := config.NormalizeInputPath(input); normErr == nil {
			tried = path
		}
		fmt.Fprintf(w, "\n%s\n", utils.Error("Error: File not found"))
		fmt.Fprintln(w, "Please check that:")
		fmt.Fprintln(w, "1. The file path is correct")
		fmt.Fprintln(w, "2. The file exists")
		fmt.Fprintln(w, "3. You have permission to access the file")
		fmt.Fprintf(w, "\nPath tried: %s\n", tried)

	case mod.ErrExtractionFailure, mod.ErrEngineFailure:
		fmt.Fprintf(w, "\n%s\n", utils.Error("Error: "+err.Error()))

	default:
		var verr *utils.ValidationError
		if errors.Is(err, errConfig) || errors.As(err, &verr) {
			fmt.Fprintf(w, "\n%s\n", utils.Error("Error: "+err.Error()))
			return
		}
		fmt.Fprintf(w, "\n%s\n", utils.Error("An unexpected error occurred: "+err.Error()))
		fmt.Fprintln(w, "Please make sure the file is a valid MP4 video file.")
	}
}
