package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fluxcd/dco/pkg/dco"
)

const (
	outputFormatText = "text"
	outputFormatJSON = "json"
)

func validateOutputFormat(format string) error {
	switch format {
	case outputFormatText, outputFormatJSON:
		return nil
	}
	return errorInvalidOutputFormat
}

func outputVerdictText(v dco.Verdict, out io.Writer) error {
	if _, err := fmt.Fprintf(out, "%s: %s\n", v.State, v.Description); err != nil {
		return err
	}
	if v.TargetURL != "" {
		_, err := fmt.Fprintf(out, "See %s\n", v.TargetURL)
		return err
	}
	return nil
}

func outputVerdictJSON(v dco.Verdict, out io.Writer) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func outputVerdict(format string, v dco.Verdict, out io.Writer) error {
	var err error
	if format == outputFormatJSON {
		err = outputVerdictJSON(v, out)
	} else {
		err = outputVerdictText(v, out)
	}
	if err != nil {
		return err
	}
	if !v.Success() {
		return errorCheckFailed
	}
	return nil
}
