package main

import (
	"fmt"
	"io"

	"github.com/9seconds/geotable/geotable"
	"github.com/fatih/color"
)

// formatter renders messages of the interactive mode. Progress messages
// are info, results are success and everything bad is error.
type formatter interface {
	Info(w io.Writer, format string, args ...interface{})
	Success(w io.Writer, format string, args ...interface{})
	Error(w io.Writer, format string, args ...interface{})
}

type colorFormatter struct {
	info    func(io.Writer, string, ...interface{})
	success func(io.Writer, string, ...interface{})
	err     func(io.Writer, string, ...interface{})
}

func (c colorFormatter) Info(w io.Writer, format string, args ...interface{}) {
	c.info(w, format+"\n", args...)
}

func (c colorFormatter) Success(w io.Writer, format string, args ...interface{}) {
	c.success(w, format+"\n", args...)
}

func (c colorFormatter) Error(w io.Writer, format string, args ...interface{}) {
	c.err(w, format+"\n", args...)
}

type plainFormatter struct{}

func (p plainFormatter) Info(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, format+"\n", args...)
}

func (p plainFormatter) Success(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, format+"\n", args...)
}

func (p plainFormatter) Error(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, format+"\n", args...)
}

func printRangeInfo(f formatter, w io.Writer, info *geotable.RangeInfo) {
	f.Success(w, "Country: %s (%s)", info.Country, info.CountryCode)
	f.Success(w, "Province: %s", info.Province)
	f.Success(w, "City: %s", info.City)
	f.Success(w, "Latitude: %s", info.Latitude)
	f.Success(w, "Longitude: %s", info.Longitude)
	f.Success(w, "Zip Code: %s", info.ZipCode)
	f.Success(w, "Timezone: %s", info.Timezone)
}

// newFormatter returns a colored formatter if colors are enabled and
// stdout is a terminal.
func newFormatter(enabled bool) formatter {
	if !enabled || color.NoColor {
		return plainFormatter{}
	}

	return colorFormatter{
		info:    color.New(color.FgBlue).FprintfFunc(),
		success: color.New(color.FgGreen).FprintfFunc(),
		err:     color.New(color.FgRed, color.Bold).FprintfFunc(),
	}
}
