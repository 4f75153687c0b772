package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
)

// Config holds the command line options for the controller.
type Config struct {
	file    *string
	vars    *string
	backend *string
	verbose *bool
	sysLog  *bool
}

// NewConfig parses the command line options into a Config.
func NewConfig(fs *flag.FlagSet, args []string) *Config {
	c := Config{}
	c.file = fs.String("f", "",
		"GPIO definition file mapping chips and lines to variables")
	c.vars = fs.String("vars", "",
		"Optional JSON file of variable names and initial values to seed the store")
	c.backend = fs.String("backend", defaultBackend,
		"GPIO provider backend: chardev or periph")
	c.verbose = fs.Bool("v", false, "Enable verbose output")
	c.sysLog = fs.Bool("syslog", false, "Mirror log output to syslog")
	fs.Parse(args)
	return &c
}

// ChipDef describes one GPIO chip and its line mappings.
type ChipDef struct {
	Chip  string    `json:"chip"`
	Lines []LineDef `json:"lines"`
}

// LineDef describes the binding of one GPIO line to a variable.
// The line number is carried as a string, matching the definition format.
type LineDef struct {
	Line        string `json:"line"`
	Var         string `json:"var"`
	ActiveState string `json:"active_state,omitempty"`
	Direction   string `json:"direction,omitempty"`
	Drive       string `json:"drive,omitempty"`
	Bias        string `json:"bias,omitempty"`
	Event       string `json:"event,omitempty"`
}

type gpioDef struct {
	GpioDef []ChipDef `json:"gpiodef"`
}

// ParseGpioDef reads a GPIO definition document.  The document is a JSON
// object with a "gpiodef" array of chip objects.
func ParseGpioDef(r io.Reader) ([]ChipDef, error) {
	var def gpioDef
	dec := json.NewDecoder(r)
	if err := dec.Decode(&def); err != nil {
		return nil, fmt.Errorf("cannot parse gpiodef: %w", err)
	}
	return def.GpioDef, nil
}

// LoadGpioDef reads a GPIO definition document from a file.
func LoadGpioDef(path string) ([]ChipDef, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseGpioDef(f)
}
