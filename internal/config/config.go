// Package config loads the optional .teldarc file shared by ta and tl,
// supplying default flag values through viper.
package config

import (
	"os"

	"github.com/spf13/viper"
)

// Defaults holds the subset of flags a .teldarc file may default.
type Defaults struct {
	OutputDir    string
	EntrySymbol  string
	SegmentAlign int
}

// Load reads a .teldarc file from the home directory or, failing that,
// the current directory, if one is present, and parses it as YAML. A
// missing file is not an error — every field in Defaults is simply
// left at its zero value.
func Load() (Defaults, error) {
	v := viper.New()
	v.SetConfigName(".teldarc")
	v.SetConfigType("yaml")

	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}
	v.AddConfigPath(".")
	v.AutomaticEnv()

	var d Defaults
	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); notFound {
			return d, nil
		}
		return d, err
	}

	d.OutputDir = v.GetString("output_dir")
	d.EntrySymbol = v.GetString("entry_symbol")
	d.SegmentAlign = v.GetInt("segment_align")
	return d, nil
}
