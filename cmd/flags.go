package cmd

import (
	"strings"

	"github.com/spf13/pflag"

	"github.com/oakwood-commons/colx/internal/formatter"
	"github.com/oakwood-commons/colx/pkg/match"
)

var (
	_ pflag.Value = modeValue{}
	_ pflag.Value = sensitivityValue{}
	_ pflag.Value = formatValue{}
)

// modeValue is a pflag.Value accepting match modes and their aliases.
type modeValue struct{ mode *match.Mode }

func (v modeValue) String() string {
	if v.mode == nil {
		return ""
	}
	return string(*v.mode)
}

func (v modeValue) Set(s string) error {
	m, err := match.ParseMode(s)
	if err != nil {
		return err
	}
	*v.mode = m
	return nil
}

func (modeValue) Type() string { return "mode" }

// sensitivityValue is a pflag.Value accepting match sensitivities.
type sensitivityValue struct{ sensitivity *match.Sensitivity }

func (v sensitivityValue) String() string {
	if v.sensitivity == nil {
		return ""
	}
	return string(*v.sensitivity)
}

func (v sensitivityValue) Set(s string) error {
	sens, err := match.ParseSensitivity(s)
	if err != nil {
		return err
	}
	*v.sensitivity = sens
	return nil
}

func (sensitivityValue) Type() string { return "sensitivity" }

// formatValue is a pflag.Value accepting output formats.
type formatValue struct{ format *formatter.Format }

func (v formatValue) String() string {
	if v.format == nil {
		return ""
	}
	return string(*v.format)
}

func (v formatValue) Set(s string) error {
	s = strings.ToLower(strings.TrimSpace(s))
	if err := formatter.ValidateFormat(s); err != nil {
		return err
	}
	*v.format = formatter.Format(s)
	return nil
}

func (formatValue) Type() string { return "format" }

func joinModes() string {
	names := make([]string, len(match.ValidModes))
	for i, m := range match.ValidModes {
		names[i] = string(m)
	}
	return strings.Join(names, "|")
}

func joinSensitivities() string {
	names := make([]string, len(match.ValidSensitivities))
	for i, s := range match.ValidSensitivities {
		names[i] = string(s)
	}
	return strings.Join(names, "|")
}

func joinFormats() string {
	names := make([]string, len(formatter.ValidFormats))
	for i, f := range formatter.ValidFormats {
		names[i] = string(f)
	}
	return strings.Join(names, "|")
}
