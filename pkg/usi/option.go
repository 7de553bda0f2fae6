package usi

import (
	"errors"
	"fmt"
	"strconv"
)

type Option interface {
	UsiName() string
	UsiString() string
	Set(s string) error
}

type BoolOption struct {
	Name  string
	Value *bool
}

func (opt *BoolOption) UsiName() string {
	return opt.Name
}

func (opt *BoolOption) UsiString() string {
	return fmt.Sprintf("option name %v type %v default %v",
		opt.Name, "check", *opt.Value)
}

func (opt *BoolOption) Set(s string) error {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*opt.Value = v
	return nil
}

type IntOption struct {
	Name  string
	Min   int
	Max   int
	Value *int
}

func (opt *IntOption) UsiName() string {
	return opt.Name
}

func (opt *IntOption) UsiString() string {
	return fmt.Sprintf("option name %v type %v default %v min %v max %v",
		opt.Name, "spin", *opt.Value, opt.Min, opt.Max)
}

func (opt *IntOption) Set(s string) error {
	v, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	if v < opt.Min || v > opt.Max {
		return errors.New("argument out of range")
	}
	*opt.Value = v
	return nil
}

type StringOption struct {
	Name  string
	Value *string
}

func (opt *StringOption) UsiName() string {
	return opt.Name
}

func (opt *StringOption) UsiString() string {
	var def = *opt.Value
	if def == "" {
		def = "<empty>"
	}
	return fmt.Sprintf("option name %v type %v default %v",
		opt.Name, "string", def)
}

func (opt *StringOption) Set(s string) error {
	if s == "<empty>" {
		s = ""
	}
	*opt.Value = s
	return nil
}
