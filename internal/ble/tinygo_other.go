//go:build !linux

package ble

import (
	"errors"
	"runtime"
)

// errUnsupported is returned on platforms where tinygo bluetooth cannot
// register GATT services.
var errUnsupported = errors.New("ble: peripheral mode is not supported on " + runtime.GOOS)

// TinyGoStack is unavailable outside Linux. Enable reports errUnsupported so
// the CLI fails at startup with a clear message.
type TinyGoStack struct{}

// NewTinyGoStack returns a stack whose methods all fail.
func NewTinyGoStack() *TinyGoStack {
	return &TinyGoStack{}
}

func (s *TinyGoStack) Enable() error { return errUnsupported }

func (s *TinyGoStack) SetConnectHandler(func(address string, connected bool)) {}

func (s *TinyGoStack) AddService(ServiceConfig) (Characteristic, error) {
	return nil, errUnsupported
}

func (s *TinyGoStack) Advertisement(string, string) (Advertiser, error) {
	return nil, errUnsupported
}

var _ Stack = (*TinyGoStack)(nil)
