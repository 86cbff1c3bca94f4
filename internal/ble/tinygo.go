//go:build linux

package ble

import (
	"fmt"

	"tinygo.org/x/bluetooth"
)

// TinyGoStack implements Stack on tinygo-org/bluetooth, which reaches BlueZ
// over D-Bus.
type TinyGoStack struct {
	adapter *bluetooth.Adapter
}

// NewTinyGoStack creates a stack on the default adapter.
func NewTinyGoStack() *TinyGoStack {
	return &TinyGoStack{adapter: bluetooth.DefaultAdapter}
}

func (s *TinyGoStack) Enable() error {
	return s.adapter.Enable()
}

func (s *TinyGoStack) SetConnectHandler(cb func(address string, connected bool)) {
	s.adapter.SetConnectHandler(func(device bluetooth.Device, connected bool) {
		cb(device.Address.String(), connected)
	})
}

func (s *TinyGoStack) AddService(cfg ServiceConfig) (Characteristic, error) {
	svcUUID, err := bluetooth.ParseUUID(cfg.ServiceUUID)
	if err != nil {
		return nil, fmt.Errorf("ble: parse service UUID: %w", err)
	}
	charUUID, err := bluetooth.ParseUUID(cfg.CharacteristicUUID)
	if err != nil {
		return nil, fmt.Errorf("ble: parse characteristic UUID: %w", err)
	}

	char := new(bluetooth.Characteristic)
	err = s.adapter.AddService(&bluetooth.Service{
		UUID: svcUUID,
		Characteristics: []bluetooth.CharacteristicConfig{
			{
				Handle: char,
				UUID:   charUUID,
				Value:  cfg.InitialValue,
				Flags: bluetooth.CharacteristicReadPermission |
					bluetooth.CharacteristicWritePermission |
					bluetooth.CharacteristicNotifyPermission,
				WriteEvent: func(client bluetooth.Connection, offset int, value []byte) {
					if cfg.OnWrite != nil {
						cfg.OnWrite(offset, value)
					}
				},
			},
		},
	})
	if err != nil {
		return nil, err
	}
	return char, nil
}

// Advertisement configures the default advertisement. No scan response
// data and no connection interval hint are set.
func (s *TinyGoStack) Advertisement(localName, serviceUUID string) (Advertiser, error) {
	svcUUID, err := bluetooth.ParseUUID(serviceUUID)
	if err != nil {
		return nil, fmt.Errorf("ble: parse service UUID: %w", err)
	}
	adv := s.adapter.DefaultAdvertisement()
	err = adv.Configure(bluetooth.AdvertisementOptions{
		LocalName:    localName,
		ServiceUUIDs: []bluetooth.UUID{svcUUID},
	})
	if err != nil {
		return nil, err
	}
	return &tinyGoAdvertiser{adv: adv}, nil
}

// Compile-time check that TinyGoStack implements Stack.
var _ Stack = (*TinyGoStack)(nil)

type tinyGoAdvertiser struct {
	adv *bluetooth.Advertisement
}

// Start (re)starts advertising. BlueZ refuses to register an advertisement
// that is already registered, so any previous instance is stopped first.
func (a *tinyGoAdvertiser) Start() error {
	_ = a.adv.Stop()
	return a.adv.Start()
}

func (a *tinyGoAdvertiser) Stop() error {
	return a.adv.Stop()
}
