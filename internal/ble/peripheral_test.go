package ble

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/chaz8081/bleled/internal/config"
	"github.com/chaz8081/bleled/internal/control"
	"github.com/chaz8081/bleled/internal/led"
)

func testOptions() PeripheralOptions {
	return PeripheralOptions{
		LocalName:          "ESP32_LED_Controller",
		ServiceUUID:        "12345678-1234-1234-1234-123456789abc",
		CharacteristicUUID: "87654321-4321-4321-4321-cba987654321",
		InitialValue:       "Hello World",
	}
}

func startPeripheral(t *testing.T) (*Peripheral, *mockStack, *recordingController) {
	t.Helper()
	stack := newMockStack()
	ctrl := &recordingController{}
	p := NewPeripheral(stack, testOptions())
	if err := p.Start(ctrl, ctrl); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	return p, stack, ctrl
}

func TestPeripheralStartRegistersService(t *testing.T) {
	p, stack, _ := startPeripheral(t)

	if !stack.enabled {
		t.Error("stack should be enabled")
	}
	if stack.service.ServiceUUID != testOptions().ServiceUUID {
		t.Errorf("ServiceUUID = %q", stack.service.ServiceUUID)
	}
	if stack.service.CharacteristicUUID != testOptions().CharacteristicUUID {
		t.Errorf("CharacteristicUUID = %q", stack.service.CharacteristicUUID)
	}
	if string(stack.service.InitialValue) != "Hello World" {
		t.Errorf("InitialValue = %q, want %q", stack.service.InitialValue, "Hello World")
	}
	if stack.advName != "ESP32_LED_Controller" || stack.advUUID != testOptions().ServiceUUID {
		t.Errorf("advertisement = (%q, %q)", stack.advName, stack.advUUID)
	}
	if stack.adv.starts != 1 {
		t.Errorf("advertising started %d times, want 1", stack.adv.starts)
	}
	if _, err := p.Characteristic().Write([]byte("LED_ON")); err != nil {
		t.Fatalf("Characteristic().Write() error = %v", err)
	}
	if got := stack.char.written(); len(got) != 1 || got[0] != "LED_ON" {
		t.Errorf("characteristic writes = %v, want [LED_ON]", got)
	}
	if p.Advertiser() != Advertiser(stack.adv) {
		t.Error("Advertiser() should return the configured advertiser")
	}
}

func TestPeripheralRoutesWrites(t *testing.T) {
	_, stack, ctrl := startPeripheral(t)

	buf := []byte("TOGGLE")
	stack.SimulateWrite(0, buf)
	// The stack may reuse its buffer; the handler must have its own copy.
	copy(buf, "XXXXXX")
	stack.SimulateWrite(0, []byte("STATUS"))
	stack.SimulateWrite(3, []byte("ON"))

	if len(ctrl.writes) != 2 || ctrl.writes[0] != "TOGGLE" || ctrl.writes[1] != "STATUS" {
		t.Errorf("writes = %v, want [TOGGLE STATUS]", ctrl.writes)
	}
}

func TestPeripheralRoutesConnectionEvents(t *testing.T) {
	_, stack, ctrl := startPeripheral(t)

	stack.SimulateConnection(true)
	stack.SimulateConnection(false)
	stack.SimulateConnection(true)

	if ctrl.connects != 2 || ctrl.disconnects != 1 {
		t.Errorf("connects = %d, disconnects = %d, want 2 and 1", ctrl.connects, ctrl.disconnects)
	}
}

func TestPeripheralStartErrors(t *testing.T) {
	tests := []struct {
		name       string
		modify     func(*mockStack)
		registered bool
	}{
		{"enable fails", func(s *mockStack) { s.enableErr = errMock }, false},
		{"add service fails", func(s *mockStack) { s.addErr = errMock }, false},
		{"configure advertising fails", func(s *mockStack) { s.advErr = errMock }, false},
		{"start advertising fails", func(s *mockStack) { s.adv.startErr = errMock }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stack := newMockStack()
			tt.modify(stack)
			ctrl := &recordingController{}
			p := NewPeripheral(stack, testOptions())

			err := p.Start(ctrl, ctrl)
			if !errors.Is(err, errMock) {
				t.Fatalf("Start() error = %v, want wrapped mock error", err)
			}
			if got := p.Characteristic() != nil; got != tt.registered {
				t.Errorf("Characteristic() set = %v, want %v", got, tt.registered)
			}
		})
	}
}

func TestPeripheralClose(t *testing.T) {
	p, stack, _ := startPeripheral(t)
	if err := p.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if stack.adv.stops != 1 {
		t.Errorf("advertising stopped %d times, want 1", stack.adv.stops)
	}

	unstarted := NewPeripheral(newMockStack(), testOptions())
	if err := unstarted.Close(); err != nil {
		t.Errorf("Close() before Start error = %v", err)
	}
}

func TestPeripheralRegisterBeforeAdvertise(t *testing.T) {
	stack := newMockStack()
	ctrl := &recordingController{}
	p := NewPeripheral(stack, testOptions())

	if err := p.Advertise(); err == nil {
		t.Error("Advertise() before Register should fail")
	}

	if err := p.Register(ctrl, ctrl); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if p.Characteristic() == nil || p.Advertiser() == nil {
		t.Fatal("Characteristic and Advertiser should be available after Register")
	}
	if stack.adv.starts != 0 {
		t.Errorf("advertising started %d times before Advertise, want 0", stack.adv.starts)
	}

	if err := p.Advertise(); err != nil {
		t.Fatalf("Advertise() error = %v", err)
	}
	if stack.adv.starts != 1 {
		t.Errorf("advertising started %d times, want 1", stack.adv.starts)
	}
}

func TestPeripheralIgnoresLocalWriteEcho(t *testing.T) {
	stack := newMockStack()
	stack.echoWrites = true
	ctrl := &recordingController{}
	p := NewPeripheral(stack, testOptions())
	if err := p.Start(ctrl, ctrl); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if _, err := p.Characteristic().Write([]byte("LED_OFF")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if len(ctrl.writes) != 0 {
		t.Errorf("local write reached the handler: %v", ctrl.writes)
	}
	if got := stack.char.written(); len(got) != 1 || got[0] != "LED_OFF" {
		t.Errorf("characteristic writes = %v, want [LED_OFF]", got)
	}

	// Central writes still arrive.
	stack.SimulateWrite(0, []byte("ON"))
	if len(ctrl.writes) != 1 || ctrl.writes[0] != "ON" {
		t.Errorf("writes = %v, want [ON]", ctrl.writes)
	}
}

func TestPeripheralStatusReplyIsNotACommand(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	out, err := led.New(config.LEDConfig{Backend: "noop"}, logger)
	if err != nil {
		t.Fatalf("led.New() error = %v", err)
	}
	ctrl := control.New(out, control.Options{Logger: logger})

	stack := newMockStack()
	stack.echoWrites = true
	opts := testOptions()
	opts.Logger = logger
	p := NewPeripheral(stack, opts)
	if err := p.Register(ctrl, ctrl); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	ctrl.SetNotifier(p.Characteristic())
	ctrl.SetAdvertiser(p.Advertiser())
	if err := p.Advertise(); err != nil {
		t.Fatalf("Advertise() error = %v", err)
	}

	done := make(chan struct{})
	go func() {
		stack.SimulateWrite(0, []byte("STATUS"))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("STATUS did not complete")
	}

	if !strings.Contains(logs.String(), "[BLE] advertising") {
		t.Errorf("peripheral should log through the injected logger\n%s", logs.String())
	}
	if got := strings.Count(logs.String(), "[BLE] received"); got != 1 {
		t.Errorf("received log lines = %d, want 1\n%s", got, logs.String())
	}
	if got := stack.char.written(); len(got) != 1 || got[0] != "LED_OFF" {
		t.Errorf("characteristic writes = %v, want [LED_OFF]", got)
	}
}
