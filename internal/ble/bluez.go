package ble

import (
	"fmt"
	"runtime"

	"github.com/godbus/dbus/v5"
)

const (
	bluezBusName = "org.bluez"
	adapterIface = "org.bluez.Adapter1"
	propsIface   = "org.freedesktop.DBus.Properties"
)

// adapterObjectPath converts an adapter id like "hci0" to "/org/bluez/hci0".
func adapterObjectPath(id string) dbus.ObjectPath {
	return dbus.ObjectPath("/org/bluez/" + id)
}

// EnsureAdapterPowered checks over D-Bus that BlueZ is running and the
// adapter is powered. With powerOn set it powers a down adapter on instead
// of failing. It is a no-op outside Linux.
func EnsureAdapterPowered(adapterID string, powerOn bool) error {
	if runtime.GOOS != "linux" {
		return nil
	}

	conn, err := dbus.SystemBus()
	if err != nil {
		return fmt.Errorf("ble: connect to system bus: %w", err)
	}
	// SystemBus returns a shared connection; do not close it.

	var names []string
	if err := conn.BusObject().Call("org.freedesktop.DBus.ListNames", 0).Store(&names); err != nil {
		return fmt.Errorf("ble: list bus names: %w", err)
	}
	if !containsName(names, bluezBusName) {
		return fmt.Errorf("ble: %s not found on system bus, is bluetooth.service running?", bluezBusName)
	}

	obj := conn.Object(bluezBusName, adapterObjectPath(adapterID))
	var v dbus.Variant
	if err := obj.Call(propsIface+".Get", 0, adapterIface, "Powered").Store(&v); err != nil {
		return fmt.Errorf("ble: read %s Powered: %w", adapterID, err)
	}
	powered, ok := v.Value().(bool)
	if !ok {
		return fmt.Errorf("ble: %s Powered is not bool", adapterID)
	}
	if powered {
		return nil
	}
	if !powerOn {
		return fmt.Errorf("ble: adapter %s is powered off", adapterID)
	}

	if err := obj.Call(propsIface+".Set", 0, adapterIface, "Powered", dbus.MakeVariant(true)).Err; err != nil {
		return fmt.Errorf("ble: power on %s: %w", adapterID, err)
	}
	return nil
}

func containsName(names []string, want string) bool {
	for _, n := range names {
		if n == want {
			return true
		}
	}
	return false
}
