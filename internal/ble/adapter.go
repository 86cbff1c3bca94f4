// Package ble exposes the LED controller as a BLE GATT peripheral: one
// service with one read/write/notify characteristic, advertised by name.
// The radio stack is reached through the Stack interface so the routing
// logic can be tested without hardware.
package ble

// CommandHandler receives characteristic write payloads.
type CommandHandler interface {
	HandleWrite(payload []byte)
}

// ConnectionObserver receives central connect/disconnect events.
type ConnectionObserver interface {
	OnConnect()
	OnDisconnect()
}

// Characteristic represents the local GATT characteristic.
type Characteristic interface {
	// Write stores a new value and notifies subscribed centrals.
	Write(p []byte) (n int, err error)
}

// Advertiser controls BLE advertising.
type Advertiser interface {
	Start() error
	Stop() error
}

// ServiceConfig describes the single-characteristic service to register.
type ServiceConfig struct {
	ServiceUUID        string
	CharacteristicUUID string
	InitialValue       []byte
	// OnWrite is called for every write to the characteristic.
	OnWrite func(offset int, value []byte)
}

// Stack abstracts the BLE peripheral stack for testing.
type Stack interface {
	// Enable powers on the BLE stack.
	Enable() error
	// SetConnectHandler registers a callback for central connect/disconnect.
	SetConnectHandler(callback func(address string, connected bool))
	// AddService registers a read/write/notify characteristic in a new service.
	AddService(cfg ServiceConfig) (Characteristic, error)
	// Advertisement configures (but does not start) advertising of localName
	// with serviceUUID in the advertising packet.
	Advertisement(localName, serviceUUID string) (Advertiser, error)
}
