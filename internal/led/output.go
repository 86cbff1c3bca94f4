// Package led drives the single LED line the controller owns. Backends cover
// a GPIO pin (periph.io), the Linux sysfs LED class, and a no-op output for
// development machines without LED hardware.
package led

// Output abstracts the hardware line behind the LED.
type Output interface {
	// Set drives the line high (on) or low (off).
	Set(on bool) error
	// String names the backend and line for log output.
	String() string
}
