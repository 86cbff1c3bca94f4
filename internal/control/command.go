package control

// Command is a write payload the controller understands.
type Command string

// Recognized commands. Matching is exact: no trimming, no case folding.
const (
	CommandOn     Command = "ON"
	CommandOff    Command = "OFF"
	CommandToggle Command = "TOGGLE"
	CommandStatus Command = "STATUS"
)

// Status notification payloads.
const (
	StatusOn  = "LED_ON"
	StatusOff = "LED_OFF"
)

// ParseCommand maps a raw write payload to a Command. ok is false for
// anything that is not byte-for-byte one of the recognized commands.
func ParseCommand(payload []byte) (cmd Command, ok bool) {
	switch Command(payload) {
	case CommandOn, CommandOff, CommandToggle, CommandStatus:
		return Command(payload), true
	}
	return "", false
}

// StatusPayload returns the notification payload for the given LED state.
func StatusPayload(on bool) string {
	if on {
		return StatusOn
	}
	return StatusOff
}
