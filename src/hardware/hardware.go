// Package hardware is the catalog of headsets members can own or target.
package hardware

import (
	"fmt"
	"strings"
)

// Internet is accepted as-is so the bot's own showcase project can list it.
const Internet = "The Internet"

// Device is one catalog entry.
type Device struct {
	Code string
	Name string
}

var catalog = []Device{
	{Code: "RIFT", Name: "Oculus Rift"},
	{Code: "CV1", Name: "Oculus Rift"},
	{Code: "GO", Name: "Oculus Go"},
	{Code: "RIFTS", Name: "Oculus Rift S"},
	{Code: "QUEST", Name: "Oculus Quest"},
}

var byCode = func() map[string]Device {
	m := make(map[string]Device, len(catalog))
	for _, d := range catalog {
		m[d.Code] = d
	}
	return m
}()

// Lookup resolves a code case-insensitively.
func Lookup(code string) (Device, bool) {
	if code == Internet {
		return Device{Code: Internet, Name: Internet}, true
	}
	d, ok := byCode[strings.ToUpper(strings.TrimSpace(code))]
	return d, ok
}

// Name returns the display name for code, or code itself if unknown.
func Name(code string) string {
	if d, ok := Lookup(code); ok {
		return d.Name
	}
	return code
}

// Names renders a list of codes for display.
func Names(codes []string) string {
	names := make([]string, 0, len(codes))
	for _, c := range codes {
		names = append(names, Name(c))
	}
	return strings.Join(names, ", ")
}

// All returns the catalog in display order.
func All() []Device {
	out := make([]Device, len(catalog))
	copy(out, catalog)
	return out
}

func listing() string {
	var b strings.Builder
	for i, d := range catalog {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "- %s (%s)", d.Code, d.Name)
	}
	return b.String()
}

// Supported is the help text listing every device.
func Supported() string {
	return "Hardware Available:\n\n" + listing()
}

// UnknownMessage explains that code is not in the catalog.
func UnknownMessage(code string) string {
	return fmt.Sprintf("Could not find the hardware for '%s', please specify a valid device from this list:\n\n%s", code, listing())
}
