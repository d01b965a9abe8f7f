// parse.go implements parsers for the structured GCS2 replies. The
// formats are line oriented:
//
//	*IDN?  one line,  "<vendor>, <model>, <serial>, <firmware>"
//	HLP?   per line,  "<CMD> <description>"
//	VER?   per line,  "<component>: <version>"
//	HPA?   per line,  "0x<PamID>=<CmdLevel>\t<MaxItem>\t<DataType>\t<FuncDesc>\t<Desc>[\t<Value>=<Desc>...]"
//	POS?/ONT?/FRF?/CST?  per line,  "<axis>=<value>"
//
// Parsers take normalized reply text (framing already stripped by Conn)
// and are pure functions, which keeps them trivially testable.
package gcs

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mmr-tortoise/pictl/internal/model"
)

// ParseIDN parses a *IDN? reply into a DeviceInfo. The reply is a single
// comma-separated line; the firmware field is optional on some models.
func ParseIDN(reply string) (model.DeviceInfo, error) {
	fields := strings.Split(strings.TrimSpace(reply), ",")
	if len(fields) < 3 {
		return model.DeviceInfo{}, fmt.Errorf("%w: identification %q has %d fields, want at least 3",
			ErrBadReply, reply, len(fields))
	}

	info := model.DeviceInfo{
		Vendor:       strings.TrimSpace(fields[0]),
		Model:        strings.TrimSpace(fields[1]),
		SerialNumber: strings.TrimSpace(fields[2]),
	}
	if len(fields) > 3 {
		info.Version = strings.TrimSpace(fields[3])
	}
	return info, nil
}

// ParseHelp parses an HLP? reply into a command→description map. Each
// line holds a command mnemonic followed by its description; lines
// without a description map to the empty string.
func ParseHelp(reply string) map[string]string {
	result := make(map[string]string)
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		key, desc, _ := strings.Cut(line, " ")
		result[strings.TrimSpace(key)] = strings.TrimSpace(desc)
	}
	return result
}

// ParseVersions parses a VER? reply into a component→version map.
// Lines without a colon separator (decorative headers on some firmware)
// are skipped.
func ParseVersions(reply string) map[string]string {
	result := make(map[string]string)
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		result[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return result
}

// ParseParameters parses an HPA? reply into the parameter catalog.
//
// Only lines starting with "0x" describe parameters; the reply begins
// with a prose header that is skipped. After the "0x<PamID>=" prefix the
// fields are tab separated: command level, max items, data type, a
// function-group designator (dropped), the description, and then zero or
// more "<Value>=<Desc>" enumeration options.
func ParseParameters(reply string) ([]model.Parameter, error) {
	var params []model.Parameter

	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "0x") {
			continue
		}

		idPart, rest, found := strings.Cut(line, "=")
		if !found {
			return nil, fmt.Errorf("%w: parameter line %q has no '='", ErrBadReply, line)
		}

		id, err := strconv.ParseUint(strings.TrimPrefix(idPart, "0x"), 16, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: parameter id %q is not hexadecimal", ErrBadReply, idPart)
		}

		fields := strings.Split(rest, "\t")
		if len(fields) < 5 {
			return nil, fmt.Errorf("%w: parameter line %q has %d fields, want at least 5",
				ErrBadReply, line, len(fields))
		}

		cmdLevel, err := strconv.Atoi(strings.TrimSpace(fields[0]))
		if err != nil {
			return nil, fmt.Errorf("%w: command level %q is not a number", ErrBadReply, fields[0])
		}
		maxItems, err := strconv.Atoi(strings.TrimSpace(fields[1]))
		if err != nil {
			return nil, fmt.Errorf("%w: max items %q is not a number", ErrBadReply, fields[1])
		}

		param := model.Parameter{
			ID:           uint32(id),
			CommandLevel: cmdLevel,
			MaxItems:     maxItems,
			DataType:     strings.TrimSpace(fields[2]),
			// fields[3] is the function-group designator, not useful
			// for introspection output.
			Description: strings.TrimSpace(fields[4]),
		}

		// Remaining fields enumerate fixed values as "<Value>=<Desc>".
		for _, opt := range fields[5:] {
			value, desc, found := strings.Cut(opt, "=")
			if !found {
				continue
			}
			if param.Options == nil {
				param.Options = make(map[string]string)
			}
			param.Options[strings.TrimSpace(value)] = strings.TrimSpace(desc)
		}

		params = append(params, param)
	}

	return params, nil
}

// ParseAxisValues parses a reply made of "<axis>=<value>" lines into a
// map. Used for POS?, ONT?, FRF?, and CST? replies.
func ParseAxisValues(reply string) (map[string]string, error) {
	result := make(map[string]string)
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		axis, value, found := strings.Cut(line, "=")
		if !found {
			return nil, fmt.Errorf("%w: axis value line %q has no '='", ErrBadReply, line)
		}
		result[strings.TrimSpace(axis)] = strings.TrimSpace(value)
	}
	return result, nil
}
