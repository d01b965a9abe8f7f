// commands.go provides typed wrappers for the GCS2 command vocabulary
// used by the driver. Each wrapper sends one query or set command and
// parses the reply into a Go value.
package gcs

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mmr-tortoise/pictl/internal/model"
)

// Identification queries *IDN? and parses the comma-separated identity
// reply into a DeviceInfo.
func (c *Conn) Identification(ctx context.Context) (model.DeviceInfo, error) {
	reply, err := c.Query(ctx, "*IDN?")
	if err != nil {
		return model.DeviceInfo{}, err
	}
	return ParseIDN(reply)
}

// Help queries HLP? and returns a map of command mnemonic to its
// one-line description.
func (c *Conn) Help(ctx context.Context) (map[string]string, error) {
	reply, err := c.Query(ctx, "HLP?")
	if err != nil {
		return nil, err
	}
	return ParseHelp(reply), nil
}

// Parameters queries HPA? (help on parameters) and returns the parsed
// parameter catalog.
func (c *Conn) Parameters(ctx context.Context) ([]model.Parameter, error) {
	reply, err := c.Query(ctx, "HPA?")
	if err != nil {
		return nil, err
	}
	return ParseParameters(reply)
}

// Versions queries VER? and returns the component→version map reported
// by the controller firmware.
func (c *Conn) Versions(ctx context.Context) (map[string]string, error) {
	reply, err := c.Query(ctx, "VER?")
	if err != nil {
		return nil, err
	}
	return ParseVersions(reply), nil
}

// SyntaxVersion queries CSV? and returns the GCS syntax version string
// (e.g. "2.0").
func (c *Conn) SyntaxVersion(ctx context.Context) (string, error) {
	reply, err := c.Query(ctx, "CSV?")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

// Axes queries SAI? and returns the configured axis identifiers in
// controller order.
func (c *Conn) Axes(ctx context.Context) ([]string, error) {
	reply, err := c.Query(ctx, "SAI?")
	if err != nil {
		return nil, err
	}

	var axes []string
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			axes = append(axes, line)
		}
	}
	return axes, nil
}

// ValidAxisCharacters queries TVI? and returns the character set the
// controller accepts in axis identifiers.
func (c *Conn) ValidAxisCharacters(ctx context.Context) (string, error) {
	reply, err := c.Query(ctx, "TVI?")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

// StageType queries CST? for one axis and returns the name of the
// connected stage (e.g. "M-111.1DG" or "NOSTAGE").
func (c *Conn) StageType(ctx context.Context, axis string) (string, error) {
	reply, err := c.Query(ctx, "CST? "+axis)
	if err != nil {
		return "", err
	}

	values, err := ParseAxisValues(reply)
	if err != nil {
		return "", err
	}
	stage, ok := values[axis]
	if !ok {
		return "", fmt.Errorf("%w: CST? reply missing axis %q", ErrBadReply, axis)
	}
	return stage, nil
}

// Position queries POS? for one axis and returns its current position
// in physical units.
func (c *Conn) Position(ctx context.Context, axis string) (float64, error) {
	return c.queryAxisFloat(ctx, "POS?", axis)
}

// OnTarget queries ONT? and reports whether the axis has settled on its
// target position.
func (c *Conn) OnTarget(ctx context.Context, axis string) (bool, error) {
	return c.queryAxisBool(ctx, "ONT?", axis)
}

// Referenced queries FRF? and reports whether the axis has completed a
// reference move since power-up. Unreferenced axes reject absolute
// motion commands with GCS error 5.
func (c *Conn) Referenced(ctx context.Context, axis string) (bool, error) {
	return c.queryAxisBool(ctx, "FRF?", axis)
}

// Move commands an absolute move (MOV) of one axis.
func (c *Conn) Move(ctx context.Context, axis string, position float64) error {
	return c.Send(ctx, fmt.Sprintf("MOV %s %s", axis, formatFloat(position)))
}

// MoveRelative commands a relative move (MVR) of one axis.
func (c *Conn) MoveRelative(ctx context.Context, axis string, delta float64) error {
	return c.Send(ctx, fmt.Sprintf("MVR %s %s", axis, formatFloat(delta)))
}

// Reference starts a reference move to the reference switch (FRF) for
// one axis. The move runs asynchronously; poll Referenced / OnTarget to
// detect completion.
func (c *Conn) Reference(ctx context.Context, axis string) error {
	return c.Send(ctx, "FRF "+axis)
}

// queryAxisFloat runs a "<cmd> <axis>" query expecting an "axis=value"
// reply with a float value.
func (c *Conn) queryAxisFloat(ctx context.Context, cmd, axis string) (float64, error) {
	values, err := c.queryAxisValues(ctx, cmd, axis)
	if err != nil {
		return 0, err
	}

	raw, ok := values[axis]
	if !ok {
		return 0, fmt.Errorf("%w: %s reply missing axis %q", ErrBadReply, cmd, axis)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s value %q is not a number", ErrBadReply, cmd, raw)
	}
	return v, nil
}

// queryAxisBool runs a "<cmd> <axis>" query expecting an "axis=0|1" reply.
func (c *Conn) queryAxisBool(ctx context.Context, cmd, axis string) (bool, error) {
	values, err := c.queryAxisValues(ctx, cmd, axis)
	if err != nil {
		return false, err
	}

	raw, ok := values[axis]
	if !ok {
		return false, fmt.Errorf("%w: %s reply missing axis %q", ErrBadReply, cmd, axis)
	}
	switch strings.TrimSpace(raw) {
	case "0":
		return false, nil
	case "1":
		return true, nil
	default:
		return false, fmt.Errorf("%w: %s value %q is not boolean", ErrBadReply, cmd, raw)
	}
}

func (c *Conn) queryAxisValues(ctx context.Context, cmd, axis string) (map[string]string, error) {
	reply, err := c.Query(ctx, cmd+" "+axis)
	if err != nil {
		return nil, err
	}
	return ParseAxisValues(reply)
}

// formatFloat renders a position value the way controllers expect:
// plain decimal notation without exponent, trailing zeros trimmed.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
