package render

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/matzehuels/topoviz/pkg/errors"
)

// Format is an output format.
type Format string

const (
	FormatJSON Format = "json"
	FormatDOT  Format = "dot"
	FormatSVG  Format = "svg"
	FormatPDF  Format = "pdf"
	FormatPNG  Format = "png"
)

// Formats lists every output format.
var Formats = []Format{FormatJSON, FormatDOT, FormatSVG, FormatPDF, FormatPNG}

// ParseFormat resolves a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unknown format %q (want json, dot, svg, pdf or png)", s)
}

// Binary reports whether the format is not text.
func (f Format) Binary() bool { return f == FormatPDF || f == FormatPNG }

// ToPDF converts SVG bytes to PDF using rsvg-convert.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func ToPDF(ctx context.Context, svg []byte) ([]byte, error) {
	return rsvgConvert(ctx, svg, "pdf")
}

// ToPNG converts SVG bytes to PNG using rsvg-convert with the given scale factor.
// Scale of 2.0 produces a 2x resolution image.
func ToPNG(ctx context.Context, svg []byte, scale float64) ([]byte, error) {
	if scale <= 0 {
		scale = 1
	}
	return rsvgConvert(ctx, svg, "png", "-z", fmt.Sprintf("%.2f", scale))
}

func rsvgConvert(ctx context.Context, svg []byte, format string, extraArgs ...string) ([]byte, error) {
	if _, err := exec.LookPath("rsvg-convert"); err != nil {
		return nil, errors.New(errors.ErrCodeUnsupported,
			"%s export requires librsvg. Install with:\n  macOS:  brew install librsvg\n  Linux:  apt install librsvg2-bin", format)
	}

	args := append([]string{"-f", format}, extraArgs...)
	cmd := exec.CommandContext(ctx, "rsvg-convert", args...)
	cmd.Stdin = bytes.NewReader(svg)

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "rsvg-convert: %s", strings.TrimSpace(errBuf.String()))
	}
	return out.Bytes(), nil
}
