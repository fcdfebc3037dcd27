// SPDX-License-Identifier: EPL-2.0

package sndmgr

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// isDefinition reports whether name refers to a definition file rather than
// to audio.
func isDefinition(name string) bool {
	return strings.EqualFold(filepath.Ext(name), DefinitionExt)
}

// parseDefinition reads "<sound file> <gain percent>". The sound file is
// relative to the definition file.
func parseDefinition(defPath string, data []byte) (string, float32, error) {
	fields := strings.Fields(string(data))
	if len(fields) < 2 {
		return "", 0, fmt.Errorf("%w: %s", ErrInvalidDefinition, defPath)
	}

	percent, err := strconv.ParseFloat(fields[1], 32)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %s: %w", ErrInvalidDefinition, defPath, err)
	}

	gain := float32(percent / 100)
	if gain < 0 || gain > 1 {
		return "", 0, fmt.Errorf("%w: %s: %v%%", ErrInvalidGain, defPath, percent)
	}

	file := filepath.FromSlash(fields[0])
	if !filepath.IsAbs(file) {
		file = filepath.Join(filepath.Dir(defPath), file)
	}

	return file, gain, nil
}
