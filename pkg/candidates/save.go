package candidates

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/candimap/pkg/constants"
	"github.com/agentstation/candimap/pkg/errors"
)

// Encode serializes v (an envelope or a record slice) in the given format.
// JSON is indented with two spaces and ends with a newline.
func Encode(v any, format Format) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, errors.WrapResource("encode", "envelope", "", err)
	}
	if format == FormatYAML {
		data, err = yaml.JSONToYAML(data)
		if err != nil {
			return nil, errors.WrapResource("encode", "envelope", "", err)
		}
		return data, nil
	}
	return append(data, '\n'), nil
}

// Write encodes v to w.
func Write(w io.Writer, v any, format Format) error {
	data, err := Encode(v, format)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return errors.WrapIO("write", "", err)
	}
	return nil
}

// SaveFile writes v to path, creating parent directories. The format
// follows the file extension.
func SaveFile(path string, v any) error {
	data, err := Encode(v, FormatFor(path))
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
			return errors.WrapIO("create", dir, err)
		}
	}
	if err := os.WriteFile(path, data, constants.FilePermissions); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}
