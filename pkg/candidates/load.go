package candidates

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"golang.org/x/sync/errgroup"

	"github.com/agentstation/candimap/pkg/constants"
	"github.com/agentstation/candimap/pkg/errors"
	"github.com/agentstation/candimap/pkg/logging"
)

// Format is a serialization format for envelopes and record arrays.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFor picks a format from a file extension. Unknown extensions are JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Decode reads either a full envelope or a bare array of records.
func Decode(data []byte, format Format) (*Envelope, error) {
	if format == FormatYAML {
		converted, err := yaml.YAMLToJSON(data)
		if err != nil {
			return nil, errors.WrapParse("yaml", "", err)
		}
		data = converted
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return &Envelope{}, nil
	}

	if trimmed[0] == '[' {
		var records []Record
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, errors.WrapParse("json", "", err)
		}
		return &Envelope{Data: records}, nil
	}

	var env Envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, errors.WrapParse("json", "", err)
	}
	return &env, nil
}

// Read decodes an envelope from r.
func Read(r io.Reader, format Format) (*Envelope, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.WrapIO("read", "", err)
	}
	return Decode(data, format)
}

// LoadFile decodes the envelope or record array stored at path.
func LoadFile(path string) (*Envelope, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	env, err := Decode(data, FormatFor(path))
	if err != nil {
		var parseErr *errors.ParseError
		if errors.As(err, &parseErr) {
			parseErr.File = path
			return nil, parseErr
		}
		return nil, errors.WrapResource("load", "records", path, err)
	}
	return env, nil
}

// LoadFiles decodes every path concurrently and concatenates the records in
// argument order, so the result is independent of scheduling. Records with an
// empty Source are stamped with the base name of their file.
func LoadFiles(ctx context.Context, paths []string) ([]Record, error) {
	loaded := make([][]Record, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(constants.MaxConcurrentLoads)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			env, err := LoadFile(path)
			if err != nil {
				return err
			}
			source := filepath.Base(path)
			for j := range env.Data {
				if env.Data[j].Source == "" {
					env.Data[j].Source = source
				}
			}
			logging.FromContext(logging.WithSource(ctx, source)).Debug().
				Str("path", path).
				Int("records", len(env.Data)).
				Msg("Loaded input")
			loaded[i] = env.Data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var records []Record
	for _, batch := range loaded {
		records = append(records, batch...)
	}
	return records, nil
}
