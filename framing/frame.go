// Package framing reshapes converter output into a framed JSON-LD tree.
//
// Converter output holds one self-contained JSON-LD document per flush.
// ReadGraph merges those documents into a single graph, which Frame then
// hands to the JSON-LD processor together with a frame document.
package framing

import (
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"

	jsoniter "github.com/json-iterator/go"
	"github.com/piprate/json-gold/ld"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrEmptyInput is returned when the data file holds no JSON-LD document.
var ErrEmptyInput = errors.New("no JSON-LD document in input")

// ReadGraph reads one or more concatenated JSON-LD documents from r and
// merges them into a single document. Each document may be a node object,
// an array of node objects, or an object with "@context" and "@graph". All
// documents carrying a context must carry the same one.
func ReadGraph(r io.Reader) (map[string]any, error) {
	dec := jsonAPI.NewDecoder(r)

	var (
		shared any
		nodes  = make([]any, 0)
		docs   int
	)
	for dec.More() {
		var doc any
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode document %d: %w", docs+1, err)
		}
		docs++

		switch v := doc.(type) {
		case []any:
			nodes = append(nodes, v...)
		case map[string]any:
			if ctx, ok := v["@context"]; ok {
				if shared == nil {
					shared = ctx
				} else if !reflect.DeepEqual(shared, ctx) {
					return nil, fmt.Errorf("document %d: context differs from first document", docs)
				}
			}
			if g, ok := v["@graph"]; ok {
				items, ok := g.([]any)
				if !ok {
					items = []any{g}
				}
				nodes = append(nodes, items...)
				continue
			}
			node := make(map[string]any, len(v))
			for k, val := range v {
				if k != "@context" {
					node[k] = val
				}
			}
			nodes = append(nodes, node)
		default:
			return nil, fmt.Errorf("document %d: expected object or array, got %T", docs, doc)
		}
	}
	if docs == 0 {
		return nil, ErrEmptyInput
	}

	merged := map[string]any{"@graph": nodes}
	if shared != nil {
		merged["@context"] = shared
	}
	return merged, nil
}

// Frame applies frame to input with the JSON-LD processor.
func Frame(input, frame any) (map[string]any, error) {
	proc := ld.NewJsonLdProcessor()
	opts := ld.NewJsonLdOptions("")

	framed, err := proc.Frame(input, frame, opts)
	if err != nil {
		return nil, fmt.Errorf("frame graph: %w", err)
	}
	return framed, nil
}

// FrameFile frames the converter output at dataPath with the frame document
// at framePath and writes the result as JSON to outPath.
func FrameFile(outPath, framePath, dataPath string) error {
	frame, err := readJSON(framePath)
	if err != nil {
		return fmt.Errorf("read frame: %w", err)
	}

	data, err := os.Open(dataPath)
	if err != nil {
		return fmt.Errorf("open data: %w", err)
	}
	defer data.Close()

	input, err := ReadGraph(data)
	if err != nil {
		return fmt.Errorf("read data: %w", err)
	}

	framed, err := Frame(input, frame)
	if err != nil {
		return err
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	enc := jsonAPI.NewEncoder(out)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(framed); err != nil {
		_ = out.Close()
		return fmt.Errorf("write output: %w", err)
	}
	return out.Close()
}

func readJSON(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var v any
	if err := jsonAPI.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return v, nil
}
