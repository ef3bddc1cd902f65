// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package storage

import (
	"io"

	"github.com/gx-org/setir/build/fmterr"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type file struct {
	Tensors yaml.Node `yaml:"tensors"`
}

// Decode reads a descriptor from YAML. The document maps the keys of
// tensors to their storage, for example:
//
//	tensors:
//	  K:
//	    kind: system-reduced
//	    set: springs
//	    card: 2
//	  points.x:
//	    kind: set-indexed
//	    set: points
//
// Tensors are added in the order of the document.
func Decode(r io.Reader) (*Storage, error) {
	b := NewBuilder()
	var f file
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return b.Build(), nil
		}
		return nil, errors.Wrap(err, "cannot decode storage")
	}
	switch f.Tensors.Kind {
	case 0:
		return b.Build(), nil
	case yaml.MappingNode:
	default:
		return nil, fmterr.Preconditionf("line %d: tensors is not a mapping", f.Tensors.Line)
	}
	content := f.Tensors.Content
	for i := 0; i+1 < len(content); i += 2 {
		key, val := content[i], content[i+1]
		ts := &TensorStorage{}
		if err := val.Decode(ts); err != nil {
			return nil, errors.Wrapf(err, "cannot decode storage of %s", key.Value)
		}
		if err := ts.Validate(); err != nil {
			return nil, errors.WithMessagef(err, "line %d: %s", key.Line, key.Value)
		}
		b.Add(key.Value, ts)
	}
	return b.Build(), nil
}

// Encode writes a descriptor as YAML, in the format read by Decode.
func Encode(w io.Writer, s *Storage) error {
	tensors := &yaml.Node{Kind: yaml.MappingNode}
	for key, ts := range s.All() {
		val := &yaml.Node{}
		if err := val.Encode(ts); err != nil {
			return errors.Wrapf(err, "cannot encode storage of %s", key)
		}
		tensors.Content = append(tensors.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: key},
			val,
		)
	}
	root := &yaml.Node{
		Kind: yaml.MappingNode,
		Content: []*yaml.Node{
			{Kind: yaml.ScalarNode, Value: "tensors"},
			tensors,
		},
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return err
	}
	return enc.Close()
}
