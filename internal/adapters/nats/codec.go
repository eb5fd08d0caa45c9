package natsadapter

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// HeaderContentType carries the payload encoding on every published message.
const HeaderContentType = "Content-Type"

const (
	ContentTypeJSON  = "application/json"
	ContentTypeProto = "application/protobuf"
)

// Codec turns domain values into message payloads.
type Codec interface {
	ContentType() string
	Encode(v any) ([]byte, error)
}

// CodecFor returns the codec registered under name ("json" or "proto").
func CodecFor(name string) (Codec, error) {
	switch name {
	case "", "json":
		return JSONCodec{}, nil
	case "proto", "protobuf":
		return ProtoCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown codec %q", name)
	}
}

// JSONCodec is the default codec.
type JSONCodec struct{}

func (JSONCodec) ContentType() string          { return ContentTypeJSON }
func (JSONCodec) Encode(v any) ([]byte, error) { return json.Marshal(v) }

// ProtoCodec encodes values as a google.protobuf.Struct so consumers without
// generated types can still decode them.
type ProtoCodec struct{}

func (ProtoCodec) ContentType() string { return ContentTypeProto }

func (ProtoCodec) Encode(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("payload is not an object: %w", err)
	}
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(s)
}

// ToJSON converts a payload of the given content type to JSON.
// Unknown and empty content types are assumed to be JSON already.
func ToJSON(contentType string, data []byte) ([]byte, error) {
	if contentType != ContentTypeProto {
		return data, nil
	}
	var s structpb.Struct
	if err := proto.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode protobuf payload: %w", err)
	}
	return s.MarshalJSON()
}

// Decode unmarshals a payload of either content type into v.
func Decode(contentType string, data []byte, v any) error {
	raw, err := ToJSON(contentType, data)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}
