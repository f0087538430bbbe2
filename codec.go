package main

import (
	"encoding/json"
)

// 普通JSON编解码，替换connect默认的protojson，使/floodfill_pt/接受任意JSON消息
type jsonCodec struct{}

func (jsonCodec) Name() string {
	return "json"
}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
