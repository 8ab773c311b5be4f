package store

import "encoding/json"

// marshalJSON 序列化 JSON 列，失败时落空数组，避免写入非法文本
func marshalJSON(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// unmarshalJSON 反序列化 JSON 列，容忍空串与历史脏数据
func unmarshalJSON(data string, v interface{}) {
	if data == "" {
		return
	}
	_ = json.Unmarshal([]byte(data), v)
}
