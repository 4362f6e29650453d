package sections

import (
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// sectionListSchemaJSON 模型输出的形状约束
// 顶层必须是数组，元素必须是对象，title和content只允许标量值
// index不做约束，解析时会按数组位置重新计算
const sectionListSchemaJSON = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "array",
	"items": {
		"type": "object",
		"properties": {
			"title":   {"type": ["string", "number", "boolean", "null"]},
			"content": {"type": ["string", "number", "boolean", "null"]}
		}
	}
}`

// sectionListSchema 编译好的JSON Schema
// 编译一次后只读，可以被并发使用
var sectionListSchema = mustCompileSchema()

func mustCompileSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("sections.json", strings.NewReader(sectionListSchemaJSON)); err != nil {
		panic(err)
	}
	return compiler.MustCompile("sections.json")
}
