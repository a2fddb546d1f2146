package types

type DataType string

const (
	Null      DataType = "null"
	Int64     DataType = "integer"
	Float64   DataType = "number"
	String    DataType = "string"
	Bool      DataType = "boolean"
	Object    DataType = "object"
	Array     DataType = "array"
	Timestamp DataType = "timestamp"
)

type Record map[string]any

// jsonSchemaType maps a column type onto the JSON-schema vocabulary.
func (d DataType) jsonSchemaType() string {
	if d == Timestamp {
		return string(String)
	}
	return string(d)
}
