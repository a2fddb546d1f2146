package types

import (
	"fmt"
	"sort"
	"sync"

	"github.com/datazip-inc/olake-hubspot/utils"
	"github.com/goccy/go-json"
	"github.com/parquet-go/parquet-go"
)

type TypeSchema struct {
	mu         sync.Mutex
	Properties sync.Map `json:"-"`
}

func NewTypeSchema() *TypeSchema {
	return &TypeSchema{}
}

// Property describes one column. Object columns may list nested
// Properties and array columns an Items element type.
type Property struct {
	Type       *Set[DataType]       `json:"type,omitempty"`
	Properties map[string]*Property `json:"properties,omitempty"`
	Items      *Property            `json:"items,omitempty"`
}

func NewProperty(types ...DataType) *Property {
	return &Property{Type: NewSet(types...)}
}

// WithProperties attaches nested columns to an object property.
func (p *Property) WithProperties(properties map[string]*Property) *Property {
	p.Properties = properties
	return p
}

// WithItems sets the element type of an array property.
func (p *Property) WithItems(items *Property) *Property {
	p.Items = items
	return p
}

func (p *Property) DataType() DataType {
	types := p.Type.Array()
	i, found := utils.ArrayContains(types, func(elem DataType) bool {
		return elem != Null
	})
	if !found {
		return Null
	}
	return types[i]
}

func (p *Property) Nullable() bool {
	return p.Type.Exists(Null)
}

func (p *Property) jsonSchema() map[string]any {
	types := []string{}
	seen := map[string]bool{}
	for _, typ := range p.Type.Array() {
		name := typ.jsonSchemaType()
		if !seen[name] {
			seen[name] = true
			types = append(types, name)
		}
	}

	doc := map[string]any{"type": types}
	if len(p.Properties) > 0 {
		nested := map[string]any{}
		for name, property := range p.Properties {
			nested[name] = property.jsonSchema()
		}
		doc["properties"] = nested
	}
	if p.Items != nil {
		doc["items"] = p.Items.jsonSchema()
	}
	return doc
}

func (t *TypeSchema) AddTypes(column string, types ...DataType) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, found := t.Properties.Load(column)
	if !found {
		t.Properties.Store(column, NewProperty(types...))
		return
	}
	p.(*Property).Type.Insert(types...)
}

// AddProperty stores a fully described column, replacing any previous definition.
func (t *TypeSchema) AddProperty(column string, property *Property) {
	t.Properties.Store(column, property)
}

func (t *TypeSchema) GetType(column string) (DataType, error) {
	p, found := t.Properties.Load(column)
	if !found {
		return "", fmt.Errorf("column [%s] missing from type schema", column)
	}
	return p.(*Property).DataType(), nil
}

func (t *TypeSchema) GetProperty(column string) (bool, *Property) {
	p, found := t.Properties.Load(column)
	if !found {
		return false, nil
	}
	return true, p.(*Property)
}

// Columns returns the column names in sorted order.
func (t *TypeSchema) Columns() []string {
	columns := []string{}
	t.Properties.Range(func(key, _ any) bool {
		columns = append(columns, key.(string))
		return true
	})
	sort.Strings(columns)
	return columns
}

// ToJSONSchema renders the schema as a draft-07 object document for record validation.
func (t *TypeSchema) ToJSONSchema() map[string]any {
	properties := map[string]any{}
	t.Properties.Range(func(key, value any) bool {
		properties[key.(string)] = value.(*Property).jsonSchema()
		return true
	})

	return map[string]any{
		"$schema":    "http://json-schema.org/draft-07/schema#",
		"type":       "object",
		"properties": properties,
	}
}

// ToParquet builds a parquet schema with one optional leaf per column.
// Objects and arrays are stored as JSON text.
func (t *TypeSchema) ToParquet() *parquet.Schema {
	group := parquet.Group{}
	t.Properties.Range(func(key, value any) bool {
		group[key.(string)] = parquet.Optional(value.(*Property).DataType().parquetNode())
		return true
	})
	return parquet.NewSchema("olake_schema", group)
}

func (d DataType) parquetNode() parquet.Node {
	switch d {
	case Int64:
		return parquet.Int(64)
	case Float64:
		return parquet.Leaf(parquet.DoubleType)
	case Bool:
		return parquet.Leaf(parquet.BooleanType)
	case Timestamp:
		return parquet.Timestamp(parquet.Millisecond)
	case String:
		return parquet.String()
	default:
		return parquet.JSON()
	}
}

func (t *TypeSchema) MarshalJSON() ([]byte, error) {
	properties := make(map[string]*Property)
	t.Properties.Range(func(key, value any) bool {
		properties[key.(string)] = value.(*Property)
		return true
	})

	return json.Marshal(struct {
		Properties map[string]*Property `json:"properties"`
	}{Properties: properties})
}

func (t *TypeSchema) UnmarshalJSON(data []byte) error {
	aux := struct {
		Properties map[string]*Property `json:"properties"`
	}{}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	for key, value := range aux.Properties {
		t.Properties.Store(key, value)
	}
	return nil
}
