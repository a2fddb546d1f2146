package abstract

import (
	"fmt"
	"sync"

	"github.com/datazip-inc/olake-hubspot/constants"
	"github.com/datazip-inc/olake-hubspot/types"
	"github.com/datazip-inc/olake-hubspot/utils/logger"
	"github.com/juju/gojsonschema"
)

// recordValidator checks records against their stream before they are written.
// Compiled schemas and reported violations are cached per stream.
type recordValidator struct {
	schemas  sync.Map // stream ID -> *gojsonschema.Schema
	reported sync.Map // stream ID + violation -> struct{}
}

func newRecordValidator() *recordValidator {
	return &recordValidator{}
}

// validate fails when a primary-key field is missing; other schema
// violations are logged once per stream and violation.
func (v *recordValidator) validate(stream types.StreamInterface, record map[string]any) error {
	for _, key := range stream.GetStream().SourceDefinedPrimaryKey.Array() {
		if value, found := record[key]; !found || value == nil {
			return fmt.Errorf("%w: field[%s] of stream[%s]", constants.ErrMissingPrimary, key, stream.ID())
		}
	}

	schema, err := v.schema(stream)
	if err != nil {
		logger.Debugf("skipping schema validation of stream[%s]: %s", stream.ID(), err)
		return nil
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(record))
	if err != nil {
		logger.Debugf("failed to validate record of stream[%s]: %s", stream.ID(), err)
		return nil
	}
	if result.Valid() {
		return nil
	}

	for _, violation := range result.Errors() {
		key := fmt.Sprintf("%s/%s", stream.ID(), violation.String())
		if _, seen := v.reported.LoadOrStore(key, struct{}{}); !seen {
			logger.Warnf("record of stream[%s] does not match schema: %s", stream.ID(), violation.String())
		}
	}
	return nil
}

func (v *recordValidator) schema(stream types.StreamInterface) (*gojsonschema.Schema, error) {
	if cached, found := v.schemas.Load(stream.ID()); found {
		return cached.(*gojsonschema.Schema), nil
	}

	if stream.Schema() == nil {
		return nil, fmt.Errorf("stream has no schema")
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(stream.Schema().ToJSONSchema()))
	if err != nil {
		return nil, err
	}
	v.schemas.Store(stream.ID(), schema)
	return schema, nil
}
