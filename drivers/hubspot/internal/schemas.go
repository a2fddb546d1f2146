package driver

import (
	"github.com/datazip-inc/olake-hubspot/types"
)

// HubSpot omits empty values, so every column is nullable.
func stringType() *types.Property    { return types.NewProperty(types.String, types.Null) }
func integerType() *types.Property   { return types.NewProperty(types.Int64, types.Null) }
func booleanType() *types.Property   { return types.NewProperty(types.Bool, types.Null) }
func timestampType() *types.Property { return types.NewProperty(types.Timestamp, types.Null) }

func objectType(properties map[string]*types.Property) *types.Property {
	return types.NewProperty(types.Object, types.Null).WithProperties(properties)
}

func arrayType(items *types.Property) *types.Property {
	return types.NewProperty(types.Array, types.Null).WithItems(items)
}

type columns map[string]*types.Property

// schema copies the columns into a fresh TypeSchema, so streams never share
// mutable properties.
func (c columns) schema() *types.TypeSchema {
	schema := types.NewTypeSchema()
	for name, property := range c {
		schema.AddProperty(name, cloneProperty(property))
	}
	return schema
}

func cloneProperty(property *types.Property) *types.Property {
	clone := types.NewProperty(property.Type.Array()...)
	if property.Properties != nil {
		nested := make(map[string]*types.Property, len(property.Properties))
		for name, child := range property.Properties {
			nested[name] = cloneProperty(child)
		}
		clone.Properties = nested
	}
	if property.Items != nil {
		clone.Items = cloneProperty(property.Items)
	}
	return clone
}

// crmObjectColumns are shared by every /crm/v3/objects record.
func crmObjectColumns(properties columns) columns {
	return columns{
		"id":         stringType(),
		"properties": objectType(properties),
		"createdAt":  timestampType(),
		"updatedAt":  timestampType(),
		"archived":   booleanType(),
	}
}

var usersSchema = columns{
	"id":            stringType(),
	"email":         stringType(),
	"roleIds":       arrayType(stringType()),
	"primaryteamid": stringType(),
}

var ownersSchema = columns{
	"id":        stringType(),
	"email":     stringType(),
	"firstName": stringType(),
	"lastName":  stringType(),
	"userId":    integerType(),
	"createdAt": stringType(),
	"updatedAt": stringType(),
	"archived":  booleanType(),
}

func pipelineSchema(stageMetadata columns) columns {
	return columns{
		"label":        stringType(),
		"displayOrder": integerType(),
		"active":       booleanType(),
		"stages": arrayType(objectType(columns{
			"label":        stringType(),
			"displayOrder": integerType(),
			"metadata":     objectType(stageMetadata),
			"stageId":      stringType(),
			"createdAt":    integerType(),
			"updatedAt":    integerType(),
			"active":       booleanType(),
		})),
		"objectType":   stringType(),
		"objectTypeId": stringType(),
		"pipelineId":   stringType(),
		"createdAt":    integerType(),
		"updatedAt":    integerType(),
		"default":      booleanType(),
	}
}

var ticketPipelinesSchema = pipelineSchema(columns{
	"ticketState": stringType(),
	"isClosed":    stringType(),
})

var dealPipelinesSchema = pipelineSchema(columns{
	"isClosed":    booleanType(),
	"probability": stringType(),
})

var emailSubscriptionsSchema = columns{
	"id":             integerType(),
	"portalId":       integerType(),
	"name":           stringType(),
	"description":    stringType(),
	"active":         booleanType(),
	"internal":       booleanType(),
	"category":       stringType(),
	"channel":        stringType(),
	"internalName":   stringType(),
	"businessUnitId": integerType(),
}

var feedbackSubmissionsSchema = crmObjectColumns(columns{
	"city":                stringType(),
	"createdDate":         stringType(),
	"domain":              stringType(),
	"hs_lastmodifieddate": stringType(),
	"industry":            stringType(),
	"name":                stringType(),
	"phone":               stringType(),
	"state":               stringType(),
})

var productsSchema = crmObjectColumns(columns{
	"createdate":                  stringType(),
	"description":                 stringType(),
	"hs_cost_of_goods_sold":       stringType(),
	"hs_lastmodifieddate":         stringType(),
	"hs_recurring_billing_period": stringType(),
	"hs_sku":                      stringType(),
	"name":                        stringType(),
	"price":                       stringType(),
})

var ticketsSchema = crmObjectColumns(columns{
	"createdate":          stringType(),
	"hs_lastmodifieddate": stringType(),
	"hs_pipeline":         stringType(),
	"hs_pipeline_stage":   stringType(),
	"hs_ticket_priority":  stringType(),
	"hubspot_owner_id":    stringType(),
	"subject":             stringType(),
})

var quotesSchema = crmObjectColumns(columns{
	"hs_createdate":      stringType(),
	"hs_expiration_date": stringType(),
	"hs_quote_amount":    stringType(),
	"hs_quote_number":    stringType(),
	"hs_status":          stringType(),
	"hs_terms":           stringType(),
	"hs_title":           stringType(),
	"hubspot_owner_id":   stringType(),
})

var formsSchema = columns{
	"id":          stringType(),
	"name":        stringType(),
	"formType":    stringType(),
	"createdAt":   timestampType(),
	"updatedAt":   timestampType(),
	"archived":    booleanType(),
	"fieldGroups": arrayType(objectType(nil)),
	"configuration": objectType(columns{
		"language":                    stringType(),
		"cloneable":                   booleanType(),
		"editable":                    booleanType(),
		"archivable":                  booleanType(),
		"createNewContactForNewEmail": booleanType(),
	}),
}

var formSubmissionsSchema = columns{
	"formId":      stringType(),
	"submittedAt": integerType(),
	"pageUrl":     stringType(),
	"values": arrayType(objectType(columns{
		"name":         stringType(),
		"value":        stringType(),
		"objectTypeId": stringType(),
	})),
}

var propertiesSchema = columns{
	"name":            stringType(),
	"label":           stringType(),
	"type":            stringType(),
	"fieldType":       stringType(),
	"description":     stringType(),
	"groupName":       stringType(),
	"displayOrder":    integerType(),
	"calculated":      booleanType(),
	"externalOptions": booleanType(),
	"hasUniqueValue":  booleanType(),
	"hidden":          booleanType(),
	"hubspotDefined":  booleanType(),
	"formField":       booleanType(),
	"options": arrayType(objectType(columns{
		"label":        stringType(),
		"value":        stringType(),
		"description":  stringType(),
		"displayOrder": integerType(),
		"hidden":       booleanType(),
	})),
	"modificationMetadata": objectType(columns{
		"archivable":         booleanType(),
		"readOnlyDefinition": booleanType(),
		"readOnlyValue":      booleanType(),
	}),
	"createdAt":      timestampType(),
	"updatedAt":      timestampType(),
	"archived":       booleanType(),
	hubspotObjectKey: stringType(),
}
