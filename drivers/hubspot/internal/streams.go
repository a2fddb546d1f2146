package driver

import (
	"sort"
)

// API prefixes of the HubSpot endpoints streams read from
const (
	crmV3             = "/crm/v3"
	crmPipelinesV1    = "/crm-pipelines/v1"
	settingsV3        = "/settings/v3"
	emailPublicV1     = "/email/public/v1"
	marketingV3       = "/marketing/v3"
	formIntegrationV1 = "/form-integrations/v1"

	resultsPath             = "results"
	subscriptionDefinitions = "subscriptionDefinitions"
	hubspotObjectKey        = "hubspot_object"
	formSubmissionsLimit    = 50
)

// StreamDefinition describes how one stream is read from HubSpot.
type StreamDefinition struct {
	Name string
	// Base is the versioned API prefix Path and IncrementalPath are relative to
	Base            string
	Path            string
	IncrementalPath string
	PrimaryKey      []string
	// ReplicationKey is read from the record's properties and lifted to the top level
	ReplicationKey string
	RecordsPath    string
	// ObjectType names the CRM object whose properties are discovered at runtime;
	// empty for streams with a static schema
	ObjectType string
	Schema     columns
	// PageSize overrides the configured page size when set
	PageSize int
	// fetcher replaces the default paginated read
	fetcher func(h *HubSpot, def *StreamDefinition, properties []string) FetchFunc
}

func (d *StreamDefinition) Incremental() bool {
	return d.ReplicationKey != "" && d.IncrementalPath != ""
}

func (d *StreamDefinition) recordsPath() string {
	if d.RecordsPath == "" {
		return resultsPath
	}
	return d.RecordsPath
}

func dynamicObject(name, objectType, replicationKey string) *StreamDefinition {
	return &StreamDefinition{
		Name:            name,
		Base:            crmV3,
		Path:            "/objects/" + objectType,
		IncrementalPath: "/objects/" + objectType + "/search",
		PrimaryKey:      []string{"id"},
		ReplicationKey:  replicationKey,
		ObjectType:      objectType,
	}
}

func staticStream(name, base, path string, schema columns, primaryKey ...string) *StreamDefinition {
	return &StreamDefinition{
		Name:       name,
		Base:       base,
		Path:       path,
		PrimaryKey: primaryKey,
		Schema:     schema,
	}
}

// propertySubStreams lists, in merge order, the objects whose property
// definitions are concatenated ahead of the notes properties.
var propertySubStreams = []struct {
	object string
	path   string
}{
	{"tickets", "/properties/tickets"},
	{"deals", "/properties/deals"},
	{"contacts", "/properties/contacts"},
	{"company", "/properties/company"},
	{"product", "/properties/product"},
	{"line_item", "/properties/line_item"},
	{"email", "/properties/email"},
	{"postal_mail", "/properties/postal_mail"},
	{"call", "/properties/call"},
	{"goal_targets", "/properties/goal_targets"},
	{"meeting", "/properties/meeting"},
	{"task", "/properties/task"},
	{"communication", "/properties/communication"},
}

func streamDefinitions() map[string]*StreamDefinition {
	definitions := []*StreamDefinition{
		dynamicObject("contacts", "contacts", "lastmodifieddate"),
		dynamicObject("companies", "companies", "hs_lastmodifieddate"),
		dynamicObject("deals", "deals", "hs_lastmodifieddate"),
		dynamicObject("line_items", "line_items", "hs_lastmodifieddate"),
		dynamicObject("goal_targets", "goal_targets", "hs_lastmodifieddate"),
		dynamicObject("calls", "calls", "hs_lastmodifieddate"),
		dynamicObject("communications", "communications", "hs_lastmodifieddate"),
		dynamicObject("emails", "emails", "hs_lastmodifieddate"),
		dynamicObject("meetings", "meetings", "hs_lastmodifieddate"),
		dynamicObject("notes", "notes", "hs_lastmodifieddate"),
		dynamicObject("postal_mail", "postal_mail", "hs_lastmodifieddate"),
		dynamicObject("tasks", "tasks", "hs_lastmodifieddate"),

		staticStream("users", settingsV3, "/users", usersSchema, "id"),
		staticStream("owners", crmV3, "/owners", ownersSchema, "id"),
		staticStream("ticket_pipelines", crmPipelinesV1, "/pipelines/tickets", ticketPipelinesSchema, "createdAt"),
		staticStream("deal_pipelines", crmPipelinesV1, "/pipelines/deals", dealPipelinesSchema, "createdAt"),
		staticStream("feedback_submissions", crmV3, "/objects/feedback_submissions", feedbackSubmissionsSchema, "id"),
		staticStream("products", crmV3, "/objects/products", productsSchema, "id"),
		staticStream("tickets", crmV3, "/objects/tickets", ticketsSchema, "id"),
		staticStream("quotes", crmV3, "/objects/quotes", quotesSchema, "id"),
		staticStream("forms", marketingV3, "/forms", formsSchema, "id"),
	}

	subscriptions := staticStream("email_subscriptions", emailPublicV1, "/subscriptions", emailSubscriptionsSchema, "id")
	subscriptions.RecordsPath = subscriptionDefinitions

	submissions := staticStream("form_submissions", formIntegrationV1, "/submissions/forms/{formGuid}", formSubmissionsSchema, "formId", "submittedAt")
	submissions.PageSize = formSubmissionsLimit
	submissions.fetcher = (*HubSpot).formSubmissionsFetcher

	properties := staticStream("properties", crmV3, "/properties/notes", propertiesSchema, "name", hubspotObjectKey)
	properties.fetcher = (*HubSpot).propertiesFetcher

	definitions = append(definitions, subscriptions, submissions, properties)

	byName := make(map[string]*StreamDefinition, len(definitions))
	for _, def := range definitions {
		byName[def.Name] = def
	}
	return byName
}

func definitionNames(definitions map[string]*StreamDefinition) []string {
	names := make([]string, 0, len(definitions))
	for name := range definitions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
