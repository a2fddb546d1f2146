package driver

import (
	"context"
	"fmt"
	"strings"
)

// formSubmissionsFetcher lists every form and pages its submissions, adding
// the form's id to each submission.
func (h *HubSpot) formSubmissionsFetcher(def *StreamDefinition, _ []string) FetchFunc {
	return func(ctx context.Context, emit EmitFunc) error {
		formIDs := []string{}
		listForms := h.pagedFetcher(marketingV3+"/forms", resultsPath, h.config.PageSize, nil)
		err := listForms(ctx, func(_ context.Context, form map[string]any) error {
			if id, found := form["id"]; found && id != nil {
				formIDs = append(formIDs, fmt.Sprintf("%v", id))
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to list forms: %w", err)
		}

		for _, formID := range formIDs {
			path := def.Base + strings.ReplaceAll(def.Path, "{formGuid}", formID)
			submissions := tagged(h.pagedFetcher(path, def.recordsPath(), h.pageSize(def), nil), "formId", formID)
			if err := submissions(ctx, emit); err != nil {
				return err
			}
		}
		return nil
	}
}
