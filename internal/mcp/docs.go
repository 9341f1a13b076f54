package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `groupmeet collects weekly availability from a group and shows when most people are free.

Core concepts:
- Calendar: one scheduling instance, identified by calendar_key. The first user to open a calendar becomes its facilitator.
- Grid: 7 days (Sun first) of 15-minute rows. Cell id = day*slots_per_day + row.
- Vector: one boolean per cell for the current user, true = free.
- Aggregate: for each cell, the users who are free there, and heat = free users / total users.

Workflow:
1) open_calendar (omit calendar_key to create one) and keep the returned key.
2) Paint: pointer_down on a cell flips it; pointer_over extends the stroke with the same value; pointer_up stores the vector once.
3) If pointer_up reports STORAGE_UNAVAILABLE the edit is kept in memory; call flush to retry.
4) get_aggregate or best_slots to pick a time.

Anonymous callers can read calendars but cannot paint.

Docs:
- groupmeet://docs/grid
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "groupmeet://docs/grid",
		Name:        "docs_grid",
		Title:       "groupmeet grid and storage format",
		Description: "Slot numbering, labels and the stored calendar document.",
		Content: `# Grid

Cells are numbered column-major: cell = day*slots_per_day + row, day 0 is Sunday.
Rows are 15 minutes apart. get_labels returns one label per row ("9:30am") and
hour_starts, the rows that fall on the hour.

# Stored document

    {"widgetId": "<key>", "facilitator": "<user>", "calendarData": {"<user>": [false, true, ...]}}

Keys in calendarData starting with "_" are metadata and never counted as users.
Older documents may store a list of free cell ids instead of a boolean array;
depending on the server's legacy policy these are converted or reset to all busy.

Saves replace only the caller's entry but are not locked, so two users saving at
the same moment may lose one update.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
