package domain

// RunStatus is the overall outcome of a batch invocation.
type RunStatus string

const (
	RunStatusComplete    RunStatus = "complete"
	RunStatusPartial     RunStatus = "partial"
	RunStatusFailed      RunStatus = "failed"
	RunStatusNoDocuments RunStatus = "no_documents"
)

// ItemStatus is the outcome of one work item.
type ItemStatus string

const (
	ItemStatusSucceeded ItemStatus = "succeeded"
	ItemStatusDegraded  ItemStatus = "degraded"
	ItemStatusFailed    ItemStatus = "failed"
)

// AllowedContentTypes maps document extensions (with dot) to MIME content types.
var AllowedContentTypes = map[string]string{
	".pdf":  "application/pdf",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
}
