package notification

// Kind identifies the type of notification event.
type Kind string

const (
	KindRequestSubmitted          Kind = "request_submitted"
	KindRequestDownloading        Kind = "request_downloading"
	KindRequestPartiallyAvailable Kind = "request_partially_available"
	KindRequestAvailable          Kind = "request_available"
	KindRequestRemoved            Kind = "request_removed"
)
