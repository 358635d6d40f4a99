// Package common provides shared types and components for UI features.
package common

// NavItem is one entry of the header navigation.
type NavItem struct {
	Label string
	Path  string
}

// PageMeta holds the document-level settings of a page.
type PageMeta struct {
	Title       string
	Header      string
	Footer      string
	CurrentPath string
	// Wide lets the main pane use the full window width.
	Wide bool
	Nav  []NavItem
	// LiveReload subscribes the page to asset change notifications.
	LiveReload bool
}

// LiveReloadPath is the event stream pages subscribe to when LiveReload is set.
const LiveReloadPath = "/reload"

// AlertKind selects the styling of an Alert.
type AlertKind string

// Alert kinds.
const (
	AlertInfo    AlertKind = "info"
	AlertWarning AlertKind = "warning"
	AlertError   AlertKind = "error"
)

// DatastarScript is the client runtime the pages load.
const DatastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0/bundles/datastar.js"
