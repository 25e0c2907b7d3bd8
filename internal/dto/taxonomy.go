package dto

// HierarchyPathResponse carries the display path of an activity node.
type HierarchyPathResponse struct {
	Code string   `json:"code"`
	Path []string `json:"path"`
}
