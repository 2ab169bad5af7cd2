package gallery

// Marketplace extensionquery protocol constants.
// These mirror the filter and sort enums of the Visual Studio Marketplace
// gallery API; only the values this tool sends are defined here.
const (
	// filterTypeTarget selects extensions whose install target matches the
	// given product identity.
	filterTypeTarget = 8

	// filterTypeSearchText is the free-text search criterion. The gallery
	// expects the install target repeated here to scope the search.
	filterTypeSearchText = 10

	// filterTypeExcludeWithFlags excludes extensions carrying any of the
	// given flags (for example unpublished entries).
	filterTypeExcludeWithFlags = 12

	// sortByInstallCount orders results by install count.
	sortByInstallCount = 10

	// sortOrderDescending requests descending sort order.
	sortOrderDescending = 0

	// targetProduct is the install target identity of Visual Studio Code.
	targetProduct = "Microsoft.VisualStudio.Code"

	// excludeFlags is the flag mask sent with filterTypeExcludeWithFlags.
	excludeFlags = "37888"

	// queryFlags is the response shaping mask; it requests version lists
	// without asset detail expansion.
	queryFlags = 870

	// pageSize is the fixed number of extensions requested per page.
	pageSize = 54

	// filterDirection is the paging direction field of a query filter.
	filterDirection = 2
)

// Query is the request payload for the gallery search endpoint.
type Query struct {
	AssetTypes []string      `json:"assetTypes"`
	Filters    []QueryFilter `json:"filters"`
	Flags      int           `json:"flags"`
}

// QueryFilter is one filter block of a gallery query, carrying the match
// criteria and the paging/sort parameters.
type QueryFilter struct {
	Criteria    []FilterCriterion `json:"criteria"`
	Direction   int               `json:"direction"`
	PageSize    int               `json:"pageSize"`
	PageNumber  int               `json:"pageNumber"`
	SortBy      int               `json:"sortBy"`
	SortOrder   int               `json:"sortOrder"`
	PagingToken *string           `json:"pagingToken"`
}

// FilterCriterion is a single (type, value) match criterion.
type FilterCriterion struct {
	FilterType int    `json:"filterType"`
	Value      string `json:"value"`
}

// NewPageQuery builds the request payload for the given 1-based page of
// gallery results. The payload selects VS Code compatible extensions,
// sorted by install count descending, with a fixed page size and no asset
// type expansion. The function is pure: the same page number always yields
// an identical payload.
func NewPageQuery(page int) Query {
	return Query{
		AssetTypes: []string{},
		Filters: []QueryFilter{
			{
				Criteria: []FilterCriterion{
					{FilterType: filterTypeTarget, Value: targetProduct},
					{FilterType: filterTypeSearchText, Value: `target:"` + targetProduct + `" `},
					{FilterType: filterTypeExcludeWithFlags, Value: excludeFlags},
				},
				Direction:   filterDirection,
				PageSize:    pageSize,
				PageNumber:  page,
				SortBy:      sortByInstallCount,
				SortOrder:   sortOrderDescending,
				PagingToken: nil,
			},
		},
		Flags: queryFlags,
	}
}
