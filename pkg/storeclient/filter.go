package storeclient

import (
	"fmt"
	"strconv"
)

// SortDirection orders a sorted product listing.
type SortDirection string

const (
	SortAscending  SortDirection = "asc"
	SortDescending SortDirection = "desc"
)

// Filter is one clause of a product listing request. The set of clauses is
// closed: match clauses (search text, category, price bounds) combine
// conjunctively, sort clauses determine ordering with the first sort clause
// winning, and page clauses select the result window.
//
// Every clause renders a canonical Token so that a filter list can extend a
// cache key deterministically: equal filter lists always produce equal keys.
type Filter interface {
	// Token is the clause's canonical cache-key token.
	Token() string
	isFilter()
}

// SearchText matches products whose name or description contains the text.
type SearchText struct{ Text string }

// CategoryEquals restricts the listing to one category.
type CategoryEquals struct{ CategoryID CategoryID }

// MinPrice is the inclusive lower price bound in cents.
type MinPrice struct{ Amount int64 }

// MaxPrice is the inclusive upper price bound in cents.
type MaxPrice struct{ Amount int64 }

// SortByName orders results by product name.
type SortByName struct{ Direction SortDirection }

// SortByPrice orders results by price.
type SortByPrice struct{ Direction SortDirection }

// SortByCategory orders results by category.
type SortByCategory struct{ Direction SortDirection }

// Page selects the 1-based result page.
type Page struct{ Number int64 }

// PageSize sets the number of results per page.
type PageSize struct{ Size int64 }

func (SearchText) isFilter()     {}
func (CategoryEquals) isFilter() {}
func (MinPrice) isFilter()       {}
func (MaxPrice) isFilter()       {}
func (SortByName) isFilter()     {}
func (SortByPrice) isFilter()    {}
func (SortByCategory) isFilter() {}
func (Page) isFilter()           {}
func (PageSize) isFilter()       {}

func (f SearchText) Token() string {
	return "search=" + f.Text
}

func (f CategoryEquals) Token() string {
	return "category=" + strconv.FormatInt(int64(f.CategoryID), 10)
}

func (f MinPrice) Token() string {
	return "minPrice=" + strconv.FormatInt(f.Amount, 10)
}

func (f MaxPrice) Token() string {
	return "maxPrice=" + strconv.FormatInt(f.Amount, 10)
}

func (f SortByName) Token() string {
	return fmt.Sprintf("sortByName=%s", f.Direction)
}

func (f SortByPrice) Token() string {
	return fmt.Sprintf("sortByPrice=%s", f.Direction)
}

func (f SortByCategory) Token() string {
	return fmt.Sprintf("sortByCategory=%s", f.Direction)
}

func (f Page) Token() string {
	return "page=" + strconv.FormatInt(f.Number, 10)
}

func (f PageSize) Token() string {
	return "pageSize=" + strconv.FormatInt(f.Size, 10)
}

// FilterTokens renders a filter list to its ordered cache-key tokens.
func FilterTokens(filters []Filter) []string {
	tokens := make([]string, 0, len(filters))
	for _, f := range filters {
		tokens = append(tokens, f.Token())
	}
	return tokens
}
